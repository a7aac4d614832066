// Package compare runs the reference (Spike+coverage) and DUT (GDB+
// QEMU/tiny-vp) pipelines in parallel and composes their outcomes,
// grounded on CompareRunner.py.
package compare

import (
	"fmt"
	"sync"

	"github.com/xyproto/rvfuzz/internal/adapters"
	"github.com/xyproto/rvfuzz/internal/runner"
	"github.com/xyproto/rvfuzz/internal/state"
)

// Report is the COMPLETE/ERROR payload: the state diff (empty string
// when states matched), the coverage points from this iteration, and
// the reference simulator's final state (reused by delta-debug's
// minimizer so a known-good prefix need not be re-run under Spike a
// second time just to capture its restore assembly).
type Report struct {
	Equal    bool
	Diff     string
	Coverage []adapters.CoveragePoint
	RefState *state.MachineState
}

// Run executes ref, cov, and dut concurrently, waits for all three, and
// composes the outcome: any TIMEOUT wins outright; any other non-
// COMPLETE outcome becomes ERROR; otherwise the two MachineStates are
// compared and the outcome is COMPLETE (equal) or ERROR (diverged),
// always carrying a Report payload.
func Run(refTask, covTask, dutTask func() runner.Result) runner.Result {
	var refResult, covResult, dutResult runner.Result
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); refResult = refTask() }()
	go func() { defer wg.Done(); covResult = covTask() }()
	go func() { defer wg.Done(); dutResult = dutTask() }()
	wg.Wait()

	dominant := runner.Dominant(refResult.Outcome, covResult.Outcome, dutResult.Outcome)
	if dominant == runner.Timeout {
		return runner.Result{Outcome: runner.Timeout, Payload: nil}
	}
	if dominant != runner.Complete {
		return runner.Result{Outcome: runner.Error, Payload: fmt.Errorf(
			"compare: ref=%s cov=%s dut=%s", refResult.Outcome, covResult.Outcome, dutResult.Outcome)}
	}

	refState, ok := refResult.Payload.(adapters.SpikeResult)
	if !ok {
		return runner.Result{Outcome: runner.Error, Payload: fmt.Errorf("compare: unexpected ref payload type")}
	}
	dutState, ok := dutResult.Payload.(adapters.GDBResult)
	if !ok {
		return runner.Result{Outcome: runner.Error, Payload: fmt.Errorf("compare: unexpected dut payload type")}
	}
	covPayload, _ := covResult.Payload.(adapters.CoverageResult)

	equal, diff := compareStates(refState.State, dutState.State)
	report := Report{Equal: equal, Diff: diff, Coverage: covPayload.Points, RefState: refState.State}
	if equal {
		return runner.Result{Outcome: runner.Complete, Payload: report}
	}
	return runner.Result{Outcome: runner.Error, Payload: report}
}

// compareStates delegates to MachineState.Compare, which checks every
// field exactly: GPRs, last PC, exception count, mstatus and both memory
// hashes, plus F and V state when both sides carry it. A field one
// adapter leaves unset therefore differs from a populated one.
func compareStates(ref, dut *state.MachineState) (bool, string) {
	eq, diff := ref.Compare(dut)
	return eq, diff
}
