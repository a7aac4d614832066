package compare

import (
	"testing"

	"github.com/xyproto/rvfuzz/internal/adapters"
	"github.com/xyproto/rvfuzz/internal/runner"
	"github.com/xyproto/rvfuzz/internal/state"
)

func completeRef(ms *state.MachineState) func() runner.Result {
	return func() runner.Result {
		return runner.Result{Outcome: runner.Complete, Payload: adapters.SpikeResult{State: ms}}
	}
}

func completeDut(ms *state.MachineState) func() runner.Result {
	return func() runner.Result {
		return runner.Result{Outcome: runner.Complete, Payload: adapters.GDBResult{State: ms}}
	}
}

func completeCov(total int) func() runner.Result {
	return func() runner.Result {
		return runner.Result{Outcome: runner.Complete, Payload: adapters.CoverageResult{
			Points: []adapters.CoveragePoint{{Name: "Basic", Points: total, PointsMax: total * 2, Percent: 50}},
		}}
	}
}

func TestRunMatchingStatesComplete(t *testing.T) {
	ref := state.New(0, 0)
	dut := state.New(0, 0)
	ref.GPR[10] = 42
	dut.GPR[10] = 42

	res := Run(completeRef(ref), completeCov(100), completeDut(dut))
	if res.Outcome != runner.Complete {
		t.Fatalf("outcome = %v, want Complete", res.Outcome)
	}
	rep, ok := res.Payload.(Report)
	if !ok || !rep.Equal {
		t.Fatalf("expected equal report, got %+v", res.Payload)
	}
	if rep.Coverage[0].Points != 100 {
		t.Fatalf("coverage not threaded through: %+v", rep.Coverage)
	}
}

func TestRunDivergingStatesError(t *testing.T) {
	ref := state.New(0, 0)
	dut := state.New(0, 0)
	ref.GPR[10] = 1
	dut.GPR[10] = 2

	res := Run(completeRef(ref), completeCov(10), completeDut(dut))
	if res.Outcome != runner.Error {
		t.Fatalf("outcome = %v, want Error", res.Outcome)
	}
	rep, ok := res.Payload.(Report)
	if !ok || rep.Equal {
		t.Fatalf("expected unequal report, got %+v", res.Payload)
	}
	if rep.Diff == "" {
		t.Fatal("expected non-empty diff text")
	}
}

func TestRunAnyTimeoutDominates(t *testing.T) {
	ref := state.New(0, 0)
	dut := state.New(0, 0)
	timeoutTask := func() runner.Result { return runner.Result{Outcome: runner.Timeout} }

	res := Run(completeRef(ref), completeCov(0), timeoutTask)
	if res.Outcome != runner.Timeout {
		t.Fatalf("outcome = %v, want Timeout", res.Outcome)
	}

	res = Run(timeoutTask, completeCov(0), completeDut(dut))
	if res.Outcome != runner.Timeout {
		t.Fatalf("outcome = %v, want Timeout", res.Outcome)
	}
}

func TestRunNonTimeoutFailureBecomesError(t *testing.T) {
	ref := state.New(0, 0)
	dut := state.New(0, 0)
	ignoreTask := func() runner.Result { return runner.Result{Outcome: runner.Ignore} }

	res := Run(completeRef(ref), completeCov(0), func() runner.Result {
		_ = dut
		return ignoreTask()
	})
	if res.Outcome != runner.Error {
		t.Fatalf("outcome = %v, want Error", res.Outcome)
	}
}

func TestRunUnexpectedPayloadTypeIsError(t *testing.T) {
	badRef := func() runner.Result { return runner.Result{Outcome: runner.Complete, Payload: "not a SpikeResult"} }
	res := Run(badRef, completeCov(0), completeDut(state.New(0, 0)))
	if res.Outcome != runner.Error {
		t.Fatalf("outcome = %v, want Error", res.Outcome)
	}
}
