// Package deltadebug reduces a failing generated program to its shortest
// failing prefix and minimizes that prefix to a single offending
// instruction plus the register/CSR state it needs, grounded on
// CodeErrMinRunner.py.
package deltadebug

import (
	"strings"

	"github.com/xyproto/rvfuzz/internal/codeblock"
	"github.com/xyproto/rvfuzz/internal/runner"
	"github.com/xyproto/rvfuzz/internal/state"
)

// TestFunc builds and runs one candidate code block end to end (compile,
// run reference+coverage+DUT, compare) and returns its outcome, grounded
// on CodeCompareRunner.run. Callers wire this from harness.BuildRunner,
// the adapters stages, and compare.Run; this package stays independent
// of how a test is actually executed.
type TestFunc func(block *codeblock.Block) runner.Result

// CheckFunc builds and runs a code block and returns the reference
// machine state it ends in. How much of the pipeline it runs is up to
// the caller; cmd/rvfuzz runs the full build/reference/coverage/DUT
// compare and takes the reference state from its report.
type CheckFunc func(block *codeblock.Block) (*state.MachineState, error)

// ReduceResult is delta_code_reduction's return tuple: the largest known
// good prefix length, the smallest known bad prefix length (bad-good<=1),
// the bad code block itself, and the outcome that made it bad.
type ReduceResult struct {
	Good, Bad int
	BadCode   *codeblock.Block
	BadResult runner.Result
}

// Reduce bisects code's main fragment range down to the shortest prefix
// that still reproduces a non-COMPLETE outcome. The good/test/bad
// bookkeeping and update arithmetic (test -= (bad-good)/2 on a bad
// result, test += (bad-good)/2 on a good one) follows
// delta_code_reduction exactly rather than a generic binary search,
// since the source's bisection is not a simple midpoint search: both
// branches can move test by different amounts as the interval narrows.
//
// A test index running past the end of the code is a bug in the caller
// (code shorter than its own MainLen, or a test that reports COMPLETE
// past the point it was run) — the source marks this branch "TODO" and
// returns None; here it panics, since silently returning a zero value
// would hide a logic error as a normal result (deltadebug's own Open
// Question: this branch must never be reachable in a caller driving
// Reduce correctly).
func Reduce(test TestFunc, code *codeblock.Block) ReduceResult {
	end := code.MainLen()
	bad := end
	good := 0
	testIdx := bad / 2

	badCode := code
	badResult := runner.Result{Outcome: runner.Invalid}

	for bad-good > 1 {
		testCode := code.Part(0, testIdx)
		res := test(testCode)
		if res.Outcome != runner.Complete {
			bad = testIdx
			badCode = testCode
			badResult = res
			testIdx -= (bad - good) / 2
		} else {
			good = testIdx
			testIdx += (bad - good) / 2
			if testIdx > end {
				panic("deltadebug: bisection test index ran past end of code, caller invariant violated")
			}
		}
	}

	return ReduceResult{Good: good, Bad: bad, BadCode: badCode, BadResult: badResult}
}

// Minimize builds the smallest program that still reproduces the
// failure Reduce found: run the known-good prefix to capture the
// reference machine state at goodIdx, then construct a new block whose
// init is that state's restore assembly and whose main is a
// "// INSTRUCTION" marker comment followed by the fragments between
// goodIdx and badIdx (the offending instruction),
// grounded on code_minimize. It returns the minimized block's own test
// outcome (expected to still be non-COMPLETE) alongside the block.
func Minimize(check CheckFunc, test TestFunc, code *codeblock.Block, goodIdx, badIdx int) (runner.Result, *codeblock.Block, error) {
	goodCode := code.Part(0, goodIdx)
	refState, err := check(goodCode)
	if err != nil {
		return runner.Result{Outcome: runner.Error, Payload: err}, nil, err
	}

	main := codeblock.NewFragmentList()
	main.Add(codeblock.NewFragment("    // INSTRUCTION"))
	main.AddList(code.Main.Part(goodIdx, badIdx))

	minimized := codeblock.New(refState.AsAssembly("restore"), main, goodCode.Deinit)
	res := test(minimized)
	return res, minimized, nil
}

// ErrorHistogram tallies, across repeated Reduce+Minimize runs, the
// mnemonic of the single instruction each minimized block blames for its
// failure — the supplemented instr_errors counter from CodeErrMinRunner.
type ErrorHistogram struct {
	counts map[string]int
}

// NewErrorHistogram returns an empty histogram.
func NewErrorHistogram() *ErrorHistogram {
	return &ErrorHistogram{counts: make(map[string]int)}
}

// Record extracts the mnemonic blamed for a minimized block's failure —
// the first whitespace-delimited token of the last non-blank line of the
// block's main fragments — and bumps its count. Grounded on the
// source's bad_ins extraction: the last line of the fragment range
// between good_idx and good_idx+1, stripped to its first token.
func (h *ErrorHistogram) Record(minimized *codeblock.Block) string {
	mnemonic := lastInstructionMnemonic(minimized.Main.AsCode())
	if mnemonic != "" {
		h.counts[mnemonic]++
	}
	return mnemonic
}

// Counts returns a snapshot of the current mnemonic->count tally.
func (h *ErrorHistogram) Counts() map[string]int {
	out := make(map[string]int, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

func lastInstructionMnemonic(code string) string {
	lines := strings.Split(code, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			continue
		}
		return fields[0]
	}
	return ""
}
