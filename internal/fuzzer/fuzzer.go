// Package fuzzer implements the coverage-guided INIT/EXTEND/REDUCE state
// machine, grounded on CovGuidedFuzzerGenRunner.py.
package fuzzer

import (
	"math/rand"
	"path/filepath"

	"github.com/xyproto/rvfuzz/internal/codeblock"
	"github.com/xyproto/rvfuzz/internal/isg"
	"github.com/xyproto/rvfuzz/internal/runner"
)

// Exact thresholds from the reference configuration (spec.md §4.I).
const (
	threshRepeatExtend        = 10
	threshNoExtendAllowReduce = 100
	threshNoExtendTryReduce   = 110
	threshTryReduce           = 10
)

type fuzzState int

const (
	stateInit fuzzState = iota
	stateExtend
	stateReduce
)

// Coverage is the (points, percent) pair check_code returns on success.
type Coverage struct {
	Points  int
	Percent float64
}

// CheckResult is what a CheckFunc reports for one candidate block.
type CheckResult struct {
	Outcome    runner.Outcome
	Exceptions uint64
	Coverage   Coverage
}

// CheckFunc builds and runs one candidate code block with coverage
// enabled, reporting its outcome, exception count, and coverage points.
// Exception-policy (skip-on-exception vs stop-on-exception) and COMPLETE
// vs not-COMPLETE dispatch happen inside the caller's build/run pipeline
// (harness.Build + adapters + compare); this package only applies the
// allow_exceptions acceptance rule on top of what CheckFunc reports.
type CheckFunc func(code *codeblock.Block) CheckResult

// Stats mirrors CovGuidedFuzzerGenRunner's running counters. They are
// kept in memory only; nothing writes them to disk.
type Stats struct {
	Generates, Ignores, Timeouts, Errors, UnknownFaults int
	Completes, Exceptions, Valids                       int
	Extensions, ExtensionsRedcov, Reductions             int
}

// Fuzzer drives the coverage-guided INIT/EXTEND/REDUCE loop over a
// generated RISC-V instruction stream.
type Fuzzer struct {
	dir   string
	log   bool
	gen   *isg.ProgramMultiGenerator
	check CheckFunc
	rand  *rand.Rand

	AllowExceptions       bool
	MinStartFragments     int
	MaxStartFragments     int
	VectorBias            float64

	state       fuzzState
	cntState    int
	cntNoExtend int

	code         *codeblock.Block
	codeLen      int
	coverage     Coverage
	coverageLast Coverage

	Stats Stats
}

// New builds a Fuzzer rooted at dir (a fixed, non-indexed directory so a
// resumed process finds its own seed file again).
func New(dir string, log bool, gen *isg.ProgramMultiGenerator, check CheckFunc, allowExceptions bool, minFrag, maxFrag int, vectorBias float64, rng *rand.Rand) *Fuzzer {
	return &Fuzzer{
		dir: dir, log: log, gen: gen, check: check, rand: rng,
		AllowExceptions:   allowExceptions,
		MinStartFragments: minFrag,
		MaxStartFragments: maxFrag,
		VectorBias:        vectorBias,
		state:             stateInit,
	}
}

func (f *Fuzzer) seedPath() string {
	return filepath.Join(f.dir, "testcase_code.json")
}

// checkCode runs code through CheckFunc, updates the running stats, and
// returns the observed coverage plus whether the candidate is valid
// (COMPLETE, and either exception-free or exceptions are allowed).
func (f *Fuzzer) checkCode(code *codeblock.Block) (Coverage, bool) {
	f.Stats.Generates++
	res := f.check(code)

	switch res.Outcome {
	case runner.Ignore:
		f.Stats.Ignores++
		return Coverage{}, false
	case runner.Timeout:
		f.Stats.Timeouts++
		return Coverage{}, false
	case runner.Error:
		f.Stats.Errors++
		return Coverage{}, false
	case runner.Complete:
		// handled below
	default:
		f.Stats.UnknownFaults++
		return Coverage{}, false
	}

	f.Stats.Completes++
	if res.Exceptions != 0 {
		f.Stats.Exceptions++
		if !f.AllowExceptions {
			return Coverage{}, false
		}
	}
	f.Stats.Valids++
	return res.Coverage, true
}

func (f *Fuzzer) genCodeBlock(minFrag, maxFrag int) *codeblock.Block {
	n := minFrag
	if maxFrag > minFrag {
		n += f.rand.Intn(maxFrag - minFrag + 1)
	}
	main := f.gen.Generate(n, f.VectorBias)
	return codeblock.New(f.gen.InitFragments(), main, f.gen.DeinitFragments())
}

func (f *Fuzzer) genCode() bool {
	codeNew := f.genCodeBlock(f.MinStartFragments, f.MaxStartFragments)
	if coverage, ok := f.checkCode(codeNew); ok {
		f.code = codeNew
		f.codeLen = codeNew.MainLen()
		f.coverage = coverage
		return true
	}
	f.code = nil
	f.codeLen = 0
	f.coverage = Coverage{}
	return false
}

func (f *Fuzzer) loadCode() bool {
	codeNew, err := codeblock.Load(f.seedPath())
	if err != nil {
		return false
	}
	if coverage, ok := f.checkCode(codeNew); ok {
		f.code = codeNew
		f.codeLen = codeNew.MainLen()
		f.coverage = coverage
		return true
	}
	f.code = nil
	f.codeLen = 0
	f.coverage = Coverage{}
	return false
}

func (f *Fuzzer) saveCode() {
	if f.code != nil {
		_ = f.code.Save(f.seedPath())
	}
}

// init tries to load a persisted seed, falling back to a freshly
// generated block; on success it moves to EXTEND and stops the
// subiteration loop early (an "init early result" per the source).
func (f *Fuzzer) init() bool {
	ok := f.loadCode()
	if !ok {
		ok = f.genCode()
	}
	if ok {
		f.state = stateExtend
		return false
	}
	return true
}

func (f *Fuzzer) tryExtend() bool {
	main := codeblock.NewFragmentList()
	main.AddList(f.code.Main)
	fresh := f.gen.Generate(1, f.VectorBias)

	mainLen := f.code.Main.Len()
	var ins int
	if mainLen <= 1 {
		ins = mainLen
	} else {
		ins = f.rand.Intn(mainLen + 1)
	}
	main.Insert(ins, codeblock.NewFragment(fresh.AsCode()))

	codeNew := codeblock.New(f.code.Init, main, f.code.Deinit)
	coverage, ok := f.checkCode(codeNew)

	if ok && coverage.Points >= f.coverage.Points {
		f.Stats.Extensions++
		f.code = codeNew
		f.coverage = coverage
		f.cntNoExtend = 0

		f.cntState++
		if f.cntState >= threshRepeatExtend {
			f.cntState = 0
			f.state = stateReduce
		}
		return true
	}

	f.cntNoExtend++
	if ok && f.cntNoExtend >= threshNoExtendAllowReduce {
		f.Stats.ExtensionsRedcov++
		f.code = codeNew
		f.coverage = coverage
		f.cntNoExtend = 0
	} else if f.cntNoExtend >= threshNoExtendTryReduce {
		f.cntNoExtend = 0
		f.cntState = 0
		f.state = stateReduce
	}

	return true
}

func (f *Fuzzer) tryReduce() bool {
	mainLen := f.code.Main.Len()
	if mainLen <= 1 {
		f.cntState = 0
		f.state = stateExtend
		return true
	}

	a := f.rand.Intn(mainLen)
	b := a + 1 + f.rand.Intn(2)
	if b > mainLen {
		b = mainLen
	}

	codeNew := codeblock.New(f.code.Init, f.code.Main.Delete(a, b), f.code.Deinit)
	coverage, ok := f.checkCode(codeNew)

	f.cntState++
	if ok && coverage.Points >= f.coverage.Points {
		f.Stats.Reductions++
		f.code = codeNew
		f.coverage = coverage
		f.cntState = 0
	}

	if f.cntState >= threshTryReduce {
		f.cntState = 0
		f.state = stateExtend
	}

	return true
}

// iteration runs one state-machine step and reports whether the
// subiteration loop should continue.
func (f *Fuzzer) iteration() bool {
	var cont bool
	switch f.state {
	case stateInit:
		cont = f.init()
	case stateExtend:
		cont = f.tryExtend()
	case stateReduce:
		cont = f.tryReduce()
	}
	if f.code != nil {
		f.codeLen = f.code.MainLen()
	} else {
		f.codeLen = 0
	}
	return cont
}

// TaskResult is one Task() call's summary: the current block's main
// length and coverage, after running up to subiterations steps.
type TaskResult struct {
	CodeLen  int
	Coverage Coverage
}

// Task runs the state machine for up to subiterations steps (fewer if a
// step reports it should stop, as init() does right after loading/
// generating the first seed), then persists the seed if coverage points
// strictly increased this call.
func (f *Fuzzer) Task(subiterations int) TaskResult {
	for i := 0; i < subiterations; i++ {
		if !f.iteration() {
			break
		}
	}

	if f.coverage.Points > f.coverageLast.Points {
		f.saveCode()
	}
	f.coverageLast = f.coverage

	return TaskResult{CodeLen: f.codeLen, Coverage: f.coverage}
}
