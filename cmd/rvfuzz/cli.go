// cli.go implements the rvfuzz subcommands on top of pipeline.go,
// grounded on the teacher's cli.go CommandContext/RunCLI dispatch
// pattern (a flag-parsed global context threaded into a switch over
// args[0]).
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/xyproto/rvfuzz/internal/archive"
	"github.com/xyproto/rvfuzz/internal/codeblock"
	"github.com/xyproto/rvfuzz/internal/compare"
	"github.com/xyproto/rvfuzz/internal/deltadebug"
	"github.com/xyproto/rvfuzz/internal/fuzzer"
	"github.com/xyproto/rvfuzz/internal/runner"
	"github.com/xyproto/rvfuzz/internal/rvconfig"
)

// CommandContext holds the global options every subcommand shares.
type CommandContext struct {
	Args       []string
	Dir        string
	Verbose    bool
	Iterations int
}

// RunCLI dispatches args[0] to the matching subcommand, mirroring the
// teacher's RunCLI switch.
func RunCLI(args []string, dir string, verbose bool, iterations int) error {
	ctx := &CommandContext{Args: args, Dir: dir, Verbose: verbose, Iterations: iterations}

	if len(args) == 0 {
		return cmdHelp(ctx)
	}

	switch args[0] {
	case "once":
		return cmdOnce(ctx, args[1:])
	case "fuzz":
		return cmdFuzz(ctx, args[1:])
	case "minimize":
		return cmdMinimize(ctx, args[1:])
	case "replay":
		return cmdReplay(ctx, args[1:])
	case "stats":
		return cmdStats(ctx, args[1:])
	case "help", "--help", "-h":
		return cmdHelp(ctx)
	default:
		return fmt.Errorf("rvfuzz: unknown subcommand %q (try \"help\")", args[0])
	}
}

func cmdHelp(ctx *CommandContext) error {
	fmt.Println(`rvfuzz - differential fuzzing harness for RISC-V processor implementations

Usage:
  rvfuzz once                 build and run one freshly generated test case
  rvfuzz fuzz                 run the coverage-guided INIT/EXTEND/REDUCE loop
  rvfuzz minimize <testcase>  delta-debug a failing saved test case
  rvfuzz replay <dir>         replay a saved corpus against the current DUT
  rvfuzz stats <dir>          print corpus statistics for a saved testset

Global flags:
  -dir <path>       working directory for generated artifacts (default ".")
  -iterations <n>   iterations for "fuzz" (default 100)
  -v                verbose logging`)
	return nil
}

func loadConfig(ctx *CommandContext) rvconfig.Config {
	cfg := rvconfig.FromEnv(rvconfig.Default())
	cfg.Dir = ctx.Dir
	cfg.Log = ctx.Verbose
	return cfg
}

// cmdOnce builds and runs a single freshly generated code block,
// printing the comparison outcome.
func cmdOnce(ctx *CommandContext, args []string) error {
	cfg := loadConfig(ctx)
	sess := NewSession(cfg)
	block := codeblock.New(sess.gen.InitFragments(), sess.gen.Generate(20, 0.3), sess.gen.DeinitFragments())

	dir := filepath.Join(cfg.Dir, "once_0")
	res, err := sess.runOnce(dir, block)
	if err != nil {
		return err
	}
	report, _ := res.Payload.(compare.Report)
	fmt.Printf("outcome: %s\n", res.Outcome)
	if report.Diff != "" {
		fmt.Printf("diff: %s\n", report.Diff)
	}
	fmt.Printf("coverage points: %d\n", sumPoints(report))
	return nil
}

func sumPoints(r compare.Report) int {
	n := 0
	for _, p := range r.Coverage {
		n += p.Points
	}
	return n
}

// cmdFuzz runs the coverage-guided loop for ctx.Iterations subiterations,
// archiving every ERROR/TIMEOUT iteration per the configured toggles.
func cmdFuzz(ctx *CommandContext, args []string) error {
	cfg := loadConfig(ctx)
	sess := NewSession(cfg)

	runDir := filepath.Join(cfg.Dir, "fuzz_run")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	archiveDir := filepath.Join(cfg.Dir, "archive")

	check := sess.checkFunc(filepath.Join(runDir, "checks"), archiveDir)
	f := fuzzer.New(runDir, cfg.Log, sess.gen, check,
		cfg.CovGuidedFuzzerGenAllowExceptions, 4, 32, 0.3, rand.New(rand.NewSource(1)))

	for i := 0; i < ctx.Iterations; i++ {
		f.Task(1)
		if ctx.Verbose && i%10 == 0 {
			fmt.Printf("iteration %d: generates=%d completes=%d valids=%d\n",
				i, f.Stats.Generates, f.Stats.Completes, f.Stats.Valids)
		}
	}

	fmt.Printf("done: %d iterations, %d generates, %d completes, %d valids, %d errors\n",
		ctx.Iterations, f.Stats.Generates, f.Stats.Completes, f.Stats.Valids, f.Stats.Errors)
	return nil
}

// cmdMinimize delta-debugs a failing saved test case: bisects it to a
// minimal good/bad boundary, builds a minimized repro around the
// offending fragment range, and reports the blamed mnemonic.
func cmdMinimize(ctx *CommandContext, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rvfuzz minimize <testcase.json>")
	}
	cfg := loadConfig(ctx)
	sess := NewSession(cfg)

	code, err := codeblock.Load(args[0])
	if err != nil {
		return fmt.Errorf("load test case: %w", err)
	}

	workDir := filepath.Join(cfg.Dir, "minimize_work")
	reduced := deltadebug.Reduce(sess.testFunc(filepath.Join(workDir, "reduce")), code)
	fmt.Printf("bisected to good=%d bad=%d\n", reduced.Good, reduced.Bad)

	res, minimized, err := deltadebug.Minimize(
		sess.checkStateFunc(filepath.Join(workDir, "check")),
		sess.testFunc(filepath.Join(workDir, "minimize")),
		code, reduced.Good, reduced.Bad,
	)
	if err != nil {
		return fmt.Errorf("minimize: %w", err)
	}

	hist := deltadebug.NewErrorHistogram()
	mnemonic := hist.Record(minimized)
	fmt.Printf("minimized outcome: %s, blamed mnemonic: %q\n", res.Outcome, mnemonic)

	outPath := filepath.Join(cfg.Dir, "minimized.json")
	if err := minimized.Save(outPath); err != nil {
		return fmt.Errorf("save minimized test case: %w", err)
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

// cmdReplay replays every saved test case in a directory against the
// currently configured DUT.
func cmdReplay(ctx *CommandContext, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rvfuzz replay <testset-dir>")
	}
	cfg := loadConfig(ctx)
	sess := NewSession(cfg)

	workDir := filepath.Join(cfg.Dir, "replay_work")
	n := 0
	results, err := archive.Replay(args[0], cfg.TestsetPattern, cfg.TestsetMaxFragmentsPerRun,
		func(chunk *codeblock.Block) archive.ChunkResult {
			n++
			dir := filepath.Join(workDir, fmt.Sprintf("chunk_%d", n))
			res, err := sess.runOnce(dir, chunk)
			if err != nil {
				return archive.ChunkResult{Outcome: runner.Error}
			}
			report, _ := res.Payload.(compare.Report)
			return archive.ChunkResult{Outcome: res.Outcome, ResultCode: chunk, RefState: report.RefState}
		})
	if err != nil {
		return err
	}

	passed := 0
	for _, r := range results {
		if r.Outcome == runner.Complete {
			passed++
		}
	}
	fmt.Printf("replayed %d test cases, %d passed\n", len(results), passed)
	return nil
}

// cmdStats prints aggregate statistics for a saved test corpus.
func cmdStats(ctx *CommandContext, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rvfuzz stats <testset-dir>")
	}
	cfg := loadConfig(ctx)
	cs, err := archive.ComputeCorpusStats(args[0], cfg.TestsetPattern)
	if err != nil {
		return err
	}
	fmt.Printf("test cases: %d\n", cs.TestCases)
	fmt.Printf("fragments: min=%.0f max=%.0f avg=%.1f\n", cs.Fragments.Min, cs.Fragments.Max, cs.FragmentsAvg())
	fmt.Printf("lines:     min=%.0f max=%.0f avg=%.1f\n", cs.Lines.Min, cs.Lines.Max, cs.LinesAvg())
	fmt.Printf("ins:       min=%.0f max=%.0f avg=%.1f\n", cs.Ins.Min, cs.Ins.Max, cs.InsAvg())
	fmt.Printf("vins:      min=%.0f max=%.0f avg=%.1f\n", cs.Vins.Min, cs.Vins.Max, cs.VinsAvg())
	return nil
}
