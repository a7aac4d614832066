// Package archive preserves interesting iterations to disk and replays a
// saved corpus chunk by chunk through a caller-supplied function, grounded on
// ArchiveRunner.py and TestsetCodeErrMinRunner.py.
package archive

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/xyproto/rvfuzz/internal/codeblock"
	"github.com/xyproto/rvfuzz/internal/runner"
	"github.com/xyproto/rvfuzz/internal/state"
)

// RunFunc runs one wrapped iteration and reports its outcome.
type RunFunc func() runner.Result

// Stats mirrors ArchiveRunner's running counters.
type Stats struct {
	Timeouts, Ignores, Errors, Completes int
}

// Runner wraps a DUT-producing stage: it calls run, and on the outcomes
// enabled by its toggle flags, deep-copies dutDir() into
// "<OUTCOME>[_<cause>]_iteration_<10-digit-zero-padded>" under
// archiveDir. cause is consulted only on ERROR (it reports the
// minimizer's blamed mnemonic, or "" when none is available).
type Runner struct {
	archiveDir string
	run        RunFunc
	dutDir     func() string
	cause      func() string

	OnTimeout, OnIgnore, OnError, OnComplete bool

	iteration int
	Stats     Stats
}

// NewRunner builds an archiver rooted at archiveDir.
func NewRunner(archiveDir string, run RunFunc, dutDir func() string, cause func() string, onTimeout, onIgnore, onError, onComplete bool) *Runner {
	return &Runner{
		archiveDir: archiveDir, run: run, dutDir: dutDir, cause: cause,
		OnTimeout: onTimeout, OnIgnore: onIgnore, OnError: onError, OnComplete: onComplete,
	}
}

// Task runs the wrapped iteration once, archives it if warranted, and
// returns the same result the wrapped run produced.
func (r *Runner) Task() runner.Result {
	res := r.run()

	var name string
	switch res.Outcome {
	case runner.Timeout:
		r.Stats.Timeouts++
		if r.OnTimeout {
			name = fmt.Sprintf("TIMEOUT_iteration_%010d", r.iteration)
		}
	case runner.Ignore:
		r.Stats.Ignores++
		if r.OnIgnore {
			name = fmt.Sprintf("IGNORE_iteration_%010d", r.iteration)
		}
	case runner.Error:
		r.Stats.Errors++
		if r.OnError {
			cause := ""
			if r.cause != nil {
				cause = r.cause()
			}
			if cause != "" {
				name = fmt.Sprintf("ERROR_%s_iteration_%010d", cause, r.iteration)
			} else {
				name = fmt.Sprintf("ERROR_iteration_%010d", r.iteration)
			}
		}
	case runner.Complete:
		r.Stats.Completes++
		if r.OnComplete {
			name = fmt.Sprintf("COMPLETE_iteration_%010d", r.iteration)
		}
	}

	if name != "" {
		dst := filepath.Join(r.archiveDir, name)
		if src := r.dutDir(); src != "" {
			_ = copyTree(src, dst)
		}
	}
	r.iteration++
	return res
}

// copyTree recursively copies src's tree into dst, matching shutil.copytree.
// No library in the example pack does recursive directory copying; this
// is plain filesystem plumbing over stdlib io/fs.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

// globRecursive finds every file under root whose base name matches
// pattern, mirroring `glob.glob(dir + "/**/" + pattern, recursive=True)`.
// filepath.Glob has no "**" recursion, so this walks the tree and applies
// filepath.Match per candidate instead — stdlib only, same justification
// as copyTree.
func globRecursive(root, pattern string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			matches = append(matches, path)
		}
		return nil
	})
	return matches, err
}

// ChunkResult is what a caller's chunk processor reports for one code
// chunk of a replayed test: the outcome (after the caller's own
// reduce/minimize handling, if it applied), the resulting block, and
// the reference machine state observed running it (used to seed the
// next chunk's Init when a test is split into sub-runs).
type ChunkResult struct {
	Outcome    runner.Outcome
	ResultCode *codeblock.Block
	RefState   *state.MachineState
}

// ChunkFunc processes one chunk of a replayed test end to end, grounded
// on TestsetCodeErrMinRunner's per-chunk call into CodeErrMinRunner. The
// cmd/rvfuzz replay function builds, runs and compares the chunk; it
// does not delta-debug a failing one.
type ChunkFunc func(chunk *codeblock.Block) ChunkResult

// ReplayResult is one test file's outcome after replay.
type ReplayResult struct {
	TestName   string
	Outcome    runner.Outcome
	ResultCode *codeblock.Block
}

// Replay globs dir for files matching pattern, loads each as a
// CodeBlock, and feeds it to process — split into
// maxFragmentsPerRun-sized sub-runs (maxFragmentsPerRun<=0 means run the
// whole test at once) with the reference state from one sub-run seeding
// the next's Init, grounded on TestsetCodeErrMinRunner.task's subrun
// splitting.
func Replay(dir, pattern string, maxFragmentsPerRun int, process ChunkFunc) ([]ReplayResult, error) {
	paths, err := globRecursive(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob testset: %w", err)
	}

	results := make([]ReplayResult, 0, len(paths))
	for _, p := range paths {
		full, err := codeblock.Load(p)
		if err != nil {
			continue
		}

		var lastState *state.MachineState
		var outcome runner.Outcome
		var resultCode *codeblock.Block

		if maxFragmentsPerRun > 0 {
			n := full.MainLen()
			subruns := (n + maxFragmentsPerRun - 1) / maxFragmentsPerRun
			if subruns == 0 {
				subruns = 1
			}
			for s := 0; s < subruns; s++ {
				begin := s * maxFragmentsPerRun
				end := begin + maxFragmentsPerRun
				if end > n {
					end = n
				}
				chunk := full.Part(begin, end)
				if lastState != nil {
					chunk.Init = lastState.AsAssembly("restore")
				}
				res := process(chunk)
				lastState = res.RefState
				outcome = res.Outcome
				resultCode = res.ResultCode
			}
		} else {
			res := process(full)
			outcome = res.Outcome
			resultCode = res.ResultCode
		}

		results = append(results, ReplayResult{TestName: p, Outcome: outcome, ResultCode: resultCode})
	}
	return results, nil
}

// minMaxAvg tracks running min/max/sum for one CodeStats field,
// matching get_testset_stats' inline update_stats closure.
type minMaxAvg struct {
	Min, Max float64
	sum      float64
}

func newMinMaxAvg() minMaxAvg {
	return minMaxAvg{Min: math.MaxFloat64, Max: 0}
}

func (m *minMaxAvg) update(v int) {
	fv := float64(v)
	if fv < m.Min {
		m.Min = fv
	}
	if fv > m.Max {
		m.Max = fv
	}
	m.sum += fv
}

func (m *minMaxAvg) avg(n int) float64 {
	if n == 0 {
		return 0
	}
	return m.sum / float64(n)
}

// CorpusStats summarizes a saved test corpus's fragment/line/instruction
// counts, grounded on TestsetCodeErrMinRunner.get_testset_stats.
type CorpusStats struct {
	TestCases int
	Total     codeblock.Stats

	Fragments, Lines, Ins, Vins minMaxAvg
}

// ComputeCorpusStats globs dir for files matching pattern and aggregates
// their CodeBlock stats.
func ComputeCorpusStats(dir, pattern string) (CorpusStats, error) {
	paths, err := globRecursive(dir, pattern)
	if err != nil {
		return CorpusStats{}, fmt.Errorf("glob testset: %w", err)
	}

	cs := CorpusStats{
		Fragments: newMinMaxAvg(), Lines: newMinMaxAvg(),
		Ins: newMinMaxAvg(), Vins: newMinMaxAvg(),
	}
	for _, p := range paths {
		b, err := codeblock.Load(p)
		if err != nil {
			continue
		}
		cs.TestCases++
		s := b.Stats()
		cs.Total.Fragments += s.Fragments
		cs.Total.Lines += s.Lines
		cs.Total.Ins += s.Ins
		cs.Total.Vins += s.Vins
		cs.Fragments.update(s.Fragments)
		cs.Lines.update(s.Lines)
		cs.Ins.update(s.Ins)
		cs.Vins.update(s.Vins)
	}
	return cs, nil
}

// FragmentsAvg, LinesAvg, InsAvg, VinsAvg return the corpus averages.
func (cs CorpusStats) FragmentsAvg() float64 { return cs.Fragments.avg(cs.TestCases) }
func (cs CorpusStats) LinesAvg() float64     { return cs.Lines.avg(cs.TestCases) }
func (cs CorpusStats) InsAvg() float64       { return cs.Ins.avg(cs.TestCases) }
func (cs CorpusStats) VinsAvg() float64      { return cs.Vins.avg(cs.TestCases) }
