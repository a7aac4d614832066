package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the subset of spec §6's configuration keys a single stage
// needs to allocate its working directory and decide whether to log.
type Config struct {
	Dir         string
	Log         bool
	NotIndexed  bool // resumable stages (CovGuidedFuzzer) use a fixed, not indexed, directory
}

// Stage is the lifecycle every pipeline component implements. Base.Exec
// sequences all three methods; cmd/rvfuzz also calls Task directly on
// the adapter stages, which skips TaskPre and TaskPost.
type Stage interface {
	TaskPre() error
	Task() Result
	TaskPost(Result) Result
}

// DefaultStage supplies no-op TaskPre/TaskPost so a concrete stage need
// only implement Task, embedding DefaultStage the way the source's base
// Runner class supplies pass-through defaults for subclasses that only
// override task().
type DefaultStage struct{}

func (DefaultStage) TaskPre() error           { return nil }
func (DefaultStage) TaskPost(r Result) Result { return r }

// Base holds the bookkeeping shared by every stage: its allocated work
// directory, whether logging is enabled, and the last result.
type Base struct {
	dir    string
	log    bool
	result Result
}

// NewBase allocates the stage's working directory. Indexed directories
// follow "<dir>/<typeName>_<i>" (first free index); non-indexed stages
// use a fixed "<dir>/<typeName>" so a resumable outer loop can find its
// state again across process restarts.
func NewBase(cfg Config, typeName string) (*Base, error) {
	var dir string
	if cfg.NotIndexed {
		dir = filepath.Join(cfg.Dir, typeName)
	} else {
		for i := 0; ; i++ {
			candidate := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%d", typeName, i))
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				dir = candidate
				break
			}
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("allocate runner dir %s: %w", dir, err)
	}
	b := &Base{dir: dir, log: cfg.Log, result: Result{Outcome: Invalid}}
	b.logConfig(cfg)
	return b, nil
}

func (b *Base) Dir() string    { return b.dir }
func (b *Base) Result() Result { return b.result }

// Exec sequences task_pre -> task -> task_post, recording the final
// result and, if logging is enabled, the per-phase artifact logs named
// in spec §6 (init_config.log, task_pre_result.log, task_result.log).
func (b *Base) Exec(s Stage) Result {
	if err := s.TaskPre(); err != nil {
		b.result = Result{Outcome: Error, Payload: err}
		b.logResult("task_pre_result.log", b.result)
		return b.result
	}
	taskResult := s.Task()
	postResult := s.TaskPost(taskResult)
	b.result = postResult
	b.logResult("task_pre_result.log", taskResult)
	b.logResult("task_result.log", postResult)
	return postResult
}

func (b *Base) logWrite(name, content string) {
	if !b.log {
		return
	}
	_ = os.WriteFile(filepath.Join(b.dir, name), []byte(content), 0o644)
}

func (b *Base) logConfig(cfg Config) {
	b.logWrite("init_config.log", fmt.Sprintf("%+v\n", cfg))
}

// LogKwargs records the arguments a Run call was invoked with, mirroring
// the source's run_args.log.
func (b *Base) LogKwargs(v any) {
	b.logWrite("run_args.log", fmt.Sprintf("%+v\n", v))
}

func (b *Base) logResult(name string, r Result) {
	b.logWrite(name, fmt.Sprintf("OUTCOME: %s\nRESULT:\n%+v\n", r.Outcome, r.Payload))
}
