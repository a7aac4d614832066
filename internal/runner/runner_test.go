package runner

import (
	"path/filepath"
	"testing"
)

type stubStage struct {
	DefaultStage
	outcome Outcome
}

func (s stubStage) Task() Result {
	return Result{Outcome: s.outcome, Payload: "ok"}
}

func TestNewBaseIndexedDirs(t *testing.T) {
	t.Helper()
	dir := t.TempDir()

	b0, err := NewBase(Config{Dir: dir, Log: true}, "Spike")
	if err != nil {
		t.Fatal(err)
	}
	b1, err := NewBase(Config{Dir: dir, Log: true}, "Spike")
	if err != nil {
		t.Fatal(err)
	}
	if b0.Dir() == b1.Dir() {
		t.Fatalf("expected distinct indexed dirs, got %s twice", b0.Dir())
	}
	if filepath.Base(b0.Dir()) != "Spike_0" || filepath.Base(b1.Dir()) != "Spike_1" {
		t.Fatalf("unexpected dir names: %s, %s", b0.Dir(), b1.Dir())
	}
}

func TestNewBaseNotIndexedIsStable(t *testing.T) {
	dir := t.TempDir()
	b0, err := NewBase(Config{Dir: dir, NotIndexed: true}, "CovGuidedFuzzerGenRunner")
	if err != nil {
		t.Fatal(err)
	}
	b1, err := NewBase(Config{Dir: dir, NotIndexed: true}, "CovGuidedFuzzerGenRunner")
	if err != nil {
		t.Fatal(err)
	}
	if b0.Dir() != b1.Dir() {
		t.Fatalf("expected stable dir for resumable stage, got %s and %s", b0.Dir(), b1.Dir())
	}
}

func TestExecRecordsResult(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBase(Config{Dir: dir, Log: true}, "Stub")
	if err != nil {
		t.Fatal(err)
	}
	r := b.Exec(stubStage{outcome: Complete})
	if r.Outcome != Complete {
		t.Fatalf("got %s", r.Outcome)
	}
	if b.Result().Outcome != Complete {
		t.Fatalf("Result() not updated: %s", b.Result().Outcome)
	}
}
