package runner

import (
	"testing"
	"time"
)

func TestProcessCompleteAndError(t *testing.T) {
	dir := t.TempDir()
	base, err := NewBase(Config{Dir: dir, Log: true}, "Process")
	if err != nil {
		t.Fatal(err)
	}
	p := NewProcess(base, []string{"sh", "-c"})

	r := p.Run([]string{"exit 0"}, "", time.Second)
	if r.Outcome != Complete {
		t.Fatalf("expected COMPLETE, got %s (%v)", r.Outcome, r.Payload)
	}

	r = p.Run([]string{"exit 3"}, "", time.Second)
	if r.Outcome != Error {
		t.Fatalf("expected ERROR on nonzero exit, got %s", r.Outcome)
	}
	out, ok := r.Payload.(ProcessOutput)
	if !ok || out.ReturnCode != 3 {
		t.Fatalf("expected return code 3, got %+v", r.Payload)
	}
}

func TestProcessTimeout(t *testing.T) {
	dir := t.TempDir()
	base, err := NewBase(Config{Dir: dir}, "Process")
	if err != nil {
		t.Fatal(err)
	}
	p := NewProcess(base, []string{"sh", "-c"})

	r := p.Run([]string{"sleep 5"}, "", 50*time.Millisecond)
	if r.Outcome != Timeout {
		t.Fatalf("expected TIMEOUT, got %s", r.Outcome)
	}
}

func TestThreadingRunnerBusy(t *testing.T) {
	dir := t.TempDir()
	base, err := NewBase(Config{Dir: dir}, "Slow")
	if err != nil {
		t.Fatal(err)
	}
	started := make(chan struct{})
	release := make(chan struct{})
	tr := NewThreadingRunner(base, blockingStage{started: started, release: release})

	tr.Run(false)
	<-started
	if r := tr.Run(false); r.Outcome != Busy {
		t.Fatalf("expected BUSY while running, got %s", r.Outcome)
	}
	close(release)
	tr.Wait()
	if tr.Result().Outcome != Complete {
		t.Fatalf("expected COMPLETE after wait, got %s", tr.Result().Outcome)
	}
}

type blockingStage struct {
	DefaultStage
	started chan struct{}
	release chan struct{}
}

func (b blockingStage) Task() Result {
	close2(b.started)
	<-b.release
	return Result{Outcome: Complete}
}

// close2 closes a channel exactly once even if Task somehow ran twice in
// a test; defends only the test harness, not production code.
func close2(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}
