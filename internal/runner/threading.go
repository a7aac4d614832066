package runner

import "sync/atomic"

// ThreadingRunner wraps a Stage's execution on a dedicated goroutine,
// standing in for the source's threading.Thread + two threading.Event
// objects (run_event, ready_event): Go channels replace the events
// directly, and the goroutine is started lazily on first Run call.
type ThreadingRunner struct {
	*Base
	stage   Stage
	runCh   chan struct{}
	readyCh chan struct{}
	busy    atomic.Bool
	started atomic.Bool
}

// NewThreadingRunner wires a Stage to a dedicated goroutine. The
// goroutine is not started until the first Run call (lazy startup,
// matching the source's "if not self.running: start thread").
func NewThreadingRunner(base *Base, stage Stage) *ThreadingRunner {
	return &ThreadingRunner{
		Base:    base,
		stage:   stage,
		runCh:   make(chan struct{}),
		readyCh: make(chan struct{}, 1),
	}
}

func (t *ThreadingRunner) loop() {
	for range t.runCh {
		t.Exec(t.stage)
		t.busy.Store(false)
		t.readyCh <- struct{}{}
	}
}

// IsBusy reports whether an iteration is currently running.
func (t *ThreadingRunner) IsBusy() bool {
	return t.busy.Load()
}

// Wait blocks until the running iteration's result is ready.
func (t *ThreadingRunner) Wait() {
	<-t.readyCh
}

// Run starts (or, if blocking, starts and waits for) one iteration.
// Reentering while busy returns Busy immediately without touching the
// running iteration, matching the source's run_handler early return.
func (t *ThreadingRunner) Run(blocking bool) Result {
	if t.IsBusy() {
		return Result{Outcome: Busy}
	}
	if t.started.CompareAndSwap(false, true) {
		go t.loop()
	}
	t.busy.Store(true)
	t.runCh <- struct{}{}
	if blocking {
		t.Wait()
	}
	return t.Result()
}
