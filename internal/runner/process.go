package runner

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// ProcessOutput is the payload of a COMPLETE or ERROR process result,
// mirroring subprocess.CompletedProcess.
type ProcessOutput struct {
	Command    []string
	ReturnCode int
	Stdout     string
	Stderr     string
}

// Process runs an external command with a per-call timeout, in the
// working directory of the Base it is attached to. On timeout it
// delivers SIGKILL to the whole process group (not just the direct
// child) so GDB/QEMU helper processes cannot survive a timed-out run;
// Stop() delivers SIGTERM the same way for a live cancellation request.
type Process struct {
	base    *Base
	Program []string

	mu      sync.Mutex
	cmd     *exec.Cmd
	running bool
}

// NewProcess attaches a process stage to base, with the fixed leading
// argv (e.g. the spike/gdb/gcc binary path) supplied once at setup time.
func NewProcess(base *Base, program []string) *Process {
	return &Process{base: base, Program: program}
}

// Run executes program+parameters with stdin set to input, under
// timeout. Nonzero exit is ERROR (preserving the source's "only
// negative?" TODO: any nonzero return code, not just negative, is
// treated as ERROR); timeout is TIMEOUT; zero exit is COMPLETE.
func (p *Process) Run(parameters []string, input string, timeout time.Duration) Result {
	command := append(append([]string{}, p.Program...), parameters...)
	p.base.logWrite("command.log", strings.Join(command, " ")+"\n")
	p.base.logWrite("input.log", input)

	if len(command) == 0 {
		return Result{Outcome: Error, Payload: fmt.Errorf("process: empty command")}
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = p.base.Dir()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{Outcome: Error, Payload: err}
	}

	p.mu.Lock()
	p.cmd = cmd
	p.running = true
	p.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	timedOut := false
	select {
	case waitErr = <-done:
	case <-time.After(timeout):
		timedOut = true
		if pgid, err := unix.Getpgid(cmd.Process.Pid); err == nil {
			_ = unix.Kill(-pgid, unix.SIGKILL)
		}
		waitErr = <-done
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.base.logWrite("stdout.log", stdout.String())
	p.base.logWrite("stderr.log", stderr.String())

	if timedOut {
		return Result{Outcome: Timeout, Payload: nil}
	}

	returnCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			returnCode = exitErr.ExitCode()
		} else {
			return Result{Outcome: Error, Payload: waitErr}
		}
	}

	out := ProcessOutput{
		Command:    command,
		ReturnCode: returnCode,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}
	if returnCode != 0 {
		return Result{Outcome: Error, Payload: out}
	}
	return Result{Outcome: Complete, Payload: out}
}

// Stop requests cancellation of a running process by sending SIGTERM to
// its whole process group. Best-effort: ignored if already dead.
func (p *Process) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.cmd == nil || p.cmd.Process == nil {
		return
	}
	if pgid, err := unix.Getpgid(p.cmd.Process.Pid); err == nil {
		_ = unix.Kill(-pgid, unix.SIGTERM)
	}
}

// WriteFile is a small helper matching the source's RunnerFile: create
// (or truncate) a named file under a stage's directory with fixed
// content, used for the spike and gdb command scripts.
func WriteFile(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name)
	return path, writeFile(path, content)
}
