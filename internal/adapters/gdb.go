package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/xyproto/rvfuzz/internal/runner"
	"github.com/xyproto/rvfuzz/internal/rvconfig"
	"github.com/xyproto/rvfuzz/internal/state"
)

// GDBResult is the DUT adapter's outcome payload.
type GDBResult struct {
	State *state.MachineState
	Mem   []byte
}

// GDBStage drives a GDB script against a DUT stub already listening on
// localhost:debug_port (a QEMUStage or VPStage started just before),
// grounded on DuTGDBRunner.py: connect, set $pc=xmemstart, breakpoint at
// BP, continue twice (ensures the dump routine has fully run), dump
// [memstart, memstart+memlen) to a file, parse `info registers general`.
type GDBStage struct {
	runner.DefaultStage
	cfg  rvconfig.Config
	base *runner.Base
	proc *runner.Process
}

// NewGDBStage builds a stage that attaches to the DUT stub already
// listening on cfg.DebugPort.
func NewGDBStage(cfg rvconfig.Config) (*GDBStage, error) {
	base, err := runner.NewBase(runner.Config{Dir: cfg.Dir, Log: cfg.Log}, "DuTGDBRunner")
	if err != nil {
		return nil, err
	}
	return &GDBStage{cfg: cfg, base: base, proc: runner.NewProcess(base, []string{cfg.GDBBin, "-batch", "-nx"})}, nil
}

// Dir exposes the stage's allocated working directory.
func (g *GDBStage) Dir() string { return g.base.Dir() }

func (g *GDBStage) script(memDump string) string {
	return fmt.Sprintf(`target remote localhost:%d
set $pc = 0x%x
break *0x%x
continue
continue
dump binary memory %s 0x%x 0x%x
info registers general
quit
`, g.cfg.DebugPort, g.cfg.XMemstart, g.cfg.BreakpointAddr(), memDump, g.cfg.Memstart, g.cfg.Memstart+g.cfg.Memlen)
}

// Task runs the GDB script and parses both the memory dump file and
// the printed register table.
func (g *GDBStage) Task() runner.Result {
	memDump := filepath.Join(g.base.Dir(), "mem.bin")
	scriptPath, err := runner.WriteFile(g.base.Dir(), "gdbscript", g.script(memDump))
	if err != nil {
		return runner.Result{Outcome: runner.Error, Payload: err}
	}

	res := g.proc.Run([]string{"-x", scriptPath}, "", 30*time.Second)
	if res.Outcome != runner.Complete {
		return res
	}
	out, ok := res.Payload.(runner.ProcessOutput)
	if !ok {
		return runner.Result{Outcome: runner.Error, Payload: fmt.Errorf("unexpected gdb payload type")}
	}

	regs, err := parseGDBRegisters(out.Stdout)
	if err != nil {
		return runner.Result{Outcome: runner.Error, Payload: err}
	}
	mem, _ := os.ReadFile(memDump)

	ms := state.New(0, 0)
	for name, v := range regs {
		if idx, ok := state.GPRIndex(name); ok {
			ms.GPR[idx] = v
		}
	}
	if mem != nil {
		ms.XMemHash = state.HashBytes(mem)
	}
	return runner.Result{Outcome: runner.Complete, Payload: GDBResult{State: ms, Mem: mem}}
}

// gdbRegLine matches GDB's `info registers` output: "ra  0x80000004  0x80000004".
var gdbRegLine = regexp.MustCompile(`(?m)^(\w+)\s+0x([0-9a-fA-F]+)\s`)

func parseGDBRegisters(stdout string) (map[string]uint64, error) {
	matches := gdbRegLine.FindAllStringSubmatch(stdout, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("gdb: no register lines found in output")
	}
	regs := make(map[string]uint64)
	for _, m := range matches {
		if _, ok := state.GPRIndex(m[1]); !ok {
			continue
		}
		if v, err := strconv.ParseUint(m[2], 16, 64); err == nil {
			regs[m[1]] = v
		}
	}
	return regs, nil
}
