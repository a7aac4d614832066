// Package adapters wraps the reference simulator (Spike), the device-
// under-test drivers (GDB attached to QEMU or tiny-vp), and the
// coverage engine (riscvOVPsim) behind runner.Stage, grounded on
// SpikeRunner.py/DuTGDBRunner.py/RefCovRunner.py.
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

// SpikeResult is the reference simulator's outcome payload.
type SpikeResult struct {
	State *state.MachineState
	XMem  []byte
	DMem  []byte
}

// SpikeStage drives Spike through its command-file script, matching
// SpikeRunner.py's `until pc 0 BP; pc 0; reg 0; rs 1; until pc 0 BP;
// dump; quit` sequence.
type SpikeStage struct {
	runner.DefaultStage
	cfg    rvconfig.Config
	binary string
	base   *runner.Base
	proc   *runner.Process
}

// NewSpikeStage builds a stage that runs binary under spike, allocating
// its own indexed working directory under cfg.Dir.
func NewSpikeStage(cfg rvconfig.Config, binary string) (*SpikeStage, error) {
	base, err := runner.NewBase(runner.Config{Dir: cfg.Dir, Log: cfg.Log}, "SpikeRunner")
	if err != nil {
		return nil, err
	}
	return &SpikeStage{cfg: cfg, binary: binary, base: base, proc: runner.NewProcess(base, []string{cfg.SpikeBin})}, nil
}

// Dir exposes the stage's allocated working directory.
func (s *SpikeStage) Dir() string { return s.base.Dir() }

func (s *SpikeStage) commandFile(bp uint64) string {
	return fmt.Sprintf(
		"until pc 0 0x%x\npc 0\nreg 0\nrs 1\nuntil pc 0 0x%x\ndump\nquit\n", bp, bp)
}

// Task runs spike -d --isa=<isa> -m<memstart>:<memlen>
// --debug-cmd=<commandfile> <binary>,
// captures stderr's register dump (the `pc`/`reg`/`dump` output spike
// writes to stderr in debug mode), and parses it into a MachineState.
func (s *SpikeStage) Task() runner.Result {
	cmdFile, err := runner.WriteFile(s.base.Dir(), "cmds", s.commandFile(s.cfg.BreakpointAddr()))
	if err != nil {
		return runner.Result{Outcome: runner.Error, Payload: err}
	}

	isa := fmt.Sprintf("rv%d%s", s.cfg.Xlen, s.cfg.RVExtensions)
	args := []string{"-d", "--isa=" + isa, "-m" + fmt.Sprintf("0x%x:0x%x", s.cfg.Memstart, s.cfg.Memlen), "--debug-cmd=" + cmdFile, s.binary}
	res := s.proc.Run(args, "", 30*time.Second)
	if res.Outcome != runner.Complete {
		return res
	}

	out, ok := res.Payload.(runner.ProcessOutput)
	if !ok {
		return runner.Result{Outcome: runner.Error, Payload: fmt.Errorf("unexpected spike payload type")}
	}
	regs, lastPC, err := parseSpikeRegisterDump(out.Stderr)
	if err != nil {
		return runner.Result{Outcome: runner.Error, Payload: err}
	}

	xmem, _ := os.ReadFile(filepath.Join(s.base.Dir(), "xmem.bin"))
	dmem, _ := os.ReadFile(filepath.Join(s.base.Dir(), "dmem.bin"))

	ms := state.New(0, 0)
	for name, v := range regs {
		if idx, ok := gprIndex(name); ok {
			ms.GPR[idx] = v
		}
	}
	ms.LastPC = lastPC
	if xmem != nil {
		ms.XMemHash = state.HashBytes(xmem)
	}
	if dmem != nil {
		ms.DMemHash = state.HashBytes(dmem)
	}

	return runner.Result{Outcome: runner.Complete, Payload: SpikeResult{State: ms, XMem: xmem, DMem: dmem}}
}

// spikeRegLine matches spike's "-d" register-dump line shape, e.g.
// "core   0: 0x0000000080000004 (0x00000013) x1  0x0000000000000000".
var spikeRegLine = regexp.MustCompile(`(?m)^core\s+\d+:\s+0x([0-9a-fA-F]+).*?\b(x\d+|[a-z]+\d*)\s+0x([0-9a-fA-F]+)`)

// parseSpikeRegisterDump extracts the final PC and a name->value GPR
// map from spike's stderr trace, renaming s0 to fp per the GDB/Spike
// "s0 reported as fp" quirk spec.md names explicitly.
func parseSpikeRegisterDump(stderr string) (map[string]uint64, uint64, error) {
	matches := spikeRegLine.FindAllStringSubmatch(stderr, -1)
	if len(matches) == 0 {
		return nil, 0, fmt.Errorf("spike: no register dump lines found in stderr")
	}
	regs := make(map[string]uint64)
	var lastPC uint64
	for _, m := range matches {
		if pc, err := strconv.ParseUint(m[1], 16, 64); err == nil {
			lastPC = pc
		}
		name := m[2]
		if name == "s0" {
			name = "fp"
		}
		if val, err := strconv.ParseUint(m[3], 16, 64); err == nil {
			regs[name] = val
		}
	}
	return regs, lastPC, nil
}

func gprIndex(name string) (int, bool) {
	return state.GPRIndex(name)
}
