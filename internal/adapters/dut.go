package adapters

import (
	"fmt"
	"time"

	"github.com/xyproto/rvfuzz/internal/runner"
	"github.com/xyproto/rvfuzz/internal/rvconfig"
)

// dutSafetyNetTimeout bounds how long a DUT may run if the paired
// GDBStage never calls Stop (e.g. it crashed before attaching) — normal
// completion is via an explicit Stop() call, not this timeout.
const dutSafetyNetTimeout = 2 * time.Minute

// DUTStage launches a suspended device-under-test (QEMU or tiny-vp)
// that a GDBStage then attaches to and drives. It runs on a
// ThreadingRunner because the DUT process must keep running in the
// background while GDB performs its own separate Process.Run call.
type DUTStage struct {
	runner.DefaultStage
	cfg    rvconfig.Config
	binary string
	kind   string // "qemu" or "vp"
	base   *runner.Base
	proc   *runner.Process
}

// NewQEMUStage launches QEMU in system-emulation mode with
// `-M spike -cpu rv{xlen}[,v=,vlen=,elen=] -gdb tcp::P -S`, suspended
// until GDB connects and issues `continue`.
func NewQEMUStage(cfg rvconfig.Config, binary string) (*DUTStage, error) {
	base, err := runner.NewBase(runner.Config{Dir: cfg.Dir, Log: cfg.Log}, "QEMURunner")
	if err != nil {
		return nil, err
	}
	return &DUTStage{cfg: cfg, binary: binary, kind: "qemu", base: base, proc: runner.NewProcess(base, []string{cfg.QEMUPath})}, nil
}

// NewVPStage launches tiny-vp with `--memory-start/size --debug-port
// --debug-mode`, suspended the same way.
func NewVPStage(cfg rvconfig.Config, binary string) (*DUTStage, error) {
	base, err := runner.NewBase(runner.Config{Dir: cfg.Dir, Log: cfg.Log}, "VPRunner")
	if err != nil {
		return nil, err
	}
	return &DUTStage{cfg: cfg, binary: binary, kind: "vp", base: base, proc: runner.NewProcess(base, []string{cfg.VPPath})}, nil
}

// Dir exposes the stage's allocated working directory.
func (d *DUTStage) Dir() string { return d.base.Dir() }

func (d *DUTStage) args() []string {
	if d.kind == "qemu" {
		cpu := fmt.Sprintf("rv%d", d.cfg.Xlen)
		if d.cfg.HasExt('v') {
			cpu += fmt.Sprintf(",v=true,vlen=%d,elen=%d", d.cfg.VectorVlen, d.cfg.VectorElen)
		}
		return []string{
			"-M", "spike", "-cpu", cpu, "-nographic",
			"-gdb", fmt.Sprintf("tcp::%d", d.cfg.DebugPort), "-S",
			"-bios", "none", "-kernel", d.binary,
		}
	}
	return []string{
		fmt.Sprintf("--memory-start=0x%x", d.cfg.Memstart),
		fmt.Sprintf("--memory-size=0x%x", d.cfg.Memlen),
		fmt.Sprintf("--debug-port=%d", d.cfg.DebugPort),
		"--debug-mode",
		d.binary,
	}
}

// Task starts the DUT process. Because GDB must attach to this process
// while it is still alive, callers run this stage via a
// runner.ThreadingRunner and call Stop() once the GDBStage (run
// separately) reports completion.
func (d *DUTStage) Task() runner.Result {
	return d.proc.Run(d.args(), "", dutSafetyNetTimeout)
}

// Stop terminates the DUT process group, used once GDB reports the dump
// is complete (spec.md: "On GDB completion, DUT is stopped").
func (d *DUTStage) Stop() {
	d.proc.Stop()
}
