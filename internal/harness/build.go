// Package harness assembles a generated instruction fragment stream into
// a linked RISC-V ELF binary ready to run under Spike/QEMU/riscvOVPsim,
// grounded on cffi.go's `exec.Command("gcc", args...)` invocation
// pattern, repurposed from preprocessing C headers to cross-assembling
// and linking a bare-metal test binary.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/xyproto/rvfuzz/internal/codeblock"
	"github.com/xyproto/rvfuzz/internal/rvconfig"
)

// BuildRunner cross-assembles and links one generated code.Block into a
// bare-metal ELF binary, using the configured GCC toolchain.
type BuildRunner struct {
	cfg rvconfig.Config
}

// NewBuildRunner builds a BuildRunner bound to cfg's toolchain/memory
// configuration.
func NewBuildRunner(cfg rvconfig.Config) *BuildRunner {
	return &BuildRunner{cfg: cfg}
}

// MarchString builds the -march= value from the configured xlen/
// extension letters, e.g. "rv64imafdcv".
func (b *BuildRunner) MarchString() string {
	base := "rv32i"
	if b.cfg.Xlen == 64 {
		base = "rv64i"
	}
	return base + b.cfg.RVExtensions
}

// MabiString derives -mabi= from xlen and the presence of D/F, matching
// the ABI the restore-state assembly's fld/flw choice assumes.
func (b *BuildRunner) MabiString() string {
	suffix := ""
	if strings.Contains(b.cfg.RVExtensions, "d") {
		suffix = "d"
	} else if strings.Contains(b.cfg.RVExtensions, "f") {
		suffix = "f"
	}
	if b.cfg.Xlen == 64 {
		return "lp64" + suffix
	}
	return "ilp32" + suffix
}

// LinkerScript renders the bare-metal linker script placing the text
// segment at xmemstart and a data segment at dmemstart, matching the
// configured memory windows code generation's BoundedLoadStore regions
// must stay inside.
func (b *BuildRunner) LinkerScript() string {
	return fmt.Sprintf(`ENTRY(_start)
MEMORY
{
  XMEM (rwx) : ORIGIN = 0x%x, LENGTH = 0x%x
  DMEM (rw)  : ORIGIN = 0x%x, LENGTH = 0x%x
}
SECTIONS
{
  .text : { *(.text*) } > XMEM
  .data : { *(.data*) *(.bss*) } > DMEM
}
`, b.cfg.XMemstart, b.cfg.XMemlen, b.cfg.DMemstart, b.cfg.DMemlen)
}

// asmHeader is the fixed prologue every build prepends: section
// directives, the entry symbol, and the stack-pointer/global-pointer
// setup the restore-state assembly and generated fragments run under.
func (b *BuildRunner) asmHeader() string {
	return fmt.Sprintf(`.section .text
.global _start
_start:
  li sp, 0x%x
  li gp, 0x%x
`, b.cfg.XMemstart+b.cfg.XMemlen, b.cfg.DMemstart)
}

// asmTail is the fixed epilogue: an infinite loop at the breakpoint
// address the debugger-driven runners (GDB/QEMU/VP) halt on to read
// back the dump region.
func (b *BuildRunner) asmTail() string {
	return fmt.Sprintf(`_stop:
  j _stop
.org 0x%x
_breakpoint:
  ebreak
`, b.cfg.BreakpointAddr()-b.cfg.XMemstart)
}

// Render concatenates header, the block's assembly, and tail into one
// assembly source file's text.
func (b *BuildRunner) Render(block *codeblock.Block) string {
	var buf strings.Builder
	buf.WriteString(b.asmHeader())
	buf.WriteString(block.AsCode())
	buf.WriteString("\n")
	buf.WriteString(b.asmTail())
	return buf.String()
}

// BuildResult is the outcome of one assemble-and-link invocation.
type BuildResult struct {
	BinaryPath string
	Stdout     string
	Stderr     string
}

// Build writes the rendered assembly and linker script to dir, invokes
// the configured GCC toolchain, and returns the linked binary's path.
// A nonzero/failed gcc invocation is reported as an error rather than
// panicking — build failures are an expected, common outcome the
// archiver records like any other runner outcome.
func (b *BuildRunner) Build(dir string, block *codeblock.Block) (BuildResult, error) {
	asmPath := filepath.Join(dir, "test.S")
	ldPath := filepath.Join(dir, "link.ld")
	binPath := filepath.Join(dir, "test.elf")

	if err := os.WriteFile(asmPath, []byte(b.Render(block)), 0o644); err != nil {
		return BuildResult{}, fmt.Errorf("write assembly: %w", err)
	}
	if err := os.WriteFile(ldPath, []byte(b.LinkerScript()), 0o644); err != nil {
		return BuildResult{}, fmt.Errorf("write linker script: %w", err)
	}

	args := []string{
		"-march=" + b.MarchString(),
		"-mabi=" + b.MabiString(),
		"-nostdlib", "-nostartfiles", "-static",
		"-T", ldPath,
		"-o", binPath,
		asmPath,
	}
	cmd := exec.Command(b.cfg.GCCBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := BuildResult{BinaryPath: binPath, Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return result, fmt.Errorf("gcc build failed: %w: %s", err, stderr.String())
	}
	if !b.cfg.BuildIgnoreError {
		if _, statErr := os.Stat(binPath); statErr != nil {
			return result, fmt.Errorf("gcc reported success but binary missing: %w", statErr)
		}
	}
	return result, nil
}
