package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xyproto/rvfuzz/internal/codeblock"
	"github.com/xyproto/rvfuzz/internal/rvconfig"
)

func TestMarchMabiStrings(t *testing.T) {
	cfg := rvconfig.Default()
	b := NewBuildRunner(cfg)
	if got := b.MarchString(); got != "rv64imafdcv" {
		t.Fatalf("MarchString() = %q", got)
	}
	if got := b.MabiString(); got != "lp64d" {
		t.Fatalf("MabiString() = %q", got)
	}
}

func TestMabiStringNoFloat(t *testing.T) {
	cfg := rvconfig.Default()
	cfg.RVExtensions = "mac"
	b := NewBuildRunner(cfg)
	if got := b.MabiString(); got != "lp64" {
		t.Fatalf("MabiString() = %q, want lp64", got)
	}
}

func TestLinkerScriptContainsWindows(t *testing.T) {
	cfg := rvconfig.Default()
	b := NewBuildRunner(cfg)
	script := b.LinkerScript()
	for _, want := range []string{"XMEM", "DMEM", "ENTRY(_start)"} {
		if !strings.Contains(script, want) {
			t.Fatalf("linker script missing %q:\n%s", want, script)
		}
	}
}

func TestRenderOrdering(t *testing.T) {
	cfg := rvconfig.Default()
	b := NewBuildRunner(cfg)
	block := codeblock.New(nil, codeblock.NewFragmentList(codeblock.NewFragment("addi a0, zero, 1")), nil)
	rendered := b.Render(block)

	startIdx := strings.Index(rendered, "_start:")
	mainIdx := strings.Index(rendered, "addi a0, zero, 1")
	tailIdx := strings.Index(rendered, "_stop:")
	if startIdx < 0 || mainIdx < 0 || tailIdx < 0 || !(startIdx < mainIdx && mainIdx < tailIdx) {
		t.Fatalf("expected header < main < tail ordering, got %d %d %d", startIdx, mainIdx, tailIdx)
	}
}

func TestBuildInvokesConfiguredCompiler(t *testing.T) {
	dir := t.TempDir()
	cfg := rvconfig.Default()
	cfg.GCCBin = filepath.Join(dir, "fake-gcc.sh")
	// A minimal fake compiler: find the argument after -o and touch it.
	fake := `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then
    out="$arg"
  fi
  prev="$arg"
done
touch "$out"
exit 0
`
	if err := os.WriteFile(cfg.GCCBin, []byte(fake), 0o755); err != nil {
		t.Fatal(err)
	}

	b := NewBuildRunner(cfg)
	block := codeblock.New(nil, codeblock.NewFragmentList(codeblock.NewFragment("nop")), nil)
	result, err := b.Build(dir, block)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, statErr := os.Stat(result.BinaryPath); statErr != nil {
		t.Fatalf("expected binary at %s: %v", result.BinaryPath, statErr)
	}
}

func TestBuildReportsCompilerFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := rvconfig.Default()
	cfg.GCCBin = filepath.Join(dir, "failing-gcc.sh")
	if err := os.WriteFile(cfg.GCCBin, []byte("#!/bin/sh\necho boom 1>&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	b := NewBuildRunner(cfg)
	block := codeblock.New(nil, codeblock.NewFragmentList(codeblock.NewFragment("nop")), nil)
	if _, err := b.Build(dir, block); err == nil {
		t.Fatal("expected build error from failing compiler")
	}
}
