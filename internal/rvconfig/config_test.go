package rvconfig

import "testing"

func TestBreakpointAddr(t *testing.T) {
	c := Default()
	if got, want := c.BreakpointAddr(), c.XMemstart+4; got != want {
		t.Fatalf("BreakpointAddr() = %#x, want %#x", got, want)
	}
}

func TestHasExt(t *testing.T) {
	c := Default()
	c.RVExtensions = "mafdcv"
	for _, letter := range []byte{'m', 'a', 'f', 'd', 'c', 'v'} {
		if !c.HasExt(letter) {
			t.Errorf("HasExt(%q) = false, want true", letter)
		}
	}
	if c.HasExt('q') {
		t.Errorf("HasExt('q') = true, want false (Q is rejected)")
	}
}

func TestFromEnvOverride(t *testing.T) {
	t.Setenv("RVFUZZ_GCC_BIN", "/opt/riscv/bin/riscv64-unknown-elf-gcc")
	c := FromEnv(Default())
	if c.GCCBin != "/opt/riscv/bin/riscv64-unknown-elf-gcc" {
		t.Fatalf("GCCBin override not applied: %s", c.GCCBin)
	}
}
