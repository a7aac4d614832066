// Package rvconfig holds the configuration surface spec §6 requires every
// component to consume, generalizing the teacher's dependencies.go
// FLAPC_<NAME> environment-override convention from a single function-name
// map to the whole config.
package rvconfig

import (
	"fmt"
	"os"
	"path/filepath"

	env "github.com/xyproto/env/v2"
)

// Config is the full set of keys named in spec §6.
type Config struct {
	Dir string
	Log bool

	Xlen          int    // 32 or 64
	RVExtensions  string // e.g. "mafdcv"

	Memstart, Memlen       uint64
	XMemstart, XMemlen     uint64
	DMemstart, DMemlen     uint64
	DumpfileReserve        uint64

	VectorVlen, VectorElen int

	GCCBin          string
	SpikeBin        string
	QEMUPath        string
	VPPath          string
	RiscvOVPSimBin  string
	GDBBin          string
	DebugPort       int

	Binary     string
	Breakpoint uint64

	StopOnException  bool
	SkipOnException  bool
	BuildIgnoreError bool

	TestsetDir                  string
	TestsetPattern              string
	TestsetMaxFragmentsPerRun   int

	ArchiveOnTimeout  bool
	ArchiveOnIgnore   bool
	ArchiveOnError    bool
	ArchiveOnComplete bool

	RISCVOVPSIMCoverExtensions string
	RISCVOVPSIMCoverMetric     string // basic, extended, mnemonic
	RISCVOVPSIMCoverSumEnable  bool

	CovGuidedFuzzerGenAllowExceptions bool
}

// Default returns the reference configuration: rv64 with the "mafdcv"
// extensions, a 512KiB text window with a 4KiB dumpfile reserve, a 512KiB
// data window directly above it, vlen=512/elen=64.
func Default() Config {
	return Config{
		Dir:  ".",
		Log:  true,
		Xlen: 64,

		RVExtensions: "mafdcv",

		Memstart: 0x80000000, Memlen: 0x00100000,
		XMemstart: 0x80000000, XMemlen: 0x00080000,
		DMemstart: 0x80080000, DMemlen: 0x00080000,
		DumpfileReserve: 0x1000,

		VectorVlen: 512, VectorElen: 64,

		GCCBin:         "riscv64-unknown-elf-gcc",
		SpikeBin:       "spike",
		QEMUPath:       "qemu-system-riscv64",
		VPPath:         "tiny64-vp",
		RiscvOVPSimBin: "riscvOVPsimPSE.exe",
		GDBBin:         "riscv64-unknown-elf-gdb",
		DebugPort:      1234,

		Breakpoint: 0, // computed from XMemstart+4 once XMemstart is known; see BreakpointAddr()

		TestsetMaxFragmentsPerRun: 100,

		ArchiveOnTimeout: true, ArchiveOnIgnore: false,
		ArchiveOnError: true, ArchiveOnComplete: false,

		RISCVOVPSIMCoverExtensions: "RV64GCV",
		RISCVOVPSIMCoverMetric:     "basic",
		RISCVOVPSIMCoverSumEnable:  true,
	}
}

// BreakpointAddr is the glossary's "BP": xmemstart+4, the fixed PC every
// simulator runs to.
func (c Config) BreakpointAddr() uint64 {
	return c.XMemstart + 4
}

// HasExt reports whether the single-letter RISC-V extension is enabled.
func (c Config) HasExt(letter byte) bool {
	for i := 0; i < len(c.RVExtensions); i++ {
		if c.RVExtensions[i] == letter {
			return true
		}
	}
	return false
}

// FromEnv overrides fields of a base config (typically Default()) with
// RVFUZZ_<NAME> environment variables where set, mirroring the teacher's
// FLAPC_<FUNCNAME> per-entry override pattern. Only the tool paths, the
// debug port, xlen, the extension string and the log flag are read from
// the environment; every other field keeps its base value.
func FromEnv(base Config) Config {
	c := base
	c.GCCBin = env.StrOr("RVFUZZ_GCC_BIN", c.GCCBin)
	c.SpikeBin = env.StrOr("RVFUZZ_SPIKE_BIN", c.SpikeBin)
	c.QEMUPath = env.StrOr("RVFUZZ_QEMU_PATH", c.QEMUPath)
	c.VPPath = env.StrOr("RVFUZZ_VP_PATH", c.VPPath)
	c.RiscvOVPSimBin = env.StrOr("RVFUZZ_RISCVOVPSIM_BIN", c.RiscvOVPSimBin)
	c.GDBBin = env.StrOr("RVFUZZ_GDB_BIN", c.GDBBin)
	c.DebugPort = env.IntOr("RVFUZZ_DEBUG_PORT", c.DebugPort)
	c.Xlen = env.IntOr("RVFUZZ_XLEN", c.Xlen)
	c.RVExtensions = env.StrOr("RVFUZZ_RV_EXTENSIONS", c.RVExtensions)
	if env.Has("RVFUZZ_LOG") {
		c.Log = env.Bool("RVFUZZ_LOG")
	}
	return c
}

// CachePath is the persistent-seed/coverage-sum cache directory,
// respecting XDG_CACHE_HOME the way the teacher's GetCachePath does.
func CachePath() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "rvfuzz"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine cache path: %w", err)
	}
	return filepath.Join(home, ".cache", "rvfuzz"), nil
}
