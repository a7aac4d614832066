// Package state implements the canonical, serializable RISC-V
// architectural state model (spec.md §3/§4.A): MachineState, the
// DumpFile binary layout it is extracted from, and the assembly
// generator that restores a MachineState at program entry.
//
// The general-purpose register ABI names mirror the teacher's
// riscv64_instructions.go riscvGPRegs/riscvFPRegs tables — the same
// canonical name set, repurposed here from instruction-encoding lookup to
// generator/parser register-name validation.
package state

import "fmt"

// GPRNames is the canonical x0..x31 ABI name table, index-ordered.
var GPRNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// gprIndex maps an ABI name (and the GDB "fp" quirk alias for s0/x8) to
// its x-register index.
var gprIndex = func() map[string]int {
	m := make(map[string]int, 33)
	for i, name := range GPRNames {
		m[name] = i
	}
	m["fp"] = 8 // GDB/Spike quirk: s0 is reported as fp
	return m
}()

// GPRIndex returns the x-register index for a canonical or fp-aliased
// register name.
func GPRIndex(name string) (int, bool) {
	i, ok := gprIndex[name]
	return i, ok
}

// FRegName returns the canonical name of floating-point register i
// (f0..f31).
func FRegName(i int) string { return fmt.Sprintf("f%d", i) }

// VRegName returns the canonical name of vector register i (v0..v31).
func VRegName(i int) string { return fmt.Sprintf("v%d", i) }
