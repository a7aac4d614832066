package isg

import (
	"fmt"
	"math/rand"

	"github.com/xyproto/rvfuzz/internal/codeblock"
	"github.com/xyproto/rvfuzz/internal/state"
)

// rv64GPRNames mirrors state.GPRNames; duplicated here rather than
// imported because RegAlloc indexes by the x1..x31 allocation order,
// not the ABI-name lookup state.GPRNames serves.
var rv64GPRNames = []string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// scalarReserved keeps x0 (hardwired zero), sp/gp/tp (stack/global/
// thread pointers the harness's linker script and runtime rely on) and
// t6 (scratch register for indexed-vector address masking, see
// VBoundedLoadStore.Indexed) out of the general allocation pool.
const scalarReserved = 1<<0 | 1<<2 | 1<<3 | 1<<4 | 1<<31

// vectorReserved keeps v0 (mask register) and v8/v16 (Open Question (d)
// hardcoded index/segment-count scratch registers) out of the pool.
const vectorReserved = 1<<0 | 1<<8 | 1<<16

func freg32Names() []string {
	names := make([]string, 32)
	for i := range names {
		names[i] = fmt.Sprintf("f%d", i)
	}
	return names
}

func vreg32Names() []string {
	names := make([]string, 32)
	for i := range names {
		names[i] = fmt.Sprintf("v%d", i)
	}
	return names
}

// Extensions gates which instruction categories a program generator may
// draw from, mirroring spec.md's configured RV extension letter set.
type Extensions struct {
	M, A, F, D, C, V bool
}

// RVProgramGenerator produces scalar RV64 instruction fragments: integer/
// M-extension/control-flow/load-store/float/atomic, each bounded to the
// configured memory windows where applicable.
type RVProgramGenerator struct {
	Rand  *rand.Rand
	Regs  *RegAlloc
	FRegs *RegAlloc
	Label *LabelGen
	XMem  BoundedLoadStore
	DMem  BoundedLoadStore
	Ext   Extensions
}

// NewRVProgramGenerator builds a scalar generator. label is shared with
// any sibling RVVProgramGenerator so branch targets can't escape the
// fragment the two generators are co-producing.
func NewRVProgramGenerator(rng *rand.Rand, xmem, dmem BoundedLoadStore, ext Extensions, label *LabelGen) *RVProgramGenerator {
	return &RVProgramGenerator{
		Rand:  rng,
		Regs:  NewRegAlloc(rv64GPRNames, scalarReserved, rng),
		FRegs: NewRegAlloc(freg32Names(), 0, rng),
		Label: label,
		XMem:  xmem,
		DMem:  dmem,
		Ext:   ext,
	}
}

// categoryWeight pairs a fragment-emitting thunk with its selection
// weight, so e.g. integer ops dominate while control-flow and atomics
// stay rare, matching the source's bias toward arithmetic/logic ops.
type categoryWeight struct {
	weight int
	emit   func() string
}

func (g *RVProgramGenerator) categories() []categoryWeight {
	cats := []categoryWeight{
		{10, g.emitRop(ropInteger)},
		{4, g.emitLoadStore(scalarLoads, scalarStores)},
	}
	if g.Ext.M {
		cats = append(cats, categoryWeight{4, g.emitRop(ropMulDiv)})
	}
	if g.Ext.F || g.Ext.D {
		cats = append(cats, categoryWeight{3, g.emitRop(ropFloat)})
		cats = append(cats, categoryWeight{2, g.emitFPLoadStore()})
	}
	if g.Ext.A {
		cats = append(cats, categoryWeight{1, g.emitRop(ropAtomic)})
	}
	cats = append(cats, categoryWeight{2, g.emitControl()})
	return cats
}

// Emit produces one scalar instruction fragment text.
func (g *RVProgramGenerator) Emit() string {
	return pick(g.Rand, g.categories())()
}

func pick(rng *rand.Rand, cats []categoryWeight) func() string {
	total := 0
	for _, c := range cats {
		total += c.weight
	}
	n := rng.Intn(total)
	for _, c := range cats {
		if n < c.weight {
			return c.emit
		}
		n -= c.weight
	}
	return cats[len(cats)-1].emit
}

func (g *RVProgramGenerator) emitRop(table []rop) func() string {
	return func() string {
		op := table[g.Rand.Intn(len(table))]
		switch op.kind {
		case ropRRR:
			rd, idx, _ := g.Regs.Alloc()
			defer g.Regs.Release(idx)
			rs1 := g.Regs.Peek()
			rs2 := g.Regs.Peek()
			return fmt.Sprintf("%s %s, %s, %s", op.mnemonic, rd, rs1, rs2)
		case ropRRI:
			rd, idx, _ := g.Regs.Alloc()
			defer g.Regs.Release(idx)
			rs1 := g.Regs.Peek()
			return fmt.Sprintf("%s %s, %s, %d", op.mnemonic, rd, rs1, imm12(g.Rand))
		case ropRI:
			rd, idx, _ := g.Regs.Alloc()
			defer g.Regs.Release(idx)
			return fmt.Sprintf("%s %s, %d", op.mnemonic, rd, g.Rand.Intn(1<<20))
		case ropBranch:
			rs1 := g.Regs.Peek()
			rs2 := g.Regs.Peek()
			return fmt.Sprintf("%s %s, %s, %s", op.mnemonic, rs1, rs2, g.Label.Get())
		case ropJAL:
			rd, idx, _ := g.Regs.Alloc()
			defer g.Regs.Release(idx)
			return fmt.Sprintf("%s %s, %s", op.mnemonic, rd, g.Label.Get())
		case ropJALR:
			rd, idx, _ := g.Regs.Alloc()
			defer g.Regs.Release(idx)
			rs1 := g.Regs.Peek()
			return fmt.Sprintf("%s %s, %s, 0", op.mnemonic, rd, rs1)
		}
		return "nop"
	}
}

// emitLoadStore draws loads from the full memory window (XMem) and
// stores from the stricter write window (DMem), matching the asymmetric
// bounds spec.md §4.C.3 places on the two access kinds.
func (g *RVProgramGenerator) emitLoadStore(loads, stores []loadStore) func() string {
	return func() string {
		base, idx, _ := g.Regs.Alloc()
		defer g.Regs.Release(idx)
		if g.Rand.Intn(2) == 0 {
			op := loads[g.Rand.Intn(len(loads))]
			rd := g.Regs.Peek()
			setup, _ := g.XMem.Emit(g.Rand, base, op.width)
			return fmt.Sprintf("%s\n%s %s, 0(%s)", setup, op.mnemonic, rd, base)
		}
		op := stores[g.Rand.Intn(len(stores))]
		rs2 := g.Regs.Peek()
		setup, _ := g.DMem.Emit(g.Rand, base, op.width)
		return fmt.Sprintf("%s\n%s %s, 0(%s)", setup, op.mnemonic, rs2, base)
	}
}

func (g *RVProgramGenerator) emitFPLoadStore() func() string {
	return func() string {
		base, idx, _ := g.Regs.Alloc()
		defer g.Regs.Release(idx)
		if g.Rand.Intn(2) == 0 {
			op := fpLoads[g.Rand.Intn(len(fpLoads))]
			fd := g.FRegs.Peek()
			setup, _ := g.XMem.Emit(g.Rand, base, op.width)
			return fmt.Sprintf("%s\n%s %s, 0(%s)", setup, op.mnemonic, fd, base)
		}
		op := fpStores[g.Rand.Intn(len(fpStores))]
		fs2 := g.FRegs.Peek()
		setup, _ := g.DMem.Emit(g.Rand, base, op.width)
		return fmt.Sprintf("%s\n%s %s, 0(%s)", setup, op.mnemonic, fs2, base)
	}
}

func (g *RVProgramGenerator) emitControl() func() string {
	return g.emitRop(ropControl)
}

func imm12(rng *rand.Rand) int { return rng.Intn(1<<12) - 1<<11 }

// RVVProgramGenerator produces RVV instruction fragments across the
// integer/mul-div/widening/fixed-point/float/reduction/mask/permutation
// categories cataloged in vtable.go.
type RVVProgramGenerator struct {
	Rand  *rand.Rand
	Regs  *RegAlloc // scalar, shared with an RVProgramGenerator for .vx/.vf operands
	VRegs *RegAlloc
	FRegs *RegAlloc
	XMem  BoundedLoadStore
	Ext   Extensions

	grammar *Grammar
}

// NewRVVProgramGenerator builds a vector generator sharing scalar/float
// register pools with an RVProgramGenerator (the .vx/.vf suffix forms
// consume a scalar/float register).
func NewRVVProgramGenerator(rng *rand.Rand, scalarRegs, fRegs *RegAlloc, xmem BoundedLoadStore, ext Extensions) *RVVProgramGenerator {
	vregs := NewRegAlloc(vreg32Names(), vectorReserved, rng)
	return &RVVProgramGenerator{
		Rand: rng, Regs: scalarRegs, VRegs: vregs, FRegs: fRegs, XMem: xmem, Ext: ext,
		grammar: NewGrammar(rng, scalarRegs, vregs, fRegs, nil),
	}
}

func (g *RVVProgramGenerator) categories() [][]vop {
	cats := [][]vop{vopInteger}
	if g.Ext.M {
		cats = append(cats, vopMulDiv, vopWidening, vopFixedPoint)
	}
	if g.Ext.F || g.Ext.D {
		cats = append(cats, vopFloat)
	}
	cats = append(cats, vopReduction, vopMask, vopPermute)
	return cats
}

// Emit produces one vector compute instruction fragment text drawn from
// the enabled categories. It never emits memory ops; vector loads and
// stores come from EmitLoadStore.
func (g *RVVProgramGenerator) Emit() string {
	cats := g.categories()
	table := cats[g.Rand.Intn(len(cats))]
	op := table[g.Rand.Intn(len(table))]
	suffix := op.suffixes[g.Rand.Intn(len(op.suffixes))]
	form, ok := suffixForms[suffix]
	if !ok {
		form = suffixForms[".v"]
	}
	var vd string
	if suffix == ".m" {
		// vcpop.m/vfirst.m write a scalar destination register.
		rd, ridx, _ := g.Regs.Alloc()
		defer g.Regs.Release(ridx)
		vd = rd
	} else {
		vd, _, _ = g.VRegs.Alloc()
		defer release(g.VRegs, vd)
	}
	vs2 := g.VRegs.Peek()
	return fmt.Sprintf("%s%s %s", op.mnemonic, asmSuffix[suffix], form(g.grammar, vd, vs2))
}

// EmitLoadStore produces a unit-stride/strided/indexed vector memory
// access using VBoundedLoadStore, parameterized by eew (bits), nf
// (segment count, 1 for unsegmented), and vlmax (the caller's current
// vtype-derived VLMAX, used only to bound the worst-case footprint).
func (g *RVVProgramGenerator) EmitLoadStore(vmem VBoundedLoadStore, eew, nf, vlmax int) string {
	vd, idx, _ := g.VRegs.Alloc()
	defer g.VRegs.Release(idx)
	base, bidx, _ := g.Regs.Alloc()
	defer g.Regs.Release(bidx)

	kind := g.Rand.Intn(3)
	store := g.Rand.Intn(2) == 0
	suffix := nfSuffix(nf)
	switch kind {
	case 0:
		setup, _ := vmem.UnitStride(g.Rand, base, eew, nf, vlmax)
		if store {
			return fmt.Sprintf("%s\nvs%se%d.v %s, (%s)", setup, suffix, eew, vd, base)
		}
		return fmt.Sprintf("%s\nvl%se%d.v %s, (%s)", setup, suffix, eew, vd, base)
	case 1:
		stride, sidx, _ := g.Regs.Alloc()
		defer g.Regs.Release(sidx)
		setup, _, _ := vmem.Strided(g.Rand, base, stride, eew, nf, vlmax)
		lines := setup[0] + "\n" + setup[1]
		if store {
			return fmt.Sprintf("%s\nvss%se%d.v %s, (%s), %s", lines, suffix, eew, vd, base, stride)
		}
		return fmt.Sprintf("%s\nvls%se%d.v %s, (%s), %s", lines, suffix, eew, vd, base, stride)
	default:
		setup, _ := vmem.Indexed(g.Rand, base, eew, nf, vlmax)
		var lines string
		for i, l := range setup {
			if i > 0 {
				lines += "\n"
			}
			lines += l
		}
		if store {
			return fmt.Sprintf("%s\nvsx%se%d.v %s, (%s), v8", lines, suffix, eew, vd, base)
		}
		return fmt.Sprintf("%s\nvlx%se%d.v %s, (%s), v8", lines, suffix, eew, vd, base)
	}
}

func nfSuffix(nf int) string {
	if nf <= 1 {
		return ""
	}
	return fmt.Sprintf("seg%d", nf)
}

// ProgramMultiGenerator combines a scalar and a vector generator into
// one fragment stream, matching ISG.py's ProgramMultiGenerator
// composition of independently-configured sub-generators. Flen/Vlen (in
// bits) size the randomized initial MachineState InitFragments builds;
// zero means that extension's state is absent from the run.
type ProgramMultiGenerator struct {
	Rand   *rand.Rand
	Scalar *RVProgramGenerator
	Vector *RVVProgramGenerator // nil when V extension is disabled
	Flen   int
	Vlen   int
}

// InitFragments returns the fragments a freshly generated block needs
// before its first instruction fragment runs: a freshly randomized
// MachineState, restored via AsAssembly. This mirrors the source's
// gen_init_fragments(), which does `self.mstate.init(VALUE_MODE_RAND);
// return self.mstate.as_CodeFragmentList()` rather than the bare vsetvli
// this port previously emitted on its own — the randomized V substate's
// restore sequence already ends by programming a valid vtype
// (AsAssembly's vAssembly sets it via vsetvl), so RVVProgramGenerator.Emit
// finds one active without a second, redundant vsetvli here.
func (g *ProgramMultiGenerator) InitFragments() *codeblock.FragmentList {
	m := state.New(g.Flen, g.Vlen)
	m.Init(state.InitRand, g.Rand)
	return m.AsAssembly("init")
}

// DeinitFragments returns the fragments appended after the last
// generated instruction. Neither generator needs any: BuildRunner's
// fixed tail handles the stop loop and breakpoint.
func (g *ProgramMultiGenerator) DeinitFragments() *codeblock.FragmentList {
	return codeblock.NewFragmentList()
}

// Generate produces a FragmentList of n instruction fragments, drawing
// from the vector generator with probability vectorBias when present.
func (g *ProgramMultiGenerator) Generate(n int, vectorBias float64) *codeblock.FragmentList {
	list := codeblock.NewFragmentList()
	for i := 0; i < n; i++ {
		var text string
		if g.Vector != nil && g.Rand.Float64() < vectorBias {
			text = g.Vector.Emit()
		} else {
			text = g.Scalar.Emit()
		}
		list.Add(codeblock.NewFragment(text))
	}
	return list
}
