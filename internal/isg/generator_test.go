package isg

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func newTestExtensions() Extensions {
	return Extensions{M: true, A: true, F: true, D: true, V: true}
}

func TestRVProgramGeneratorEmitNonEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	xmem := BoundedLoadStore{Base: 0x80000000, Len: 0x80000}
	dmem := BoundedLoadStore{Base: 0x80080000, Len: 0x80000}
	label := NewLabelGen("f0", rng)
	label.GenFirst()
	label.GenLast()

	gen := NewRVProgramGenerator(rng, xmem, dmem, newTestExtensions(), label)
	for i := 0; i < 200; i++ {
		text := gen.Emit()
		if strings.TrimSpace(text) == "" {
			t.Fatal("expected non-empty instruction text")
		}
	}
}

func TestRVVProgramGeneratorEmitNonEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	xmem := BoundedLoadStore{Base: 0x80000000, Len: 0x80000}
	dmem := BoundedLoadStore{Base: 0x80080000, Len: 0x80000}
	label := NewLabelGen("f0", rng)
	label.GenFirst()

	scalar := NewRVProgramGenerator(rng, xmem, dmem, newTestExtensions(), label)
	vgen := NewRVVProgramGenerator(rng, scalar.Regs, scalar.FRegs, xmem, newTestExtensions())
	for i := 0; i < 200; i++ {
		text := vgen.Emit()
		if strings.TrimSpace(text) == "" {
			t.Fatal("expected non-empty vector instruction text")
		}
		if !strings.HasPrefix(text, "v") {
			t.Fatalf("expected vector mnemonic, got %q", text)
		}
	}
}

func TestRVVProgramGeneratorEmitLoadStoreNonEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	xmem := BoundedLoadStore{Base: 0x80000000, Len: 0x80000}
	dmem := BoundedLoadStore{Base: 0x80080000, Len: 0x80000}
	label := NewLabelGen("f0", rng)
	label.GenFirst()

	scalar := NewRVProgramGenerator(rng, xmem, dmem, newTestExtensions(), label)
	vgen := NewRVVProgramGenerator(rng, scalar.Regs, scalar.FRegs, xmem, newTestExtensions())
	vmem := VBoundedLoadStore{xmem}
	for i := 0; i < 50; i++ {
		text := vgen.EmitLoadStore(vmem, 32, 1, 16)
		if strings.TrimSpace(text) == "" {
			t.Fatal("expected non-empty vector load/store text")
		}
	}
}

func TestRVProgramGeneratorLoadsUseXMemStoresUseDMem(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	xmem := BoundedLoadStore{Base: 0x80000000, Len: 0x80000}
	dmem := BoundedLoadStore{Base: 0x80080000, Len: 0x80000}
	label := NewLabelGen("f0", rng)
	label.GenFirst()
	label.GenLast()

	gen := NewRVProgramGenerator(rng, xmem, dmem, newTestExtensions(), label)
	xmemLit := fmt.Sprintf("li t6, %d", int64(xmem.Base))
	dmemLit := fmt.Sprintf("li t6, %d", int64(dmem.Base))
	sawXMem, sawDMem := false, false
	emit := gen.emitLoadStore(scalarLoads, scalarStores)
	for i := 0; i < 200; i++ {
		text := emit()
		if strings.Contains(text, xmemLit) {
			sawXMem = true
		}
		if strings.Contains(text, dmemLit) {
			sawDMem = true
		}
	}
	if !sawXMem {
		t.Fatal("expected at least one load addressed against the XMem window")
	}
	if !sawDMem {
		t.Fatal("expected at least one store addressed against the DMem window")
	}
}

func TestProgramMultiGeneratorLength(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	xmem := BoundedLoadStore{Base: 0x80000000, Len: 0x80000}
	dmem := BoundedLoadStore{Base: 0x80080000, Len: 0x80000}
	label := NewLabelGen("f0", rng)
	label.GenFirst()

	scalar := NewRVProgramGenerator(rng, xmem, dmem, newTestExtensions(), label)
	vgen := NewRVVProgramGenerator(rng, scalar.Regs, scalar.FRegs, xmem, newTestExtensions())
	multi := &ProgramMultiGenerator{Rand: rng, Scalar: scalar, Vector: vgen}

	list := multi.Generate(50, 0.5)
	if list.Len() != 50 {
		t.Fatalf("expected 50 fragments, got %d", list.Len())
	}
}

func TestProgramMultiGeneratorInitFragments(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	xmem := BoundedLoadStore{Base: 0x80000000, Len: 0x80000}
	dmem := BoundedLoadStore{Base: 0x80080000, Len: 0x80000}
	label := NewLabelGen("f0", rng)
	label.GenFirst()

	scalar := NewRVProgramGenerator(rng, xmem, dmem, newTestExtensions(), label)
	vgen := NewRVVProgramGenerator(rng, scalar.Regs, scalar.FRegs, xmem, newTestExtensions())

	withVector := &ProgramMultiGenerator{Rand: rng, Scalar: scalar, Vector: vgen, Flen: 64, Vlen: 512}
	withVectorInit := withVector.InitFragments()
	if withVectorInit.Len() == 0 {
		t.Fatal("expected a randomized-state restore when a vector generator is present")
	}
	if !strings.Contains(withVectorInit.AsCode(), "vsetvl") {
		t.Fatal("expected the restored V state to program a vtype")
	}

	scalarOnly := &ProgramMultiGenerator{Rand: rng, Scalar: scalar}
	scalarOnlyInit := scalarOnly.InitFragments()
	if scalarOnlyInit.Len() == 0 {
		t.Fatal("expected a randomized GPR/mstatus restore even for a scalar-only generator")
	}
	if strings.Contains(scalarOnlyInit.AsCode(), "fcsr") || strings.Contains(scalarOnlyInit.AsCode(), "vstart") {
		t.Fatal("expected no F/V restore fragments when Flen/Vlen are zero")
	}
	if withVector.DeinitFragments().Len() != 0 {
		t.Fatal("expected no deinit fragments")
	}
}
