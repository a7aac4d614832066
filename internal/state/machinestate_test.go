package state

import (
	"math/rand"
	"testing"
)

func TestInitZeroIsAllZero(t *testing.T) {
	m := New(64, 512)
	m.Init(InitZero, rand.New(rand.NewSource(1)))
	for i, v := range m.GPR {
		if v != 0 {
			t.Fatalf("gpr %d not zero: %#x", i, v)
		}
	}
	if m.Mstatus != 0 || m.F.FCSR != 0 || m.V.VType != 0 {
		t.Fatal("expected zeroed status fields")
	}
}

func TestInitRandLegalValues(t *testing.T) {
	m := New(64, 512)
	rng := rand.New(rand.NewSource(42))
	m.Init(InitRand, rng)

	if m.GPR[0] != 0 {
		t.Fatal("x0 must stay zero even under InitRand")
	}
	if m.Mstatus&^uint64(mstatusMask) != 0 {
		t.Fatalf("mstatus has bits outside mask: %#x", m.Mstatus)
	}
	if !m.CheckVCSR() {
		t.Fatal("vcsr invariant violated after Init")
	}
	if m.V.VXRM > 3 {
		t.Fatalf("vxrm out of range: %d", m.V.VXRM)
	}
	frm := m.F.FCSR >> 5
	if frm > 7 {
		t.Fatalf("frm out of range: %d", frm)
	}
}

func TestInitRandLeavesMstatusClearWithoutFOrV(t *testing.T) {
	m := New(0, 0)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		m.Init(InitRand, rng)
		if m.Mstatus != 0 {
			t.Fatalf("mstatus %#x not clear for a config with no F/V state", m.Mstatus)
		}
	}
}

func TestCompareIdentical(t *testing.T) {
	a := New(64, 512)
	a.Init(InitRand, rand.New(rand.NewSource(7)))
	b := New(64, 512)
	*b = *a
	// deep-copy slice fields so mutating one cannot alias the other
	b.F = &FState{FCSR: a.F.FCSR}
	for i := range a.F.F {
		b.F.F[i] = append([]byte(nil), a.F.F[i]...)
	}
	b.V = &VState{VType: a.V.VType, VL: a.V.VL, VLenb: a.V.VLenb, VStart: a.V.VStart, VXRM: a.V.VXRM, VXSAT: a.V.VXSAT, VCSR: a.V.VCSR}
	for i := range a.V.V {
		b.V.V[i] = append([]byte(nil), a.V.V[i]...)
	}

	eq, diff := a.Compare(b)
	if !eq {
		t.Fatalf("expected equal, got diff: %s", diff)
	}
}

func TestCompareDetectsGPRDiff(t *testing.T) {
	a := New(0, 0)
	b := New(0, 0)
	a.GPR[5] = 1
	b.GPR[5] = 2
	eq, diff := a.Compare(b)
	if eq {
		t.Fatal("expected inequality")
	}
	if diff == "" {
		t.Fatal("expected non-empty diff report")
	}
}

func TestVlmaxForIntegerAndFractionalLMUL(t *testing.T) {
	if got := vlmaxFor(0, 2, 512); got != 16 { // lmul=1, sew=32, vlen=512 -> 16
		t.Fatalf("vlmax(lmul=1,sew=32) = %d, want 16", got)
	}
	if got := vlmaxFor(3, 0, 512); got != 512 { // lmul=8, sew=8 -> 512
		t.Fatalf("vlmax(lmul=8,sew=8) = %d, want 512", got)
	}
	if got := vlmaxFor(-2, 0, 512); got != 16 { // lmul=1/4, sew=8 -> 16
		t.Fatalf("vlmax(lmul=1/4,sew=8) = %d, want 16", got)
	}
}
