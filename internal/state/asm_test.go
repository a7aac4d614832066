package state

import (
	"math/rand"
	"strings"
	"testing"
)

func TestAsAssemblyOrdering(t *testing.T) {
	m := New(64, 512)
	m.Init(InitRand, rand.New(rand.NewSource(9)))
	code := m.AsAssembly("x0").AsCode()

	fIdx := strings.Index(code, "fdata_x0:")
	fcsrIdx := strings.Index(code, "csrw fcsr")
	vIdx := strings.Index(code, "vdata_x0:")
	vsetvliIdx := strings.Index(code, "vsetvli")
	vl1rIdx := strings.Index(code, "vl1r.v")
	vsetvlIdx := strings.Index(code, "vsetvl zero")
	vstartIdx := strings.Index(code, "csrw vstart")
	mstatusIdx := strings.Index(code, "csrc mstatus")
	liX1Idx := strings.Index(code, "li ra,")

	for _, pair := range [][2]int{
		{fIdx, fcsrIdx}, {fcsrIdx, vsetvliIdx}, {vsetvliIdx, vIdx}, {vIdx, vl1rIdx},
		{vl1rIdx, vsetvlIdx}, {vsetvlIdx, vstartIdx}, {vstartIdx, mstatusIdx}, {mstatusIdx, liX1Idx},
	} {
		if pair[0] < 0 || pair[1] < 0 || pair[0] >= pair[1] {
			t.Fatalf("ordering violated: %d should precede %d\n%s", pair[0], pair[1], code)
		}
	}
}

func TestAsAssemblyNoFNoV(t *testing.T) {
	m := New(0, 0)
	m.Init(InitRand, rand.New(rand.NewSource(1)))
	code := m.AsAssembly("x1").AsCode()
	if strings.Contains(code, "fdata") || strings.Contains(code, "vdata") {
		t.Fatal("did not expect F/V fragments when extensions absent")
	}
	if !strings.Contains(code, "li ra,") {
		t.Fatal("expected gpr restore loop")
	}
}
