package state

import (
	"fmt"
	"strings"

	"github.com/xyproto/rvfuzz/internal/codeblock"
)

// AsAssembly emits the restore-state prologue for m as an ordered
// codeblock.FragmentList. label disambiguates the local labels this
// state's fragments define, so multiple MachineStates (e.g. the
// randomized initial state and a delta-debug candidate) can share one
// assembly unit without collision.
//
// Ordering is mandatory and load-bearing: F data block+load loop+fcsr,
// then V data block+vsetvli(e8)+vl1r.v loop+vsetvl(real vtype)+vstart/
// vcsr, then mstatus (clear mask then OR stored value), then the x1..x31
// immediate-load loop. Later fragments depend on earlier ones leaving
// t0-t2 and vtype/vl in a known state.
func (m *MachineState) AsAssembly(label string) *codeblock.FragmentList {
	l := codeblock.NewFragmentList()

	if m.F != nil {
		l.AddList(m.fAssembly(label))
	}
	if m.V != nil {
		l.AddList(m.vAssembly(label))
	}
	l.AddList(m.mstatusAssembly())
	l.AddList(m.gprAssembly())
	return l
}

func (m *MachineState) fAssembly(label string) *codeblock.FragmentList {
	l := codeblock.NewFragmentList()
	data := fmt.Sprintf("fdata_%s", label)
	dataEnd := fmt.Sprintf("fdata_end_%s", label)

	var bytes []byte
	for _, f := range m.F.F {
		bytes = append(bytes, f...)
	}
	l.Add(codeblock.NewFragment(fmt.Sprintf("j %s", dataEnd)))
	l.Add(codeblock.NewFragment(fmt.Sprintf("%s:", data)))
	l.Add(codeblock.NewFragment(".byte " + byteList(bytes)))
	l.Add(codeblock.NewFragment(fmt.Sprintf("%s:", dataEnd)))

	flenb := len(m.F.F[0])
	loadOp := "fld"
	if flenb == 4 {
		loadOp = "flw"
	}
	var loop strings.Builder
	fmt.Fprintf(&loop, "la t0, %s\n", data)
	for i := 0; i < 32; i++ {
		fmt.Fprintf(&loop, "%s %s, %d(t0)\n", loadOp, FRegName(i), i*flenb)
	}
	l.Add(codeblock.NewFragment(strings.TrimRight(loop.String(), "\n")))
	l.Add(codeblock.NewFragment(fmt.Sprintf("li t0, %d\ncsrw fcsr, t0", m.F.FCSR)))
	return l
}

func (m *MachineState) vAssembly(label string) *codeblock.FragmentList {
	l := codeblock.NewFragmentList()
	data := fmt.Sprintf("vdata_%s", label)
	dataEnd := fmt.Sprintf("vdata_end_%s", label)

	var bytes []byte
	for _, v := range m.V.V {
		bytes = append(bytes, v...)
	}
	// e8,ta,ma with vlmax AVL clears vill and guarantees every byte of
	// every register is addressable for the raw vl1r.v reload below.
	l.Add(codeblock.NewFragment("vsetvli t0, zero, e8, ta, ma"))
	l.Add(codeblock.NewFragment(fmt.Sprintf("j %s", dataEnd)))
	l.Add(codeblock.NewFragment(fmt.Sprintf("%s:", data)))
	l.Add(codeblock.NewFragment(".byte " + byteList(bytes)))
	l.Add(codeblock.NewFragment(fmt.Sprintf("%s:", dataEnd)))

	var loop strings.Builder
	fmt.Fprintf(&loop, "la t0, %s\n", data)
	for i := 0; i < 32; i++ {
		fmt.Fprintf(&loop, "vl1r.v %s, (t0)\n", VRegName(i))
		fmt.Fprintf(&loop, "addi t0, t0, %d\n", m.V.VLenb)
	}
	l.Add(codeblock.NewFragment(strings.TrimRight(loop.String(), "\n")))

	l.Add(codeblock.NewFragment(fmt.Sprintf(
		"li t1, %d\nli t2, %d\nvsetvl zero, t1, t2", m.V.VL, m.V.VType)))
	l.Add(codeblock.NewFragment(fmt.Sprintf("li t0, %d\ncsrw vstart, t0", m.V.VStart)))
	l.Add(codeblock.NewFragment(fmt.Sprintf("li t0, %d\ncsrw vcsr, t0", m.V.VCSR)))
	return l
}

func (m *MachineState) mstatusAssembly() *codeblock.FragmentList {
	return codeblock.NewFragmentList(codeblock.NewFragment(fmt.Sprintf(
		"li t0, %d\ncsrc mstatus, t0\nli t0, %d\ncsrs mstatus, t0", mstatusMask, m.Mstatus)))
}

func (m *MachineState) gprAssembly() *codeblock.FragmentList {
	l := codeblock.NewFragmentList()
	for i := 1; i < 32; i++ {
		l.Add(codeblock.NewFragment(fmt.Sprintf("li %s, %d", GPRNames[i], int64(m.GPR[i]))))
	}
	return l
}

func byteList(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("0x%02x", v)
	}
	return strings.Join(parts, ", ")
}
