package state

import (
	"fmt"
	"math/rand"
	"strings"
)

// InitMode selects how MachineState.Init seeds a fresh state.
type InitMode int

const (
	// InitZero zeroes every register and status field.
	InitZero InitMode = iota
	// InitRand draws every register and status field from its legal
	// value set, used to generate the randomized initial state each
	// differential-testing iteration starts from.
	InitRand
)

// mstatus.fs/vs occupy bits [14:13] and [10:9]; this harness only ever
// programs the "off" and "dirty" extremes of each field, matching the
// legal-value enumeration used to seed randomized initial state.
const (
	mstatusFSMask = 0x6000
	mstatusVSMask = 0x0600
	mstatusMask   = mstatusFSMask | mstatusVSMask
)

var mstatusFSLegal = []uint64{0x0000, 0x6000}
var mstatusVSLegal = []uint64{0x0000, 0x0600}

// FState holds the floating-point extension's architectural state: the
// fcsr control/status register and f0..f31, each FLEN/8 bytes wide.
type FState struct {
	FCSR uint32
	F    [32][]byte
}

// VState holds the vector extension's architectural state: the seven
// vector CSRs plus v0..v31, each VLEN/8 bytes wide.
type VState struct {
	VType  uint64
	VL     uint64
	VLenb  uint64
	VStart uint64
	VXRM   uint64
	VXSAT  uint64
	VCSR   uint64
	V      [32][]byte
}

// MachineState is the terminal snapshot differential testing compares:
// general-purpose registers, the last-exception bookkeeping, masked
// mstatus bits, memory content hashes, and the optional F/V extension
// substates (nil when the corresponding extension is absent from a run).
type MachineState struct {
	GPR        [32]uint64
	LastPC     uint64
	Exceptions uint64
	Mstatus    uint64 // already masked to mstatusMask
	XMemHash   string
	DMemHash   string
	F          *FState
	V          *VState
}

// New builds a zeroed MachineState, allocating F/V substates when flen/
// vlen are nonzero.
func New(flen, vlen int) *MachineState {
	m := &MachineState{}
	if flen > 0 {
		m.F = &FState{}
		for i := range m.F.F {
			m.F.F[i] = make([]byte, flen/8)
		}
	}
	if vlen > 0 {
		m.V = &VState{}
		for i := range m.V.V {
			m.V.V[i] = make([]byte, vlen/8)
		}
	}
	return m
}

// Init seeds every field according to mode. InitRand draws from the
// exact legal-value enumeration: mstatus.fs/vs each independently off or
// dirty, fcsr.frm in [0,7], vxrm in [0,3], vtype fields within their
// architectural ranges, and vl in [0, vlmax] for the chosen vtype.
func (m *MachineState) Init(mode InitMode, rng *rand.Rand) {
	for i := range m.GPR {
		if mode == InitRand && i != 0 {
			m.GPR[i] = rng.Uint64()
		} else {
			m.GPR[i] = 0
		}
	}
	m.LastPC = 0
	m.Exceptions = 0

	if mode == InitZero {
		m.Mstatus = 0
		if m.F != nil {
			m.F.FCSR = 0
			for i := range m.F.F {
				zero(m.F.F[i])
			}
		}
		if m.V != nil {
			*m.V = VState{V: m.V.V}
			for i := range m.V.V {
				zero(m.V.V[i])
			}
		}
		return
	}

	m.Mstatus = 0
	if m.F != nil {
		m.Mstatus |= mstatusFSLegal[rng.Intn(len(mstatusFSLegal))]
	}
	if m.V != nil {
		m.Mstatus |= mstatusVSLegal[rng.Intn(len(mstatusVSLegal))]
	}

	if m.F != nil {
		frm := uint32(rng.Intn(8))
		m.F.FCSR = frm << 5
		for i := range m.F.F {
			rng.Read(m.F.F[i])
		}
	}

	if m.V != nil {
		vlmul := rng.Intn(7) - 3 // [-3, 3]
		vsew := rng.Intn(4)      // [0, 3] -> 8,16,32,64
		vta := rng.Intn(2)
		vma := rng.Intn(2)
		m.V.VType = encodeVType(vlmul, vsew, vta, vma)
		vlmax := vlmaxFor(vlmul, vsew, len(m.V.V[0])*8)
		m.V.VL = uint64(rng.Intn(vlmax + 1))
		m.V.VLenb = uint64(len(m.V.V[0]))
		m.V.VStart = 0
		m.V.VXRM = uint64(rng.Intn(4))
		m.V.VXSAT = uint64(rng.Intn(2))
		m.V.VCSR = (m.V.VXRM << 1) | m.V.VXSAT
		for i := range m.V.V {
			rng.Read(m.V.V[i])
		}
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// encodeVType packs vtype's vlmul/vsew/vta/vma fields per the RVV spec.
// vlmul is encoded two's-complement in the low 3 bits.
func encodeVType(vlmul, vsew, vta, vma int) uint64 {
	return uint64(vlmul&0x7) | uint64(vsew&0x3)<<3 | uint64(vta&0x1)<<6 | uint64(vma&0x1)<<7
}

// vlmaxFor computes VLMAX = LMUL * VLEN / SEW, where signed vlmul in
// [-3,3] denotes fractional LMUL (1/8..1/2) for negative values and
// integer LMUL (1..8) for non-negative values.
func vlmaxFor(vlmul, vsewField, vlenBits int) int {
	sew := 8 << vsewField
	var vlmax int
	if vlmul >= 0 {
		vlmax = (vlenBits / sew) * (1 << vlmul)
	} else {
		vlmax = (vlenBits / sew) / (1 << -vlmul)
	}
	if vlmax < 1 {
		vlmax = 1
	}
	return vlmax
}

// CheckVCSR reports whether vcsr's redundant view of vxrm/vxsat holds,
// the invariant vcsr == (vxrm<<1)|vxsat.
func (m *MachineState) CheckVCSR() bool {
	if m.V == nil {
		return true
	}
	return m.V.VCSR == (m.V.VXRM<<1)|m.V.VXSAT
}

// Compare performs a component-wise diff against other, returning
// whether the two states are identical and a human-readable report of
// every field that differs.
func (m *MachineState) Compare(other *MachineState) (bool, string) {
	var diffs []string
	for i := 1; i < 32; i++ { // x0 is hardwired, never compared
		if m.GPR[i] != other.GPR[i] {
			diffs = append(diffs, fmt.Sprintf("%s: 0x%x != 0x%x", GPRNames[i], m.GPR[i], other.GPR[i]))
		}
	}
	if m.LastPC != other.LastPC {
		diffs = append(diffs, fmt.Sprintf("pc: 0x%x != 0x%x", m.LastPC, other.LastPC))
	}
	if m.Exceptions != other.Exceptions {
		diffs = append(diffs, fmt.Sprintf("exceptions: %d != %d", m.Exceptions, other.Exceptions))
	}
	if m.Mstatus != other.Mstatus {
		diffs = append(diffs, fmt.Sprintf("mstatus: 0x%x != 0x%x", m.Mstatus, other.Mstatus))
	}
	if m.XMemHash != other.XMemHash {
		diffs = append(diffs, fmt.Sprintf("xmem hash: %s != %s", m.XMemHash, other.XMemHash))
	}
	if m.DMemHash != other.DMemHash {
		diffs = append(diffs, fmt.Sprintf("dmem hash: %s != %s", m.DMemHash, other.DMemHash))
	}
	diffs = append(diffs, compareF(m.F, other.F)...)
	diffs = append(diffs, compareV(m.V, other.V)...)
	return len(diffs) == 0, strings.Join(diffs, "\n")
}

func compareF(a, b *FState) []string {
	if a == nil || b == nil {
		return nil
	}
	var diffs []string
	if a.FCSR != b.FCSR {
		diffs = append(diffs, fmt.Sprintf("fcsr: 0x%x != 0x%x", a.FCSR, b.FCSR))
	}
	for i := range a.F {
		if string(a.F[i]) != string(b.F[i]) {
			diffs = append(diffs, fmt.Sprintf("%s: %x != %x", FRegName(i), a.F[i], b.F[i]))
		}
	}
	return diffs
}

func compareV(a, b *VState) []string {
	if a == nil || b == nil {
		return nil
	}
	var diffs []string
	type field struct {
		name    string
		av, bv  uint64
	}
	for _, f := range []field{
		{"vtype", a.VType, b.VType}, {"vl", a.VL, b.VL}, {"vlenb", a.VLenb, b.VLenb},
		{"vstart", a.VStart, b.VStart}, {"vxrm", a.VXRM, b.VXRM}, {"vxsat", a.VXSAT, b.VXSAT},
		{"vcsr", a.VCSR, b.VCSR},
	} {
		if f.av != f.bv {
			diffs = append(diffs, fmt.Sprintf("%s: 0x%x != 0x%x", f.name, f.av, f.bv))
		}
	}
	for i := range a.V {
		if string(a.V[i]) != string(b.V[i]) {
			diffs = append(diffs, fmt.Sprintf("%s: %x != %x", VRegName(i), a.V[i], b.V[i]))
		}
	}
	return diffs
}
