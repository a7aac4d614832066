package isg

import (
	"fmt"
	"math/rand"
)

// BoundedLoadStore synthesizes scalar load/store addresses guaranteed to
// land inside [Base, Base+Len) at the requested access width, so
// generated memory instructions never fault or touch state outside the
// configured memory window.
type BoundedLoadStore struct {
	Base uint64
	Len  uint64
}

// RandomAddr picks a width-aligned address uniformly within the window.
func (b BoundedLoadStore) RandomAddr(rng *rand.Rand, width int) uint64 {
	if width <= 0 {
		width = 1
	}
	slots := (b.Len - uint64(width)) / uint64(width)
	return b.Base + uint64(rng.Int63n(int64(slots)+1))*uint64(width)
}

// Emit returns the mask/clamp setup sequence that bounds whatever value
// baseReg already holds into [Base, Base+Len) at the requested access
// width: and baseReg against a window-sized bitmask, then add Base, so
// an arbitrary pre-clamp register value lands in bounds regardless of
// what it was — rather than discarding it and synthesizing a fresh
// literal address. t6 is used as scratch, the same reserved register
// VBoundedLoadStore.Indexed uses for its own address masking.
func (b BoundedLoadStore) Emit(rng *rand.Rand, baseReg string, width int) (setup string, addr uint64) {
	if width <= 0 {
		width = 1
	}
	mask := windowMask(b.Len, width)
	offset := uint64(rng.Int63n(int64(mask/uint64(width))+1)) * uint64(width)
	addr = b.Base + offset
	setup = fmt.Sprintf("li t6, %d\nand %s, %s, t6\nli t6, %d\nadd %s, %s, t6",
		mask, baseReg, baseReg, int64(b.Base), baseReg, baseReg)
	return setup, addr
}

// windowMask returns the largest width-aligned bitmask that keeps a
// masked offset plus width within [0, length).
func windowMask(length uint64, width int) uint64 {
	limit := uint64(int(length) - width)
	m := uint64(nextPow2Minus1(int(limit))) &^ uint64(width-1)
	if m > limit {
		m = (m >> 1) &^ uint64(width-1)
	}
	return m
}

// VBoundedLoadStore extends BoundedLoadStore with the three RVV memory
// addressing modes. Open Question (d): the index vectors for indexed
// loads/stores are hardcoded to v8, matching the source's fixed scratch
// register rather than threading it through RegAlloc. v8 and v16 are
// both reserved out of the general vector RegAlloc pool (see
// vectorReserved in generator.go); no addressing form here uses v16.
type VBoundedLoadStore struct {
	BoundedLoadStore
}

// UnitStride computes the setup and base address for a vl<nf>e<eew>.v /
// vs<nf>e<eew>.v unit-stride (optionally segmented) access. The caller
// supplies the EEW in bits and the segment count nf (1 for the
// unsegmented form); the worst-case footprint is vlmax elements of
// nf*eew/8 bytes each, so the computed address leaves that much room
// unconditionally rather than depending on the runtime vl.
func (v VBoundedLoadStore) UnitStride(rng *rand.Rand, baseReg string, eew, nf, vlmax int) (setup string, addr uint64) {
	width := (eew / 8) * nf * vlmax
	if width > int(v.Len) {
		width = int(v.Len)
	}
	addr = v.RandomAddr(rng, width)
	return fmt.Sprintf("li %s, %d", baseReg, addr), addr
}

// Strided computes the setup, base address, and a byte stride for a
// strided access. The stride is chosen small and positive so that
// vlmax-1 strides plus one element never leaves the window regardless
// of sign.
func (v VBoundedLoadStore) Strided(rng *rand.Rand, baseReg, strideReg string, eew, nf, vlmax int) (setup []string, addr uint64, stride int64) {
	elemWidth := (eew / 8) * nf
	maxStride := int64(v.Len) / int64(vlmax) - int64(elemWidth)
	if maxStride < int64(elemWidth) {
		maxStride = int64(elemWidth)
	}
	stride = int64(elemWidth) + rng.Int63n(maxStride-int64(elemWidth)+1)
	addr = v.RandomAddr(rng, int(stride)*vlmax)
	setup = []string{
		fmt.Sprintf("li %s, %d", baseReg, addr),
		fmt.Sprintf("li %s, %d", strideReg, stride),
	}
	return
}

// Indexed computes the setup for an indexed access: the window's base
// address plus an index vector (hardcoded to v8, Open Question (d)) whose
// per-element byte offsets are bounded to [0, window-elemWidth] by masking a
// vid.v-generated sequence. This keeps every resulting element address
// inside the window without needing to precompute and load an explicit
// index data block.
func (v VBoundedLoadStore) Indexed(rng *rand.Rand, baseReg string, eew, nf, vlmax int) (setup []string, addr uint64) {
	elemWidth := (eew / 8) * nf
	usable := int(v.Len) - elemWidth
	if usable < elemWidth {
		usable = elemWidth
	}
	mask := nextPow2Minus1(usable / elemWidth)
	if mask > usable/elemWidth {
		mask >>= 1
	}
	addr = v.Base
	setup = []string{
		fmt.Sprintf("li %s, %d", baseReg, addr),
		"vid.v v8",
		fmt.Sprintf("li t6, %d", mask),
		"vand.vx v8, v8, t6",
		fmt.Sprintf("li t6, %d", elemWidth),
		"vmul.vx v8, v8, t6",
	}
	return
}

func nextPow2Minus1(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p <= n {
		p <<= 1
	}
	return p - 1
}
