package isg

import (
	"math/rand"
	"strings"
	"testing"
)

func TestBoundedLoadStoreRandomAddrInWindow(t *testing.T) {
	b := BoundedLoadStore{Base: 0x80080000, Len: 0x1000}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		addr := b.RandomAddr(rng, 8)
		if addr < b.Base || addr+8 > b.Base+b.Len {
			t.Fatalf("addr %#x out of window [%#x, %#x)", addr, b.Base, b.Base+b.Len)
		}
		if addr%8 != 0 {
			t.Fatalf("addr %#x not 8-byte aligned", addr)
		}
	}
}

func TestBoundedLoadStoreEmitMasksExistingValue(t *testing.T) {
	b := BoundedLoadStore{Base: 0x80080000, Len: 0x1000}
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 200; i++ {
		setup, addr := b.Emit(rng, "a0", 8)
		if addr < b.Base || addr+8 > b.Base+b.Len {
			t.Fatalf("addr %#x out of window [%#x, %#x)", addr, b.Base, b.Base+b.Len)
		}
		if !strings.Contains(setup, "and a0, a0, t6") || !strings.Contains(setup, "add a0, a0, t6") {
			t.Fatalf("expected a mask-then-offset sequence on the existing register, got %q", setup)
		}
	}
}

func TestVBoundedLoadStoreUnitStrideInWindow(t *testing.T) {
	v := VBoundedLoadStore{BoundedLoadStore{Base: 0x80000000, Len: 0x8000}}
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		_, addr := v.UnitStride(rng, "t0", 32, 1, 16)
		footprint := uint64(32 / 8 * 16)
		if addr < v.Base || addr+footprint > v.Base+v.Len {
			t.Fatalf("unit-stride addr %#x + footprint %d escapes window", addr, footprint)
		}
	}
}

func TestVBoundedLoadStoreStridedInWindow(t *testing.T) {
	v := VBoundedLoadStore{BoundedLoadStore{Base: 0x80000000, Len: 0x8000}}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		_, addr, stride := v.Strided(rng, "t0", "t1", 32, 1, 16)
		last := addr + uint64(stride)*15 + 4
		if addr < v.Base || last > v.Base+v.Len {
			t.Fatalf("strided access escapes window: base=%#x stride=%d last=%#x", addr, stride, last)
		}
	}
}
