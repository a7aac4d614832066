package isg

import (
	"math/rand"
	"testing"
)

func TestRegAllocReservedNeverAllocated(t *testing.T) {
	names := []string{"zero", "ra", "sp", "gp"}
	r := NewRegAlloc(names, 1<<0|1<<2, rand.New(rand.NewSource(1)))
	for i := 0; i < 100; i++ {
		name, idx, ok := r.Alloc()
		if !ok {
			break
		}
		if idx == 0 || idx == 2 {
			t.Fatalf("allocated reserved index %d (%s)", idx, name)
		}
		r.Release(idx)
	}
}

func TestRegAllocExhaustion(t *testing.T) {
	names := []string{"a", "b"}
	r := NewRegAlloc(names, 0, rand.New(rand.NewSource(1)))
	_, i1, ok1 := r.Alloc()
	_, i2, ok2 := r.Alloc()
	if !ok1 || !ok2 {
		t.Fatal("expected two successful allocations")
	}
	if _, _, ok := r.Alloc(); ok {
		t.Fatal("expected allocation failure once pool exhausted")
	}
	r.Release(i1)
	r.Release(i2)
	if _, _, ok := r.Alloc(); !ok {
		t.Fatal("expected allocation to succeed again after release")
	}
}

func TestRegAllocResetRestoresReserved(t *testing.T) {
	names := []string{"a", "b", "c"}
	r := NewRegAlloc(names, 1<<1, rand.New(rand.NewSource(1)))
	r.Alloc()
	r.Alloc()
	r.Reset()
	if r.FreeMask != (1<<0 | 1<<2) {
		t.Fatalf("Reset() left FreeMask = %#x, want non-reserved bits set", r.FreeMask)
	}
}
