package isg

import "math/rand"

// RegAlloc is a free-register pool; the generators release each
// register they allocate before the emitting call returns.
//
// The source's RegAlloc names its free-set attribute "free" and also
// exposes a "free" method, which Python's dynamic attribute lookup lets
// coexist but which has no direct Go rendering (a struct field and a
// method can't share a name). Open Question (a) is resolved by naming
// the field FreeMask and the release method Release, keeping the
// allocate method Alloc — no ambiguity, same semantics.
type RegAlloc struct {
	names    []string
	reserved uint64 // bitmask of indices never returned by Alloc
	FreeMask uint64
	rng      *rand.Rand
}

// NewRegAlloc builds an allocator over names, with the bits in reserved
// permanently excluded from allocation (e.g. x0/sp/gp/tp for scalar
// GPRs, v0 for the vector mask register).
func NewRegAlloc(names []string, reserved uint64, rng *rand.Rand) *RegAlloc {
	r := &RegAlloc{names: names, reserved: reserved, rng: rng}
	r.Reset()
	return r
}

// Reset marks every non-reserved register free again. NewRegAlloc calls
// it once to fill the initial pool.
func (r *RegAlloc) Reset() {
	r.FreeMask = (uint64(1)<<len(r.names) - 1) &^ r.reserved
}

// Alloc picks a uniformly random free register, marks it allocated, and
// returns its name and index. ok is false if the pool is exhausted.
func (r *RegAlloc) Alloc() (name string, idx int, ok bool) {
	if r.FreeMask == 0 {
		return "", -1, false
	}
	free := make([]int, 0, len(r.names))
	for i := range r.names {
		if r.FreeMask&(1<<i) != 0 {
			free = append(free, i)
		}
	}
	idx = free[r.rng.Intn(len(free))]
	r.FreeMask &^= 1 << idx
	return r.names[idx], idx, true
}

// Release returns register idx to the free pool.
func (r *RegAlloc) Release(idx int) {
	r.FreeMask |= 1 << idx
}

// Peek returns a uniformly random register name without allocating it,
// for productions that reference "any register of this class" without
// needing exclusive use (e.g. reading a value that's also used
// elsewhere in the same fragment).
func (r *RegAlloc) Peek() string {
	return r.names[r.rng.Intn(len(r.names))]
}

// Name returns the register name at idx.
func (r *RegAlloc) Name(idx int) string { return r.names[idx] }
