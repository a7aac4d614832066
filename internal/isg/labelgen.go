package isg

import (
	"fmt"
	"math/rand"
)

// LabelGen produces and tracks local assembly labels for a single code
// fragment, grounded on RandLabelGenerator: branch/jump grammar
// productions call Get to target an already-emitted label (so every
// jump stays within the fragment instead of escaping into unrelated
// code), while GenFirst/Gen/GenLast bound the fragment's entry and exit
// points.
type LabelGen struct {
	prefix string
	rng    *rand.Rand
	labels []string
	first  string
	last   string
}

// NewLabelGen builds a label generator whose labels are all prefixed
// with prefix (typically the fragment's own generated id, so concurrent
// fragments in one assembly unit never collide).
func NewLabelGen(prefix string, rng *rand.Rand) *LabelGen {
	return &LabelGen{prefix: prefix, rng: rng}
}

// GenFirst allocates the fragment's entry label. Must be called before
// any Gen/Get call.
func (g *LabelGen) GenFirst() string {
	g.first = g.alloc()
	return g.first
}

// Gen allocates a fresh label available to subsequent Get calls.
func (g *LabelGen) Gen() string {
	return g.alloc()
}

// GenLast allocates the fragment's exit label, the one every dangling
// branch should ultimately reach.
func (g *LabelGen) GenLast() string {
	g.last = g.alloc()
	return g.last
}

// Get returns a uniformly random already-allocated label, for branch/
// jump instructions that must target a label known to exist in this
// fragment. Panics if called before any label has been allocated, which
// indicates a grammar authoring bug (a branch production reachable
// before GenFirst).
func (g *LabelGen) Get() string {
	if len(g.labels) == 0 {
		panic("isg: LabelGen.Get called with no labels allocated")
	}
	return g.labels[g.rng.Intn(len(g.labels))]
}

func (g *LabelGen) alloc() string {
	name := fmt.Sprintf("%s_%d", g.prefix, len(g.labels))
	g.labels = append(g.labels, name)
	return name
}
