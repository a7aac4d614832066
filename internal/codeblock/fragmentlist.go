package codeblock

// FragmentList is an ordered sequence of fragments. Insertion order is
// significant; it is the unit the delta-debug bisection and the
// coverage-guided fuzzer's extend/reduce operations slice and splice.
type FragmentList struct {
	Elements []*CodeFragment `json:"elements"`
}

// NewFragmentList builds an empty list, optionally seeded with fragments.
func NewFragmentList(fragments ...*CodeFragment) *FragmentList {
	return &FragmentList{Elements: fragments}
}

// Add appends a single fragment.
func (l *FragmentList) Add(f *CodeFragment) {
	l.Elements = append(l.Elements, f)
}

// AddList concatenates another list's fragments onto this one in order.
func (l *FragmentList) AddList(other *FragmentList) {
	l.Elements = append(l.Elements, other.Elements...)
}

// Insert splices a single fragment at position i, shifting later
// fragments right — used by the coverage-guided fuzzer's EXTEND step.
func (l *FragmentList) Insert(i int, f *CodeFragment) {
	l.Elements = append(l.Elements, nil)
	copy(l.Elements[i+1:], l.Elements[i:])
	l.Elements[i] = f
}

// Len returns the fragment count.
func (l *FragmentList) Len() int {
	return len(l.Elements)
}

// Part returns a new list sharing the underlying fragment pointers for
// the half-open range [begin, end).
func (l *FragmentList) Part(begin, end int) *FragmentList {
	out := make([]*CodeFragment, end-begin)
	copy(out, l.Elements[begin:end])
	return &FragmentList{Elements: out}
}

// Delete removes the half-open range [begin, end), returning a new list
// without mutating the receiver — used by the REDUCE step, which deletes
// a random 1-2 fragment slice.
func (l *FragmentList) Delete(begin, end int) *FragmentList {
	out := make([]*CodeFragment, 0, len(l.Elements)-(end-begin))
	out = append(out, l.Elements[:begin]...)
	out = append(out, l.Elements[end:]...)
	return &FragmentList{Elements: out}
}

// AsCode joins every fragment's text with newlines, in order.
func (l *FragmentList) AsCode() string {
	var b []byte
	for i, f := range l.Elements {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, f.Text...)
	}
	return string(b)
}

// Stats aggregates every fragment's statistics.
func (l *FragmentList) Stats() Stats {
	var s Stats
	for _, f := range l.Elements {
		s.add(f.Stats())
	}
	return s
}
