// Package codeblock implements the assembly fragment tree spec.md §3/§4.B
// describes: an ordered, sliceable sequence of opaque text fragments
// grouped into init/main/deinit, with line/instruction statistics and a
// stable on-disk round-trip format.
//
// The source (CodeBlock.py) persists this object graph with jsonpickle,
// a reflection-based Python object pickler. Go's static types make that
// machinery unnecessary: every type here has ordinary exported fields and
// round-trips through encoding/json (see DESIGN.md, "jsonpickle ->
// encoding/json").
package codeblock

import (
	"strings"
)

// Stats tallies fragment/line/instruction counts, matching CodeStats.add:
// every non-blank line is an instruction; an instruction whose first
// non-space token begins with 'v' is additionally a vector instruction.
type Stats struct {
	Fragments int
	Lines     int
	Ins       int
	Vins      int
}

func (s *Stats) add(o Stats) {
	s.Fragments += o.Fragments
	s.Lines += o.Lines
	s.Ins += o.Ins
	s.Vins += o.Vins
}

// CodeFragment is an opaque blob of assembly source. It is immutable
// after construction except for in-place Replace, matching the source's
// CodeFragment.replace.
type CodeFragment struct {
	Text string `json:"text"`
}

// NewFragment wraps a literal assembly text blob.
func NewFragment(text string) *CodeFragment {
	return &CodeFragment{Text: text}
}

// Replace substitutes the first occurrence of old with new in place.
func (f *CodeFragment) Replace(old, new string) {
	f.Text = strings.Replace(f.Text, old, new, 1)
}

// AsCode returns the fragment's raw text.
func (f *CodeFragment) AsCode() string {
	return f.Text
}

// Stats scans the fragment's lines: every non-blank line counts as an
// instruction, and one additionally counts as a vector instruction if its
// first non-space token begins with 'v' (vadd.vv, vsetvli, ...).
func (f *CodeFragment) Stats() Stats {
	s := Stats{Fragments: 1}
	for _, line := range strings.Split(f.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		s.Lines++
		s.Ins++
		if trimmed[0] == 'v' {
			s.Vins++
		}
	}
	return s
}
