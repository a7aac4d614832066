package codeblock

import (
	"encoding/json"
	"fmt"
	"os"
)

// Block is the triple (init, main, deinit) of FragmentLists spec.md §3
// names CodeBlock. The ISG only ever emits into Main; Init carries the
// state-restore prologue and Deinit holds whatever follows Main (the
// generators in internal/isg leave it empty).
type Block struct {
	Init   *FragmentList `json:"init"`
	Main   *FragmentList `json:"main"`
	Deinit *FragmentList `json:"deinit"`
}

// New builds a block from explicit init/main/deinit lists, defaulting any
// nil argument to an empty list.
func New(init, main, deinit *FragmentList) *Block {
	if init == nil {
		init = NewFragmentList()
	}
	if main == nil {
		main = NewFragmentList()
	}
	if deinit == nil {
		deinit = NewFragmentList()
	}
	return &Block{Init: init, Main: main, Deinit: deinit}
}

// Part returns a new block sharing Init/Deinit and taking Main[b:e).
func (b *Block) Part(begin, end int) *Block {
	return &Block{Init: b.Init, Main: b.Main.Part(begin, end), Deinit: b.Deinit}
}

// MainLen is the number of fragments in Main, the quantity the delta-
// debug reducer and coverage-guided fuzzer bisect/extend/reduce over.
func (b *Block) MainLen() int {
	return b.Main.Len()
}

// AsCode concatenates init, main, and deinit in order.
func (b *Block) AsCode() string {
	code := b.Init.AsCode()
	if main := b.Main.AsCode(); main != "" {
		if code != "" {
			code += "\n"
		}
		code += main
	}
	if deinit := b.Deinit.AsCode(); deinit != "" {
		if code != "" {
			code += "\n"
		}
		code += deinit
	}
	return code
}

// Stats aggregates statistics across init+main+deinit.
func (b *Block) Stats() Stats {
	var s Stats
	s.add(b.Init.Stats())
	s.add(b.Main.Stats())
	s.add(b.Deinit.Stats())
	return s
}

// Save persists the block to path as JSON. The on-disk shape is stable
// across runs (plain struct field order), which is all the coverage-
// guided fuzzer's resumable seed file needs.
func (b *Block) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal code block: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reverses Save. Load(Save(b)) reproduces b fragment-for-fragment.
func Load(path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("unmarshal code block %s: %w", path, err)
	}
	if b.Init == nil {
		b.Init = NewFragmentList()
	}
	if b.Main == nil {
		b.Main = NewFragmentList()
	}
	if b.Deinit == nil {
		b.Deinit = NewFragmentList()
	}
	return &b, nil
}
