package codeblock

import (
	"path/filepath"
	"testing"
)

func TestFragmentStats(t *testing.T) {
	f := NewFragment("  addi x1, x0, 1\n\nvadd.vv v1, v2, v3\n  vand.vx v4, v5, x1\n")
	s := f.Stats()
	if s.Fragments != 1 || s.Lines != 3 || s.Ins != 3 || s.Vins != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestFragmentListPartAndDelete(t *testing.T) {
	l := NewFragmentList(NewFragment("a"), NewFragment("b"), NewFragment("c"), NewFragment("d"))
	part := l.Part(1, 3)
	if part.AsCode() != "b\nc" {
		t.Fatalf("Part() = %q", part.AsCode())
	}
	del := l.Delete(1, 3)
	if del.AsCode() != "a\nd" {
		t.Fatalf("Delete() = %q", del.AsCode())
	}
	if l.AsCode() != "a\nb\nc\nd" {
		t.Fatalf("Delete mutated receiver: %q", l.AsCode())
	}
}

func TestFragmentListInsert(t *testing.T) {
	l := NewFragmentList(NewFragment("a"), NewFragment("c"))
	l.Insert(1, NewFragment("b"))
	if l.AsCode() != "a\nb\nc" {
		t.Fatalf("Insert() = %q", l.AsCode())
	}
}

func TestBlockPartSharesInitDeinit(t *testing.T) {
	init := NewFragmentList(NewFragment("init"))
	main := NewFragmentList(NewFragment("m0"), NewFragment("m1"), NewFragment("m2"))
	deinit := NewFragmentList(NewFragment("deinit"))
	b := New(init, main, deinit)

	part := b.Part(1, 2)
	if part.Init != b.Init || part.Deinit != b.Deinit {
		t.Fatal("Part() should share Init/Deinit pointers")
	}
	if part.AsCode() != "init\nm1\ndeinit" {
		t.Fatalf("Part().AsCode() = %q", part.AsCode())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "code_block.json")

	b := New(
		NewFragmentList(NewFragment("li gp, 0x80000000")),
		NewFragmentList(NewFragment("addi x1, x0, 1"), NewFragment("vadd.vv v1, v2, v3")),
		NewFragmentList(NewFragment("j _stop")),
	)
	if err := b.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.AsCode() != b.AsCode() {
		t.Fatalf("round-trip mismatch:\n got: %q\nwant: %q", loaded.AsCode(), b.AsCode())
	}
	if loaded.MainLen() != b.MainLen() {
		t.Fatalf("main len mismatch: %d vs %d", loaded.MainLen(), b.MainLen())
	}
}
