package isg

import (
	"math/rand"
	"testing"
)

func TestExpandSimple(t *testing.T) {
	g := NewGrammar(rand.New(rand.NewSource(1)), nil, nil, nil, nil)
	g.Add("<reg>", Term("a0"), Term("a1"))
	g.Add("<instr>", Seq("addi ", "<reg>", ", zero, 1"))

	out, err := g.Expand("<instr>")
	if err != nil {
		t.Fatal(err)
	}
	if out != "addi a0, zero, 1" && out != "addi a1, zero, 1" {
		t.Fatalf("unexpected expansion: %q", out)
	}
}

func TestExpandUndefinedNonterminal(t *testing.T) {
	g := NewGrammar(rand.New(rand.NewSource(1)), nil, nil, nil, nil)
	g.Add("<instr>", Term("<missing>"))
	if _, err := g.Expand("<instr>"); err == nil {
		t.Fatal("expected error for undefined nonterminal")
	}
}

func TestExpandProduce(t *testing.T) {
	g := NewGrammar(rand.New(rand.NewSource(2)), nil, nil, nil, nil)
	calls := 0
	g.AddProduce("<n>", func(g *Grammar) Expansion {
		calls++
		return Term("42")
	})
	out, err := g.Expand("<n>")
	if err != nil {
		t.Fatal(err)
	}
	if out != "42" || calls != 1 {
		t.Fatalf("out=%q calls=%d", out, calls)
	}
}
