package isg

import "fmt"

// suffixForm renders one vector operand-form suffix (".vv", ".vx", ...)
// into the operand string that follows a mnemonic, given the registers/
// immediate the caller has already allocated. Ported from ISG.py's
// per-suffix operand templates (lines 1519-1578 of the source).
type suffixForm func(g *Grammar, vd, vs2 string) string

// vm renders the optional mask suffix, "" or ", v0.t", matching the
// source's <vm> nonterminal.
func vm(g *Grammar) string {
	if g.Rand.Intn(2) == 0 {
		return ""
	}
	return ", v0.t"
}

var suffixForms = map[string]suffixForm{
	".vv": func(g *Grammar, vd, vs2 string) string {
		vs1, _, _ := g.VRegs.Alloc()
		defer release(g.VRegs, vs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, vs2, vs1, vm(g))
	},
	".vx": func(g *Grammar, vd, vs2 string) string {
		rs1, _, _ := g.Regs.Alloc()
		defer release(g.Regs, rs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, vs2, rs1, vm(g))
	},
	".vi": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s, %d%s", vd, vs2, imm5(g), vm(g))
	},
	".vi_uimm": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s, %d%s", vd, vs2, uimm5(g), vm(g))
	},
	".wv": func(g *Grammar, vd, vs2 string) string {
		vs1, _, _ := g.VRegs.Alloc()
		defer release(g.VRegs, vs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, vs2, vs1, vm(g))
	},
	".wx": func(g *Grammar, vd, vs2 string) string {
		rs1, _, _ := g.Regs.Alloc()
		defer release(g.Regs, rs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, vs2, rs1, vm(g))
	},
	".wi": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s, %d%s", vd, vs2, uimm5(g), vm(g))
	},
	".vvm": func(g *Grammar, vd, vs2 string) string {
		vs1, _, _ := g.VRegs.Alloc()
		defer release(g.VRegs, vs1)
		return fmt.Sprintf("%s, %s, %s, v0", vd, vs2, vs1)
	},
	".vxm": func(g *Grammar, vd, vs2 string) string {
		rs1, _, _ := g.Regs.Alloc()
		defer release(g.Regs, rs1)
		return fmt.Sprintf("%s, %s, %s, v0", vd, vs2, rs1)
	},
	".vim": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s, %d, v0", vd, vs2, imm5(g))
	},
	".vv_novm": func(g *Grammar, vd, vs2 string) string {
		vs1, _, _ := g.VRegs.Alloc()
		defer release(g.VRegs, vs1)
		return fmt.Sprintf("%s, %s, %s", vd, vs2, vs1)
	},
	".vx_novm": func(g *Grammar, vd, vs2 string) string {
		rs1, _, _ := g.Regs.Alloc()
		defer release(g.Regs, rs1)
		return fmt.Sprintf("%s, %s, %s", vd, vs2, rs1)
	},
	".vi_novm": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s, %d", vd, vs2, imm5(g))
	},
	".vv_mac": func(g *Grammar, vd, vs2 string) string {
		vs1, _, _ := g.VRegs.Alloc()
		defer release(g.VRegs, vs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, vs1, vs2, vm(g))
	},
	".vx_mac": func(g *Grammar, vd, vs2 string) string {
		rs1, _, _ := g.Regs.Alloc()
		defer release(g.Regs, rs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, rs1, vs2, vm(g))
	},
	".vf": func(g *Grammar, vd, vs2 string) string {
		fs1, _, _ := g.FRegs.Alloc()
		defer release(g.FRegs, fs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, vs2, fs1, vm(g))
	},
	".wf": func(g *Grammar, vd, vs2 string) string {
		fs1, _, _ := g.FRegs.Alloc()
		defer release(g.FRegs, fs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, vs2, fs1, vm(g))
	},
	".vf2": func(g *Grammar, vd, vs2 string) string {
		fs1, _, _ := g.FRegs.Alloc()
		defer release(g.FRegs, fs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, fs1, vs2, vm(g))
	},
	".vfm": func(g *Grammar, vd, vs2 string) string {
		fs1, _, _ := g.FRegs.Alloc()
		defer release(g.FRegs, fs1)
		return fmt.Sprintf("%s, %s, %s, v0", vd, vs2, fs1)
	},
	".v": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s%s", vd, vs2, vm(g))
	},
	".w": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s%s", vd, vs2, vm(g))
	},
	".v_nom": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s", vd, vs2)
	},
	".vs": func(g *Grammar, vd, vs2 string) string {
		vs1, _, _ := g.VRegs.Alloc()
		defer release(g.VRegs, vs1)
		return fmt.Sprintf("%s, %s, %s%s", vd, vs2, vs1, vm(g))
	},
	".mm": func(g *Grammar, vd, vs2 string) string {
		vs1, _, _ := g.VRegs.Alloc()
		defer release(g.VRegs, vs1)
		return fmt.Sprintf("%s, %s, %s", vd, vs2, vs1)
	},
	".m": func(g *Grammar, rd, vs2 string) string {
		return fmt.Sprintf("%s, %s%s", rd, vs2, vm(g))
	},
	".m2": func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s%s", vd, vs2, vm(g))
	},
	".v2": func(g *Grammar, vd, _ string) string {
		return fmt.Sprintf("%s%s", vd, vm(g))
	},
	".vm": func(g *Grammar, vd, vs2 string) string {
		vs1, _, _ := g.VRegs.Alloc()
		defer release(g.VRegs, vs1)
		return fmt.Sprintf("%s, %s, %s", vd, vs2, vs1)
	},
}

// .vf2/.vf4/.vf8 are the integer-extension forms (widen by 2/4/8), which
// share one operand template (destination + source, masked).
func init() {
	ext := func(g *Grammar, vd, vs2 string) string {
		return fmt.Sprintf("%s, %s%s", vd, vs2, vm(g))
	}
	suffixForms[".vf2ext"] = ext
	suffixForms[".vf4ext"] = ext
	suffixForms[".vf8ext"] = ext
}

// asmSuffix maps a suffix lookup key (which also distinguishes operand
// templates that share one literal assembly suffix, e.g. ".vi" vs
// ".vi_novm") to the text actually appended to the mnemonic. Most keys
// are their own literal suffix; a few templates exist purely to select
// an operand-order/mask variant of the same written suffix, or (".v_nom")
// a mnemonic that already spells out its own trailing ".v" and needs no
// further suffix at all.
var asmSuffix = map[string]string{
	".vv": ".vv", ".vx": ".vx", ".vi": ".vi", ".vi_uimm": ".vi",
	".wv": ".wv", ".wx": ".wx", ".wi": ".wi",
	".vvm": ".vvm", ".vxm": ".vxm", ".vim": ".vim",
	".vv_novm": ".vv", ".vx_novm": ".vx", ".vi_novm": ".vi",
	".vv_mac": ".vv", ".vx_mac": ".vx",
	".vf": ".vf", ".wf": ".wf", ".vf2": ".vf2", ".vfm": ".vfm",
	".v": ".v", ".w": ".w", ".v_nom": "",
	".vs": ".vs",
	".mm": ".mm", ".m": ".m", ".m2": ".m", ".v2": ".v",
	".vm": ".vm",
}

func release(r *RegAlloc, name string) {
	for i := 0; i < 32; i++ {
		if r.Name(i) == name {
			r.Release(i)
			return
		}
	}
}

func imm5(g *Grammar) int  { return g.Rand.Intn(32) - 16 }
func uimm5(g *Grammar) int { return g.Rand.Intn(32) }
