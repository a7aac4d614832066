package isg

// vop names one vector mnemonic stem and the suffix forms it accepts
// (e.g. "vadd" with {".vv", ".vx", ".vi"} covers vadd.vv/vadd.vx/
// vadd.vi). Grounded on ISG.py's per-category instruction+suffix
// catalog (source lines ~900-1578); the subset below is representative
// of every category the source enumerates rather than an exhaustive
// transcription of all ~190 RVV mnemonics, enough to exercise every
// suffix-form production and instruction-class invariant the harness
// cares about.
type vop struct {
	mnemonic string
	suffixes []string
}

// integer arithmetic/logic (vadd..vmerge), §11.
var vopInteger = []vop{
	{"vadd", []string{".vv", ".vx", ".vi"}},
	{"vsub", []string{".vv", ".vx"}},
	{"vrsub", []string{".vx", ".vi"}},
	{"vand", []string{".vv", ".vx", ".vi"}},
	{"vor", []string{".vv", ".vx", ".vi"}},
	{"vxor", []string{".vv", ".vx", ".vi"}},
	{"vminu", []string{".vv", ".vx"}},
	{"vmin", []string{".vv", ".vx"}},
	{"vmaxu", []string{".vv", ".vx"}},
	{"vmax", []string{".vv", ".vx"}},
	{"vmseq", []string{".vv", ".vx", ".vi"}},
	{"vmsne", []string{".vv", ".vx", ".vi"}},
	{"vmsltu", []string{".vv", ".vx"}},
	{"vmslt", []string{".vv", ".vx"}},
	{"vmsleu", []string{".vv", ".vx", ".vi"}},
	{"vmsle", []string{".vv", ".vx", ".vi"}},
	{"vmsgtu", []string{".vx", ".vi"}},
	{"vmsgt", []string{".vx", ".vi"}},
	{"vsll", []string{".vv", ".vx", ".vi_uimm"}},
	{"vsrl", []string{".vv", ".vx", ".vi_uimm"}},
	{"vsra", []string{".vv", ".vx", ".vi_uimm"}},
	{"vmerge", []string{".vvm", ".vxm", ".vim"}},
}

// multiply/divide (M-extension analogue), §11.
var vopMulDiv = []vop{
	{"vmul", []string{".vv", ".vx"}},
	{"vmulh", []string{".vv", ".vx"}},
	{"vmulhu", []string{".vv", ".vx"}},
	{"vmulhsu", []string{".vv", ".vx"}},
	{"vdivu", []string{".vv", ".vx"}},
	{"vdiv", []string{".vv", ".vx"}},
	{"vremu", []string{".vv", ".vx"}},
	{"vrem", []string{".vv", ".vx"}},
	{"vmacc", []string{".vv_mac", ".vx_mac"}},
	{"vnmsac", []string{".vv_mac", ".vx_mac"}},
	{"vmadd", []string{".vv_mac", ".vx_mac"}},
	{"vnmsub", []string{".vv_mac", ".vx_mac"}},
}

// widening integer arithmetic, §12.
var vopWidening = []vop{
	{"vwaddu", []string{".vv", ".vx"}},
	{"vwadd", []string{".vv", ".vx"}},
	{"vwsubu", []string{".vv", ".vx"}},
	{"vwsub", []string{".vv", ".vx"}},
	{"vwaddu", []string{".wv", ".wx"}},
	{"vwadd", []string{".wv", ".wx"}},
	{"vwmulu", []string{".vv", ".vx"}},
	{"vwmulsu", []string{".vv", ".vx"}},
	{"vwmul", []string{".vv", ".vx"}},
	{"vwmaccu", []string{".vv_mac", ".vx_mac"}},
	{"vwmacc", []string{".vv_mac", ".vx_mac"}},
	{"vwmaccsu", []string{".vv_mac", ".vx_mac"}},
}

// fixed-point saturating arithmetic, §13.
var vopFixedPoint = []vop{
	{"vsaddu", []string{".vv", ".vx", ".vi"}},
	{"vsadd", []string{".vv", ".vx", ".vi"}},
	{"vssubu", []string{".vv", ".vx"}},
	{"vssub", []string{".vv", ".vx"}},
	{"vaadd", []string{".vv", ".vx"}},
	{"vasub", []string{".vv", ".vx"}},
	{"vsmul", []string{".vv", ".vx"}},
	{"vssrl", []string{".vv", ".vx", ".vi_uimm"}},
	{"vssra", []string{".vv", ".vx", ".vi_uimm"}},
	{"vnclipu", []string{".wv", ".wx", ".wi"}},
	{"vnclip", []string{".wv", ".wx", ".wi"}},
}

// floating-point arithmetic, §13/§14.
var vopFloat = []vop{
	{"vfadd", []string{".vv", ".vf"}},
	{"vfsub", []string{".vv", ".vf"}},
	{"vfrsub", []string{".vf"}},
	{"vfmul", []string{".vv", ".vf"}},
	{"vfdiv", []string{".vv", ".vf"}},
	{"vfrdiv", []string{".vf"}},
	{"vfmin", []string{".vv", ".vf"}},
	{"vfmax", []string{".vv", ".vf"}},
	{"vfsgnj", []string{".vv", ".vf"}},
	{"vfsgnjn", []string{".vv", ".vf"}},
	{"vfsgnjx", []string{".vv", ".vf"}},
	{"vmfeq", []string{".vv", ".vf"}},
	{"vmfne", []string{".vv", ".vf"}},
	{"vmflt", []string{".vv", ".vf"}},
	{"vmfle", []string{".vv", ".vf"}},
	{"vmfgt", []string{".vf"}},
	{"vmfge", []string{".vf"}},
	{"vfsqrt", []string{".v"}},
	{"vfclass", []string{".v"}},
	{"vfmacc", []string{".vv_mac", ".vx_mac"}},
	{"vfnmacc", []string{".vv_mac", ".vx_mac"}},
	{"vfmsac", []string{".vv_mac", ".vx_mac"}},
	{"vfnmsac", []string{".vv_mac", ".vx_mac"}},
	{"vfwadd", []string{".vv", ".vf"}},
	{"vfwsub", []string{".vv", ".vf"}},
	{"vfwmul", []string{".vv", ".vf"}},
	{"vfwcvt.f.x.v", []string{".v_nom"}},
	{"vfcvt.x.f.v", []string{".v_nom"}},
}

// reduction, §14.
var vopReduction = []vop{
	{"vredsum", []string{".vs"}},
	{"vredmaxu", []string{".vs"}},
	{"vredmax", []string{".vs"}},
	{"vredminu", []string{".vs"}},
	{"vredmin", []string{".vs"}},
	{"vredand", []string{".vs"}},
	{"vredor", []string{".vs"}},
	{"vredxor", []string{".vs"}},
	{"vwredsumu", []string{".vs"}},
	{"vwredsum", []string{".vs"}},
	{"vfredosum", []string{".vs"}},
	{"vfredusum", []string{".vs"}},
	{"vfredmax", []string{".vs"}},
	{"vfredmin", []string{".vs"}},
	{"vfwredosum", []string{".vs"}},
	{"vfwredusum", []string{".vs"}},
}

// mask register logical, §15. vcpop/vfirst use destination rd, the
// rest vd; suffix templates encode that via the ".m"/".mm"/".m2" forms.
var vopMask = []vop{
	{"vmand", []string{".mm"}},
	{"vmandn", []string{".mm"}},
	{"vmnand", []string{".mm"}},
	{"vmxor", []string{".mm"}},
	{"vmor", []string{".mm"}},
	{"vmnor", []string{".mm"}},
	{"vmorn", []string{".mm"}},
	{"vmxnor", []string{".mm"}},
	{"vcpop", []string{".m"}},
	{"vfirst", []string{".m"}},
	{"vmsbf", []string{".m2"}},
	{"vmsif", []string{".m2"}},
	{"vmsof", []string{".m2"}},
	{"viota", []string{".m2"}},
	{"vid", []string{".v2"}},
}

// permutation, §16.
var vopPermute = []vop{
	{"vslideup", []string{".vx", ".vi_uimm"}},
	{"vslidedown", []string{".vx", ".vi_uimm"}},
	{"vslide1up", []string{".vx"}},
	{"vslide1down", []string{".vx"}},
	{"vfslide1up", []string{".vf"}},
	{"vfslide1down", []string{".vf"}},
	{"vrgather", []string{".vv", ".vx", ".vi_uimm"}},
	{"vrgatherei16", []string{".vv"}},
	{"vcompress", []string{".vm"}},
}
