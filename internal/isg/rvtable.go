package isg

// rop names a scalar RV64GC mnemonic and its operand pattern, grounded
// on the teacher's riscv64_instructions.go opcode tables (reused here
// for generation instead of decode).
type ropKind int

const (
	ropRRR ropKind = iota // rd, rs1, rs2
	ropRRI                // rd, rs1, imm
	ropRI                 // rd, imm (lui/auipc)
	ropBranch              // rs1, rs2, label
	ropJAL                  // rd, label
	ropJALR                 // rd, rs1, imm
)

type rop struct {
	mnemonic string
	kind     ropKind
}

var ropInteger = []rop{
	{"add", ropRRR}, {"sub", ropRRR}, {"and", ropRRR}, {"or", ropRRR}, {"xor", ropRRR},
	{"sll", ropRRR}, {"srl", ropRRR}, {"sra", ropRRR}, {"slt", ropRRR}, {"sltu", ropRRR},
	{"addw", ropRRR}, {"subw", ropRRR}, {"sllw", ropRRR}, {"srlw", ropRRR}, {"sraw", ropRRR},
	{"addi", ropRRI}, {"andi", ropRRI}, {"ori", ropRRI}, {"xori", ropRRI},
	{"slti", ropRRI}, {"sltiu", ropRRI}, {"addiw", ropRRI},
	{"lui", ropRI}, {"auipc", ropRI},
}

var ropMulDiv = []rop{
	{"mul", ropRRR}, {"mulh", ropRRR}, {"mulhsu", ropRRR}, {"mulhu", ropRRR},
	{"div", ropRRR}, {"divu", ropRRR}, {"rem", ropRRR}, {"remu", ropRRR},
	{"mulw", ropRRR}, {"divw", ropRRR}, {"divuw", ropRRR}, {"remw", ropRRR}, {"remuw", ropRRR},
}

// control-flow: branches and jumps, the supplemented "Module C" feature
// enabling <instr_control> (see SPEC_FULL.md §3.1) that the distilled
// grammar left disabled.
var ropControl = []rop{
	{"beq", ropBranch}, {"bne", ropBranch}, {"blt", ropBranch}, {"bge", ropBranch},
	{"bltu", ropBranch}, {"bgeu", ropBranch},
	{"jal", ropJAL}, {"jalr", ropJALR},
}

type loadStore struct {
	mnemonic string
	width    int // bytes
}

var scalarLoads = []loadStore{
	{"lb", 1}, {"lh", 2}, {"lw", 4}, {"ld", 8}, {"lbu", 1}, {"lhu", 2}, {"lwu", 4},
}

var scalarStores = []loadStore{
	{"sb", 1}, {"sh", 2}, {"sw", 4}, {"sd", 8},
}

var fpLoads = []loadStore{
	{"flw", 4}, {"fld", 8},
}

var fpStores = []loadStore{
	{"fsw", 4}, {"fsd", 8},
}

var ropFloat = []rop{
	{"fadd.s", ropRRR}, {"fsub.s", ropRRR}, {"fmul.s", ropRRR}, {"fdiv.s", ropRRR},
	{"fadd.d", ropRRR}, {"fsub.d", ropRRR}, {"fmul.d", ropRRR}, {"fdiv.d", ropRRR},
	{"fmin.s", ropRRR}, {"fmax.s", ropRRR}, {"fmin.d", ropRRR}, {"fmax.d", ropRRR},
	{"fsgnj.s", ropRRR}, {"fsgnjn.s", ropRRR}, {"fsgnjx.s", ropRRR},
	{"feq.s", ropRRR}, {"flt.s", ropRRR}, {"fle.s", ropRRR},
	{"feq.d", ropRRR}, {"flt.d", ropRRR}, {"fle.d", ropRRR},
}

// atomics, A-extension.
var ropAtomic = []rop{
	{"amoswap.w", ropRRR}, {"amoadd.w", ropRRR}, {"amoxor.w", ropRRR},
	{"amoand.w", ropRRR}, {"amoor.w", ropRRR},
	{"amoswap.d", ropRRR}, {"amoadd.d", ropRRR},
}
