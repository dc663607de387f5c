package vm

// Op is the closed enumeration of every mnemonic the decoder can produce.
// Compressed (C-extension) encodings are expanded to one of these at
// decode time; the rest of the pipeline never sees a 16-bit form.
type Op int

const (
	OpIllegal Op = iota
	OpNop

	// Base I integer-register-immediate / register-register.
	OpLui
	OpAuipc
	OpJal
	OpJalr
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu
	OpSb
	OpSh
	OpSw
	OpAddi
	OpSlti
	OpSltiu
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai
	OpAdd
	OpSub
	OpSll
	OpSlt
	OpSltu
	OpXor
	OpSrl
	OpSra
	OpOr
	OpAnd
	OpFence
	OpFenceI
	OpEcall
	OpEbreak

	// M extension.
	OpMul
	OpMulh
	OpMulhsu
	OpMulhu
	OpDiv
	OpDivu
	OpRem
	OpRemu

	// A extension.
	OpLrW
	OpScW
	OpAmoswapW
	OpAmoaddW
	OpAmoxorW
	OpAmoandW
	OpAmoorW
	OpAmominW
	OpAmomaxW
	OpAmominuW
	OpAmomaxuW

	// F extension (single precision only).
	OpFlw
	OpFsw
	OpFmaddS
	OpFmsubS
	OpFnmsubS
	OpFnmaddS
	OpFaddS
	OpFsubS
	OpFmulS
	OpFdivS
	OpFsqrtS
	OpFsgnjS
	OpFsgnjnS
	OpFsgnjxS
	OpFminS
	OpFmaxS
	OpFcvtWS
	OpFcvtWuS
	OpFmvXW
	OpFeqS
	OpFltS
	OpFleS
	OpFclassS
	OpFcvtSW
	OpFcvtSWu
	OpFmvWX

	// Zicsr.
	OpCsrrw
	OpCsrrs
	OpCsrrc
	OpCsrrwi
	OpCsrrsi
	OpCsrrci

	// Privileged / system.
	OpMret
	OpSret
	OpWfi
	OpSfenceVma

	// Zba.
	OpSh1add
	OpSh2add
	OpSh3add

	// Zbb.
	OpAndn
	OpOrn
	OpXnor
	OpClz
	OpCtz
	OpCpop
	OpMax
	OpMaxu
	OpMin
	OpMinu
	OpSextB
	OpSextH
	OpZextH
	OpRol
	OpRor
	OpRori
	OpOrcB
	OpRev8

	// Zbc.
	OpClmul
	OpClmulh
	OpClmulr

	// Zbs.
	OpBclr
	OpBclri
	OpBext
	OpBexti
	OpBinv
	OpBinvi
	OpBset
	OpBseti
)

var opNames = map[Op]string{
	OpIllegal: "illegal", OpNop: "nop",
	OpLui: "lui", OpAuipc: "auipc", OpJal: "jal", OpJalr: "jalr",
	OpBeq: "beq", OpBne: "bne", OpBlt: "blt", OpBge: "bge", OpBltu: "bltu", OpBgeu: "bgeu",
	OpLb: "lb", OpLh: "lh", OpLw: "lw", OpLbu: "lbu", OpLhu: "lhu",
	OpSb: "sb", OpSh: "sh", OpSw: "sw",
	OpAddi: "addi", OpSlti: "slti", OpSltiu: "sltiu", OpXori: "xori", OpOri: "ori", OpAndi: "andi",
	OpSlli: "slli", OpSrli: "srli", OpSrai: "srai",
	OpAdd: "add", OpSub: "sub", OpSll: "sll", OpSlt: "slt", OpSltu: "sltu",
	OpXor: "xor", OpSrl: "srl", OpSra: "sra", OpOr: "or", OpAnd: "and",
	OpFence: "fence", OpFenceI: "fence.i", OpEcall: "ecall", OpEbreak: "ebreak",
	OpMul: "mul", OpMulh: "mulh", OpMulhsu: "mulhsu", OpMulhu: "mulhu",
	OpDiv: "div", OpDivu: "divu", OpRem: "rem", OpRemu: "remu",
	OpLrW: "lr.w", OpScW: "sc.w", OpAmoswapW: "amoswap.w", OpAmoaddW: "amoadd.w",
	OpAmoxorW: "amoxor.w", OpAmoandW: "amoand.w", OpAmoorW: "amoor.w",
	OpAmominW: "amomin.w", OpAmomaxW: "amomax.w", OpAmominuW: "amominu.w", OpAmomaxuW: "amomaxu.w",
	OpFlw: "flw", OpFsw: "fsw",
	OpFmaddS: "fmadd.s", OpFmsubS: "fmsub.s", OpFnmsubS: "fnmsub.s", OpFnmaddS: "fnmadd.s",
	OpFaddS: "fadd.s", OpFsubS: "fsub.s", OpFmulS: "fmul.s", OpFdivS: "fdiv.s", OpFsqrtS: "fsqrt.s",
	OpFsgnjS: "fsgnj.s", OpFsgnjnS: "fsgnjn.s", OpFsgnjxS: "fsgnjx.s",
	OpFminS: "fmin.s", OpFmaxS: "fmax.s",
	OpFcvtWS: "fcvt.w.s", OpFcvtWuS: "fcvt.wu.s", OpFmvXW: "fmv.x.w",
	OpFeqS: "feq.s", OpFltS: "flt.s", OpFleS: "fle.s", OpFclassS: "fclass.s",
	OpFcvtSW: "fcvt.s.w", OpFcvtSWu: "fcvt.s.wu", OpFmvWX: "fmv.w.x",
	OpCsrrw: "csrrw", OpCsrrs: "csrrs", OpCsrrc: "csrrc",
	OpCsrrwi: "csrrwi", OpCsrrsi: "csrrsi", OpCsrrci: "csrrci",
	OpMret: "mret", OpSret: "sret", OpWfi: "wfi", OpSfenceVma: "sfence.vma",
	OpSh1add: "sh1add", OpSh2add: "sh2add", OpSh3add: "sh3add",
	OpAndn: "andn", OpOrn: "orn", OpXnor: "xnor",
	OpClz: "clz", OpCtz: "ctz", OpCpop: "cpop",
	OpMax: "max", OpMaxu: "maxu", OpMin: "min", OpMinu: "minu",
	OpSextB: "sext.b", OpSextH: "sext.h", OpZextH: "zext.h",
	OpRol: "rol", OpRor: "ror", OpRori: "rori", OpOrcB: "orc.b", OpRev8: "rev8",
	OpClmul: "clmul", OpClmulh: "clmulh", OpClmulr: "clmulr",
	OpBclr: "bclr", OpBclri: "bclri", OpBext: "bext", OpBexti: "bexti",
	OpBinv: "binv", OpBinvi: "binvi", OpBset: "bset", OpBseti: "bseti",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// IsTerminator reports whether an instruction with this opcode ends a
// basic block.
func (o Op) IsTerminator() bool {
	switch o {
	case OpBeq, OpBne, OpBlt, OpBge, OpBltu, OpBgeu,
		OpJal, OpJalr,
		OpEcall, OpEbreak,
		OpMret, OpSret, OpWfi,
		OpFenceI, OpSfenceVma:
		return true
	default:
		return false
	}
}

// WritesCSR reports whether executing this opcode may change paging or
// interrupt state and must therefore also terminate the block (the CSR
// write case of step 5). Conservative: any CSR write
// qualifies, since the written address is not known until execution.
func (o Op) WritesCSR() bool {
	switch o {
	case OpCsrrw, OpCsrrs, OpCsrrc, OpCsrrwi, OpCsrrsi, OpCsrrci:
		return true
	default:
		return false
	}
}

// IsBranch reports whether this is one of the six conditional branches.
func (o Op) IsBranch() bool {
	switch o {
	case OpBeq, OpBne, OpBlt, OpBge, OpBltu, OpBgeu:
		return true
	default:
		return false
	}
}

// IsControlFlow reports whether execInsn routes this opcode to execBranch
// (jal/jalr/the six branches), which sets Hart.PC itself.
func (o Op) IsControlFlow() bool {
	return o == OpJal || o == OpJalr || o.IsBranch()
}

// IsMem reports whether this opcode is a base-I integer load or store,
// dispatched to execMem.
func (o Op) IsMem() bool {
	switch o {
	case OpLb, OpLh, OpLw, OpLbu, OpLhu, OpSb, OpSh, OpSw:
		return true
	default:
		return false
	}
}

// IsAmo reports whether this opcode is an A-extension LR/SC or AMO op,
// dispatched to execAmo.
func (o Op) IsAmo() bool {
	switch o {
	case OpLrW, OpScW, OpAmoswapW, OpAmoaddW, OpAmoxorW, OpAmoandW, OpAmoorW,
		OpAmominW, OpAmomaxW, OpAmominuW, OpAmomaxuW:
		return true
	default:
		return false
	}
}

// IsFP reports whether this opcode is an F-extension op, dispatched to
// execFP.
func (o Op) IsFP() bool {
	switch o {
	case OpFlw, OpFsw, OpFmaddS, OpFmsubS, OpFnmsubS, OpFnmaddS,
		OpFaddS, OpFsubS, OpFmulS, OpFdivS, OpFsqrtS,
		OpFsgnjS, OpFsgnjnS, OpFsgnjxS, OpFminS, OpFmaxS,
		OpFcvtWS, OpFcvtWuS, OpFmvXW, OpFeqS, OpFltS, OpFleS, OpFclassS,
		OpFcvtSW, OpFcvtSWu, OpFmvWX:
		return true
	default:
		return false
	}
}

// IsBitmanip reports whether this opcode belongs to Zba/Zbb/Zbc/Zbs,
// dispatched to execBitmanip.
func (o Op) IsBitmanip() bool {
	switch o {
	case OpSh1add, OpSh2add, OpSh3add,
		OpAndn, OpOrn, OpXnor, OpClz, OpCtz, OpCpop, OpMax, OpMaxu, OpMin, OpMinu,
		OpSextB, OpSextH, OpZextH, OpRol, OpRor, OpRori, OpOrcB, OpRev8,
		OpClmul, OpClmulh, OpClmulr,
		OpBclr, OpBclri, OpBext, OpBexti, OpBinv, OpBinvi, OpBset, OpBseti:
		return true
	default:
		return false
	}
}

// IsCSR reports whether this opcode is one of the six Zicsr ops.
func (o Op) IsCSR() bool {
	switch o {
	case OpCsrrw, OpCsrrs, OpCsrrc, OpCsrrwi, OpCsrrsi, OpCsrrci:
		return true
	default:
		return false
	}
}

// IsSystem reports whether this opcode is dispatched to execSystem:
// ecall/ebreak, privileged returns, fences, and CSR access.
func (o Op) IsSystem() bool {
	switch o {
	case OpEcall, OpEbreak, OpMret, OpSret, OpWfi,
		OpFence, OpFenceI, OpSfenceVma:
		return true
	default:
		return o.IsCSR()
	}
}

// IsALU reports whether this opcode is dispatched to execALU: base-I
// register/immediate arithmetic, LUI/AUIPC, and the M-extension ops.
func (o Op) IsALU() bool {
	switch o {
	case OpNop, OpLui, OpAuipc,
		OpAddi, OpSlti, OpSltiu, OpXori, OpOri, OpAndi, OpSlli, OpSrli, OpSrai,
		OpAdd, OpSub, OpSll, OpSlt, OpSltu, OpXor, OpSrl, OpSra, OpOr, OpAnd,
		OpMul, OpMulh, OpMulhsu, OpMulhu, OpDiv, OpDivu, OpRem, OpRemu:
		return true
	default:
		return false
	}
}
