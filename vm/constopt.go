package vm

// ConstPropagate runs a single forward dataflow pass over a freshly built
// block, tracking which integer registers hold a compile-time-known value
// at each point. Instructions whose result is fully known
// are rewritten in place to a pure materialization (`lui rd, result`) or,
// for branches with both operands constant, to the unconditional jump the
// branch degenerates into. Rewriting never changes instruction count,
// length, or PC, so chaining and caching are unaffected; a rewritten
// instruction is byte-for-byte architecturally equivalent to the sequence
// it replaces, for any memory contents or caller-saved register values.
//
// x0 is always constant zero. An instruction this pass cannot reason
// about (loads, CSR access, AMO, FP, anything else writing rd from a
// non-arithmetic source) marks its destination non-constant and is left
// untouched.
func ConstPropagate(b *Block) {
	var isConst [32]bool
	var constVal [32]uint32
	isConst[0] = true

	setConst := func(rd uint32, v uint32) {
		if rd == 0 {
			return
		}
		isConst[rd] = true
		constVal[rd] = v
	}
	setUnknown := func(rd uint32) {
		if rd == 0 {
			return
		}
		isConst[rd] = false
	}

	materialize := func(d *Decoded, v uint32) {
		setConst(d.Rd, v)
		d.Op = OpLui
		d.Imm = int32(v)
	}

	for _, d := range b.Insns {
		switch d.Op {
		case OpLui:
			setConst(d.Rd, uint32(d.Imm))

		case OpAuipc:
			v := d.PC + uint32(d.Imm)
			materialize(d, v)

		case OpAddi:
			if isConst[d.Rs1] {
				materialize(d, constVal[d.Rs1]+uint32(d.Imm))
			} else {
				setUnknown(d.Rd)
			}
		case OpSlti:
			foldImm(d, isConst, constVal, materialize, setUnknown, func(a uint32) uint32 { return boolToWord(int32(a) < d.Imm) })
		case OpSltiu:
			foldImm(d, isConst, constVal, materialize, setUnknown, func(a uint32) uint32 { return boolToWord(a < uint32(d.Imm)) })
		case OpXori:
			foldImm(d, isConst, constVal, materialize, setUnknown, func(a uint32) uint32 { return a ^ uint32(d.Imm) })
		case OpOri:
			foldImm(d, isConst, constVal, materialize, setUnknown, func(a uint32) uint32 { return a | uint32(d.Imm) })
		case OpAndi:
			foldImm(d, isConst, constVal, materialize, setUnknown, func(a uint32) uint32 { return a & uint32(d.Imm) })
		case OpSlli:
			foldImm(d, isConst, constVal, materialize, setUnknown, func(a uint32) uint32 { return a << d.Shamt })
		case OpSrli:
			foldImm(d, isConst, constVal, materialize, setUnknown, func(a uint32) uint32 { return a >> d.Shamt })
		case OpSrai:
			foldImm(d, isConst, constVal, materialize, setUnknown, func(a uint32) uint32 { return uint32(int32(a) >> d.Shamt) })

		case OpAdd:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return a + b })
		case OpSub:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return a - b })
		case OpAnd:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return a & b })
		case OpOr:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return a | b })
		case OpXor:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return a ^ b })
		case OpSll:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return a << (b & 0x1f) })
		case OpSrl:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return a >> (b & 0x1f) })
		case OpSra:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 0x1f)) })
		case OpSlt:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return boolToWord(int32(a) < int32(b)) })
		case OpSltu:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return boolToWord(a < b) })

		case OpMul:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return a * b })
		case OpMulh:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return uint32((int64(int32(a)) * int64(int32(b))) >> 32) })
		case OpMulhsu:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return uint32((int64(int32(a)) * int64(b)) >> 32) })
		case OpMulhu:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return uint32((uint64(a) * uint64(b)) >> 32) })
		case OpDiv:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return uint32(sdiv(int32(a), int32(b))) })
		case OpDivu:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 {
				if b == 0 {
					return 0xffffffff
				}
				return a / b
			})
		case OpRem:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 { return uint32(srem(int32(a), int32(b))) })
		case OpRemu:
			foldRR(d, isConst, constVal, materialize, setUnknown, func(a, b uint32) uint32 {
				if b == 0 {
					return a
				}
				return a % b
			})

		case OpJal:
			setConst(d.Rd, d.PC+d.Size)

		case OpBeq:
			foldBranch(d, isConst, constVal, func(a, b uint32) bool { return a == b })
		case OpBne:
			foldBranch(d, isConst, constVal, func(a, b uint32) bool { return a != b })
		case OpBlt:
			foldBranch(d, isConst, constVal, func(a, b uint32) bool { return int32(a) < int32(b) })
		case OpBge:
			foldBranch(d, isConst, constVal, func(a, b uint32) bool { return int32(a) >= int32(b) })
		case OpBltu:
			foldBranch(d, isConst, constVal, func(a, b uint32) bool { return a < b })
		case OpBgeu:
			foldBranch(d, isConst, constVal, func(a, b uint32) bool { return a >= b })

		case OpLb, OpLh, OpLw, OpLbu, OpLhu:
			setUnknown(d.Rd)

		default:
			if writesGPR(d.Op) {
				setUnknown(d.Rd)
			}
		}
	}
}

func foldImm(d *Decoded, isConst [32]bool, constVal [32]uint32,
	materialize func(*Decoded, uint32), setUnknown func(uint32), f func(uint32) uint32) {
	if isConst[d.Rs1] {
		materialize(d, f(constVal[d.Rs1]))
	} else {
		setUnknown(d.Rd)
	}
}

func foldRR(d *Decoded, isConst [32]bool, constVal [32]uint32,
	materialize func(*Decoded, uint32), setUnknown func(uint32), f func(uint32, uint32) uint32) {
	if isConst[d.Rs1] && isConst[d.Rs2] {
		materialize(d, f(constVal[d.Rs1], constVal[d.Rs2]))
	} else {
		setUnknown(d.Rd)
	}
}

// foldBranch rewrites a branch with two constant operands into the
// unconditional jump it degenerates into: `jal x0, off` if taken, the
// fall-through `jal x0, 4` otherwise.
func foldBranch(d *Decoded, isConst [32]bool, constVal [32]uint32, cond func(a, b uint32) bool) {
	if !isConst[d.Rs1] || !isConst[d.Rs2] {
		return
	}
	d.Op = OpJal
	d.Rd = 0
	if cond(constVal[d.Rs1], constVal[d.Rs2]) {
		// d.Imm already holds the branch offset.
	} else {
		d.Imm = int32(d.Size)
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// sdiv implements RISC-V signed division semantics: divide by zero
// yields -1, and MinInt32/-1 overflows to MinInt32 rather than trapping.
func sdiv(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == -2147483648 && b == -1 {
		return -2147483648
	}
	return a / b
}

// srem mirrors sdiv's edge cases for remainder: divide by zero returns
// the dividend unchanged, and MinInt32 % -1 is 0.
func srem(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == -2147483648 && b == -1 {
		return 0
	}
	return a % b
}

// writesGPR reports whether an opcode not otherwise handled above writes
// an integer destination register whose value this pass cannot compute
// (CSR access, AMO results, FP-to-integer moves, bit-manipulation ops
// the fold table does not cover). Anything it returns true for is
// conservatively marked non-constant.
func writesGPR(o Op) bool {
	switch o {
	case OpJalr,
		OpCsrrw, OpCsrrs, OpCsrrc, OpCsrrwi, OpCsrrsi, OpCsrrci,
		OpLrW, OpScW, OpAmoswapW, OpAmoaddW, OpAmoxorW, OpAmoandW, OpAmoorW,
		OpAmominW, OpAmomaxW, OpAmominuW, OpAmomaxuW,
		OpFmvXW, OpFeqS, OpFltS, OpFleS, OpFclassS, OpFcvtWS, OpFcvtWuS,
		OpSh1add, OpSh2add, OpSh3add,
		OpAndn, OpOrn, OpXnor, OpClz, OpCtz, OpCpop, OpMax, OpMaxu, OpMin, OpMinu,
		OpSextB, OpSextH, OpZextH, OpRol, OpRor, OpRori, OpOrcB, OpRev8,
		OpClmul, OpClmulh, OpClmulr,
		OpBclr, OpBclri, OpBext, OpBexti, OpBinv, OpBinvi, OpBset, OpBseti:
		return true
	default:
		return false
	}
}
