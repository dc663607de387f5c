package vm

// execALU executes the base-I register/immediate ALU ops, LUI/AUIPC, and
// the M-extension multiply/divide family. None of these change control
// flow, so the caller always advances PC by d.Size afterward.
func execALU(cpu *CPU, d *Decoded) *Trap {
	h := cpu.Hart
	rs1 := h.GetX(d.Rs1)
	rs2 := h.GetX(d.Rs2)

	switch d.Op {
	case OpNop:
		// nothing

	case OpLui:
		h.SetX(d.Rd, uint32(d.Imm))
	case OpAuipc:
		h.SetX(d.Rd, d.PC+uint32(d.Imm))

	case OpAddi:
		h.SetX(d.Rd, rs1+uint32(d.Imm))
	case OpSlti:
		h.SetX(d.Rd, boolToWord(int32(rs1) < d.Imm))
	case OpSltiu:
		h.SetX(d.Rd, boolToWord(rs1 < uint32(d.Imm)))
	case OpXori:
		h.SetX(d.Rd, rs1^uint32(d.Imm))
	case OpOri:
		h.SetX(d.Rd, rs1|uint32(d.Imm))
	case OpAndi:
		h.SetX(d.Rd, rs1&uint32(d.Imm))
	case OpSlli:
		h.SetX(d.Rd, rs1<<d.Shamt)
	case OpSrli:
		h.SetX(d.Rd, rs1>>d.Shamt)
	case OpSrai:
		h.SetX(d.Rd, uint32(int32(rs1)>>d.Shamt))

	case OpAdd:
		h.SetX(d.Rd, rs1+rs2)
	case OpSub:
		h.SetX(d.Rd, rs1-rs2)
	case OpSll:
		h.SetX(d.Rd, rs1<<(rs2&0x1f))
	case OpSlt:
		h.SetX(d.Rd, boolToWord(int32(rs1) < int32(rs2)))
	case OpSltu:
		h.SetX(d.Rd, boolToWord(rs1 < rs2))
	case OpXor:
		h.SetX(d.Rd, rs1^rs2)
	case OpSrl:
		h.SetX(d.Rd, rs1>>(rs2&0x1f))
	case OpSra:
		h.SetX(d.Rd, uint32(int32(rs1)>>(rs2&0x1f)))
	case OpOr:
		h.SetX(d.Rd, rs1|rs2)
	case OpAnd:
		h.SetX(d.Rd, rs1&rs2)

	case OpMul:
		h.SetX(d.Rd, rs1*rs2)
	case OpMulh:
		h.SetX(d.Rd, uint32((int64(int32(rs1))*int64(int32(rs2)))>>32))
	case OpMulhsu:
		h.SetX(d.Rd, uint32((int64(int32(rs1))*int64(rs2))>>32))
	case OpMulhu:
		h.SetX(d.Rd, uint32((uint64(rs1)*uint64(rs2))>>32))
	case OpDiv:
		h.SetX(d.Rd, uint32(sdiv(int32(rs1), int32(rs2))))
	case OpDivu:
		if rs2 == 0 {
			h.SetX(d.Rd, 0xffffffff)
		} else {
			h.SetX(d.Rd, rs1/rs2)
		}
	case OpRem:
		h.SetX(d.Rd, uint32(srem(int32(rs1), int32(rs2))))
	case OpRemu:
		if rs2 == 0 {
			h.SetX(d.Rd, rs1)
		} else {
			h.SetX(d.Rd, rs1%rs2)
		}

	default:
		return NewTrap(CauseIllegalInstruction, d.Raw)
	}
	return nil
}
