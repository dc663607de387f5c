package vm

// decodeCompressed expands a 16-bit C-extension encoding into the
// equivalent 32-bit decoded instruction, exactly as the RISC-V C-extension
// mapping table specifies. The rest of the pipeline never
// sees the 16-bit form again: Decoded.Size records 2 so the builder still
// advances the guest PC correctly.
func decodeCompressed(inst uint16, pc uint32) (*Decoded, error) {
	d := &Decoded{PC: pc, Raw: uint32(inst), Size: 2}

	quadrant := inst & 0x3
	funct3 := (inst >> 13) & 0x7

	switch quadrant {
	case 0x0:
		return decodeCQuadrant0(d, inst, funct3, pc)
	case 0x1:
		return decodeCQuadrant1(d, inst, funct3, pc)
	case 0x2:
		return decodeCQuadrant2(d, inst, funct3, pc)
	default:
		return nil, &IllegalInstructionError{uint32(inst), pc}
	}
}

// short registers (x8-x15) used by the C', CL, CS, CB, CIW formats.
func shortReg(field uint16) uint32 { return uint32(field&0x7) + 8 }

func decodeCQuadrant0(d *Decoded, inst uint16, funct3 uint16, pc uint32) (*Decoded, error) {
	rdS := shortReg(inst >> 2)
	rs1S := shortReg(inst >> 7)
	switch funct3 {
	case 0x0: // C.ADDI4SPN -> addi rd', x2, nzuimm
		nzuimm := uint32(inst>>7&0x30) | uint32(inst>>1&0x3c0) | uint32(inst>>4&0x4) | uint32(inst>>2&0x8)
		if nzuimm == 0 {
			return nil, &IllegalInstructionError{uint32(inst), pc}
		}
		d.Op = OpAddi
		d.Rd, d.Rs1 = rdS, 2
		d.Imm = int32(nzuimm)
	case 0x2: // C.LW -> lw rd', offset(rs1')
		d.Op = OpLw
		d.Rd, d.Rs1 = rdS, rs1S
		d.Imm = int32(clwswImm(inst))
	case 0x6: // C.SW -> sw rs2', offset(rs1')
		d.Op = OpSw
		d.Rs1, d.Rs2 = rs1S, rdS
		d.Imm = int32(clwswImm(inst))
	default:
		return nil, &IllegalInstructionError{uint32(inst), pc}
	}
	return d, nil
}

func clwswImm(inst uint16) uint32 {
	return uint32(inst>>7&0x38) | uint32(inst<<1&0x40) | uint32(inst>>4&0x4)
}

func decodeCQuadrant1(d *Decoded, inst uint16, funct3 uint16, pc uint32) (*Decoded, error) {
	rd := uint32(inst >> 7 & 0x1f)
	switch funct3 {
	case 0x0: // C.ADDI / C.NOP (rd==0 is a HINT and decodes as nop; nzimm==0 with rd!=0 is also a HINT and decodes as addi rd, rd, 0, which has no effect)
		imm := signExtend(ciImm(inst), 6)
		if rd == 0 {
			d.Op = OpNop
			return d, nil
		}
		d.Op = OpAddi
		d.Rd, d.Rs1 = rd, rd
		d.Imm = imm
	case 0x1: // C.JAL -> jal x1, imm
		d.Op = OpJal
		d.Rd = 1
		d.Imm = cjImm(inst)
	case 0x2: // C.LI -> addi rd, x0, imm
		if rd == 0 {
			return nil, &IllegalInstructionError{uint32(inst), pc}
		}
		d.Op = OpAddi
		d.Rd, d.Rs1 = rd, 0
		d.Imm = signExtend(ciImm(inst), 6)
	case 0x3:
		if rd == 2 { // C.ADDI16SP -> addi x2, x2, nzimm
			nzimm := uint32(inst>>3&0x200) | uint32(inst>>2&0x10) | uint32(inst<<1&0x40) |
				uint32(inst<<4&0x180) | uint32(inst<<3&0x20)
			if nzimm == 0 {
				return nil, &IllegalInstructionError{uint32(inst), pc}
			}
			d.Op = OpAddi
			d.Rd, d.Rs1 = 2, 2
			d.Imm = signExtend(nzimm, 10)
			return d, nil
		}
		// C.LUI -> lui rd, nzimm (HINT when rd==0, reserved when nzimm==0)
		imm6 := uint32(inst>>12&0x1)<<5 | uint32(inst>>2&0x1f)
		if imm6 == 0 {
			return nil, &IllegalInstructionError{uint32(inst), pc}
		}
		if rd == 0 {
			d.Op = OpNop
			return d, nil
		}
		d.Op = OpLui
		d.Rd = rd
		d.Imm = signExtend(imm6, 6) << 12
	case 0x4:
		return decodeCQuadrant1Alu(d, inst, pc)
	case 0x5: // C.J -> jal x0, imm
		d.Op = OpJal
		d.Rd = 0
		d.Imm = cjImm(inst)
	case 0x6: // C.BEQZ
		rs1S := shortReg(inst >> 7)
		d.Op = OpBeq
		d.Rs1, d.Rs2 = rs1S, 0
		d.Imm = cbImm(inst)
	case 0x7: // C.BNEZ
		rs1S := shortReg(inst >> 7)
		d.Op = OpBne
		d.Rs1, d.Rs2 = rs1S, 0
		d.Imm = cbImm(inst)
	}
	return d, nil
}

func ciImm(inst uint16) uint32 {
	return uint32(inst>>7&0x20) | uint32(inst>>2&0x1f)
}

func cjImm(inst uint16) int32 {
	v := uint32(inst>>1&0x800) | uint32(inst>>7&0x10) | uint32(inst>>1&0x300) |
		uint32(inst<<2&0x400) | uint32(inst>>1&0x40) | uint32(inst<<1&0x80) |
		uint32(inst>>2&0xe) | uint32(inst<<3&0x20)
	return signExtend(v, 12)
}

func cbImm(inst uint16) int32 {
	v := uint32(inst>>4&0x100) | uint32(inst>>7&0x18) | uint32(inst<<1&0xc0) |
		uint32(inst>>2&0x6) | uint32(inst<<3&0x20)
	return signExtend(v, 9)
}

func decodeCQuadrant1Alu(d *Decoded, inst uint16, pc uint32) (*Decoded, error) {
	rdS := shortReg(inst >> 7)
	funct2 := inst >> 10 & 0x3
	switch funct2 {
	case 0x0: // C.SRLI
		shamt := uint32(inst>>7&0x20) | uint32(inst>>2&0x1f)
		if shamt&0x20 != 0 || shamt == 0 {
			return nil, &IllegalInstructionError{uint32(inst), pc} // shamt[5]=1 reserved for RV32
		}
		d.Op, d.Rd, d.Rs1, d.Shamt = OpSrli, rdS, rdS, shamt
	case 0x1: // C.SRAI
		shamt := uint32(inst>>7&0x20) | uint32(inst>>2&0x1f)
		if shamt&0x20 != 0 || shamt == 0 {
			return nil, &IllegalInstructionError{uint32(inst), pc} // shamt[5]=1 reserved for RV32
		}
		d.Op, d.Rd, d.Rs1, d.Shamt = OpSrai, rdS, rdS, shamt
	case 0x2: // C.ANDI
		d.Op, d.Rd, d.Rs1 = OpAndi, rdS, rdS
		d.Imm = signExtend(ciImm(inst), 6)
	case 0x3:
		rs2S := shortReg(inst >> 2)
		bit12 := inst >> 12 & 0x1
		funct2b := inst >> 5 & 0x3
		d.Rd, d.Rs1, d.Rs2 = rdS, rdS, rs2S
		if bit12 == 0 {
			switch funct2b {
			case 0x0:
				d.Op = OpSub
			case 0x1:
				d.Op = OpXor
			case 0x2:
				d.Op = OpOr
			case 0x3:
				d.Op = OpAnd
			}
		} else {
			return nil, &IllegalInstructionError{uint32(inst), pc} // RV64-only C.SUBW/ADDW
		}
	}
	return d, nil
}

func decodeCQuadrant2(d *Decoded, inst uint16, funct3 uint16, pc uint32) (*Decoded, error) {
	rd := uint32(inst >> 7 & 0x1f)
	rs2 := uint32(inst >> 2 & 0x1f)
	switch funct3 {
	case 0x0: // C.SLLI
		shamt := uint32(inst>>7&0x20) | uint32(inst>>2&0x1f)
		if shamt&0x20 != 0 || shamt == 0 {
			return nil, &IllegalInstructionError{uint32(inst), pc} // shamt[5]=1 reserved for RV32
		}
		if rd == 0 { // C.SLLI with rd=x0 is a HINT
			d.Op = OpNop
			return d, nil
		}
		d.Op, d.Rd, d.Rs1, d.Shamt = OpSlli, rd, rd, shamt
	case 0x2: // C.LWSP
		if rd == 0 {
			return nil, &IllegalInstructionError{uint32(inst), pc}
		}
		off := uint32(inst>>7&0x20) | uint32(inst>>2&0x1c) | uint32(inst<<4&0xc0)
		d.Op, d.Rd, d.Rs1 = OpLw, rd, 2
		d.Imm = int32(off)
	case 0x4:
		bit12 := inst >> 12 & 0x1
		if bit12 == 0 {
			if rs2 == 0 { // C.JR -> jalr x0, rd, 0
				if rd == 0 {
					return nil, &IllegalInstructionError{uint32(inst), pc}
				}
				d.Op, d.Rd, d.Rs1 = OpJalr, 0, rd
				d.Imm = 0
			} else { // C.MV -> add rd, x0, rs2
				d.Op, d.Rd, d.Rs1, d.Rs2 = OpAdd, rd, 0, rs2
			}
		} else {
			if rd == 0 && rs2 == 0 { // C.EBREAK
				d.Op = OpEbreak
			} else if rs2 == 0 { // C.JALR -> jalr x1, rd, 0
				d.Op, d.Rd, d.Rs1 = OpJalr, 1, rd
				d.Imm = 0
			} else { // C.ADD -> add rd, rd, rs2
				if rd == 0 {
					return nil, &IllegalInstructionError{uint32(inst), pc}
				}
				d.Op, d.Rd, d.Rs1, d.Rs2 = OpAdd, rd, rd, rs2
			}
		}
	case 0x6: // C.SWSP
		off := uint32(inst>>7&0x3c) | uint32(inst>>1&0xc0)
		d.Op, d.Rs1, d.Rs2 = OpSw, 2, rs2
		d.Imm = int32(off)
	default:
		return nil, &IllegalInstructionError{uint32(inst), pc}
	}
	return d, nil
}
