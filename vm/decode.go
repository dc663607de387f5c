package vm

import "fmt"

// Decoded is the uniform output of the decoder: an opcode tag plus every
// operand field the interpreter needs to execute the instruction without
// re-inspecting the raw word.
type Decoded struct {
	Op  Op
	PC  uint32
	Raw uint32 // original 32-bit form (compressed encodings are pre-expanded)

	Rd, Rs1, Rs2, Rs3 uint32
	Imm               int32
	Shamt             uint32
	Csr               uint32
	Rm                uint32 // rounding mode (F extension)

	// Size is 2 for an instruction that started life as a compressed
	// encoding, 4 otherwise; the builder uses it to advance PC.
	Size uint32
}

// IllegalInstructionError is returned by Decode for any encoding not in
// the supported set.
type IllegalInstructionError struct {
	Word uint32
	PC   uint32
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("illegal instruction 0x%08x at pc 0x%08x", e.Word, e.PC)
}

// Extensions gates which opcode groups the decoder will accept. Disabled
// groups decode as illegal instructions
type Extensions struct {
	M, A, F, C       bool
	Zba, Zbb, Zbc, Zbs bool
	Zicsr, Zifencei  bool
}

// DefaultExtensions enables every supported extension.
func DefaultExtensions() Extensions {
	return Extensions{M: true, A: true, F: true, C: true, Zba: true, Zbb: true, Zbc: true, Zbs: true, Zicsr: true, Zifencei: true}
}

// Decode turns a raw encoding into a Decoded instruction. If the low two
// bits of word are not 0b11, only the low 16 bits are significant and are
// first expanded from their compressed form. Decode is
// pure: it never touches hart state.
func Decode(word uint32, pc uint32, ext Extensions) (*Decoded, error) {
	if word&0x3 != 0x3 {
		if !ext.C {
			return nil, &IllegalInstructionError{Word: word & 0xffff, PC: pc}
		}
		return decodeCompressed(uint16(word), pc)
	}
	return decode32(word, pc, ext)
}

func decode32(in uint32, pc uint32, ext Extensions) (*Decoded, error) {
	d := &Decoded{PC: pc, Raw: in, Size: 4}
	d.Rs1 = in >> 15 & 0x1f
	d.Rs2 = in >> 20 & 0x1f
	d.Rd = in >> 7 & 0x1f
	d.Rs3 = in >> 27 & 0x1f
	d.Rm = in >> 12 & 0x7

	opcode := in & 0x7f
	funct3 := (in >> 12) & 0x7
	funct7 := (in >> 25) & 0x7f

	switch opcode {
	case 0x37: // LUI
		d.Op = OpLui
		d.Imm = int32(in & 0xfffff000)
	case 0x17: // AUIPC
		d.Op = OpAuipc
		d.Imm = int32(in & 0xfffff000)
	case 0x6f: // JAL
		d.Op = OpJal
		d.Imm = decodeJImm(in)
	case 0x67: // JALR
		if funct3 != 0 {
			return nil, &IllegalInstructionError{in, pc}
		}
		d.Op = OpJalr
		d.Imm = decodeIImm(in)
	case 0x63: // Branch
		d.Imm = decodeBImm(in)
		switch funct3 {
		case 0x0:
			d.Op = OpBeq
		case 0x1:
			d.Op = OpBne
		case 0x4:
			d.Op = OpBlt
		case 0x5:
			d.Op = OpBge
		case 0x6:
			d.Op = OpBltu
		case 0x7:
			d.Op = OpBgeu
		default:
			return nil, &IllegalInstructionError{in, pc}
		}
	case 0x03: // Load
		d.Imm = decodeIImm(in)
		switch funct3 {
		case 0x0:
			d.Op = OpLb
		case 0x1:
			d.Op = OpLh
		case 0x2:
			d.Op = OpLw
		case 0x4:
			d.Op = OpLbu
		case 0x5:
			d.Op = OpLhu
		default:
			return nil, &IllegalInstructionError{in, pc}
		}
	case 0x23: // Store
		d.Imm = decodeSImm(in)
		switch funct3 {
		case 0x0:
			d.Op = OpSb
		case 0x1:
			d.Op = OpSh
		case 0x2:
			d.Op = OpSw
		default:
			return nil, &IllegalInstructionError{in, pc}
		}
	case 0x13: // OP-IMM
		d.Imm = decodeIImm(in)
		d.Shamt = in >> 20 & 0x1f
		if err := decodeOpImm(d, funct3, funct7, in, pc, ext); err != nil {
			return nil, err
		}
	case 0x33: // OP
		if err := decodeOp(d, funct3, funct7, in, pc, ext); err != nil {
			return nil, err
		}
	case 0x0f: // MISC-MEM
		switch funct3 {
		case 0x0:
			d.Op = OpFence
		case 0x1:
			if !ext.Zifencei {
				return nil, &IllegalInstructionError{in, pc}
			}
			d.Op = OpFenceI
		default:
			return nil, &IllegalInstructionError{in, pc}
		}
	case 0x73: // SYSTEM
		if err := decodeSystem(d, funct3, in, pc, ext); err != nil {
			return nil, err
		}
	case 0x2f: // AMO
		if !ext.A {
			return nil, &IllegalInstructionError{in, pc}
		}
		if err := decodeAmo(d, funct3, funct7, in, pc); err != nil {
			return nil, err
		}
	case 0x07, 0x27, 0x43, 0x47, 0x4b, 0x4f, 0x53: // F extension
		if !ext.F {
			return nil, &IllegalInstructionError{in, pc}
		}
		if err := decodeFP(d, opcode, funct3, funct7, in, pc); err != nil {
			return nil, err
		}
	default:
		return nil, &IllegalInstructionError{in, pc}
	}

	if d.Op == OpAddi && d.Rd == 0 && d.Rs1 == 0 && d.Imm == 0 {
		d.Op = OpNop
	}
	return d, nil
}

func decodeOpImm(d *Decoded, funct3, funct7, in, pc uint32, ext Extensions) error {
	switch funct3 {
	case 0x0:
		d.Op = OpAddi
	case 0x2:
		d.Op = OpSlti
	case 0x3:
		d.Op = OpSltiu
	case 0x4:
		d.Op = OpXori
	case 0x6:
		d.Op = OpOri
	case 0x7:
		d.Op = OpAndi
	case 0x1:
		switch funct7 {
		case 0x00:
			d.Op = OpSlli
		case 0x30:
			if !ext.Zbb {
				return &IllegalInstructionError{in, pc}
			}
			switch d.Shamt {
			case 0x00:
				d.Op = OpClz
			case 0x01:
				d.Op = OpCtz
			case 0x02:
				d.Op = OpCpop
			case 0x04:
				d.Op = OpSextB
			case 0x05:
				d.Op = OpSextH
			default:
				return &IllegalInstructionError{in, pc}
			}
		case 0x24:
			if !ext.Zbs {
				return &IllegalInstructionError{in, pc}
			}
			d.Op = OpBclri
		case 0x34:
			if !ext.Zbs {
				return &IllegalInstructionError{in, pc}
			}
			d.Op = OpBinvi
		case 0x14:
			if !ext.Zbs {
				return &IllegalInstructionError{in, pc}
			}
			d.Op = OpBseti
		default:
			return &IllegalInstructionError{in, pc}
		}
	case 0x5:
		switch funct7 {
		case 0x00:
			d.Op = OpSrli
		case 0x20:
			d.Op = OpSrai
		case 0x30:
			if !ext.Zbb {
				return &IllegalInstructionError{in, pc}
			}
			d.Op = OpRori
		case 0x14:
			if !ext.Zbb {
				return &IllegalInstructionError{in, pc}
			}
			d.Op = OpOrcB
		case 0x34:
			if !ext.Zbb {
				return &IllegalInstructionError{in, pc}
			}
			d.Op = OpRev8
		case 0x24:
			if !ext.Zbs {
				return &IllegalInstructionError{in, pc}
			}
			d.Op = OpBexti
		default:
			return &IllegalInstructionError{in, pc}
		}
	default:
		return &IllegalInstructionError{in, pc}
	}
	return nil
}

func decodeOp(d *Decoded, funct3, funct7, in, pc uint32, ext Extensions) error {
	if funct7 == 0x01 {
		if !ext.M {
			return &IllegalInstructionError{in, pc}
		}
		switch funct3 {
		case 0x0:
			d.Op = OpMul
		case 0x1:
			d.Op = OpMulh
		case 0x2:
			d.Op = OpMulhsu
		case 0x3:
			d.Op = OpMulhu
		case 0x4:
			d.Op = OpDiv
		case 0x5:
			d.Op = OpDivu
		case 0x6:
			d.Op = OpRem
		case 0x7:
			d.Op = OpRemu
		default:
			return &IllegalInstructionError{in, pc}
		}
		return nil
	}
	if bm, ok := decodeBitmanipOp(funct3, funct7, d.Rs2, ext); ok {
		d.Op = bm
		return nil
	}
	switch funct7 {
	case 0x00:
		switch funct3 {
		case 0x0:
			d.Op = OpAdd
		case 0x1:
			d.Op = OpSll
		case 0x2:
			d.Op = OpSlt
		case 0x3:
			d.Op = OpSltu
		case 0x4:
			d.Op = OpXor
		case 0x5:
			d.Op = OpSrl
		case 0x6:
			d.Op = OpOr
		case 0x7:
			d.Op = OpAnd
		default:
			return &IllegalInstructionError{in, pc}
		}
	case 0x20:
		switch funct3 {
		case 0x0:
			d.Op = OpSub
		case 0x5:
			d.Op = OpSra
		default:
			return &IllegalInstructionError{in, pc}
		}
	default:
		return &IllegalInstructionError{in, pc}
	}
	return nil
}

func decodeSystem(d *Decoded, funct3, in, pc uint32, ext Extensions) error {
	if funct3 == 0 {
		switch in >> 20 {
		case 0x0:
			d.Op = OpEcall
		case 0x1:
			d.Op = OpEbreak
		case 0x302:
			d.Op = OpMret
		case 0x102:
			d.Op = OpSret
		case 0x105:
			d.Op = OpWfi
		default:
			if (in>>25)&0x7f == 0x09 {
				d.Op = OpSfenceVma
				return nil
			}
			return &IllegalInstructionError{in, pc}
		}
		return nil
	}
	if !ext.Zicsr {
		return &IllegalInstructionError{in, pc}
	}
	d.Csr = in >> 20
	switch funct3 {
	case 0x1:
		d.Op = OpCsrrw
	case 0x2:
		d.Op = OpCsrrs
	case 0x3:
		d.Op = OpCsrrc
	case 0x5:
		d.Op = OpCsrrwi
		d.Imm = int32(d.Rs1) // zimm carried in rs1 field
	case 0x6:
		d.Op = OpCsrrsi
		d.Imm = int32(d.Rs1)
	case 0x7:
		d.Op = OpCsrrci
		d.Imm = int32(d.Rs1)
	default:
		return &IllegalInstructionError{in, pc}
	}
	return nil
}

func decodeAmo(d *Decoded, funct3, funct7, in, pc uint32) error {
	if funct3 != 0x2 { // only .w supported (RV32)
		return &IllegalInstructionError{in, pc}
	}
	switch funct7 >> 2 {
	case 0x00:
		d.Op = OpAmoaddW
	case 0x01:
		d.Op = OpAmoswapW
	case 0x02:
		d.Op = OpLrW
	case 0x03:
		d.Op = OpScW
	case 0x04:
		d.Op = OpAmoxorW
	case 0x08:
		d.Op = OpAmoorW
	case 0x0c:
		d.Op = OpAmoandW
	case 0x10:
		d.Op = OpAmominW
	case 0x14:
		d.Op = OpAmomaxW
	case 0x18:
		d.Op = OpAmominuW
	case 0x1c:
		d.Op = OpAmomaxuW
	default:
		return &IllegalInstructionError{in, pc}
	}
	return nil
}

// --- immediate assembly, by format ---

func decodeIImm(in uint32) int32 {
	return int32(in) >> 20
}

func decodeSImm(in uint32) int32 {
	v := (in>>25)&0x7f<<5 | (in>>7)&0x1f
	return signExtend(v, 12)
}

func decodeBImm(in uint32) int32 {
	v := (in>>31)&1<<12 | (in>>7)&1<<11 | (in>>25)&0x3f<<5 | (in>>8)&0xf<<1
	return signExtend(v, 13)
}

func decodeJImm(in uint32) int32 {
	v := (in>>31)&1<<20 | (in>>12)&0xff<<12 | (in>>20)&1<<11 | (in>>21)&0x3ff<<1
	return signExtend(v, 21)
}

func signExtend(v uint32, bits int) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
