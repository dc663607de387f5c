package vm

// decodeFP handles the single-precision F-extension opcodes: FLW/FSW,
// the four fused multiply-add forms, and the OP-FP block. Double
// precision (D) is out of scope.
func decodeFP(d *Decoded, opcode, funct3, funct7, in, pc uint32) error {
	switch opcode {
	case 0x07: // FLW
		if funct3 != 0x2 {
			return &IllegalInstructionError{in, pc}
		}
		d.Op = OpFlw
		d.Imm = decodeIImm(in)
		return nil
	case 0x27: // FSW
		if funct3 != 0x2 {
			return &IllegalInstructionError{in, pc}
		}
		d.Op = OpFsw
		d.Imm = decodeSImm(in)
		return nil
	case 0x43, 0x47, 0x4b, 0x4f:
		if fmt := in >> 25 & 0x3; fmt != 0 {
			return &IllegalInstructionError{in, pc}
		}
		switch opcode {
		case 0x43:
			d.Op = OpFmaddS
		case 0x47:
			d.Op = OpFmsubS
		case 0x4b:
			d.Op = OpFnmsubS
		case 0x4f:
			d.Op = OpFnmaddS
		}
		return nil
	case 0x53: // OP-FP
		return decodeOpFP(d, funct3, funct7, in, pc)
	}
	return &IllegalInstructionError{in, pc}
}

func decodeOpFP(d *Decoded, funct3, funct7, in, pc uint32) error {
	rs2 := d.Rs2
	switch funct7 {
	case 0x00:
		d.Op = OpFaddS
	case 0x04:
		d.Op = OpFsubS
	case 0x08:
		d.Op = OpFmulS
	case 0x0c:
		d.Op = OpFdivS
	case 0x2c:
		if rs2 != 0 {
			return &IllegalInstructionError{in, pc}
		}
		d.Op = OpFsqrtS
	case 0x10:
		switch funct3 {
		case 0x0:
			d.Op = OpFsgnjS
		case 0x1:
			d.Op = OpFsgnjnS
		case 0x2:
			d.Op = OpFsgnjxS
		default:
			return &IllegalInstructionError{in, pc}
		}
	case 0x14:
		switch funct3 {
		case 0x0:
			d.Op = OpFminS
		case 0x1:
			d.Op = OpFmaxS
		default:
			return &IllegalInstructionError{in, pc}
		}
	case 0x60:
		switch rs2 {
		case 0x0:
			d.Op = OpFcvtWS
		case 0x1:
			d.Op = OpFcvtWuS
		default:
			return &IllegalInstructionError{in, pc}
		}
	case 0x70:
		if rs2 != 0 {
			return &IllegalInstructionError{in, pc}
		}
		switch funct3 {
		case 0x0:
			d.Op = OpFmvXW
		case 0x1:
			d.Op = OpFclassS
		default:
			return &IllegalInstructionError{in, pc}
		}
	case 0x50:
		switch funct3 {
		case 0x2:
			d.Op = OpFeqS
		case 0x1:
			d.Op = OpFltS
		case 0x0:
			d.Op = OpFleS
		default:
			return &IllegalInstructionError{in, pc}
		}
	case 0x68:
		switch rs2 {
		case 0x0:
			d.Op = OpFcvtSW
		case 0x1:
			d.Op = OpFcvtSWu
		default:
			return &IllegalInstructionError{in, pc}
		}
	case 0x78:
		if rs2 != 0 || funct3 != 0 {
			return &IllegalInstructionError{in, pc}
		}
		d.Op = OpFmvWX
	default:
		return &IllegalInstructionError{in, pc}
	}
	return nil
}
