package vm

// decodeBitmanipOp recognizes the R-type (OP major opcode) encodings of
// the Zba/Zbb/Zbc/Zbs bit-manipulation extensions. It is tried after the
// M-extension funct7==0x01 check and before the base RV32I R-type switch,
// since several of these use a funct7 value with no base opcode (e.g.
// 0x05, 0x10, 0x24, 0x30, 0x34) and therefore never collide with
// add/sub/xor/etc (funct7 0x00/0x20). The andn/orn/xnor group does share
// funct7 0x20 with sub/sra, but only at funct3 values those do not use.
func decodeBitmanipOp(funct3, funct7, rs2 uint32, ext Extensions) (Op, bool) {
	switch funct7 {
	case 0x04: // Zbb zext.h (RV32 packw-family subset)
		if ext.Zbb && funct3 == 0x4 && rs2 == 0x00 {
			return OpZextH, true
		}
	case 0x10: // Zba
		if !ext.Zba {
			return OpIllegal, false
		}
		switch funct3 {
		case 0x2:
			return OpSh1add, true
		case 0x4:
			return OpSh2add, true
		case 0x6:
			return OpSh3add, true
		}
	case 0x20: // Zbb andn/orn/xnor
		if !ext.Zbb {
			return OpIllegal, false
		}
		switch funct3 {
		case 0x7:
			return OpAndn, true
		case 0x6:
			return OpOrn, true
		case 0x4:
			return OpXnor, true
		}
	case 0x05: // Zbb min/max, Zbc clmul family
		switch funct3 {
		case 0x6:
			if ext.Zbb {
				return OpMax, true
			}
		case 0x7:
			if ext.Zbb {
				return OpMaxu, true
			}
		case 0x4:
			if ext.Zbb {
				return OpMin, true
			}
		case 0x5:
			if ext.Zbb {
				return OpMinu, true
			}
		case 0x1:
			if ext.Zbc {
				return OpClmul, true
			}
		case 0x2:
			if ext.Zbc {
				return OpClmulr, true
			}
		case 0x3:
			if ext.Zbc {
				return OpClmulh, true
			}
		}
	case 0x30: // Zbb rol/ror
		if !ext.Zbb {
			return OpIllegal, false
		}
		switch funct3 {
		case 0x1:
			return OpRol, true
		case 0x5:
			return OpRor, true
		}
	case 0x24: // Zbs bclr/bext
		if !ext.Zbs {
			return OpIllegal, false
		}
		switch funct3 {
		case 0x1:
			return OpBclr, true
		case 0x5:
			return OpBext, true
		}
	case 0x34: // Zbs binv
		if !ext.Zbs {
			return OpIllegal, false
		}
		if funct3 == 0x1 {
			return OpBinv, true
		}
	case 0x14: // Zbs bset
		if !ext.Zbs {
			return OpIllegal, false
		}
		if funct3 == 0x1 {
			return OpBset, true
		}
	}
	return OpIllegal, false
}
