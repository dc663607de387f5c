package encoder

// EncodeR packs an R-type instruction (register-register ALU, M
// extension, bit-manipulation R-type forms).
func EncodeR(opcode, funct3, funct7, rd, rs1, rs2 uint32) (uint32, error) {
	for _, r := range []uint32{rd, rs1, rs2} {
		if err := checkReg(r); err != nil {
			return 0, err
		}
	}
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode, nil
}

// EncodeI packs an I-type instruction (OP-IMM, loads, jalr).
func EncodeI(opcode, funct3, rd, rs1 uint32, imm int32) (uint32, error) {
	if err := checkReg(rd); err != nil {
		return 0, err
	}
	if err := checkReg(rs1); err != nil {
		return 0, err
	}
	if err := checkSigned("imm", imm, 12); err != nil {
		return 0, err
	}
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode, nil
}

// EncodeShiftImm packs an OP-IMM shift instruction whose immediate field
// is split between a funct7-like high bits and a 5-bit shift amount
// (slli/srli/srai and their Zbb/Zbs analogues).
func EncodeShiftImm(funct3, hi7, rd, rs1, shamt uint32) (uint32, error) {
	if err := checkReg(rd); err != nil {
		return 0, err
	}
	if err := checkReg(rs1); err != nil {
		return 0, err
	}
	if shamt > 31 {
		return 0, &RangeError{Field: "shamt", Value: int64(shamt), Bits: 5}
	}
	return hi7<<25 | shamt<<20 | rs1<<15 | funct3<<12 | rd<<7 | OpcodeOpImm, nil
}

// EncodeS packs an S-type instruction (base-I and FP stores).
func EncodeS(opcode, funct3, rs1, rs2 uint32, imm int32) (uint32, error) {
	if err := checkReg(rs1); err != nil {
		return 0, err
	}
	if err := checkReg(rs2); err != nil {
		return 0, err
	}
	if err := checkSigned("imm", imm, 12); err != nil {
		return 0, err
	}
	u := uint32(imm)
	return (u>>5)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | opcode, nil
}

// EncodeB packs a B-type conditional branch. imm must be even (the LSB
// is implicit) and fit 13 signed bits.
func EncodeB(funct3, rs1, rs2 uint32, imm int32) (uint32, error) {
	if err := checkReg(rs1); err != nil {
		return 0, err
	}
	if err := checkReg(rs2); err != nil {
		return 0, err
	}
	if imm&1 != 0 {
		return 0, &RangeError{Field: "imm", Value: int64(imm), Bits: 13}
	}
	if err := checkSigned("imm", imm, 13); err != nil {
		return 0, err
	}
	u := uint32(imm)
	bit12 := (u >> 12) & 1
	bit11 := (u >> 11) & 1
	bits10to5 := (u >> 5) & 0x3f
	bits4to1 := (u >> 1) & 0xf
	return bit12<<31 | bits10to5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | bits4to1<<8 | bit11<<7 | OpcodeBranch, nil
}

// EncodeU packs a U-type instruction (lui/auipc). imm is the already
// upper-20-bit-aligned value (low 12 bits ignored).
func EncodeU(opcode, rd uint32, imm int32) (uint32, error) {
	if err := checkReg(rd); err != nil {
		return 0, err
	}
	return uint32(imm)&0xfffff000 | rd<<7 | opcode, nil
}

// EncodeJ packs a J-type jal. imm must be even and fit 21 signed bits.
func EncodeJ(rd uint32, imm int32) (uint32, error) {
	if err := checkReg(rd); err != nil {
		return 0, err
	}
	if imm&1 != 0 {
		return 0, &RangeError{Field: "imm", Value: int64(imm), Bits: 21}
	}
	if err := checkSigned("imm", imm, 21); err != nil {
		return 0, err
	}
	u := uint32(imm)
	bit20 := (u >> 20) & 1
	bits10to1 := (u >> 1) & 0x3ff
	bit11 := (u >> 11) & 1
	bits19to12 := (u >> 12) & 0xff
	return bit20<<31 | bits10to1<<21 | bit11<<20 | bits19to12<<12 | rd<<7 | OpcodeJal, nil
}

// EncodeCSR packs a register-sourced Zicsr instruction (csrrw/csrrs/csrrc).
func EncodeCSR(funct3, rd, rs1, csr uint32) (uint32, error) {
	return EncodeI(OpcodeSystem, funct3, rd, rs1, int32(csr))
}

// EncodeCSRImm packs an immediate-sourced Zicsr instruction
// (csrrwi/csrrsi/csrrci); zimm occupies the rs1 field.
func EncodeCSRImm(funct3, rd, zimm, csr uint32) (uint32, error) {
	return EncodeI(OpcodeSystem, funct3, rd, zimm, int32(csr))
}

// EncodeAmo packs an A-extension LR/SC/AMO word instruction. aq/rl are
// the acquire/release ordering bits this core decodes but does not
// distinguish (single-hart execution makes every AMO trivially ordered).
func EncodeAmo(funct5, rd, rs1, rs2 uint32, aq, rl bool) (uint32, error) {
	for _, r := range []uint32{rd, rs1, rs2} {
		if err := checkReg(r); err != nil {
			return 0, err
		}
	}
	funct7 := funct5 << 2
	if aq {
		funct7 |= 0x2
	}
	if rl {
		funct7 |= 0x1
	}
	return funct7<<25 | rs2<<20 | rs1<<15 | 0x2<<12 | rd<<7 | OpcodeAmo, nil
}

// --- base-I convenience wrappers, one per mnemonic the dispatcher names ---

func EncodeLui(rd uint32, imm int32) (uint32, error)   { return EncodeU(OpcodeLui, rd, imm) }
func EncodeAuipc(rd uint32, imm int32) (uint32, error) { return EncodeU(OpcodeAuipc, rd, imm) }

func EncodeJal(rd uint32, imm int32) (uint32, error) { return EncodeJ(rd, imm) }
func EncodeJalr(rd, rs1 uint32, imm int32) (uint32, error) {
	return EncodeI(OpcodeJalr, 0, rd, rs1, imm)
}

func EncodeBeq(rs1, rs2 uint32, imm int32) (uint32, error)  { return EncodeB(0x0, rs1, rs2, imm) }
func EncodeBne(rs1, rs2 uint32, imm int32) (uint32, error)  { return EncodeB(0x1, rs1, rs2, imm) }
func EncodeBlt(rs1, rs2 uint32, imm int32) (uint32, error)  { return EncodeB(0x4, rs1, rs2, imm) }
func EncodeBge(rs1, rs2 uint32, imm int32) (uint32, error)  { return EncodeB(0x5, rs1, rs2, imm) }
func EncodeBltu(rs1, rs2 uint32, imm int32) (uint32, error) { return EncodeB(0x6, rs1, rs2, imm) }
func EncodeBgeu(rs1, rs2 uint32, imm int32) (uint32, error) { return EncodeB(0x7, rs1, rs2, imm) }

func EncodeLb(rd, rs1 uint32, imm int32) (uint32, error)  { return EncodeI(OpcodeLoad, 0x0, rd, rs1, imm) }
func EncodeLh(rd, rs1 uint32, imm int32) (uint32, error)  { return EncodeI(OpcodeLoad, 0x1, rd, rs1, imm) }
func EncodeLw(rd, rs1 uint32, imm int32) (uint32, error)  { return EncodeI(OpcodeLoad, 0x2, rd, rs1, imm) }
func EncodeLbu(rd, rs1 uint32, imm int32) (uint32, error) { return EncodeI(OpcodeLoad, 0x4, rd, rs1, imm) }
func EncodeLhu(rd, rs1 uint32, imm int32) (uint32, error) { return EncodeI(OpcodeLoad, 0x5, rd, rs1, imm) }

func EncodeSb(rs1, rs2 uint32, imm int32) (uint32, error) { return EncodeS(OpcodeStore, 0x0, rs1, rs2, imm) }
func EncodeSh(rs1, rs2 uint32, imm int32) (uint32, error) { return EncodeS(OpcodeStore, 0x1, rs1, rs2, imm) }
func EncodeSw(rs1, rs2 uint32, imm int32) (uint32, error) { return EncodeS(OpcodeStore, 0x2, rs1, rs2, imm) }

func EncodeAddi(rd, rs1 uint32, imm int32) (uint32, error)  { return EncodeI(OpcodeOpImm, 0x0, rd, rs1, imm) }
func EncodeSlti(rd, rs1 uint32, imm int32) (uint32, error)  { return EncodeI(OpcodeOpImm, 0x2, rd, rs1, imm) }
func EncodeSltiu(rd, rs1 uint32, imm int32) (uint32, error) { return EncodeI(OpcodeOpImm, 0x3, rd, rs1, imm) }
func EncodeXori(rd, rs1 uint32, imm int32) (uint32, error)  { return EncodeI(OpcodeOpImm, 0x4, rd, rs1, imm) }
func EncodeOri(rd, rs1 uint32, imm int32) (uint32, error)   { return EncodeI(OpcodeOpImm, 0x6, rd, rs1, imm) }
func EncodeAndi(rd, rs1 uint32, imm int32) (uint32, error)  { return EncodeI(OpcodeOpImm, 0x7, rd, rs1, imm) }

func EncodeSlli(rd, rs1, shamt uint32) (uint32, error) { return EncodeShiftImm(0x1, 0x00, rd, rs1, shamt) }
func EncodeSrli(rd, rs1, shamt uint32) (uint32, error) { return EncodeShiftImm(0x5, 0x00, rd, rs1, shamt) }
func EncodeSrai(rd, rs1, shamt uint32) (uint32, error) { return EncodeShiftImm(0x5, 0x20, rd, rs1, shamt) }

func EncodeAdd(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x0, 0x00, rd, rs1, rs2) }
func EncodeSub(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x0, 0x20, rd, rs1, rs2) }
func EncodeSll(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x1, 0x00, rd, rs1, rs2) }
func EncodeSlt(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x2, 0x00, rd, rs1, rs2) }
func EncodeSltu(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOp, 0x3, 0x00, rd, rs1, rs2) }
func EncodeXor(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x4, 0x00, rd, rs1, rs2) }
func EncodeSrl(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x5, 0x00, rd, rs1, rs2) }
func EncodeSra(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x5, 0x20, rd, rs1, rs2) }
func EncodeOr(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x6, 0x00, rd, rs1, rs2) }
func EncodeAnd(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x7, 0x00, rd, rs1, rs2) }

func EncodeFence() (uint32, error) { return 0x0000000f, nil }
func EncodeFenceI() (uint32, error) { return 0x0000100f, nil }
func EncodeEcall() (uint32, error)  { return OpcodeSystem, nil }
func EncodeEbreak() (uint32, error) { return 1<<20 | OpcodeSystem, nil }

// --- M extension ---

func EncodeMul(rd, rs1, rs2 uint32) (uint32, error)    { return EncodeR(OpcodeOp, 0x0, 0x01, rd, rs1, rs2) }
func EncodeMulh(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x1, 0x01, rd, rs1, rs2) }
func EncodeMulhsu(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOp, 0x2, 0x01, rd, rs1, rs2) }
func EncodeMulhu(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeR(OpcodeOp, 0x3, 0x01, rd, rs1, rs2) }
func EncodeDiv(rd, rs1, rs2 uint32) (uint32, error)    { return EncodeR(OpcodeOp, 0x4, 0x01, rd, rs1, rs2) }
func EncodeDivu(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x5, 0x01, rd, rs1, rs2) }
func EncodeRem(rd, rs1, rs2 uint32) (uint32, error)    { return EncodeR(OpcodeOp, 0x6, 0x01, rd, rs1, rs2) }
func EncodeRemu(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x7, 0x01, rd, rs1, rs2) }

// --- A extension ---

func EncodeLrW(rd, rs1 uint32) (uint32, error)          { return EncodeAmo(0x02, rd, rs1, 0, false, false) }
func EncodeScW(rd, rs1, rs2 uint32) (uint32, error)     { return EncodeAmo(0x03, rd, rs1, rs2, false, false) }
func EncodeAmoswapW(rd, rs1, rs2 uint32) (uint32, error) { return EncodeAmo(0x01, rd, rs1, rs2, false, false) }
func EncodeAmoaddW(rd, rs1, rs2 uint32) (uint32, error)  { return EncodeAmo(0x00, rd, rs1, rs2, false, false) }

// --- Zicsr ---

func EncodeCsrrw(rd, rs1, csr uint32) (uint32, error)  { return EncodeCSR(0x1, rd, rs1, csr) }
func EncodeCsrrs(rd, rs1, csr uint32) (uint32, error)  { return EncodeCSR(0x2, rd, rs1, csr) }
func EncodeCsrrc(rd, rs1, csr uint32) (uint32, error)  { return EncodeCSR(0x3, rd, rs1, csr) }
func EncodeCsrrwi(rd, zimm, csr uint32) (uint32, error) { return EncodeCSRImm(0x5, rd, zimm, csr) }
func EncodeCsrrsi(rd, zimm, csr uint32) (uint32, error) { return EncodeCSRImm(0x6, rd, zimm, csr) }
func EncodeCsrrci(rd, zimm, csr uint32) (uint32, error) { return EncodeCSRImm(0x7, rd, zimm, csr) }

// --- privileged ---

func EncodeMret() (uint32, error) { return 0x302<<20 | OpcodeSystem, nil }
func EncodeSret() (uint32, error) { return 0x102<<20 | OpcodeSystem, nil }
func EncodeWfi() (uint32, error)  { return 0x105<<20 | OpcodeSystem, nil }
func EncodeSfenceVma(rs1, rs2 uint32) (uint32, error) {
	return 0x09<<25 | rs2<<20 | rs1<<15 | OpcodeSystem, nil
}

// --- F extension ---

func EncodeFlw(rd, rs1 uint32, imm int32) (uint32, error) {
	return EncodeI(OpcodeLoadFP, 0x2, rd, rs1, imm)
}
func EncodeFsw(rs1, rs2 uint32, imm int32) (uint32, error) {
	return EncodeS(OpcodeStoreFP, 0x2, rs1, rs2, imm)
}
func EncodeFaddS(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOpFP, 0x7, 0x00, rd, rs1, rs2) }
func EncodeFsubS(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOpFP, 0x7, 0x04, rd, rs1, rs2) }
func EncodeFmulS(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOpFP, 0x7, 0x08, rd, rs1, rs2) }
func EncodeFdivS(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOpFP, 0x7, 0x0c, rd, rs1, rs2) }
func EncodeFmvWX(rd, rs1 uint32) (uint32, error)      { return EncodeR(OpcodeOpFP, 0x0, 0x78, rd, rs1, 0) }
func EncodeFmvXW(rd, rs1 uint32) (uint32, error)      { return EncodeR(OpcodeOpFP, 0x0, 0x70, rd, rs1, 0) }

// --- Zba/Zbb/Zbc/Zbs R-type forms ---

func EncodeSh1add(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOp, 0x2, 0x10, rd, rs1, rs2) }
func EncodeSh2add(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOp, 0x4, 0x10, rd, rs1, rs2) }
func EncodeSh3add(rd, rs1, rs2 uint32) (uint32, error) { return EncodeR(OpcodeOp, 0x6, 0x10, rd, rs1, rs2) }
func EncodeAndn(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x7, 0x20, rd, rs1, rs2) }
func EncodeOrn(rd, rs1, rs2 uint32) (uint32, error)    { return EncodeR(OpcodeOp, 0x6, 0x20, rd, rs1, rs2) }
func EncodeXnor(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x4, 0x20, rd, rs1, rs2) }
func EncodeMax(rd, rs1, rs2 uint32) (uint32, error)    { return EncodeR(OpcodeOp, 0x6, 0x05, rd, rs1, rs2) }
func EncodeMin(rd, rs1, rs2 uint32) (uint32, error)    { return EncodeR(OpcodeOp, 0x4, 0x05, rd, rs1, rs2) }
func EncodeRol(rd, rs1, rs2 uint32) (uint32, error)    { return EncodeR(OpcodeOp, 0x1, 0x30, rd, rs1, rs2) }
func EncodeRor(rd, rs1, rs2 uint32) (uint32, error)    { return EncodeR(OpcodeOp, 0x5, 0x30, rd, rs1, rs2) }
func EncodeBclr(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x1, 0x24, rd, rs1, rs2) }
func EncodeBext(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x5, 0x24, rd, rs1, rs2) }
func EncodeBinv(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x1, 0x34, rd, rs1, rs2) }
func EncodeBset(rd, rs1, rs2 uint32) (uint32, error)   { return EncodeR(OpcodeOp, 0x1, 0x14, rd, rs1, rs2) }
func EncodeClz(rd, rs1 uint32) (uint32, error)         { return EncodeShiftImm(0x1, 0x30, rd, rs1, 0x00) }
func EncodeCtz(rd, rs1 uint32) (uint32, error)         { return EncodeShiftImm(0x1, 0x30, rd, rs1, 0x01) }
func EncodeCpop(rd, rs1 uint32) (uint32, error)        { return EncodeShiftImm(0x1, 0x30, rd, rs1, 0x02) }
