package vm

import "testing"

func TestDecodeAddi(t *testing.T) {
	// addi a0, zero, 5 -> 0x00500513
	word := uint32(5)<<20 | uint32(0)<<15 | uint32(0)<<12 | uint32(10)<<7 | 0x13
	d, err := Decode(word, 0x1000, DefaultExtensions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Op != OpAddi || d.Rd != 10 || d.Rs1 != 0 || d.Imm != 5 || d.Size != 4 {
		t.Errorf("decoded %+v, want addi x10, x0, 5 (size 4)", d)
	}
}

func TestDecodeCompressedLI(t *testing.T) {
	// c.li a0, 5
	word := uint32(0x4515)
	d, err := Decode(word, 0x1000, DefaultExtensions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Op != OpAddi || d.Rd != 10 || d.Rs1 != 0 || d.Imm != 5 || d.Size != 2 {
		t.Errorf("decoded %+v, want addi x10, x0, 5 (size 2, expanded from c.li)", d)
	}
}

func TestDecodeCompressedDisabledIsIllegal(t *testing.T) {
	ext := DefaultExtensions()
	ext.C = false
	_, err := Decode(0x4515, 0x1000, ext)
	if err == nil {
		t.Error("expected illegal instruction when C extension disabled, got nil")
	}
}

func TestDecodeJalr(t *testing.T) {
	// jalr x0, 0(x1) -- the classic "ret" expansion target
	word := uint32(0)<<20 | uint32(1)<<15 | uint32(0)<<12 | uint32(0)<<7 | 0x67
	d, err := Decode(word, 0x2000, DefaultExtensions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Op != OpJalr || d.Rd != 0 || d.Rs1 != 1 || d.Imm != 0 {
		t.Errorf("decoded %+v, want jalr x0, 0(x1)", d)
	}
}

func TestDecodeIllegalWhenMDisabled(t *testing.T) {
	ext := DefaultExtensions()
	ext.M = false
	// mul a0, a1, a2 -> funct7=1, funct3=0, opcode OP
	word := uint32(1)<<25 | uint32(12)<<20 | uint32(11)<<15 | uint32(0)<<12 | uint32(10)<<7 | 0x33
	_, err := Decode(word, 0x1000, ext)
	if err == nil {
		t.Error("expected illegal instruction when M extension disabled, got nil")
	}
}

func TestDecodeCsrrwi(t *testing.T) {
	// csrrwi x0, satp, 0  (zimm form carried in Imm, csr in Csr)
	csr := uint32(CsrSatp)
	word := csr<<20 | uint32(0)<<15 | uint32(5)<<12 | uint32(0)<<7 | 0x73
	d, err := Decode(word, 0x3000, DefaultExtensions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Op != OpCsrrwi || d.Csr != csr {
		t.Errorf("decoded %+v, want csrrwi with csr=0x%x", d, csr)
	}
}

func TestDecodeCompressedSlliHighRegister(t *testing.T) {
	// c.slli x16, 3 -> rd=16 (bit 11 set), shamt=3, shamt[5]=0
	word := uint32(0x080E)
	d, err := Decode(word, 0x1000, DefaultExtensions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Op != OpSlli || d.Rd != 16 || d.Rs1 != 16 || d.Shamt != 3 {
		t.Errorf("decoded %+v, want slli x16, x16, 3", d)
	}
}

func TestDecodeCompressedSlliShamt5ReservedOnRV32(t *testing.T) {
	// c.slli x16, 3 with bit 12 (shamt[5]) also set: reserved on RV32.
	word := uint32(0x180E)
	_, err := Decode(word, 0x1000, DefaultExtensions())
	if err == nil {
		t.Error("expected illegal instruction for shamt[5]=1 on RV32, got nil")
	}
}

func TestDecodeCompressedSrliShamt5ReservedOnRV32(t *testing.T) {
	// c.srli x8, 0 with bit 12 (shamt[5]) set: reserved on RV32.
	// CB-format: funct3=100, funct2=00 (SRLI), rd'=x8, shamt bits all from bit 12.
	word := uint32(0x1001 | 0x8000)
	_, err := Decode(word, 0x1000, DefaultExtensions())
	if err == nil {
		t.Error("expected illegal instruction for shamt[5]=1 on RV32, got nil")
	}
}
