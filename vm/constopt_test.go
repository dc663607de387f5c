package vm

import "testing"

func TestConstPropagateMaterializesThreeConstants(t *testing.T) {
	// lui a0, 0x10; addi a0, a0, 1; add a1, a0, a0  -- every destination
	// is compile-time known, so ConstPropagate should rewrite all three
	// into lui materializations of their folded values.
	b := &Block{Insns: []*Decoded{
		{Op: OpLui, Rd: 10, Imm: 0x10000},
		{Op: OpAddi, Rd: 10, Rs1: 10, Imm: 1},
		{Op: OpAdd, Rd: 11, Rs1: 10, Rs2: 10},
	}}
	ConstPropagate(b)

	for i, d := range b.Insns {
		if d.Op != OpLui {
			t.Errorf("insn %d op = %v, want lui (materialized)", i, d.Op)
		}
	}
	if b.Insns[1].Imm != 0x10001 {
		t.Errorf("insn1 materialized value = 0x%x, want 0x10001", b.Insns[1].Imm)
	}
	if got := uint32(b.Insns[2].Imm); got != 0x20002 {
		t.Errorf("insn2 materialized value = 0x%x, want 0x20002", got)
	}
}

func TestConstPropagateLeavesLoadDestinationUnknown(t *testing.T) {
	b := &Block{Insns: []*Decoded{
		{Op: OpLui, Rd: 10, Imm: 0x1000},
		{Op: OpLw, Rd: 11, Rs1: 10, Imm: 0},
		{Op: OpAddi, Rd: 12, Rs1: 11, Imm: 1},
	}}
	ConstPropagate(b)
	if b.Insns[2].Op != OpAddi {
		t.Errorf("addi depending on a load result was folded: %+v", b.Insns[2])
	}
}

func TestConstPropagateFoldsBranchToUnconditionalJump(t *testing.T) {
	b := &Block{Insns: []*Decoded{
		{Op: OpAddi, Rd: 5, Rs1: 0, Imm: 1},
		{Op: OpAddi, Rd: 6, Rs1: 0, Imm: 1},
		{Op: OpBeq, Rs1: 5, Rs2: 6, Imm: 16, Size: 4},
	}}
	ConstPropagate(b)
	if b.Insns[2].Op != OpJal || b.Insns[2].Imm != 16 {
		t.Errorf("branch with constant-equal operands = %+v, want jal with original offset", b.Insns[2])
	}
}

func TestConstPropagateDoesNotFoldBranchOnUnknownOperand(t *testing.T) {
	b := &Block{Insns: []*Decoded{
		{Op: OpLui, Rd: 5, Imm: 0x1000},
		{Op: OpLw, Rd: 6, Rs1: 5, Imm: 0},
		{Op: OpBeq, Rs1: 5, Rs2: 6, Imm: 16, Size: 4},
	}}
	ConstPropagate(b)
	if b.Insns[2].Op != OpBeq {
		t.Errorf("branch with an unknown operand was folded: %+v", b.Insns[2])
	}
}
