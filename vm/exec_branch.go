package vm

// execBranch executes jal, jalr, and the six conditional branches. It
// always sets Hart.PC itself (to the target or the fall-through), so the
// dispatch loop never applies its own PC += Size adjustment afterward.
func execBranch(cpu *CPU, d *Decoded) *Trap {
	h := cpu.Hart
	switch d.Op {
	case OpJal:
		target := uint32(int64(d.PC) + int64(d.Imm))
		if d.Rd != 0 {
			h.SetX(d.Rd, d.PC+d.Size)
		}
		h.PC = target

	case OpJalr:
		base := h.GetX(d.Rs1)
		target := (base + uint32(d.Imm)) &^ 1
		link := d.PC + d.Size
		if d.Rd != 0 {
			h.SetX(d.Rd, link)
		}
		h.PC = target

	case OpBeq:
		branchTo(h, d, h.GetX(d.Rs1) == h.GetX(d.Rs2))
	case OpBne:
		branchTo(h, d, h.GetX(d.Rs1) != h.GetX(d.Rs2))
	case OpBlt:
		branchTo(h, d, int32(h.GetX(d.Rs1)) < int32(h.GetX(d.Rs2)))
	case OpBge:
		branchTo(h, d, int32(h.GetX(d.Rs1)) >= int32(h.GetX(d.Rs2)))
	case OpBltu:
		branchTo(h, d, h.GetX(d.Rs1) < h.GetX(d.Rs2))
	case OpBgeu:
		branchTo(h, d, h.GetX(d.Rs1) >= h.GetX(d.Rs2))

	default:
		return NewTrap(CauseIllegalInstruction, d.Raw)
	}
	return nil
}

func branchTo(h *Hart, d *Decoded, taken bool) {
	if taken {
		h.PC = uint32(int64(d.PC) + int64(d.Imm))
	} else {
		h.PC = d.PC + d.Size
	}
}
