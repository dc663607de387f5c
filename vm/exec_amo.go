package vm

// execAmo executes the A-extension LR/SC pair and the AMO read-modify-
// write family. All RV32A ops here operate on a single aligned word;
// there is no RV32D
// equivalent in this core. Because there is exactly one hart, every AMO
// is trivially atomic with respect to all other observers: the sequence
// below (load, compute, store) never interleaves with anything else.
func execAmo(cpu *CPU, d *Decoded) *Trap {
	h := cpu.Hart
	addr := h.GetX(d.Rs1)
	if addr&0x3 != 0 {
		if d.Op == OpLrW || d.Op == OpScW {
			return NewTrap(CauseMisalignedLoad, addr)
		}
		return NewTrap(CauseMisalignedStore, addr)
	}

	switch d.Op {
	case OpLrW:
		v, trap := cpu.loadWord(addr)
		if trap != nil {
			return trap
		}
		h.SetX(d.Rd, v)
		h.ReserveValid = true
		h.ReserveAddr = addr
		return nil

	case OpScW:
		if h.ReserveValid && h.ReserveAddr == addr {
			if trap := cpu.storeWord(addr, h.GetX(d.Rs2)); trap != nil {
				return trap
			}
			h.SetX(d.Rd, 0) // success
		} else {
			h.SetX(d.Rd, 1) // failure: no matching reservation
		}
		h.ReserveValid = false
		return nil
	}

	old, trap := cpu.loadWord(addr)
	if trap != nil {
		return trap
	}
	rs2 := h.GetX(d.Rs2)

	var result uint32
	switch d.Op {
	case OpAmoswapW:
		result = rs2
	case OpAmoaddW:
		result = old + rs2
	case OpAmoxorW:
		result = old ^ rs2
	case OpAmoandW:
		result = old & rs2
	case OpAmoorW:
		result = old | rs2
	case OpAmominW:
		if int32(old) < int32(rs2) {
			result = old
		} else {
			result = rs2
		}
	case OpAmomaxW:
		if int32(old) > int32(rs2) {
			result = old
		} else {
			result = rs2
		}
	case OpAmominuW:
		if old < rs2 {
			result = old
		} else {
			result = rs2
		}
	case OpAmomaxuW:
		if old > rs2 {
			result = old
		} else {
			result = rs2
		}
	default:
		return NewTrap(CauseIllegalInstruction, d.Raw)
	}

	if trap := cpu.storeWord(addr, result); trap != nil {
		return trap
	}
	h.SetX(d.Rd, old)
	return nil
}
