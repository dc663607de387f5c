package vm

// execMem executes the base-I loads and stores. Addresses are translated
// through the MMU's data TLB (a no-op in Bare mode, see MMU.Translate)
// before reaching the bus. Misaligned accesses are accepted at decode
// time and rejected here: the policy is to raise a misaligned-access
// trap, not to emulate unaligned memory.
func execMem(cpu *CPU, d *Decoded) *Trap {
	h := cpu.Hart
	addr := h.GetX(d.Rs1) + uint32(d.Imm)

	switch d.Op {
	case OpLb:
		v, trap := cpu.loadByte(addr)
		if trap != nil {
			return trap
		}
		cpu.traceMem(d.PC, addr, uint32(v), 1, "R")
		h.SetX(d.Rd, uint32(int32(int8(v))))
	case OpLbu:
		v, trap := cpu.loadByte(addr)
		if trap != nil {
			return trap
		}
		cpu.traceMem(d.PC, addr, uint32(v), 1, "R")
		h.SetX(d.Rd, uint32(v))
	case OpLh:
		if addr&0x1 != 0 {
			return NewTrap(CauseMisalignedLoad, addr)
		}
		v, trap := cpu.loadHalf(addr)
		if trap != nil {
			return trap
		}
		cpu.traceMem(d.PC, addr, uint32(v), 2, "R")
		h.SetX(d.Rd, uint32(int32(int16(v))))
	case OpLhu:
		if addr&0x1 != 0 {
			return NewTrap(CauseMisalignedLoad, addr)
		}
		v, trap := cpu.loadHalf(addr)
		if trap != nil {
			return trap
		}
		cpu.traceMem(d.PC, addr, uint32(v), 2, "R")
		h.SetX(d.Rd, uint32(v))
	case OpLw:
		if addr&0x3 != 0 {
			return NewTrap(CauseMisalignedLoad, addr)
		}
		v, trap := cpu.loadWord(addr)
		if trap != nil {
			return trap
		}
		cpu.traceMem(d.PC, addr, v, 4, "R")
		h.SetX(d.Rd, v)

	case OpSb:
		v := byte(h.GetX(d.Rs2))
		if trap := cpu.storeByte(addr, v); trap != nil {
			return trap
		}
		cpu.traceMem(d.PC, addr, uint32(v), 1, "W")
	case OpSh:
		if addr&0x1 != 0 {
			return NewTrap(CauseMisalignedStore, addr)
		}
		v := uint16(h.GetX(d.Rs2))
		if trap := cpu.storeHalf(addr, v); trap != nil {
			return trap
		}
		cpu.traceMem(d.PC, addr, uint32(v), 2, "W")
	case OpSw:
		if addr&0x3 != 0 {
			return NewTrap(CauseMisalignedStore, addr)
		}
		v := h.GetX(d.Rs2)
		if trap := cpu.storeWord(addr, v); trap != nil {
			return trap
		}
		cpu.traceMem(d.PC, addr, v, 4, "W")

	default:
		return NewTrap(CauseIllegalInstruction, d.Raw)
	}
	return nil
}

// traceMem forwards a completed load/store to MemTrace, a no-op when
// memory tracing is disabled.
func (c *CPU) traceMem(pc, addr, value uint32, width int, kind string) {
	if c.MemTrace != nil {
		c.MemTrace.RecordAccess(pc, addr, value, width, kind)
	}
}

// loadByte/loadHalf/loadWord and storeByte/storeHalf/storeWord translate
// a guest virtual address through the data TLB and route the physical
// address through the bus. A successful store invalidates any
// outstanding LR/SC reservation.

func (c *CPU) loadByte(va uint32) (byte, *Trap) {
	pa, trap := c.MMU.Translate(va, AccessRead, c.Hart.Priv)
	if trap != nil {
		return 0, trap
	}
	return c.Bus.ReadByte(pa)
}

func (c *CPU) loadHalf(va uint32) (uint16, *Trap) {
	pa, trap := c.MMU.Translate(va, AccessRead, c.Hart.Priv)
	if trap != nil {
		return 0, trap
	}
	return c.Bus.ReadHalf(pa)
}

func (c *CPU) loadWord(va uint32) (uint32, *Trap) {
	pa, trap := c.MMU.Translate(va, AccessRead, c.Hart.Priv)
	if trap != nil {
		return 0, trap
	}
	return c.Bus.ReadWord(pa)
}

func (c *CPU) storeByte(va uint32, v byte) *Trap {
	pa, trap := c.MMU.Translate(va, AccessWrite, c.Hart.Priv)
	if trap != nil {
		return trap
	}
	c.Hart.InvalidateReservation()
	return c.Bus.WriteByte(pa, v)
}

func (c *CPU) storeHalf(va uint32, v uint16) *Trap {
	pa, trap := c.MMU.Translate(va, AccessWrite, c.Hart.Priv)
	if trap != nil {
		return trap
	}
	c.Hart.InvalidateReservation()
	return c.Bus.WriteHalf(pa, v)
}

func (c *CPU) storeWord(va uint32, v uint32) *Trap {
	pa, trap := c.MMU.Translate(va, AccessWrite, c.Hart.Priv)
	if trap != nil {
		return trap
	}
	c.Hart.InvalidateReservation()
	return c.Bus.WriteWord(pa, v)
}
