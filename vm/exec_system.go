package vm

// execSystem executes ecall/ebreak, the privileged returns, the fence
// family, and Zicsr CSR access.
// Unlike execBranch and execMem, several of these ops need to reach back
// into the owning CPU (to flush the block cache on fence.i, or the TLBs
// on satp/sfence.vma), so they take the full *CPU rather than just the
// Hart.
func execSystem(cpu *CPU, d *Decoded) *Trap {
	h := cpu.Hart

	if d.Op.IsCSR() {
		return execCSR(cpu, d)
	}

	switch d.Op {
	case OpEcall:
		if !cpu.SystemMode && cpu.Syscall != nil {
			cpu.Syscall(cpu)
			return nil
		}
		return NewTrap(causeEcallFor(h.Priv), 0)

	case OpEbreak:
		return NewTrap(CauseBreakpoint, d.PC)

	case OpMret:
		h.Mret()
		return nil
	case OpSret:
		h.Sret()
		return nil

	case OpWfi:
		// Modeled as a no-op: there is no interrupt controller wired, so
		// there is nothing to wait for.
		return nil

	case OpFence:
		return nil

	case OpFenceI:
		// fence.i invalidates the block cache wholesale; code may have
		// been rewritten.
		cpu.FlushICache()
		return nil

	case OpSfenceVma:
		va := h.GetX(d.Rs1)
		cpu.MMU.FlushVA(va)
		return nil

	default:
		return NewTrap(CauseIllegalInstruction, d.Raw)
	}
}

// execCSR implements the six Zicsr read-modify-write forms. The CSR
// index is carried in d.Csr; the update source is a register (csrrw/s/c)
// or the five-bit immediate parked in d.Imm at decode time (csrrwi/s/ci).
// A reference to an unimplemented CSR is an illegal instruction.
func execCSR(cpu *CPU, d *Decoded) *Trap {
	h := cpu.Hart
	if !h.CSR.Has(d.Csr) {
		return NewTrap(CauseIllegalInstruction, d.Raw)
	}

	old := h.CSR.Read(d.Csr)

	var operand uint32
	var writes bool
	switch d.Op {
	case OpCsrrw:
		operand, writes = h.GetX(d.Rs1), true
	case OpCsrrs:
		operand, writes = h.GetX(d.Rs1), d.Rs1 != 0
	case OpCsrrc:
		operand, writes = h.GetX(d.Rs1), d.Rs1 != 0
	case OpCsrrwi:
		operand, writes = uint32(d.Imm), true
	case OpCsrrsi:
		operand, writes = uint32(d.Imm), d.Imm != 0
	case OpCsrrci:
		operand, writes = uint32(d.Imm), d.Imm != 0
	default:
		return NewTrap(CauseIllegalInstruction, d.Raw)
	}

	if writes {
		var next uint32
		switch d.Op {
		case OpCsrrw, OpCsrrwi:
			next = operand
		case OpCsrrs, OpCsrrsi:
			next = old | operand
		case OpCsrrc, OpCsrrci:
			next = old &^ operand
		}
		h.CSR.Write(d.Csr, next)
		if d.Csr == CsrSatp {
			cpu.MMU.FlushAll()
		}
	}

	h.SetX(d.Rd, old)
	return nil
}

func causeEcallFor(p Privilege) uint32 {
	switch p {
	case PrivMachine:
		return CauseEcallFromM
	case PrivSupervisor:
		return CauseEcallFromS
	default:
		return CauseEcallFromU
	}
}
