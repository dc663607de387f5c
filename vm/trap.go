package vm

// Trap carries the cause/tval pair produced by a fault, mirroring the
// RISC-V cause/tval/epc CSR trio. It is returned by memory, MMU, and
// instruction handlers instead of a setjmp-style sentinel flag: the
// block dispatch loop checks it once at the instruction boundary and
// redirects through Hart.EnterTrap.
type Trap struct {
	Cause uint32
	Tval  uint32
}

func (t *Trap) Error() string {
	return "trap"
}

// NewTrap constructs a Trap for the given cause and faulting value.
func NewTrap(cause, tval uint32) *Trap {
	return &Trap{Cause: cause, Tval: tval}
}

// EnterTrap redirects control to the appropriate privilege's trap vector,
// saving PC/cause/tval and updating the interrupt-enable stack. This emulator implements only S-mode and
// M-mode: traps taken from M-mode stay in M-mode; traps
// taken from U- or S-mode are delegated to S-mode, since no `medeleg`
// register is modeled.
func (h *Hart) EnterTrap(cause, tval uint32) {
	if h.Priv == PrivMachine {
		h.CSR.Write(CsrMepc, h.PC)
		h.CSR.Write(CsrMcause, cause)
		h.CSR.Write(CsrMtval, tval)

		mstatus := h.CSR.Read(CsrMstatus)
		if mstatus&statusMIE != 0 {
			mstatus |= statusMPIE
		} else {
			mstatus &^= statusMPIE
		}
		mstatus &^= statusMIE
		h.CSR.Write(CsrMstatus, mstatus)
		h.CSR.SetMPP(h.Priv)

		h.Priv = PrivMachine
		h.PC = h.CSR.Read(CsrMtvec) &^ 0x3
		return
	}

	h.CSR.Write(CsrSepc, h.PC)
	h.CSR.Write(CsrScause, cause)
	h.CSR.Write(CsrStval, tval)

	sstatus := h.CSR.Read(CsrSstatus)
	if sstatus&statusSIE != 0 {
		sstatus |= statusSPIE
	} else {
		sstatus &^= statusSPIE
	}
	sstatus &^= statusSIE
	h.CSR.Write(CsrSstatus, sstatus)
	h.CSR.SetSPP(h.Priv)

	h.Priv = PrivSupervisor
	h.PC = h.CSR.Read(CsrStvec) &^ 0x3
	h.InvalidateReservation()
}

// Mret restores privilege and PC from the machine-mode trap CSRs.
func (h *Hart) Mret() {
	mstatus := h.CSR.Read(CsrMstatus)
	prev := h.CSR.MPP()
	if mstatus&statusMPIE != 0 {
		mstatus |= statusMIE
	} else {
		mstatus &^= statusMIE
	}
	mstatus |= statusMPIE
	h.CSR.SetMPP(PrivUser)
	h.CSR.Write(CsrMstatus, mstatus)
	h.Priv = prev
	h.PC = h.CSR.Read(CsrMepc)
	h.InvalidateReservation()
}

// Sret restores privilege and PC from the supervisor-mode trap CSRs.
func (h *Hart) Sret() {
	sstatus := h.CSR.Read(CsrSstatus)
	prev := h.CSR.SPP()
	if sstatus&statusSPIE != 0 {
		sstatus |= statusSIE
	} else {
		sstatus &^= statusSIE
	}
	sstatus |= statusSPIE
	h.CSR.SetSPP(PrivUser)
	h.CSR.Write(CsrSstatus, sstatus)
	h.Priv = prev
	h.PC = h.CSR.Read(CsrSepc)
	h.InvalidateReservation()
}
