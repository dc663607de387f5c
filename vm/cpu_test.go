package vm

import "testing"

func newTestCPU(systemMode bool) *CPU {
	cfg := DefaultCPUConfig()
	cfg.SystemMode = systemMode
	return NewCPU(cfg)
}

func TestCPUEcallHookInvokedInUserMode(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Syscall = func(c *CPU) {
		c.Hart.SetX(10, c.Hart.GetX(10)+100)
	}
	cpu.Mem.WriteWord(0x1000, asmAddi(10, 0, 5))
	cpu.Mem.WriteWord(0x1004, 0x00000073) // ecall
	cpu.Hart.PC = 0x1000

	if _, trap := cpu.Run(1); trap != nil { // addi and ecall form one block
		t.Fatalf("unexpected trap: %+v", trap)
	}
	if got := cpu.Hart.GetX(10); got != 105 {
		t.Errorf("a0 = %d, want 105 after the syscall hook ran", got)
	}
}

func TestCPUCompressedLIThenBreakpoint(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Mem.WriteHalf(0x1000, 0x4515)     // c.li a0, 5
	cpu.Mem.WriteWord(0x1002, 0x00100073) // ebreak
	cpu.Hart.PC = 0x1000

	_, trap := cpu.Run(2)
	if trap == nil || trap.Cause != CauseBreakpoint {
		t.Fatalf("trap = %+v, want breakpoint", trap)
	}
	if got := cpu.Hart.GetX(10); got != 5 {
		t.Errorf("a0 = %d, want 5 (from c.li expansion)", got)
	}
	if cpu.Hart.PC != 0x1002 {
		t.Errorf("PC = 0x%x, want 0x1002 (auto-advanced past the compressed insn)", cpu.Hart.PC)
	}
}

func TestCPUReturnsThroughJalr(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Mem.WriteWord(0x2000, 0x000030b7)             // lui ra, 0x3 (ra = 0x3000)
	cpu.Mem.WriteWord(0x2004, asmJalr(0, 1, 0))       // jalr x0, 0(ra)
	cpu.Mem.WriteWord(0x3000, 0x00100073)             // ebreak at the return target
	cpu.Hart.PC = 0x2000

	_, trap := cpu.Run(4)
	if trap == nil || trap.Cause != CauseBreakpoint {
		t.Fatalf("trap = %+v, want breakpoint at the jalr target", trap)
	}
	if cpu.Hart.PC != 0x3000 {
		t.Errorf("PC = 0x%x, want 0x3000", cpu.Hart.PC)
	}
}

func TestCPUSystemModeAbsorbsFetchPageFault(t *testing.T) {
	cpu := newTestCPU(true)
	cpu.Hart.Priv = PrivSupervisor
	cpu.Hart.CSR.Write(CsrSatp, SatpModeSv32<<31) // paging on, nothing mapped
	cpu.Hart.CSR.Write(CsrStvec, 0x8000)
	cpu.Hart.PC = 0x40000000

	cycles, trap := cpu.Run(1)
	if trap != nil {
		t.Fatalf("trap = %+v, want nil (system mode absorbs the fault through stvec)", trap)
	}
	if cycles != 1 {
		t.Errorf("cycles = %d, want 1", cycles)
	}
	if cpu.Hart.PC != 0x8000 {
		t.Errorf("PC = 0x%x, want 0x8000 (redirected through stvec)", cpu.Hart.PC)
	}
	if cpu.Hart.Priv != PrivSupervisor {
		t.Errorf("Priv = %v, want S-mode (traps delegate to S, no medeleg modeled)", cpu.Hart.Priv)
	}
	if got := cpu.Hart.CSR.Read(CsrScause); got != CauseFetchPageFault {
		t.Errorf("scause = %d, want %d", got, CauseFetchPageFault)
	}
}

func TestCPUUserModeStopsOnUntrappedFault(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Mem.WriteWord(0x1000, asmAddi(10, 0, 1))
	cpu.Mem.WriteWord(0x1004, 0) // illegal
	cpu.Hart.PC = 0x1000

	_, trap := cpu.Run(0)
	if trap == nil || trap.Cause != CauseIllegalInstruction {
		t.Fatalf("trap = %+v, want illegal instruction", trap)
	}
}

func TestCPUSatpWriteFlushesTLB(t *testing.T) {
	cpu := newTestCPU(true)
	cpu.Hart.Priv = PrivSupervisor
	mapPage(cpu.Mem, cpu.Hart.CSR, 0x10, 0x40000000, 0x400, pteR|pteW|pteX)
	mapPage(cpu.Mem, cpu.Hart.CSR, 0x10, 0x00000000, 0x000, pteR|pteX) // identity-map the code at 0x2000
	if _, trap := cpu.MMU.Translate(0x40000000, AccessRead, PrivSupervisor); trap != nil {
		t.Fatalf("translate: %+v", trap)
	}

	// csrrwi satp, 0 -- switch back to Bare mode, which must flush the TLB.
	cpu.Mem.WriteWord(0x2000, csrrwiWord(CsrSatp, 0, 0))
	cpu.Hart.PC = 0x2000
	blk, trap := cpu.getOrBuild(0x2000)
	if trap != nil {
		t.Fatalf("getOrBuild: %+v", trap)
	}
	if trap := cpu.execInsn(blk.Insns[0]); trap != nil {
		t.Fatalf("execInsn: %+v", trap)
	}
	if cpu.MMU.dtlb[(uint32(0x40000000)>>PageShift)&(tlbEntries-1)].Valid {
		t.Error("writing satp did not flush the data TLB")
	}
}

func csrrwiWord(csr, rd, zimm uint32) uint32 {
	return csr<<20 | zimm<<15 | 0x5<<12 | rd<<7 | 0x73
}

func TestCPUAmoaddRoundTrip(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Mem.WriteWord(0x4000, 10)
	cpu.Mem.WriteWord(0x5000, asmAddi(11, 0, 4000)) // placeholder, unused
	cpu.Hart.SetX(5, 0x4000)                          // rs1 = address
	cpu.Hart.SetX(6, 5)                               // rs2 = addend

	d := &Decoded{Op: OpAmoaddW, Rd: 7, Rs1: 5, Rs2: 6}
	if trap := execAmo(cpu, d); trap != nil {
		t.Fatalf("execAmo: %+v", trap)
	}
	if got := cpu.Hart.GetX(7); got != 10 {
		t.Errorf("rd = %d, want 10 (the pre-update value)", got)
	}
	if got := cpu.Mem.ReadWord(0x4000); got != 15 {
		t.Errorf("memory[0x4000] = %d, want 15", got)
	}
}

func TestCPULrScReservationInvalidatedByStore(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Mem.WriteWord(0x4000, 42)
	cpu.Hart.SetX(5, 0x4000)

	lr := &Decoded{Op: OpLrW, Rd: 10, Rs1: 5}
	if trap := execAmo(cpu, lr); trap != nil {
		t.Fatalf("lr.w: %+v", trap)
	}
	if !cpu.Hart.ReserveValid || cpu.Hart.ReserveAddr != 0x4000 {
		t.Fatal("lr.w did not record a reservation")
	}

	// An intervening store invalidates the reservation.
	if trap := cpu.storeWord(0x8000, 1); trap != nil {
		t.Fatalf("store: %+v", trap)
	}
	if cpu.Hart.ReserveValid {
		t.Error("reservation survived an intervening store")
	}

	sc := &Decoded{Op: OpScW, Rd: 11, Rs1: 5, Rs2: 10}
	cpu.Hart.SetX(10, 99)
	if trap := execAmo(cpu, sc); trap != nil {
		t.Fatalf("sc.w: %+v", trap)
	}
	if got := cpu.Hart.GetX(11); got != 1 {
		t.Errorf("sc.w result = %d, want 1 (failure, reservation was dropped)", got)
	}
	if got := cpu.Mem.ReadWord(0x4000); got != 42 {
		t.Errorf("memory[0x4000] = %d, want unchanged 42 after a failed sc.w", got)
	}
}
