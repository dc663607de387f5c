package vm

import "testing"

// mapPage installs a single-level (4 MiB superpage) Sv32 mapping for va's
// megapage, pointing at physical frame ppn with the given permission
// bits, and points satp at the root table.
func mapPage(mem *Memory, csr *CSRFile, rootPPN, va, ppn uint32, perm uint32) {
	vpn1 := va >> 22
	rootAddr := rootPPN << PageShift
	leaf := ppn<<10 | perm | pteV
	mem.WriteWord(rootAddr+vpn1*4, leaf)
	csr.Write(CsrSatp, SatpModeSv32<<31|rootPPN)
}

func TestMMUBareModePassesThrough(t *testing.T) {
	mem := NewMemory()
	csr := NewCSRFile()
	mmu := NewMMU(mem, csr)

	pa, trap := mmu.Translate(0x80001234, AccessRead, PrivSupervisor)
	if trap != nil {
		t.Fatalf("unexpected trap: %+v", trap)
	}
	if pa != 0x80001234 {
		t.Errorf("Translate in Bare mode = 0x%x, want identity", pa)
	}
}

func TestMMUMachineModeBypassesPaging(t *testing.T) {
	mem := NewMemory()
	csr := NewCSRFile()
	mmu := NewMMU(mem, csr)
	mapPage(mem, csr, 0x10, 0x40000000, 0x20, pteR|pteW|pteX)

	pa, trap := mmu.Translate(0x40000000, AccessExecute, PrivMachine)
	if trap != nil {
		t.Fatalf("unexpected trap: %+v", trap)
	}
	if pa != 0x40000000 {
		t.Errorf("M-mode translate = 0x%x, want identity (no MPRV modeled)", pa)
	}
}

func TestMMUSuperpageTranslateAndPermFault(t *testing.T) {
	mem := NewMemory()
	csr := NewCSRFile()
	mmu := NewMMU(mem, csr)
	const rootPPN = 0x10
	const dataPPN = 0x400
	mapPage(mem, csr, rootPPN, 0x40000000, dataPPN, pteR|pteW|pteU)

	pa, trap := mmu.Translate(0x40000100, AccessRead, PrivUser)
	if trap != nil {
		t.Fatalf("unexpected trap: %+v", trap)
	}
	if want := uint32(dataPPN<<PageShift | 0x100); pa != want {
		t.Errorf("Translate = 0x%x, want 0x%x", pa, want)
	}

	// Same page is not executable: execute access must fault.
	_, trap = mmu.Translate(0x40000100, AccessExecute, PrivUser)
	if trap == nil || trap.Cause != CauseFetchPageFault {
		t.Errorf("expected fetch page fault, got %+v", trap)
	}
	if trap.Tval != 0x40000100 {
		t.Errorf("trap.Tval = 0x%x, want faulting VA 0x%x", trap.Tval, uint32(0x40000100))
	}
}

func TestMMUSetsAccessedAndDirtyBits(t *testing.T) {
	mem := NewMemory()
	csr := NewCSRFile()
	mmu := NewMMU(mem, csr)
	const rootPPN = 0x10
	const dataPPN = 0x400
	mapPage(mem, csr, rootPPN, 0x40000000, dataPPN, pteR|pteW|pteU)

	pteAddr := (rootPPN << PageShift) + (uint32(0x40000000>>22))*4

	if _, trap := mmu.Translate(0x40000000, AccessRead, PrivUser); trap != nil {
		t.Fatalf("read translate: %+v", trap)
	}
	if pte := mem.ReadWord(pteAddr); pte&pteA == 0 {
		t.Error("accessed bit not set after a read translation")
	}
	if pte := mem.ReadWord(pteAddr); pte&pteD != 0 {
		t.Error("dirty bit set before any write translation")
	}

	if _, trap := mmu.Translate(0x40000000, AccessWrite, PrivUser); trap != nil {
		t.Fatalf("write translate: %+v", trap)
	}
	if pte := mem.ReadWord(pteAddr); pte&pteD == 0 {
		t.Error("dirty bit not set after a write translation")
	}
}

func TestMMUUnmappedPageFaults(t *testing.T) {
	mem := NewMemory()
	csr := NewCSRFile()
	mmu := NewMMU(mem, csr)
	csr.Write(CsrSatp, SatpModeSv32<<31|0x10)

	_, trap := mmu.Translate(0x80000000, AccessRead, PrivUser)
	if trap == nil || trap.Cause != CauseLoadPageFault {
		t.Errorf("expected load page fault on unmapped root entry, got %+v", trap)
	}
}

func TestMMUFlushVAandFlushAll(t *testing.T) {
	mem := NewMemory()
	csr := NewCSRFile()
	mmu := NewMMU(mem, csr)
	mapPage(mem, csr, 0x10, 0x40000000, 0x400, pteR|pteW|pteU)

	if _, trap := mmu.Translate(0x40000000, AccessRead, PrivUser); trap != nil {
		t.Fatalf("translate: %+v", trap)
	}
	if !mmu.dtlb[(uint32(0x40000000)>>PageShift)&(tlbEntries-1)].Valid {
		t.Fatal("expected a populated dTLB entry after translation")
	}

	mmu.FlushVA(0x40000000)
	if mmu.dtlb[(uint32(0x40000000)>>PageShift)&(tlbEntries-1)].Valid {
		t.Error("FlushVA left a stale TLB entry")
	}

	if _, trap := mmu.Translate(0x40000000, AccessRead, PrivUser); trap != nil {
		t.Fatalf("re-translate after flush: %+v", trap)
	}
	mmu.FlushAll()
	for _, e := range mmu.dtlb {
		if e.Valid {
			t.Fatal("FlushAll left a populated dTLB entry")
		}
	}
}
