package vm

// AccessKind distinguishes the three permission checks a translation can
// be performed for.
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
	AccessExecute
)

// PTE bit layout, Sv32 (RISC-V privileged spec).
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
	pteU = 1 << 4
	pteG = 1 << 5
	pteA = 1 << 6
	pteD = 1 << 7
)

// tlbEntries is the fixed size of each direct-mapped TLB").
const tlbEntries = 256

// TLBEntry caches one completed translation.
type TLBEntry struct {
	Valid   bool
	VPN     uint32
	PPN     uint32
	Perm    uint8 // pteR|pteW|pteX|pteU subset
	Level   int   // 0 = 4KiB page, 1 = 4MiB superpage
	Dirty   bool
	PTEAddr uint32
}

// MMU translates guest virtual addresses to physical addresses under
// Sv32 paging, backed by split instruction/data TLBs.
type MMU struct {
	mem *Memory
	csr *CSRFile

	itlb [tlbEntries]TLBEntry
	dtlb [tlbEntries]TLBEntry
}

// NewMMU constructs an MMU over the given memory arena and CSR bank. The
// CSR bank is shared with the owning Hart so that satp/sstatus writes
// take effect immediately.
func NewMMU(mem *Memory, csr *CSRFile) *MMU {
	return &MMU{mem: mem, csr: csr}
}

// pagingEnabled reports satp.MODE (bit 31 on RV32: 0 = Bare, 1 = Sv32).
func (m *MMU) pagingEnabled() bool {
	return m.csr.Read(CsrSatp)>>31 == SatpModeSv32
}

// Translate converts va to a physical address for the given access kind
// and privilege, consulting and updating the matching TLB, or returns a
// Trap with the appropriate page-fault cause.
func (m *MMU) Translate(va uint32, kind AccessKind, priv Privilege) (uint32, *Trap) {
	// Machine mode addresses memory directly; this emulator does not
	// model mstatus.MPRV.
	if priv == PrivMachine || !m.pagingEnabled() {
		return va, nil
	}

	vpn := va >> PageShift
	tlb := m.tlbFor(kind)
	idx := vpn & (tlbEntries - 1)
	e := &tlb[idx]

	if e.Valid && e.VPN == vpn {
		if trap := m.checkPerm(e.Perm, kind, priv, va); trap != nil {
			return 0, trap
		}
		if kind == AccessWrite && !e.Dirty {
			m.setDirty(e)
		}
		return physAddr(e.PPN, e.Level, va), nil
	}

	ppn, level, pteAddr, pte, trap := m.walk(va, kind)
	if trap != nil {
		return 0, trap
	}
	if trap := m.checkPerm(uint8(pte&(pteR|pteW|pteX|pteU)), kind, priv, va); trap != nil {
		return 0, trap
	}

	if pte&pteA == 0 {
		pte |= pteA
		m.mem.WriteWord(pteAddr, pte)
	}
	dirty := pte&pteD != 0
	if kind == AccessWrite && !dirty {
		pte |= pteD
		m.mem.WriteWord(pteAddr, pte)
		dirty = true
	}

	*e = TLBEntry{
		Valid:   true,
		VPN:     vpn,
		PPN:     ppn,
		Perm:    uint8(pte & (pteR | pteW | pteX | pteU)),
		Level:   level,
		Dirty:   dirty,
		PTEAddr: pteAddr,
	}
	return physAddr(ppn, level, va), nil
}

func (m *MMU) tlbFor(kind AccessKind) *[tlbEntries]TLBEntry {
	if kind == AccessExecute {
		return &m.itlb
	}
	return &m.dtlb
}

func (m *MMU) setDirty(e *TLBEntry) {
	pte := m.mem.ReadWord(e.PTEAddr)
	pte |= pteD
	m.mem.WriteWord(e.PTEAddr, pte)
	e.Dirty = true
}

// walk performs the two-level Sv32 page-table walk. Returns the leaf PTE's frame number, its
// level, the address it was read from, and its raw value.
func (m *MMU) walk(va uint32, kind AccessKind) (ppn uint32, level int, pteAddr uint32, pte uint32, trap *Trap) {
	satp := m.csr.Read(CsrSatp)
	curPPN := satp & 0x3FFFFF

	for lvl := 1; lvl >= 0; lvl-- {
		vpn := (va >> (PageShift + 10*lvl)) & 0x3FF
		addr := (curPPN << PageShift) + vpn*4
		entry := m.mem.ReadWord(addr)

		if entry&pteV == 0 || (entry&pteW != 0 && entry&pteR == 0) {
			return 0, 0, 0, 0, faultFor(kind, va)
		}

		if entry&(pteR|pteX) != 0 {
			leafPPN := entry >> 10
			if lvl == 1 && leafPPN&0x3FF != 0 {
				return 0, 0, 0, 0, faultFor(kind, va)
			}
			if (leafPPN<<PageShift)>>PageShift != leafPPN {
				return 0, 0, 0, 0, faultFor(kind, va)
			}
			return leafPPN, lvl, addr, entry, nil
		}

		if lvl == 0 {
			return 0, 0, 0, 0, faultFor(kind, va)
		}
		curPPN = entry >> 10
	}
	return 0, 0, 0, 0, faultFor(kind, va)
}

// checkPerm enforces U/SUM/MXR and the access-kind bit. Every fault it
// returns carries va in Tval, matching walk()'s translation-miss faults.
func (m *MMU) checkPerm(perm uint8, kind AccessKind, priv Privilege, va uint32) *Trap {
	isUser := perm&pteU != 0
	switch priv {
	case PrivUser:
		if !isUser {
			return faultFor(kind, va)
		}
	case PrivSupervisor:
		if isUser && !m.csr.SUM() {
			return faultFor(kind, va)
		}
	}

	switch kind {
	case AccessExecute:
		if perm&pteX == 0 {
			return faultFor(kind, va)
		}
	case AccessWrite:
		if perm&pteW == 0 {
			return faultFor(kind, va)
		}
	case AccessRead:
		if perm&pteR == 0 && !(perm&pteX != 0 && m.csr.MXR()) {
			return faultFor(kind, va)
		}
	}
	return nil
}

func trapFor(kind AccessKind) *Trap {
	switch kind {
	case AccessExecute:
		return NewTrap(CauseFetchPageFault, 0)
	case AccessWrite:
		return NewTrap(CauseStorePageFault, 0)
	default:
		return NewTrap(CauseLoadPageFault, 0)
	}
}

func faultFor(kind AccessKind, va uint32) *Trap {
	t := trapFor(kind)
	t.Tval = va
	return t
}

func physAddr(ppn uint32, level int, va uint32) uint32 {
	if level == 1 {
		return (ppn << PageShift) | (va & 0x3FFFFF)
	}
	return (ppn << PageShift) | (va & 0xFFF)
}

// FlushAll drops every TLB entry.
func (m *MMU) FlushAll() {
	m.itlb = [tlbEntries]TLBEntry{}
	m.dtlb = [tlbEntries]TLBEntry{}
}

// FlushVA drops the TLB entries matching va's VPN, or everything if va
// is zero.
func (m *MMU) FlushVA(va uint32) {
	if va == 0 {
		m.FlushAll()
		return
	}
	vpn := va >> PageShift
	idx := vpn & (tlbEntries - 1)
	if m.itlb[idx].VPN == vpn {
		m.itlb[idx] = TLBEntry{}
	}
	if m.dtlb[idx].VPN == vpn {
		m.dtlb[idx] = TLBEntry{}
	}
}
