package vm

import "fmt"

// TraceEvent is emitted to an optional Tracer as the dispatch loop makes
// forward progress, giving an observer (the api package's websocket
// broadcaster, ExecutionTrace, PerformanceStatistics) visibility into
// cache hits/misses, trap delivery, and hot-block promotion without
// coupling CPU to any of them.
type TraceEvent struct {
	Kind string // "block_hit", "block_miss", "trap", "hot_block"
	PC   uint32
	Info string
}

// Tracer receives TraceEvents as the CPU runs. Nil is a valid Tracer
// (Run/Step check for it). ExecutionTrace, PerformanceStatistics and
// MultiTracer in this package implement it.
type Tracer interface {
	Trace(TraceEvent)
}

// CPU bundles every subsystem into the one context the dispatch loop
// drives: explicitly constructed and explicitly passed, never a
// file-scope global.
type CPU struct {
	Hart *Hart
	Mem  *Memory
	Bus  *Bus
	MMU  *MMU

	Cache BlockCache
	Ext   Extensions

	ChainingEnabled bool
	JITThreshold    uint64
	SystemMode      bool

	// Syscall services a user-mode ecall: the host reads a7/a0..a6 and
	// writes a return value to a0. Nil in system-mode builds, where
	// ecall always raises an environment-call trap instead.
	Syscall func(*CPU)

	Halted   bool
	ExitCode int

	Tracer Tracer

	// MemTrace, when non-nil, logs every load/store executed by execMem's
	// helpers. Nil by default: memory tracing is off the hot path unless
	// explicitly requested.
	MemTrace *MemoryTrace
}

// CPUConfig selects the replacement policy, cache capacity, and other
// per-instance knobs exposes as configuration.
type CPUConfig struct {
	Ext             Extensions
	SystemMode      bool
	ARC             bool // true selects ARC, false selects LFU
	CacheCapacity   int  // must be a power of two
	JITThreshold    uint64
	ChainingEnabled bool
}

// DefaultCPUConfig's defaults (ARC enabled, threshold
// 1000, chaining enabled).
func DefaultCPUConfig() CPUConfig {
	return CPUConfig{
		Ext:             DefaultExtensions(),
		ARC:             true,
		CacheCapacity:   1024,
		JITThreshold:    JITThresholdDefault,
		ChainingEnabled: true,
	}
}

// NewCPU wires a Hart, Memory, Bus, MMU, and the configured block cache
// into a ready-to-run CPU.
func NewCPU(cfg CPUConfig) *CPU {
	mem := NewMemory()
	bus := NewBus(mem)
	h := NewHart(cfg.SystemMode)
	mmu := NewMMU(mem, h.CSR)

	var cache BlockCache
	if cfg.ARC {
		cache = NewARCCache(cfg.CacheCapacity)
	} else {
		cache = NewLFUCache(cfg.CacheCapacity, int(cfg.JITThreshold))
	}

	return &CPU{
		Hart:            h,
		Mem:             mem,
		Bus:             bus,
		MMU:             mmu,
		Cache:           cache,
		Ext:             cfg.Ext,
		ChainingEnabled: cfg.ChainingEnabled,
		JITThreshold:    cfg.JITThreshold,
		SystemMode:      cfg.SystemMode,
	}
}

// cpuFetcher implements InstructionFetcher by translating through the
// MMU's instruction TLB (a transparent pass-through when paging is
// disabled) and reading through the bus, so a basic block built in
// system mode sees the same fetch path instruction execution will later
// use for re-validation after a TLB flush.
type cpuFetcher struct {
	cpu *CPU
}

func (f cpuFetcher) FetchHalf(pc uint32) (uint16, error) {
	pa, trap := f.cpu.MMU.Translate(pc, AccessExecute, f.cpu.Hart.Priv)
	if trap != nil {
		return 0, &FetchFaultError{PC: pc, Cause: int(trap.Cause), Inner: trap}
	}
	half, trap := f.cpu.Bus.ReadHalf(pa)
	if trap != nil {
		return 0, &FetchFaultError{PC: pc, Cause: int(trap.Cause), Inner: trap}
	}
	return half, nil
}

func (c *CPU) trace(ev TraceEvent) {
	if c.Tracer != nil {
		c.Tracer.Trace(ev)
	}
}

// FlushICache drains the block cache, matching fence.i's "code may have
// been rewritten" semantics. Chain slots held by any
// surviving block referencing an evicted key are stale PCs that simply
// miss on next lookup (block.go's design note), so no destructor
// bookkeeping is required here beyond draining.
func (c *CPU) FlushICache() {
	c.Cache.Free(func(*Block) {})
}

// Reset restores the CPU to its just-constructed state: hart registers,
// memory, MMU TLBs, and the block cache.
func (c *CPU) Reset() {
	c.Hart.Reset(c.SystemMode)
	c.Mem.Reset()
	c.MMU.FlushAll()
	c.FlushICache()
	c.Halted = false
	c.ExitCode = 0
}

// getOrBuild returns the block for pc, building and inserting it on a
// cache miss.
func (c *CPU) getOrBuild(pc uint32) (*Block, *Trap) {
	if blk, ok := c.Cache.Get(pc); ok {
		c.trace(TraceEvent{Kind: "block_hit", PC: pc})
		return blk, nil
	}
	c.trace(TraceEvent{Kind: "block_miss", PC: pc})

	blk, err := BuildBlock(cpuFetcher{cpu: c}, pc, c.Ext)
	if err != nil {
		if fe, ok := err.(*FetchFaultError); ok {
			return nil, NewTrap(uint32(fe.Cause), fe.PC)
		}
		return nil, NewTrap(CauseIllegalInstruction, pc)
	}

	TryChain(blk, c.ChainingEnabled)
	if victim := c.Cache.Put(pc, blk); victim != nil {
		c.Cache.ForEach(func(b *Block) { b.unchain(victim.StartPC) })
	}
	return blk, nil
}

// Step runs exactly one basic block starting at the hart's current PC:
// look up or build the block, execute its instructions in order, and
// redirect through EnterTrap if one faults.
func (c *CPU) Step() *Trap {
	pc := c.Hart.PC
	if c.Ext.C {
		if pc&0x1 != 0 {
			t := NewTrap(CauseMisalignedFetch, pc)
			c.Hart.EnterTrap(t.Cause, t.Tval)
			return t
		}
	} else if pc&0x3 != 0 {
		t := NewTrap(CauseMisalignedFetch, pc)
		c.Hart.EnterTrap(t.Cause, t.Tval)
		return t
	}

	blk, trap := c.getOrBuild(pc)
	if trap != nil {
		c.trace(TraceEvent{Kind: "trap", PC: pc, Info: fmt.Sprintf("cause=%d", trap.Cause)})
		if !c.SystemMode {
			return trap
		}
		c.Hart.EnterTrap(trap.Cause, trap.Tval)
		return trap
	}

	if blk.IsHot(c.JITThreshold) {
		c.trace(TraceEvent{Kind: "hot_block", PC: pc})
	}

	return c.runBlock(blk)
}

// runBlock executes every decoded instruction in blk in order, advancing
// PC automatically for instructions that do not redirect control flow
// themselves.
func (c *CPU) runBlock(blk *Block) *Trap {
	h := c.Hart
	for _, d := range blk.Insns {
		if d.Op == OpIllegal {
			trap := NewTrap(CauseIllegalInstruction, d.Raw)
			c.deliverTrap(trap)
			return trap
		}

		trap := c.execInsn(d)
		if trap != nil {
			c.deliverTrap(trap)
			return trap
		}

		if !d.Op.IsControlFlow() && d.Op != OpMret && d.Op != OpSret {
			h.PC += d.Size
		}
	}
	return nil
}

// deliverTrap redirects through the current privilege's trap vector in
// system mode; in user-mode builds the caller (Run) decides whether an
// untrapped fault terminates the emulator.
func (c *CPU) deliverTrap(trap *Trap) {
	c.trace(TraceEvent{Kind: "trap", PC: c.Hart.PC, Info: fmt.Sprintf("cause=%d", trap.Cause)})
	if c.SystemMode {
		c.Hart.EnterTrap(trap.Cause, trap.Tval)
	}
}

// execInsn dispatches a decoded instruction to its category handler.
func (c *CPU) execInsn(d *Decoded) *Trap {
	switch {
	case d.Op.IsALU():
		return execALU(c, d)
	case d.Op.IsControlFlow():
		return execBranch(c, d)
	case d.Op.IsMem():
		return execMem(c, d)
	case d.Op.IsAmo():
		return execAmo(c, d)
	case d.Op.IsFP():
		return execFP(c, d)
	case d.Op.IsBitmanip():
		return execBitmanip(c, d)
	case d.Op.IsSystem():
		return execSystem(c, d)
	default:
		return NewTrap(CauseIllegalInstruction, d.Raw)
	}
}

// Run drives the dispatch loop for up to maxCycles blocks (0 means
// unbounded), returning the number of blocks executed and the fault (if
// any) that stopped it. In system-mode builds a trap is absorbed by
// EnterTrap and Run continues, since the guest OS handles its own traps;
// in user-mode builds an untrapped fault stops Run and the caller is
// expected to terminate with a non-zero exit code.
func (c *CPU) Run(maxCycles uint64) (uint64, *Trap) {
	var cycles uint64
	for maxCycles == 0 || cycles < maxCycles {
		if c.Halted {
			return cycles, nil
		}
		trap := c.Step()
		cycles++
		if trap != nil && !c.SystemMode {
			return cycles, trap
		}
	}
	return cycles, nil
}
