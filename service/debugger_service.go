package service

import (
	"fmt"
	"sync"

	"github.com/lookbusy1344/rv32-emu/debugger"
	"github.com/lookbusy1344/rv32-emu/vm"
)

// DebuggerService guards a debugger.Debugger with a mutex so concurrent
// HTTP requests against the same session serialize instead of racing on
// CPU state.
type DebuggerService struct {
	mu  sync.Mutex
	Dbg *debugger.Debugger
}

// NewDebuggerService wraps cpu in a fresh Debugger.
func NewDebuggerService(cpu *vm.CPU) *DebuggerService {
	return &DebuggerService{Dbg: debugger.NewDebugger(cpu)}
}

// LoadFlatBinary resets the CPU, loads data at addr, and sets PC to addr.
func (s *DebuggerService) LoadFlatBinary(addr uint32, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpu := s.Dbg.CPU
	cpu.Reset()
	if err := cpu.Mem.LoadFlatBinary(addr, data); err != nil {
		return err
	}
	cpu.Hart.PC = addr
	return nil
}

// Reset restores the CPU to its power-on state.
func (s *DebuggerService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dbg.CPU.Reset()
}

// Step executes exactly one basic block and reports any trap it raised.
func (s *DebuggerService) Step() *vm.Trap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Dbg.CPU.Step()
}

// Run executes up to maxCycles basic blocks, stopping early at a
// breakpoint, halt, or unabsorbed trap. It returns how many blocks ran
// and why it stopped.
func (s *DebuggerService) Run(maxCycles uint64) (uint64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpu := s.Dbg.CPU
	var cycles uint64
	for maxCycles == 0 || cycles < maxCycles {
		if cpu.Halted {
			return cycles, "halted"
		}
		if should, reason := s.Dbg.ShouldBreak(); should {
			return cycles, reason
		}
		if trap := cpu.Step(); trap != nil {
			if cpu.SystemMode {
				continue
			}
			return cycles, fmt.Sprintf("trap cause=%d", trap.Cause)
		}
		cycles++
	}
	return cycles, "max cycles reached"
}

// Registers returns a snapshot of the integer register file and PC.
func (s *DebuggerService) Registers() RegisterState {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.Dbg.CPU.Hart
	st := RegisterState{PC: h.PC, Priv: privilegeName(h.Priv)}
	for i := 0; i < 32; i++ {
		st.X[i] = h.GetX(uint32(i))
	}
	return st
}

// Memory reads length bytes starting at addr from guest physical memory.
func (s *DebuggerService) Memory(addr, length uint32) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, length)
	for i := range out {
		out[i] = s.Dbg.CPU.Mem.ReadByte(addr + uint32(i))
	}
	return out
}

// Disassemble decodes count instructions starting at addr.
func (s *DebuggerService) Disassemble(addr uint32, count int) []DisassemblyLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpu := s.Dbg.CPU
	lines := make([]DisassemblyLine, 0, count)
	for i := 0; i < count; i++ {
		word := cpu.Mem.ReadWord(addr)
		mnemonic := "?"
		if dec, err := vm.Decode(word, addr, cpu.Ext); err == nil {
			mnemonic = dec.Op.String()
		}
		lines = append(lines, DisassemblyLine{Address: addr, Word: word, Mnemonic: mnemonic})
		addr += 4
	}
	return lines
}

// SetBreakpoint arms a breakpoint at addr and returns its ID.
func (s *DebuggerService) SetBreakpoint(addr uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Dbg.Breakpoints.Add(addr, false).ID
}

// DeleteBreakpoint removes the breakpoint at addr.
func (s *DebuggerService) DeleteBreakpoint(addr uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Dbg.Breakpoints.DeleteAt(addr)
}

// Breakpoints returns every armed breakpoint's address.
func (s *DebuggerService) Breakpoints() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	bps := s.Dbg.Breakpoints.All()
	out := make([]uint32, len(bps))
	for i, bp := range bps {
		out[i] = bp.Address
	}
	return out
}

// Halted reports whether the CPU has stopped executing.
func (s *DebuggerService) Halted() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Dbg.CPU.Halted, s.Dbg.CPU.ExitCode
}
