package vm

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ExecutionTrace is a Tracer that renders every TraceEvent as one text
// line, optionally tagged with a filtered register dump, CSR flags, and
// elapsed timing. It stops recording once MaxEntries lines have been
// written, matching the bounded trace log a long-running interpreter
// loop needs.
type ExecutionTrace struct {
	Writer        io.Writer
	FilterRegs    map[string]bool // empty = dump every GPR
	IncludeFlags  bool
	IncludeTiming bool
	MaxEntries    int

	hart      *Hart
	symbols   map[string]uint32
	startTime time.Time
	count     int
}

// NewExecutionTrace builds a trace writer with every field, register
// dump, and flags enabled, and no entry cap.
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{
		Writer:        w,
		FilterRegs:    make(map[string]bool),
		IncludeFlags:  true,
		IncludeTiming: true,
		MaxEntries:    0,
	}
}

// SetFilterRegisters narrows the dumped GPRs to the named subset (e.g.
// "x1,x2,x10"). Only xN names match; ABI names such as "sp" are not
// recognized. An empty slice restores dumping every register.
func (t *ExecutionTrace) SetFilterRegisters(regs []string) {
	t.FilterRegs = make(map[string]bool, len(regs))
	for _, r := range regs {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			t.FilterRegs[r] = true
		}
	}
}

// BindHart supplies the register file dumped alongside each event. A nil
// hart disables the register/flags columns.
func (t *ExecutionTrace) BindHart(h *Hart) { t.hart = h }

// LoadSymbols installs a PC-to-name table used to annotate trace lines.
func (t *ExecutionTrace) LoadSymbols(symbols map[string]uint32) { t.symbols = symbols }

// Start resets the elapsed-time clock and entry counter.
func (t *ExecutionTrace) Start() {
	t.startTime = time.Now()
	t.count = 0
}

// Trace implements Tracer.
func (t *ExecutionTrace) Trace(ev TraceEvent) {
	if t.Writer == nil {
		return
	}
	if t.MaxEntries > 0 && t.count >= t.MaxEntries {
		return
	}
	t.count++

	var b strings.Builder
	fmt.Fprintf(&b, "[%06d] 0x%08X: %-10s", t.count, ev.PC, ev.Kind)
	if name := t.symbolFor(ev.PC); name != "" {
		fmt.Fprintf(&b, " <%s>", name)
	}
	if ev.Info != "" {
		fmt.Fprintf(&b, " %s", ev.Info)
	}
	if t.hart != nil {
		b.WriteString(" | ")
		b.WriteString(t.registerDump())
	}
	if t.IncludeFlags && t.hart != nil {
		fmt.Fprintf(&b, " | mstatus=0x%08X", t.hart.CSR.Read(CsrMstatus))
	}
	if t.IncludeTiming {
		fmt.Fprintf(&b, " | %v", time.Since(t.startTime))
	}

	fmt.Fprintln(t.Writer, b.String())
}

func (t *ExecutionTrace) registerDump() string {
	var parts []string
	for i := uint32(0); i < 32; i++ {
		name := fmt.Sprintf("x%d", i)
		if len(t.FilterRegs) > 0 && !t.FilterRegs[name] {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=0x%08X", name, t.hart.GetX(i)))
	}
	return strings.Join(parts, " ")
}

func (t *ExecutionTrace) symbolFor(pc uint32) string {
	for name, addr := range t.symbols {
		if addr == pc {
			return name
		}
	}
	return ""
}

// MultiTracer fans a TraceEvent out to every listed Tracer, letting a
// caller attach an ExecutionTrace and a PerformanceStatistics collector
// to the same CPU.Tracer slot.
type MultiTracer []Tracer

// Trace implements Tracer.
func (m MultiTracer) Trace(ev TraceEvent) {
	for _, t := range m {
		if t != nil {
			t.Trace(ev)
		}
	}
}

// MemoryTrace is a standalone log of memory accesses, fed directly by
// Bus/Memory callers rather than through the Tracer interface (block-
// granular TraceEvents carry no per-access detail).
type MemoryTrace struct {
	Writer     io.Writer
	MaxEntries int

	startTime time.Time
	count     int
}

// NewMemoryTrace builds a memory trace writer with no entry cap.
func NewMemoryTrace(w io.Writer) *MemoryTrace {
	return &MemoryTrace{Writer: w}
}

// Start resets the elapsed-time clock and entry counter.
func (t *MemoryTrace) Start() {
	t.startTime = time.Now()
	t.count = 0
}

// RecordAccess logs a single load or store. kind is "R" or "W", width is
// the access size in bytes.
func (t *MemoryTrace) RecordAccess(pc, addr, value uint32, width int, kind string) {
	if t.Writer == nil {
		return
	}
	if t.MaxEntries > 0 && t.count >= t.MaxEntries {
		return
	}
	t.count++
	fmt.Fprintf(t.Writer, "[%06d] [%s%d] pc=0x%08X addr=0x%08X value=0x%08X | %v\n",
		t.count, kind, width, pc, addr, value, time.Since(t.startTime))
}
