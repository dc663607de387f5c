package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/rv32-emu/vm"
)

// Debugger wraps a vm.CPU with breakpoints, command history, and a text
// output buffer, giving both the CLI (interface.go) and the TUI (tui.go)
// a single place to dispatch commands against.
type Debugger struct {
	CPU *vm.CPU

	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running    bool
	StepOnce   bool
	StepOverPC uint32
	StepOver   bool

	Symbols map[string]uint32

	LastCommand string
	Output      strings.Builder

	// ShowRegisters, when set, makes the CLI print "info registers" after
	// every stop (breakpoint, single step, trap), not just on request.
	ShowRegisters bool

	// NumberFormat controls how print/examine render values: "hex"
	// (default), "dec", or "both".
	NumberFormat string

	// BytesPerLine bounds how many words "x" prints per output line
	// before wrapping; <= 0 means unbounded (one line).
	BytesPerLine int
}

// NewDebugger wraps cpu with fresh breakpoint and history state.
func NewDebugger(cpu *vm.CPU) *Debugger {
	return NewDebuggerWithHistorySize(cpu, 0)
}

// NewDebuggerWithHistorySize wraps cpu like NewDebugger, capping command
// history at historySize entries (<= 0 uses the package default).
func NewDebuggerWithHistorySize(cpu *vm.CPU, historySize int) *Debugger {
	return &Debugger{
		CPU:          cpu,
		Breakpoints:  NewBreakpointManager(),
		History:      NewCommandHistoryWithSize(historySize),
		Symbols:      make(map[string]uint32),
		NumberFormat: "hex",
	}
}

// LoadSymbols installs a name-to-address table used by break/print/examine.
func (d *Debugger) LoadSymbols(symbols map[string]uint32) {
	d.Symbols = symbols
}

// ResolveAddress resolves a symbol name, or parses a hex (0x-prefixed) or
// decimal literal.
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	if addr, ok := d.Symbols[s]; ok {
		return addr, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid address: %s", s)
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return uint32(v), nil
}

// ExecuteCommand parses and dispatches one command line. An empty line
// repeats the last command, matching the behavior expected for "step"/
// "continue" held down at the prompt.
func (d *Debugger) ExecuteCommand(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = d.LastCommand
	}
	if line != "" {
		d.History.Add(line)
		d.LastCommand = line
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	return d.dispatch(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) dispatch(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun()
	case "continue", "c":
		return d.cmdContinue()
	case "step", "s", "si":
		return d.cmdStep()
	case "next", "n":
		return d.cmdNext()
	case "break", "b":
		return d.cmdBreak(args, false)
	case "tbreak", "tb":
		return d.cmdBreak(args, true)
	case "delete", "d":
		return d.cmdDelete(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "reset":
		d.CPU.Reset()
		d.Println("CPU reset")
		return nil
	case "help", "h", "?":
		return d.cmdHelp()
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (d *Debugger) cmdRun() error {
	d.CPU.Reset()
	d.Running = true
	d.Println("Starting program execution...")
	return nil
}

func (d *Debugger) cmdContinue() error {
	if d.CPU.Halted {
		return fmt.Errorf("program is not running")
	}
	d.Running = true
	d.Println("Continuing...")
	return nil
}

func (d *Debugger) cmdStep() error {
	d.StepOnce = true
	d.Running = true
	return nil
}

func (d *Debugger) cmdNext() error {
	d.StepOverPC = d.CPU.Hart.PC + 4
	d.StepOver = true
	d.Running = true
	return nil
}

func (d *Debugger) cmdBreak(args []string, temporary bool) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|symbol>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.Add(addr, temporary)
	d.Printf("Breakpoint %d at 0x%08X\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	if err := d.Breakpoints.DeleteAt(addr); err != nil {
		return err
	}
	d.Printf("Breakpoint at 0x%08X deleted\n", addr)
	return nil
}

// formatValue renders v per d.NumberFormat ("hex", "dec", or "both";
// anything else falls back to "hex").
func (d *Debugger) formatValue(v uint32) string {
	switch d.NumberFormat {
	case "dec":
		return fmt.Sprintf("%d", int32(v))
	case "both":
		return fmt.Sprintf("0x%08X (%d)", v, int32(v))
	default:
		return fmt.Sprintf("0x%08X", v)
	}
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <register|symbol|address>")
	}
	name := strings.ToLower(args[0])
	if r, ok := gprIndex(name); ok {
		d.Printf("%s = %s\n", name, d.formatValue(d.CPU.Hart.GetX(r)))
		return nil
	}
	if name == "pc" {
		d.Printf("pc = %s\n", d.formatValue(d.CPU.Hart.PC))
		return nil
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	v := d.CPU.Mem.ReadWord(addr)
	d.Printf("0x%08X = %s\n", addr, d.formatValue(v))
	return nil
}

func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x <address> [count]")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	count := 1
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			count = n
		}
	}
	wordsPerLine := count
	if d.BytesPerLine > 0 {
		wordsPerLine = d.BytesPerLine / 4
		if wordsPerLine == 0 {
			wordsPerLine = 1
		}
	}

	for i := 0; i < count; i++ {
		if i%wordsPerLine == 0 {
			if i > 0 {
				d.Println()
			}
			d.Printf("0x%08X:", addr)
		}
		d.Printf(" 0x%08X", d.CPU.Mem.ReadWord(addr))
		addr += 4
	}
	d.Println()
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|csr>")
	}
	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "csr":
		return d.showCSR()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for i := 0; i < 32; i += RegisterGroupSize {
		for j := i; j < i+RegisterGroupSize && j < 32; j++ {
			v := d.CPU.Hart.GetX(uint32(j))
			d.Printf("  x%-2d=0x%08X", j, v)
		}
		d.Println()
	}
	d.Printf("  pc =0x%08X  priv=%s\n", d.CPU.Hart.PC, d.CPU.Hart.Priv)
	return nil
}

func (d *Debugger) showBreakpoints() error {
	bps := d.Breakpoints.All()
	if len(bps) == 0 {
		d.Println("No breakpoints")
		return nil
	}
	d.Println("Breakpoints:")
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		d.Printf("  %d: 0x%08X (%s, hits=%d)\n", bp.ID, bp.Address, status, bp.HitCount)
	}
	return nil
}

func (d *Debugger) showCSR() error {
	for _, c := range []struct {
		name string
		addr uint32
	}{
		{"mstatus", vm.CsrMstatus}, {"mepc", vm.CsrMepc}, {"mcause", vm.CsrMcause},
		{"mtvec", vm.CsrMtvec}, {"satp", vm.CsrSatp}, {"sepc", vm.CsrSepc},
		{"scause", vm.CsrScause}, {"stvec", vm.CsrStvec},
	} {
		d.Printf("  %-8s = 0x%08X\n", c.name, d.CPU.Hart.CSR.Read(c.addr))
	}
	return nil
}

func (d *Debugger) cmdHelp() error {
	d.Println("Commands: run continue step next break tbreak delete print x info reset help")
	return nil
}

// ShouldBreak reports whether execution should pause before the block
// starting at the hart's current PC runs, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.CPU.Hart.PC

	if d.StepOnce {
		d.StepOnce = false
		return true, "single step"
	}
	if d.StepOver {
		if pc == d.StepOverPC {
			d.StepOver = false
			return true, "step over complete"
		}
	}

	if bp := d.Breakpoints.ProcessHit(pc); bp != nil {
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}
	return false, ""
}

// GetOutput drains and returns everything written via Printf/Println.
func (d *Debugger) GetOutput() string {
	s := d.Output.String()
	d.Output.Reset()
	return s
}

// Printf appends formatted text to the output buffer.
func (d *Debugger) Printf(format string, args ...any) {
	fmt.Fprintf(&d.Output, format, args...)
}

// Println appends a line to the output buffer.
func (d *Debugger) Println(args ...any) {
	fmt.Fprintln(&d.Output, args...)
}

func gprIndex(name string) (uint32, bool) {
	if len(name) < 2 || name[0] != 'x' {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, false
	}
	return uint32(n), true
}
