package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/rv32-emu/vm"
)

// TUI is a tcell/tview front end over a Debugger: register/CSR panels, a
// disassembly window centered on PC, a breakpoint list, and a scrollback
// output pane driven by a single command-line input field.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout      *tview.Flex
	RegisterView    *tview.TextView
	CSRView         *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	// DisasmContextBefore/After bound the disassembly window shown around
	// PC; NewTUI seeds them from the package defaults, SetDisasmContext
	// overrides them from configuration.
	DisasmContextBefore int
	DisasmContextAfter  int

	// ColorOutput gates tview color tags in the disassembly and error
	// output; false renders plain text for terminals/loggers that don't
	// want ANSI color.
	ColorOutput bool
}

// NewTUI builds every panel and wires key bindings, but does not start
// the event loop; call Run for that.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		Debugger:            dbg,
		App:                 tview.NewApplication(),
		DisasmContextBefore: DisassemblyContextBefore,
		DisasmContextAfter:  DisassemblyContextAfter,
		ColorOutput:         true,
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

// tag wraps text with a tview color tag when ColorOutput is enabled, or
// returns it unchanged otherwise.
func (t *TUI) tag(color, text string) string {
	if !t.ColorOutput {
		return text
	}
	return fmt.Sprintf("[%s]%s[white]", color, text)
}

// SetDisasmContext overrides the disassembly window split around PC. n
// is split roughly 1:3 before:after, matching the package defaults'
// ratio; n <= 0 leaves the current window unchanged.
func (t *TUI) SetDisasmContext(n int) {
	if n <= 0 {
		return
	}
	t.DisasmContextBefore = n / 4
	if t.DisasmContextBefore == 0 {
		t.DisasmContextBefore = 1
	}
	t.DisasmContextAfter = n - t.DisasmContextBefore
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.CSRView = tview.NewTextView().SetDynamicColors(true)
	t.CSRView.SetBorder(true).SetTitle(" CSRs ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 10, 0, false).
		AddItem(t.CSRView, 10, 0, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	t.executeCommand(cmd)
	t.CommandInput.SetText("")
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(t.tag("red", fmt.Sprintf("Error: %v", err)) + "\n")
	}
	if output != "" {
		t.WriteOutput(output)
	}

	for t.Debugger.Running {
		if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
			t.Debugger.Running = false
			t.WriteOutput(fmt.Sprintf("Stopped: %s at pc=0x%08X\n", reason, t.Debugger.CPU.Hart.PC))
			break
		}
		if trap := t.Debugger.CPU.Step(); trap != nil {
			t.Debugger.Running = false
			t.WriteOutput(fmt.Sprintf("Trap: cause=%d at pc=0x%08X\n", trap.Cause, t.Debugger.CPU.Hart.PC))
			break
		}
		if t.Debugger.CPU.Halted {
			t.Debugger.Running = false
			t.WriteOutput(fmt.Sprintf("Program exited with code %d\n", t.Debugger.CPU.ExitCode))
			break
		}
	}

	t.RefreshAll()
}

// WriteOutput appends text to the scrollback pane and scrolls to it.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current CPU state.
func (t *TUI) RefreshAll() {
	t.updateRegisterView()
	t.updateCSRView()
	t.updateDisassemblyView()
	t.updateBreakpointsView()
	t.App.Draw()
}

func (t *TUI) updateRegisterView() {
	h := t.Debugger.CPU.Hart
	var lines []string
	for i := 0; i < 32; i += RegisterGroupSize {
		var cols []string
		for j := i; j < i+RegisterGroupSize && j < 32; j++ {
			cols = append(cols, fmt.Sprintf("x%-2d=0x%08X", j, h.GetX(uint32(j))))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}
	lines = append(lines, fmt.Sprintf("pc =0x%08X  priv=%s", h.PC, h.Priv))
	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateCSRView() {
	h := t.Debugger.CPU.Hart
	csrs := []struct {
		name string
		addr uint32
	}{
		{"mstatus", vm.CsrMstatus}, {"mepc", vm.CsrMepc}, {"mcause", vm.CsrMcause},
		{"mtvec", vm.CsrMtvec}, {"satp", vm.CsrSatp},
	}
	var lines []string
	for _, c := range csrs {
		lines = append(lines, fmt.Sprintf("%-8s=0x%08X", c.name, h.CSR.Read(c.addr)))
	}
	t.CSRView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateDisassemblyView() {
	cpu := t.Debugger.CPU
	pc := cpu.Hart.PC

	start := pc
	for i := 0; i < t.DisasmContextBefore && start >= 4; i++ {
		start -= 4
	}

	var lines []string
	addr := start
	for i := 0; i < t.DisasmContextBefore+t.DisasmContextAfter; i++ {
		word := cpu.Mem.ReadWord(addr)
		marker := "  "
		color := "white"
		if addr == pc {
			marker = "->"
			color = "yellow"
		}
		for _, bp := range t.Debugger.Breakpoints.All() {
			if bp.Address == addr && bp.Enabled {
				marker = "* "
			}
		}
		mnemonic := "?"
		if dec, err := vm.Decode(word, addr, cpu.Ext); err == nil {
			mnemonic = dec.Op.String()
		}
		lines = append(lines, t.tag(color, fmt.Sprintf("%s 0x%08X: %08X  %s", marker, addr, word, mnemonic)))
		addr += 4
	}
	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateBreakpointsView() {
	bps := t.Debugger.Breakpoints.All()
	if len(bps) == 0 {
		t.BreakpointsView.SetText(t.tag("gray", "No breakpoints"))
		return
	}
	var lines []string
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		lines = append(lines, fmt.Sprintf("%d: 0x%08X (%s, hits=%d)", bp.ID, bp.Address, status, bp.HitCount))
	}
	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the tview event loop, blocking until the user quits.
func (t *TUI) Run() error {
	t.RefreshAll()
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}
