package debugger

import (
	"testing"

	"github.com/lookbusy1344/rv32-emu/vm"
)

func newTestDebugger() *Debugger {
	cpu := vm.NewCPU(vm.DefaultCPUConfig())
	return NewDebugger(cpu)
}

func TestDebuggerResolveAddressSymbolAndHex(t *testing.T) {
	d := newTestDebugger()
	d.LoadSymbols(map[string]uint32{"_start": 0x8000})

	addr, err := d.ResolveAddress("_start")
	if err != nil || addr != 0x8000 {
		t.Fatalf("ResolveAddress(_start) = %x, %v", addr, err)
	}

	addr, err = d.ResolveAddress("0x1000")
	if err != nil || addr != 0x1000 {
		t.Fatalf("ResolveAddress(0x1000) = %x, %v", addr, err)
	}
}

func TestDebuggerBreakCommandInstallsBreakpoint(t *testing.T) {
	d := newTestDebugger()
	if err := d.ExecuteCommand("break 0x8000"); err != nil {
		t.Fatalf("break: %v", err)
	}
	if len(d.Breakpoints.All()) != 1 {
		t.Fatalf("expected 1 breakpoint, got %d", len(d.Breakpoints.All()))
	}
	out := d.GetOutput()
	if out == "" {
		t.Error("expected break to print a confirmation")
	}
}

func TestDebuggerEmptyCommandRepeatsLast(t *testing.T) {
	d := newTestDebugger()
	_ = d.ExecuteCommand("break 0x8000")
	d.GetOutput()

	if err := d.ExecuteCommand(""); err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if len(d.Breakpoints.All()) != 1 {
		t.Errorf("expected the repeated break to re-arm the same address (still 1 breakpoint), got %d", len(d.Breakpoints.All()))
	}
}

func TestDebuggerShouldBreakSingleStep(t *testing.T) {
	d := newTestDebugger()
	d.StepOnce = true
	should, reason := d.ShouldBreak()
	if !should || reason != "single step" {
		t.Errorf("ShouldBreak = %v, %q", should, reason)
	}
	if d.StepOnce {
		t.Error("StepOnce should clear after firing once")
	}
}

func TestDebuggerShouldBreakAtBreakpoint(t *testing.T) {
	d := newTestDebugger()
	d.Breakpoints.Add(0, false)

	should, reason := d.ShouldBreak()
	if !should || reason != "breakpoint 1" {
		t.Errorf("ShouldBreak = %v, %q", should, reason)
	}
}

func TestDebuggerPrintRegister(t *testing.T) {
	d := newTestDebugger()
	d.CPU.Hart.SetX(5, 42)
	if err := d.ExecuteCommand("print x5"); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := d.GetOutput()
	if out == "" {
		t.Error("expected print to produce output")
	}
}

func TestDebuggerUnknownCommandErrors(t *testing.T) {
	d := newTestDebugger()
	if err := d.ExecuteCommand("bogus"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}
