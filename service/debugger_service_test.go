package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/rv32-emu/vm"
)

func newTestService(t *testing.T) *DebuggerService {
	t.Helper()
	cpu := vm.NewCPU(vm.DefaultCPUConfig())
	return NewDebuggerService(cpu)
}

func TestDebuggerServiceLoadAndRegisters(t *testing.T) {
	svc := newTestService(t)

	// addi x1, x0, 5 ; ebreak
	prog := []byte{0x93, 0x00, 0x50, 0x00, 0x73, 0x00, 0x10, 0x00}
	require.NoError(t, svc.LoadFlatBinary(0x1000, prog))

	regs := svc.Registers()
	require.Equal(t, uint32(0x1000), regs.PC)
}

func TestDebuggerServiceStepExecutesAddi(t *testing.T) {
	svc := newTestService(t)

	prog := []byte{0x93, 0x00, 0x50, 0x00, 0x73, 0x00, 0x10, 0x00}
	require.NoError(t, svc.LoadFlatBinary(0x1000, prog))

	svc.Step()
	regs := svc.Registers()
	require.Equal(t, uint32(5), regs.X[1])
}

func TestDebuggerServiceBreakpointLifecycle(t *testing.T) {
	svc := newTestService(t)

	id := svc.SetBreakpoint(0x2000)
	require.Greater(t, id, 0, "SetBreakpoint should return a positive id")

	bps := svc.Breakpoints()
	require.Equal(t, []uint32{0x2000}, bps)

	require.NoError(t, svc.DeleteBreakpoint(0x2000))
	require.Empty(t, svc.Breakpoints(), "expected no breakpoints after delete")
}

func TestDebuggerServiceMemoryRoundTrip(t *testing.T) {
	svc := newTestService(t)

	data := []byte{0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, svc.LoadFlatBinary(0x4000, data))

	got := svc.Memory(0x4000, 4)
	require.Equal(t, data, got)
}

func TestDebuggerServiceReset(t *testing.T) {
	svc := newTestService(t)

	prog := []byte{0x93, 0x00, 0x50, 0x00}
	require.NoError(t, svc.LoadFlatBinary(0x1000, prog))
	svc.Step()
	svc.Reset()

	regs := svc.Registers()
	require.Equal(t, uint32(0), regs.X[1], "x1 after reset")
}
