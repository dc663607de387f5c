package vm

import "testing"

func TestExecBitmanipZbaAddressGen(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetX(1, 3)
	cpu.Hart.SetX(2, 100)
	if trap := execBitmanip(cpu, &Decoded{Op: OpSh2add, Rd: 3, Rs1: 1, Rs2: 2}); trap != nil {
		t.Fatalf("sh2add: %+v", trap)
	}
	if got := cpu.Hart.GetX(3); got != 112 { // (3<<2)+100
		t.Errorf("sh2add = %d, want 112", got)
	}
}

func TestExecBitmanipClzCtzCpop(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetX(1, 0x00000001)
	if trap := execBitmanip(cpu, &Decoded{Op: OpClz, Rd: 2, Rs1: 1}); trap != nil {
		t.Fatalf("clz: %+v", trap)
	}
	if got := cpu.Hart.GetX(2); got != 31 {
		t.Errorf("clz(1) = %d, want 31", got)
	}

	cpu.Hart.SetX(1, 0x80000000)
	if trap := execBitmanip(cpu, &Decoded{Op: OpCtz, Rd: 2, Rs1: 1}); trap != nil {
		t.Fatalf("ctz: %+v", trap)
	}
	if got := cpu.Hart.GetX(2); got != 31 {
		t.Errorf("ctz(0x80000000) = %d, want 31", got)
	}

	cpu.Hart.SetX(1, 0xff)
	if trap := execBitmanip(cpu, &Decoded{Op: OpCpop, Rd: 2, Rs1: 1}); trap != nil {
		t.Fatalf("cpop: %+v", trap)
	}
	if got := cpu.Hart.GetX(2); got != 8 {
		t.Errorf("cpop(0xff) = %d, want 8", got)
	}
}

func TestExecBitmanipRotate(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetX(1, 0x80000001)
	cpu.Hart.SetX(2, 1)
	if trap := execBitmanip(cpu, &Decoded{Op: OpRol, Rd: 3, Rs1: 1, Rs2: 2}); trap != nil {
		t.Fatalf("rol: %+v", trap)
	}
	if got := cpu.Hart.GetX(3); got != 0x00000003 {
		t.Errorf("rol(0x80000001, 1) = 0x%x, want 0x3", got)
	}
}

func TestExecBitmanipSingleBitOps(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetX(1, 0)
	if trap := execBitmanip(cpu, &Decoded{Op: OpBseti, Rd: 2, Rs1: 1, Shamt: 3}); trap != nil {
		t.Fatalf("bseti: %+v", trap)
	}
	if got := cpu.Hart.GetX(2); got != 0x8 {
		t.Errorf("bseti(0, 3) = 0x%x, want 0x8", got)
	}

	if trap := execBitmanip(cpu, &Decoded{Op: OpBexti, Rd: 3, Rs1: 2, Shamt: 3}); trap != nil {
		t.Fatalf("bexti: %+v", trap)
	}
	if got := cpu.Hart.GetX(3); got != 1 {
		t.Errorf("bexti(0x8, 3) = %d, want 1", got)
	}
}

func TestExecBitmanipOrcBAndRev8(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetX(1, 0x00FF0001)
	if trap := execBitmanip(cpu, &Decoded{Op: OpOrcB, Rd: 2, Rs1: 1}); trap != nil {
		t.Fatalf("orc.b: %+v", trap)
	}
	if got := cpu.Hart.GetX(2); got != 0x00FF00FF {
		t.Errorf("orc.b(0x00FF0001) = 0x%x, want 0x00FF00FF", got)
	}

	cpu.Hart.SetX(1, 0x01020304)
	if trap := execBitmanip(cpu, &Decoded{Op: OpRev8, Rd: 2, Rs1: 1}); trap != nil {
		t.Fatalf("rev8: %+v", trap)
	}
	if got := cpu.Hart.GetX(2); got != 0x04030201 {
		t.Errorf("rev8(0x01020304) = 0x%x, want 0x04030201", got)
	}
}
