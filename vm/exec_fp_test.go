package vm

import "testing"

func TestExecFPAddAndCompare(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetFFloat(1, 1.5)
	cpu.Hart.SetFFloat(2, 2.5)

	if trap := execFP(cpu, &Decoded{Op: OpFaddS, Rd: 3, Rs1: 1, Rs2: 2}); trap != nil {
		t.Fatalf("fadd.s: %+v", trap)
	}
	if got := cpu.Hart.GetFFloat(3); got != 4.0 {
		t.Errorf("fadd.s result = %v, want 4.0", got)
	}

	if trap := execFP(cpu, &Decoded{Op: OpFltS, Rd: 4, Rs1: 1, Rs2: 2}); trap != nil {
		t.Fatalf("flt.s: %+v", trap)
	}
	if got := cpu.Hart.GetX(4); got != 1 {
		t.Errorf("flt.s result = %d, want 1 (true)", got)
	}
}

func TestExecFPMinMaxNaNPropagation(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetFFloat(1, float32(nan32()))
	cpu.Hart.SetFFloat(2, 3.0)

	if trap := execFP(cpu, &Decoded{Op: OpFminS, Rd: 3, Rs1: 1, Rs2: 2}); trap != nil {
		t.Fatalf("fmin.s: %+v", trap)
	}
	if got := cpu.Hart.GetFFloat(3); got != 3.0 {
		t.Errorf("fmin.s(NaN, 3.0) = %v, want 3.0 (non-NaN operand wins)", got)
	}
}

func nan32() float32 {
	var zero float32
	return zero / zero
}

func TestExecFPClassifiesValues(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetFFloat(1, 0.0)
	if trap := execFP(cpu, &Decoded{Op: OpFclassS, Rd: 2, Rs1: 1}); trap != nil {
		t.Fatalf("fclass.s: %+v", trap)
	}
	if got := cpu.Hart.GetX(2); got != fclassPosZero {
		t.Errorf("fclass.s(+0.0) = %d, want fclassPosZero", got)
	}
}

func TestExecFPMoveRoundTrip(t *testing.T) {
	cpu := newTestCPU(false)
	cpu.Hart.SetX(1, 0xDEADBEEF)
	if trap := execFP(cpu, &Decoded{Op: OpFmvWX, Rd: 2, Rs1: 1}); trap != nil {
		t.Fatalf("fmv.w.x: %+v", trap)
	}
	if trap := execFP(cpu, &Decoded{Op: OpFmvXW, Rd: 3, Rs1: 2}); trap != nil {
		t.Fatalf("fmv.x.w: %+v", trap)
	}
	if got := cpu.Hart.GetX(3); got != 0xDEADBEEF {
		t.Errorf("fmv.w.x/fmv.x.w round trip = 0x%x, want 0xDEADBEEF", got)
	}
}
