package vm

import "math"

// Hart holds the architectural state of a single hardware thread: the
// integer and floating-point register files, the program counter, the CSR
// bank, and the current privilege mode. There is exactly one per VM
// instance.
type Hart struct {
	X  [32]uint32 // integer registers; X[0] is always read as zero
	F  [32]uint32 // FP registers, raw IEEE 754 single-precision bits
	PC uint32

	CSR  *CSRFile
	Priv Privilege

	// LR/SC reservation: address held by the last lr.w, invalidated by
	// any intervening store or privilege-changing instruction.
	ReserveValid bool
	ReserveAddr  uint32
}

// NewHart returns a hart reset to its initial state for the given build
// (system mode starts in Machine privilege; user/ELF mode starts in User).
func NewHart(systemMode bool) *Hart {
	h := &Hart{CSR: NewCSRFile()}
	if systemMode {
		h.Priv = PrivMachine
	} else {
		h.Priv = PrivUser
	}
	return h
}

// GetX reads integer register r; register 0 always reads as zero.
func (h *Hart) GetX(r uint32) uint32 {
	if r == 0 {
		return 0
	}
	return h.X[r]
}

// SetX writes integer register r; writes to register 0 are discarded.
func (h *Hart) SetX(r uint32, v uint32) {
	if r == 0 {
		return
	}
	h.X[r] = v
}

// GetF reads FP register r as raw bits.
func (h *Hart) GetF(r uint32) uint32 { return h.F[r] }

// SetF writes FP register r from raw bits.
func (h *Hart) SetF(r uint32, v uint32) { h.F[r] = v }

// GetFFloat reads FP register r as a float32.
func (h *Hart) GetFFloat(r uint32) float32 {
	return math.Float32frombits(h.F[r])
}

// SetFFloat writes FP register r from a float32.
func (h *Hart) SetFFloat(r uint32, v float32) {
	h.F[r] = math.Float32bits(v)
}

// InvalidateReservation drops any outstanding LR/SC reservation. Called on
// any store to guest memory and on privilege-changing instructions.
func (h *Hart) InvalidateReservation() {
	h.ReserveValid = false
}

// Reset clears all architectural state.
func (h *Hart) Reset(systemMode bool) {
	h.X = [32]uint32{}
	h.F = [32]uint32{}
	h.PC = 0
	h.CSR = NewCSRFile()
	h.ReserveValid = false
	if systemMode {
		h.Priv = PrivMachine
	} else {
		h.Priv = PrivUser
	}
}
