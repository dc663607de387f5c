package encoder

import (
	"testing"

	"github.com/lookbusy1344/rv32-emu/vm"
)

func decodeOrFatal(t *testing.T, word uint32) *vm.Decoded {
	t.Helper()
	d, err := vm.Decode(word, 0x1000, vm.DefaultExtensions())
	if err != nil {
		t.Fatalf("Decode(0x%08x): %v", word, err)
	}
	return d
}

func TestRoundTripAddi(t *testing.T) {
	word, err := EncodeAddi(10, 11, -42)
	if err != nil {
		t.Fatalf("EncodeAddi: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpAddi || d.Rd != 10 || d.Rs1 != 11 || d.Imm != -42 {
		t.Errorf("round trip = %+v, want addi x10, x11, -42", d)
	}
}

func TestRoundTripBranch(t *testing.T) {
	word, err := EncodeBlt(5, 6, -16)
	if err != nil {
		t.Fatalf("EncodeBlt: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpBlt || d.Rs1 != 5 || d.Rs2 != 6 || d.Imm != -16 {
		t.Errorf("round trip = %+v, want blt x5, x6, -16", d)
	}
}

func TestRoundTripJal(t *testing.T) {
	word, err := EncodeJal(1, 2048)
	if err != nil {
		t.Fatalf("EncodeJal: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpJal || d.Rd != 1 || d.Imm != 2048 {
		t.Errorf("round trip = %+v, want jal x1, 2048", d)
	}
}

func TestRoundTripStore(t *testing.T) {
	word, err := EncodeSw(10, 11, 100)
	if err != nil {
		t.Fatalf("EncodeSw: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpSw || d.Rs1 != 10 || d.Rs2 != 11 || d.Imm != 100 {
		t.Errorf("round trip = %+v, want sw x11, 100(x10)", d)
	}
}

func TestRoundTripShiftImm(t *testing.T) {
	word, err := EncodeSrai(5, 6, 7)
	if err != nil {
		t.Fatalf("EncodeSrai: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpSrai || d.Rd != 5 || d.Rs1 != 6 || d.Shamt != 7 {
		t.Errorf("round trip = %+v, want srai x5, x6, 7", d)
	}
}

func TestRoundTripAmo(t *testing.T) {
	word, err := EncodeLrW(10, 11)
	if err != nil {
		t.Fatalf("EncodeLrW: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpLrW || d.Rd != 10 || d.Rs1 != 11 {
		t.Errorf("round trip = %+v, want lr.w x10, (x11)", d)
	}
}

func TestRoundTripCsr(t *testing.T) {
	word, err := EncodeCsrrs(10, 11, 0x180)
	if err != nil {
		t.Fatalf("EncodeCsrrs: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpCsrrs || d.Rd != 10 || d.Rs1 != 11 || d.Csr != 0x180 {
		t.Errorf("round trip = %+v, want csrrs x10, x11, 0x180", d)
	}
}

func TestRoundTripBitmanip(t *testing.T) {
	word, err := EncodeSh1add(5, 6, 7)
	if err != nil {
		t.Fatalf("EncodeSh1add: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpSh1add || d.Rd != 5 || d.Rs1 != 6 || d.Rs2 != 7 {
		t.Errorf("round trip = %+v, want sh1add x5, x6, x7", d)
	}
}

func TestRoundTripPrivileged(t *testing.T) {
	word, err := EncodeMret()
	if err != nil {
		t.Fatalf("EncodeMret: %v", err)
	}
	d := decodeOrFatal(t, word)
	if d.Op != vm.OpMret {
		t.Errorf("round trip = %+v, want mret", d)
	}
}

func TestEncodeRegisterOutOfRange(t *testing.T) {
	if _, err := EncodeAddi(32, 0, 0); err == nil {
		t.Error("expected a RegisterError for rd=32, got nil")
	}
}

func TestEncodeImmediateOutOfRange(t *testing.T) {
	if _, err := EncodeAddi(1, 2, 4096); err == nil {
		t.Error("expected a RangeError for a 12-bit immediate of 4096, got nil")
	}
}
