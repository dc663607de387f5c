package vm

import "testing"

func TestMemoryByteRoundTrip(t *testing.T) {
	m := NewMemory()
	m.WriteByte(0x1000, 0xAB)
	if got := m.ReadByte(0x1000); got != 0xAB {
		t.Errorf("ReadByte(0x1000) = 0x%02x, want 0xAB", got)
	}
	if got := m.ReadByte(0x2000); got != 0 {
		t.Errorf("unallocated chunk read = 0x%02x, want 0", got)
	}
}

func TestMemoryHalfBoundary(t *testing.T) {
	m := NewMemory()
	m.WriteHalf(0x0FFFF, 0xBEEF)
	if got := m.ReadHalf(0x0FFFF); got != 0xBEEF {
		t.Errorf("ReadHalf straddling chunk boundary = 0x%04x, want 0xBEEF", got)
	}
}

func TestMemoryWordBoundaries(t *testing.T) {
	cases := []uint32{0x0FFFF, 0x0FFFE, 0x0FFFD}
	for _, addr := range cases {
		m := NewMemory()
		m.WriteWord(addr, 0xDEADBEEF)
		if got := m.ReadWord(addr); got != 0xDEADBEEF {
			t.Errorf("word at 0x%05x = 0x%08x, want 0xDEADBEEF", addr, got)
		}
	}
}

func TestMemoryLoadFlatBinary(t *testing.T) {
	m := NewMemory()
	data := []byte{1, 2, 3, 4}
	if err := m.LoadFlatBinary(0x8000, data); err != nil {
		t.Fatalf("LoadFlatBinary: %v", err)
	}
	if got := m.GetBytes(0x8000, 4); string(got) != string(data) {
		t.Errorf("GetBytes = %v, want %v", got, data)
	}
}

func TestMemoryLoadFlatBinaryOverflow(t *testing.T) {
	m := NewMemory()
	if err := m.LoadFlatBinary(0xFFFFFFF0, make([]byte, 32)); err == nil {
		t.Error("expected overflow error, got nil")
	}
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory()
	m.WriteByte(0x100, 1)
	if m.AllocatedChunks() == 0 {
		t.Fatal("expected at least one allocated chunk")
	}
	m.Reset()
	if m.AllocatedChunks() != 0 {
		t.Errorf("AllocatedChunks after Reset = %d, want 0", m.AllocatedChunks())
	}
	if got := m.ReadByte(0x100); got != 0 {
		t.Errorf("ReadByte after Reset = %d, want 0", got)
	}
}
