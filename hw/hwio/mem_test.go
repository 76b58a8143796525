package hwio

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemMasking(t *testing.T) {
	var m Mem

	m.Write8(0x1005, 0xAB)
	if got := m.Read8(0x005); got != 0xAB {
		t.Errorf("write at $1005 should land at $005, got %02X", got)
	}
	if got := m.Read8(0xF005); got != 0xAB {
		t.Errorf("read at $F005 should mask to $005, got %02X", got)
	}

	// A word read at the last address wraps to the first byte.
	m.Write8(0xFFF, 0x12)
	m.Write8(0x000, 0x34)
	if got := m.Read16(0xFFF); got != 0x1234 {
		t.Errorf("Read16($FFF) = %04X, want 1234", got)
	}

	m.Write16(0x300, 0xBEEF)
	if m.Data[0x300] != 0xBE || m.Data[0x301] != 0xEF {
		t.Errorf("Write16 is not big-endian: % X", m.Data[0x300:0x302])
	}
}

func TestMemLoad(t *testing.T) {
	var m Mem

	prog := []byte{0x60, 0x01, 0x12, 0x00}
	if err := m.Load(0x200, prog); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(m.Peek(0x200, 4), prog) {
		t.Errorf("loaded bytes mismatch: % X", m.Peek(0x200, 4))
	}

	// Exactly fits.
	full := bytes.Repeat([]byte{0xEE}, MemSize-0x200)
	if err := m.Load(0x200, full); err != nil {
		t.Fatalf("full load failed: %v", err)
	}

	// One byte too many: rejected, memory untouched.
	m.Reset()
	big := bytes.Repeat([]byte{0xEE}, MemSize-0x200+1)
	err := m.Load(0x200, big)
	if !errors.Is(err, ErrMemOverflow) {
		t.Fatalf("got err = %v, want ErrMemOverflow", err)
	}
	if m.Read8(0x200) != 0 {
		t.Errorf("rejected load modified memory")
	}
}

func TestMemWriteCallback(t *testing.T) {
	var m Mem

	var gotAddr uint16
	var gotVal uint8
	m.WriteCb = func(addr uint16, val uint8) {
		gotAddr, gotVal = addr, val
	}
	m.Write8(0x1300, 0x42)
	if gotAddr != 0x300 || gotVal != 0x42 {
		t.Errorf("callback got ($%03X, %02X), want ($300, 42)", gotAddr, gotVal)
	}
}

func TestMemPeek(t *testing.T) {
	var m Mem
	if n := len(m.Peek(0xFFE, 8)); n != 2 {
		t.Errorf("Peek should stop at the end of memory, got %d bytes", n)
	}
}

func TestBitOps(t *testing.T) {
	var v uint16
	WriteBit16(&v, 7, true)
	WriteBit16(&v, 0xF, true)
	if v != 0x8080 {
		t.Fatalf("v = %04X, want 8080", v)
	}
	WriteBit16(&v, 7, false)
	if GetBit16(v, 7) || !GetBit16(v, 0xF) {
		t.Fatalf("v = %04X, want 8000", v)
	}
	if !GetBit8(0x80, 7) || GetBit8(0x80, 6) {
		t.Fatal("GetBit8 mismatch")
	}
}
