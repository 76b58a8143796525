package hwio

import (
	"errors"
	"fmt"

	"chip8/emu/log"
)

const (
	MemSize  = 0x1000      // 4KB addressing space
	AddrMask = MemSize - 1 // addresses wrap within the addressing space
)

// ErrMemOverflow is returned when a block doesn't fit in memory.
var ErrMemOverflow = errors.New("memory overflow")

// Mem is the linear memory of the machine. All accesses are masked to 12 bits
// so that no address can ever reach outside of the array.
type Mem struct {
	Data [MemSize]byte

	// Optional write callback, called after each write (watchpoints).
	WriteCb func(addr uint16, val uint8)
}

func (m *Mem) Read8(addr uint16) uint8 {
	return m.Data[addr&AddrMask]
}

func (m *Mem) Write8(addr uint16, val uint8) {
	addr &= AddrMask
	m.Data[addr] = val
	if m.WriteCb != nil {
		m.WriteCb(addr, val)
	}
}

// Read16 reads a big-endian 16-bit word.
func (m *Mem) Read16(addr uint16) uint16 {
	hi := m.Read8(addr)
	lo := m.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 writes a big-endian 16-bit word.
func (m *Mem) Write16(addr uint16, val uint16) {
	m.Write8(addr, uint8(val>>8))
	m.Write8(addr+1, uint8(val))
}

// Load copies buf at off. It fails, leaving memory untouched, if buf doesn't
// entirely fit between off and the end of memory.
func (m *Mem) Load(off uint16, buf []byte) error {
	if int(off)+len(buf) > MemSize {
		log.ModMem.WarnZ("Rejected memory load").
			Hex16("off", off).
			Int("len", int64(len(buf))).
			End()
		return fmt.Errorf("%w: %d bytes at $%03X, %d available", ErrMemOverflow, len(buf), off, MemSize-int(off))
	}
	copy(m.Data[off:], buf)
	return nil
}

// Peek returns a view of at most n bytes starting at addr, without wrapping.
func (m *Mem) Peek(addr uint16, n int) []byte {
	addr &= AddrMask
	end := min(int(addr)+n, MemSize)
	return m.Data[addr:end]
}

// Reset zeroes the whole memory.
func (m *Mem) Reset() {
	clear(m.Data[:])
}
