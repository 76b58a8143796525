package rom

import (
	"fmt"
	"io"
	"text/tabwriter"

	"chip8/hw/opcode"
)

// A Line is a disassembled instruction word. A trailing odd byte is returned
// as a Line having a single byte and an Invalid op.
type Line struct {
	Addr  uint16
	Bytes []byte
	Op    opcode.Op
}

// Lines linearly disassembles the rom, word by word, as if loaded at
// LoadAddr. Data interleaved with code is disassembled too.
func (rom *Rom) Lines() []Line {
	lines := make([]Line, 0, (len(rom.Data)+1)/2)
	for off := 0; off < len(rom.Data); off += 2 {
		l := Line{Addr: uint16(LoadAddr + off)}
		if off+1 < len(rom.Data) {
			l.Bytes = rom.Data[off : off+2]
			l.Op = opcode.Decode(uint16(l.Bytes[0])<<8 | uint16(l.Bytes[1]))
		} else {
			l.Bytes = rom.Data[off : off+1]
			l.Op = opcode.Op{Kind: opcode.Invalid, Word: uint16(l.Bytes[0]) << 8}
		}
		lines = append(lines, l)
	}
	return lines
}

// Targets returns the set of addresses used as destination by jumps and calls.
func (rom *Rom) Targets() map[uint16]bool {
	targets := make(map[uint16]bool)
	for _, l := range rom.Lines() {
		switch l.Op.Kind {
		case opcode.Jump, opcode.Call:
			targets[l.Op.NNN] = true
		}
	}
	return targets
}

// Stats summarizes the content of a rom.
type Stats struct {
	Size    int
	CRC32   uint32
	Words   int
	Invalid int
	Kinds   [opcode.NumKinds]int

	// Lowest and highest addresses targeted by jumps and calls, zero if none.
	MinTarget, MaxTarget uint16
}

func (rom *Rom) Stats() Stats {
	st := Stats{
		Size:  len(rom.Data),
		CRC32: rom.CRC32(),
	}
	for _, l := range rom.Lines() {
		st.Words++
		st.Kinds[l.Op.Kind]++
		if l.Op.Kind == opcode.Invalid {
			st.Invalid++
		}
	}
	for t := range rom.Targets() {
		if st.MinTarget == 0 || t < st.MinTarget {
			st.MinTarget = t
		}
		st.MaxTarget = max(st.MaxTarget, t)
	}
	return st
}

// PrintInfos writes a human readable summary of the rom to w.
func (rom *Rom) PrintInfos(w io.Writer) error {
	st := rom.Stats()

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "name:\t%s\n", rom.Name)
	fmt.Fprintf(tw, "size:\t%d bytes ($%03X-$%03X)\n", st.Size, LoadAddr, LoadAddr+st.Size-1)
	fmt.Fprintf(tw, "crc32:\t%08X\n", st.CRC32)
	fmt.Fprintf(tw, "words:\t%d (%d not instructions)\n", st.Words, st.Invalid)
	if st.MaxTarget != 0 {
		fmt.Fprintf(tw, "jump targets:\t$%03X-$%03X\n", st.MinTarget, st.MaxTarget)
	}
	fmt.Fprintf(tw, "uses sound:\t%t\n", st.Kinds[opcode.SetSound] != 0)
	fmt.Fprintf(tw, "uses keypad:\t%t\n", st.Kinds[opcode.SkipKey]+st.Kinds[opcode.SkipNotKey]+st.Kinds[opcode.WaitKey] != 0)
	fmt.Fprintf(tw, "uses sys calls:\t%t\n", st.Kinds[opcode.Sys] != 0)
	return tw.Flush()
}
