package hw

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
)

// tbwriter writes the execution trace in the test log.
type tbwriter struct {
	tb testing.TB
}

func (w tbwriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

type countBeeper struct{ n int }

func (b *countBeeper) Beep() { b.n++ }

// newTestCPU returns a CPU with a deterministic random source and dump loaded
// in memory. See loadDump for the dump format.
func newTestCPU(tb testing.TB, dump string) *CPU {
	tb.Helper()

	cpu := NewCPU(nil)
	cpu.SetRand(rand.New(rand.NewPCG(1, 2)))
	for _, dl := range loadDump(tb, dump) {
		if err := cpu.Mem.Load(dl.off, dl.bytes); err != nil {
			tb.Fatal(err)
		}
	}
	if testing.Verbose() {
		cpu.SetTraceOutput(tbwriter{tb})
	}
	return cpu
}

func wantMem(t *testing.T, cpu *CPU, dl dumpline) {
	t.Helper()

	mem := cpu.Mem.Peek(dl.off, len(dl.bytes))
	if !bytes.Equal(mem, dl.bytes) {
		t.Errorf("mem mismatch at $%03X.\ngot:  % X\nwant: % X", dl.off, mem, dl.bytes)
	}
}

// runAndCheckState runs ncycles cycles then checks the CPU state against
// states, a list of name/value pairs. Names are V0-VF, I, PC, SP, DT, ST and
// mem (value is a memory dump).
func runAndCheckState(t *testing.T, cpu *CPU, ncycles int64, states ...any) {
	t.Helper()

	if len(states)%2 != 0 {
		panic("odd number of states")
	}

	checkuint8 := func(name string, got, want uint8) {
		t.Helper()
		if got != want {
			t.Errorf("got %s=$%02X, want $%02X", name, got, want)
		}
	}
	checkuint16 := func(name string, got, want uint16) {
		t.Helper()
		if got != want {
			t.Errorf("got %s=$%04X, want $%04X", name, got, want)
		}
	}

	cpu.Run(ncycles)

	for i := 0; i < len(states); i += 2 {
		s := states[i].(string)
		switch {
		case s == "PC":
			checkuint16("PC", cpu.PC, states[i+1].(uint16))
		case s == "I":
			checkuint16("I", cpu.I, states[i+1].(uint16))
		case s == "SP":
			checkuint8("SP", cpu.SP, states[i+1].(uint8))
		case s == "DT":
			checkuint8("DT", cpu.DT, states[i+1].(uint8))
		case s == "ST":
			checkuint8("ST", cpu.ST, states[i+1].(uint8))
		case len(s) == 2 && s[0] == 'V':
			reg, err := strconv.ParseUint(s[1:], 16, 8)
			if err != nil {
				panic("unknown register: " + s)
			}
			checkuint8(s, cpu.V[reg], states[i+1].(uint8))
		case s == "mem":
			for _, line := range loadDump(t, states[i+1].(string)) {
				wantMem(t, cpu, line)
			}
		default:
			panic("unknown state: " + s)
		}
	}

	if t.Failed() {
		t.FailNow()
	}
}

type dumpline struct {
	off   uint16
	bytes []byte
}

// loadDump parses a memory dump made of lines like:
//
//	0200: 60 0A 61 14
//
// Empty lines and lines starting with # are ignored.
func loadDump(tb testing.TB, dump string) []dumpline {
	tb.Helper()

	var lines []dumpline
	scan := bufio.NewScanner(strings.NewReader(dump))
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		off, octets, ok := strings.Cut(line, ":")
		if !ok {
			tb.Fatalf("malformed line: %s", line)
		}

		ioff, err := strconv.ParseUint(off, 16, 16)
		if err != nil {
			tb.Fatalf("malformed offset %s: %s", off, err)
		}
		buf, err := hex.DecodeString(strings.ReplaceAll(octets, " ", ""))
		if err != nil {
			tb.Fatalf("hex decode: %s", err)
		}
		lines = append(lines, dumpline{off: uint16(ioff), bytes: buf})
	}
	if scan.Err() != nil {
		tb.Fatalf("scan error: %s", scan.Err())
	}

	return lines
}
