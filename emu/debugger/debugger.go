package debugger

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"chip8/emu/log"
	"chip8/hw"
	"chip8/hw/hwio"
	"chip8/hw/opcode"
)

type status int32

const (
	running status = iota
	paused
	stepping
)

func (s status) String() string {
	switch s {
	case running:
		return "running"
	case paused:
		return "paused"
	case stepping:
		return "stepping"
	}
	return fmt.Sprintf("status(%d)", s)
}

// ErrNotHalted is returned when inspecting the machine while the CPU runs.
var ErrNotHalted = errors.New("cpu is not halted")

// A Debugger holds the state of the CPU debugger. In order to be able to debug
// a program at any moment, the debugger has to keep track of the call stack,
// even when no client is connected.
//
// The CPU is halted from within Trace, which blocks until the CPU is resumed
// or stepped. Machine state can only be read while the CPU is halted.
type Debugger struct {
	cpu *hw.CPU

	mu     sync.Mutex
	resume *sync.Cond
	status status
	halted bool
	reason string // why the CPU has been paused

	detached bool

	breakpoints hwio.Bitset
	watchpoints hwio.Bitset

	prevPC   uint16
	prevKind opcode.Kind
	cstack   callStack

	subs map[chan State]struct{}
}

// New creates a debugger and attaches it to cpu.
func New(cpu *hw.CPU) *Debugger {
	d := &Debugger{
		cpu:  cpu,
		subs: make(map[chan State]struct{}),
	}
	d.resume = sync.NewCond(&d.mu)
	cpu.SetDebugger(d)
	return d
}

// State is a snapshot of the debugged machine. Registers and call stack are
// only filled when the CPU is halted.
type State struct {
	Status string
	Halted bool
	Reason string

	PC        uint16
	I         uint16
	V         [16]uint8
	SP        uint8
	DT        uint8
	ST        uint8
	Cycles    int64
	CallStack []frameInfo
}

// State returns the current machine state.
func (d *Debugger) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state()
}

func (d *Debugger) state() State {
	st := State{
		Status: d.status.String(),
		Halted: d.halted,
		Reason: d.reason,
	}
	if !d.halted {
		return st
	}
	st.PC = d.cpu.PC
	st.I = d.cpu.I
	st.V = d.cpu.V
	st.SP = d.cpu.SP
	st.DT = d.cpu.DT
	st.ST = d.cpu.ST
	st.Cycles = d.cpu.Cycles
	st.CallStack = d.cstack.build(d.cpu.PC)
	return st
}

// Reset implements hw.Debugger.
func (d *Debugger) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cstack.reset()
	d.prevKind = opcode.Invalid
}

// Trace implements hw.Debugger. It blocks while the CPU is paused.
func (d *Debugger) Trace(pc uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.updateStack(pc)
	d.prevPC = pc
	d.prevKind = opcode.Decode(d.cpu.Mem.Read16(pc)).Kind

	if d.detached {
		return
	}

	if d.status == running && d.breakpoints.Test(uint(pc)) {
		d.status = paused
		d.reason = fmt.Sprintf("breakpoint at $%03X", pc)
	}

	if d.status == paused {
		d.halted = true
		log.ModDbg.DebugZ("CPU halted").Hex16("pc", pc).String("reason", d.reason).End()
		d.notify()
		for d.status == paused {
			d.resume.Wait()
		}
		d.halted = false
	}

	// Execute this instruction and halt on the next one.
	if d.status == stepping {
		d.status = paused
		d.reason = "step"
	}
}

func (d *Debugger) updateStack(pc uint16) {
	switch d.prevKind {
	case opcode.Call:
		d.cstack.push(d.prevPC, pc)
	case opcode.Return:
		d.cstack.pop()
	}
}

// WatchWrite implements hw.Debugger. The CPU halts on the instruction
// following a write to a watched address.
func (d *Debugger) WatchWrite(addr uint16, val uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.detached || d.status != running || !d.watchpoints.Test(uint(addr)) {
		return
	}
	d.status = paused
	d.reason = fmt.Sprintf("write of $%02X at $%03X", val, addr)
}

// Break implements hw.Debugger.
func (d *Debugger) Break(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log.ModDbg.InfoZ("Break").String("msg", msg).End()
	if d.detached {
		return
	}
	d.status = paused
	d.reason = msg
}

// Pause halts the CPU before it executes its next instruction.
func (d *Debugger) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status != paused {
		d.status = paused
		d.reason = "pause"
	}
}

// Run resumes the CPU.
func (d *Debugger) Run() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status = running
	d.reason = ""
	d.resume.Broadcast()
}

// Step executes a single instruction then halts the CPU again.
func (d *Debugger) Step() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status = stepping
	d.resume.Broadcast()
}

func (d *Debugger) SetBreakpoint(addr uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.breakpoints.Set(uint(addr))
}

func (d *Debugger) ClearBreakpoint(addr uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.breakpoints.Clear(uint(addr))
}

func (d *Debugger) Breakpoints() []uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return indices(&d.breakpoints)
}

func (d *Debugger) SetWatchpoint(addr uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.watchpoints.Set(uint(addr))
}

func (d *Debugger) ClearWatchpoint(addr uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.watchpoints.Clear(uint(addr))
}

func (d *Debugger) Watchpoints() []uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return indices(&d.watchpoints)
}

func indices(b *hwio.Bitset) []uint16 {
	idx := b.Indices()
	addrs := make([]uint16, len(idx))
	for i, v := range idx {
		addrs[i] = uint16(v)
	}
	return addrs
}

// ReadMem returns a copy of at most n bytes of memory starting at addr.
func (d *Debugger) ReadMem(addr uint16, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.halted {
		return nil, ErrNotHalted
	}
	return slices.Clone(d.cpu.Mem.Peek(addr, n)), nil
}

// A Line is a disassembled instruction.
type Line struct {
	Addr uint16
	Word uint16
	Text string
}

// Disasm disassembles n instruction words starting at addr.
func (d *Debugger) Disasm(addr uint16, n int) ([]Line, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.halted {
		return nil, ErrNotHalted
	}
	lines := make([]Line, 0, n)
	for i := range n {
		a := (addr + uint16(2*i)) & hwio.AddrMask
		op := opcode.Decode(d.cpu.Mem.Read16(a))
		lines = append(lines, Line{Addr: a, Word: op.Word, Text: op.String()})
	}
	return lines, nil
}

// Detach resumes the CPU for good, break conditions are ignored from then on.
func (d *Debugger) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.detached = true
	d.status = running
	d.reason = ""
	d.resume.Broadcast()
}

// subscribe returns a channel receiving the machine state each time the CPU
// halts. States are dropped if the channel is full.
func (d *Debugger) subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	d.mu.Lock()
	d.subs[ch] = struct{}{}
	d.mu.Unlock()

	return ch, func() {
		d.mu.Lock()
		delete(d.subs, ch)
		d.mu.Unlock()
	}
}

func (d *Debugger) notify() {
	if len(d.subs) == 0 {
		return
	}
	st := d.state()
	for ch := range d.subs {
		select {
		case ch <- st:
		default:
			log.ModDbg.WarnZ("Dropped halt notification").End()
		}
	}
}
