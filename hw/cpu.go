package hw

import (
	"io"
	"math"
	"math/rand/v2"

	"chip8/emu/log"
	"chip8/hw/hwio"
	"chip8/hw/opcode"
)

const (
	// ProgramAddr is where programs are loaded and where execution starts.
	ProgramAddr = 0x200

	// MaxProgramSize is the size of the largest program that fits in memory.
	MaxProgramSize = hwio.MemSize - ProgramAddr

	// ClockRate is the nominal number of cycles per second.
	ClockRate = 600

	// TimerRate is the nominal rate of the delay and sound timers.
	TimerRate = 60

	StackSize = 16
	stackMask = StackSize - 1
)

// TimerMode selects the cadence at which the delay and sound timers count
// down.
type TimerMode uint8

const (
	// TimerPerCycle decrements timers once per cycle.
	TimerPerCycle TimerMode = iota

	// Timer60Hz decrements timers once every ClockRate/TimerRate cycles, so
	// that they run at 60Hz at the nominal clock rate.
	Timer60Hz
)

// A Beeper makes a sound. Beep is called synchronously from the cycle loop,
// when the sound timer expires.
type Beeper interface {
	Beep()
}

type nopBeeper struct{}

func (nopBeeper) Beep() {}

type CPU struct {
	Mem     hwio.Mem
	Display Display
	Keys    Keypad

	V     [16]uint8 // general purpose registers, VF doubles as flag register
	I     uint16
	PC    uint16
	Stack [StackSize]uint16
	SP    uint8
	DT    uint8 // delay timer
	ST    uint8 // sound timer

	Cycles    int64 // executed cycles
	TimerMode TimerMode

	waiting  bool  // blocked until a key is pressed
	waitReg  uint8 // register receiving the pressed key
	timerDiv uint8

	beeper Beeper
	rand   *rand.Rand

	// Non-nil when execution tracing is enabled.
	tracer *tracer
	dbg    Debugger
}

// NewCPU creates a CPU at power-up state. beeper may be nil.
func NewCPU(beeper Beeper) *CPU {
	c := &CPU{
		dbg:  nopDebugger{},
		rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	c.SetBeeper(beeper)
	c.Reset()
	return c
}

// Reset puts the CPU back to power-up state. Memory is cleared, except for the
// font, so the program must be loaded again.
func (c *CPU) Reset() {
	c.Mem.Reset()
	copy(c.Mem.Data[FontAddr:], font[:])

	c.Display.Clear()
	c.Keys = 0
	c.V = [16]uint8{}
	c.I = 0
	c.PC = ProgramAddr
	c.Stack = [StackSize]uint16{}
	c.SP = 0
	c.DT = 0
	c.ST = 0
	c.Cycles = 0
	c.waiting = false
	c.waitReg = 0
	c.timerDiv = 0

	c.dbg.Reset()
}

// LoadProgram copies prog at ProgramAddr. Nothing is written if prog doesn't
// fit in memory.
func (c *CPU) LoadProgram(prog []byte) error {
	return c.Mem.Load(ProgramAddr, prog)
}

// SetBeeper sets the sound output, nil disables it.
func (c *CPU) SetBeeper(b Beeper) {
	if b == nil {
		b = nopBeeper{}
	}
	c.beeper = b
}

// SetRand sets the random source used by the RND instruction.
func (c *CPU) SetRand(r *rand.Rand) {
	c.rand = r
}

// SetTraceOutput enables execution tracing to w, or disables it if w is nil.
func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w}
}

// SetDebugger attaches dbg to the CPU, nil detaches the current one.
func (c *CPU) SetDebugger(dbg Debugger) {
	if dbg == nil {
		c.dbg = nopDebugger{}
		c.Mem.WriteCb = nil
		return
	}
	c.dbg = dbg
	c.Mem.WriteCb = dbg.WatchWrite
}

// CyclesFor returns the number of cycles corresponding to the given duration
// in seconds. Negative and non finite durations amount to no cycles.
func CyclesFor(seconds float64) int64 {
	n := math.Round(seconds * ClockRate)
	if !(n > 0) || math.IsInf(n, 1) {
		return 0
	}
	return int64(n)
}

// RunFor runs the number of cycles corresponding to the elapsed duration, in
// seconds, at the nominal clock rate.
func (c *CPU) RunFor(seconds float64) {
	c.Run(CyclesFor(seconds))
}

// Run runs ncycles cycles.
func (c *CPU) Run(ncycles int64) {
	for range ncycles {
		c.Step()
	}
}

// Step runs a single cycle: fetch, timers, then decode and execute unless the
// CPU is waiting for a key press.
func (c *CPU) Step() {
	word := c.Mem.Read16(c.PC)
	c.tickTimers()
	c.Cycles++
	if c.waiting {
		return
	}

	op := opcode.Decode(word)
	c.traceOp(op)
	c.Execute(op)
}

func (c *CPU) tickTimers() {
	if c.TimerMode == Timer60Hz {
		c.timerDiv++
		if c.timerDiv < ClockRate/TimerRate {
			return
		}
		c.timerDiv = 0
	}

	if c.ST > 0 {
		if c.ST == 1 {
			log.ModSound.DebugZ("Beep").Int("cycle", c.Cycles).End()
			c.beeper.Beep()
		}
		c.ST--
	}
	if c.DT > 0 {
		c.DT--
	}
}

func (c *CPU) traceOp(op opcode.Op) {
	if c.tracer != nil {
		c.tracer.write(cpuState{
			PC:     c.PC,
			Op:     op,
			V:      c.V,
			I:      c.I,
			SP:     c.SP,
			DT:     c.DT,
			ST:     c.ST,
			Cycles: c.Cycles,
		})
	}

	c.dbg.Trace(c.PC)
}

// Press marks key as pressed. If the CPU is waiting for a key, the key is
// stored in the waiting register and execution resumes at the next cycle.
func (c *CPU) Press(key uint8) {
	if key >= NumKeys {
		log.ModInput.WarnZ("Ignored invalid key").Hex8("key", key).End()
		return
	}

	c.Keys.Press(key)
	if c.waiting {
		log.ModInput.DebugZ("Key wait over").
			Hex8("key", key).
			Hex8("reg", c.waitReg).
			End()
		c.V[c.waitReg] = key
		c.waiting = false
	}
}

// Release marks key as released.
func (c *CPU) Release(key uint8) {
	if key >= NumKeys {
		log.ModInput.WarnZ("Ignored invalid key").Hex8("key", key).End()
		return
	}
	c.Keys.Release(key)
}

// Waiting reports whether the CPU is blocked until a key is pressed and, if
// so, the register that will receive the key.
func (c *CPU) Waiting() (reg uint8, ok bool) {
	return c.waitReg, c.waiting
}

// The stack pointer wraps around on both ends, so 16 nested calls still return
// properly while the 17th overwrites the oldest return address.
func (c *CPU) push(addr uint16) {
	c.Stack[c.SP] = addr
	if c.SP == StackSize-1 {
		c.stackWrapped("push")
	}
	c.SP = (c.SP + 1) & stackMask
}

func (c *CPU) pop() uint16 {
	if c.SP == 0 {
		c.stackWrapped("pop")
	}
	c.SP = (c.SP - 1) & stackMask
	return c.Stack[c.SP]
}

func (c *CPU) stackWrapped(op string) {
	log.ModCPU.WarnZ("Stack pointer wrapped").
		String("op", op).
		Hex16("pc", c.PC).
		End()
	c.dbg.Break("stack pointer wrapped on " + op)
}
