package hw

import (
	"fmt"

	"github.com/go-faster/jx"

	"chip8/emu/log"
	"chip8/hw/snapshot"
)

// State returns a snapshot of the complete machine state.
func (c *CPU) State() *snapshot.CHIP8 {
	return &snapshot.CHIP8{
		Version: snapshot.Version,
		CPU: snapshot.CPU{
			V:         c.V,
			I:         c.I,
			PC:        c.PC,
			Stack:     c.Stack,
			SP:        c.SP,
			DT:        c.DT,
			ST:        c.ST,
			Keys:      uint16(c.Keys),
			Waiting:   c.waiting,
			WaitReg:   c.waitReg,
			Cycles:    c.Cycles,
			TimerMode: uint8(c.TimerMode),
			TimerDiv:  c.timerDiv,
		},
		RAM:     c.Mem.Data,
		Display: c.Display.rows,
	}
}

// SetState restores the machine state from a snapshot.
func (c *CPU) SetState(state *snapshot.CHIP8) {
	c.V = state.CPU.V
	c.I = state.CPU.I
	c.PC = state.CPU.PC & 0xFFF
	c.Stack = state.CPU.Stack
	c.SP = state.CPU.SP & stackMask
	c.DT = state.CPU.DT
	c.ST = state.CPU.ST
	c.Keys = Keypad(state.CPU.Keys)
	c.waiting = state.CPU.Waiting
	c.waitReg = state.CPU.WaitReg & 0xF
	c.Cycles = state.CPU.Cycles
	c.TimerMode = TimerMode(state.CPU.TimerMode)
	c.timerDiv = state.CPU.TimerDiv

	c.Mem.Data = state.RAM
	c.Display.rows = state.Display
	c.Display.redraw = true
}

// SaveSnapshot encodes the machine state.
func (c *CPU) SaveSnapshot() ([]byte, error) {
	var e jx.Encoder
	c.State().Encode(&e)
	log.ModEmu.DebugZ("Snapshot saved").
		Hex16("pc", c.PC).
		Int("cycles", c.Cycles).
		Int("size", int64(len(e.Bytes()))).
		End()
	return e.Bytes(), nil
}

// LoadSnapshot restores a machine state previously encoded with SaveSnapshot.
// The CPU is left untouched if buf can't be decoded.
func (c *CPU) LoadSnapshot(buf []byte) error {
	var state snapshot.CHIP8
	if err := state.Decode(jx.DecodeBytes(buf)); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if state.Version != snapshot.Version {
		return fmt.Errorf("decode snapshot: missing or unsupported version %d", state.Version)
	}
	c.SetState(&state)
	log.ModEmu.DebugZ("Snapshot loaded").
		Hex16("pc", c.PC).
		Int("cycles", c.Cycles).
		End()
	return nil
}
