// Package snapshot defines the serialized machine state, encoded as JSON.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/go-faster/jx"
)

// Version of the snapshot format.
const Version = 1

type CHIP8 struct {
	Version int
	CPU     CPU
	RAM     [0x1000]uint8
	Display [32]uint64 // one row per word, leftmost pixel in the MSB
}

type CPU struct {
	V     [16]uint8
	I     uint16
	PC    uint16
	Stack [16]uint16
	SP    uint8
	DT    uint8
	ST    uint8
	Keys  uint16

	Waiting bool
	WaitReg uint8

	Cycles    int64
	TimerMode uint8
	TimerDiv  uint8
}

// Encode writes s as a JSON object.
func (s *CHIP8) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("version")
	e.Int(s.Version)
	e.FieldStart("cpu")
	s.CPU.Encode(e)
	e.FieldStart("ram")
	e.Base64(s.RAM[:])
	e.FieldStart("display")
	e.ArrStart()
	for _, row := range s.Display {
		e.UInt64(row)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// Decode reads s from a JSON object. Unknown fields are ignored.
func (s *CHIP8) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Int()
			if err == nil && s.Version != Version {
				err = fmt.Errorf("unsupported version %d", s.Version)
			}
		case "cpu":
			err = s.CPU.Decode(d)
		case "ram":
			var ram []byte
			if ram, err = d.Base64(); err == nil {
				if len(ram) != len(s.RAM) {
					return fmt.Errorf("ram: got %d bytes, want %d", len(ram), len(s.RAM))
				}
				copy(s.RAM[:], ram)
			}
		case "display":
			err = decodeArray(d, s.Display[:], (*jx.Decoder).UInt64)
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

// Encode writes c as a JSON object.
func (c *CPU) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("v")
	e.ArrStart()
	for _, v := range c.V {
		e.UInt8(v)
	}
	e.ArrEnd()
	e.FieldStart("i")
	e.UInt16(c.I)
	e.FieldStart("pc")
	e.UInt16(c.PC)
	e.FieldStart("stack")
	e.ArrStart()
	for _, v := range c.Stack {
		e.UInt16(v)
	}
	e.ArrEnd()
	e.FieldStart("sp")
	e.UInt8(c.SP)
	e.FieldStart("dt")
	e.UInt8(c.DT)
	e.FieldStart("st")
	e.UInt8(c.ST)
	e.FieldStart("keys")
	e.UInt16(c.Keys)
	e.FieldStart("waiting")
	e.Bool(c.Waiting)
	e.FieldStart("wait_reg")
	e.UInt8(c.WaitReg)
	e.FieldStart("cycles")
	e.Int64(c.Cycles)
	e.FieldStart("timer_mode")
	e.UInt8(c.TimerMode)
	e.FieldStart("timer_div")
	e.UInt8(c.TimerDiv)
	e.ObjEnd()
}

// Decode reads c from a JSON object. Unknown fields are ignored.
func (c *CPU) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "v":
			err = decodeArray(d, c.V[:], (*jx.Decoder).UInt8)
		case "i":
			c.I, err = d.UInt16()
		case "pc":
			c.PC, err = d.UInt16()
		case "stack":
			err = decodeArray(d, c.Stack[:], (*jx.Decoder).UInt16)
		case "sp":
			c.SP, err = d.UInt8()
		case "dt":
			c.DT, err = d.UInt8()
		case "st":
			c.ST, err = d.UInt8()
		case "keys":
			c.Keys, err = d.UInt16()
		case "waiting":
			c.Waiting, err = d.Bool()
		case "wait_reg":
			c.WaitReg, err = d.UInt8()
		case "cycles":
			c.Cycles, err = d.Int64()
		case "timer_mode":
			c.TimerMode, err = d.UInt8()
		case "timer_div":
			c.TimerDiv, err = d.UInt8()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

var errArrayLen = errors.New("wrong array length")

// decodeArray decodes a JSON array which must have exactly len(dst) elements.
func decodeArray[T any](d *jx.Decoder, dst []T, elem func(*jx.Decoder) (T, error)) error {
	n := 0
	err := d.Arr(func(d *jx.Decoder) error {
		if n >= len(dst) {
			return errArrayLen
		}
		v, err := elem(d)
		if err != nil {
			return err
		}
		dst[n] = v
		n++
		return nil
	})
	if err != nil {
		return err
	}
	if n != len(dst) {
		return fmt.Errorf("%w: got %d, want %d", errArrayLen, n, len(dst))
	}
	return nil
}
