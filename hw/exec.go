package hw

import (
	"chip8/emu/log"
	"chip8/hw/hwio"
	"chip8/hw/opcode"
)

// Execute executes a single decoded instruction. Unrecognized instructions
// are skipped.
func (c *CPU) Execute(op opcode.Op) {
	vx, vy := c.V[op.X], c.V[op.Y]

	switch op.Kind {
	case opcode.ClearScreen:
		c.Display.Clear()
	case opcode.Return:
		c.jump(c.pop() + 2)
		return
	case opcode.Sys:
		// Machine code routines are not supported.
	case opcode.Jump:
		c.jump(op.NNN)
		return
	case opcode.JumpOffset:
		c.jump(op.NNN + uint16(c.V[0]))
		return
	case opcode.Call:
		c.push(c.PC)
		c.jump(op.NNN)
		return

	case opcode.SkipEqImm:
		c.skipIf(vx == op.NN)
		return
	case opcode.SkipNeImm:
		c.skipIf(vx != op.NN)
		return
	case opcode.SkipEqReg:
		c.skipIf(vx == vy)
		return
	case opcode.SkipNeReg:
		c.skipIf(vx != vy)
		return
	case opcode.SkipKey:
		c.skipIf(c.Keys.Pressed(vx))
		return
	case opcode.SkipNotKey:
		c.skipIf(!c.Keys.Pressed(vx))
		return

	case opcode.LoadImm:
		c.V[op.X] = op.NN
	case opcode.AddImm:
		c.V[op.X] = vx + op.NN
	case opcode.LoadReg:
		c.V[op.X] = vy
	case opcode.Or:
		c.V[op.X] = vx | vy
	case opcode.And:
		c.V[op.X] = vx & vy
	case opcode.Xor:
		c.V[op.X] = vx ^ vy

	// For the flag-setting instructions the flag is written last, so that VF
	// holds the flag even when it is also the destination.
	case opcode.AddReg:
		sum := uint16(vx) + uint16(vy)
		c.V[op.X] = uint8(sum)
		c.V[0xF] = b2u8(sum > 0xFF)
	case opcode.Sub:
		c.V[op.X] = vx - vy
		c.V[0xF] = b2u8(vx > vy)
	case opcode.SubReverse:
		c.V[op.X] = vy - vx
		c.V[0xF] = b2u8(vy > vx)
	case opcode.ShiftRight:
		c.V[op.X] = vx >> 1
		c.V[0xF] = hwio.GetBiti8(vx, 0)
	case opcode.ShiftLeft:
		c.V[op.X] = vx << 1
		c.V[0xF] = hwio.GetBiti8(vx, 7)

	case opcode.LoadIndex:
		c.I = op.NNN
	case opcode.AddIndex:
		c.I += uint16(vx)
	case opcode.LoadFont:
		c.I = FontAddr + uint16(vx)*GlyphSize
	case opcode.Random:
		c.V[op.X] = uint8(c.rand.Uint32()) & op.NN
	case opcode.Draw:
		c.draw(int(vx), int(vy), int(op.N))

	case opcode.LoadDelay:
		c.V[op.X] = c.DT
	case opcode.SetDelay:
		c.DT = vx
	case opcode.SetSound:
		c.ST = vx
	case opcode.WaitKey:
		c.waiting = true
		c.waitReg = op.X

	case opcode.StoreBCD:
		c.Mem.Write8(c.I, vx/100)
		c.Mem.Write8(c.I+1, vx/10%10)
		c.Mem.Write8(c.I+2, vx%10)
	case opcode.StoreRegs:
		for i := range uint16(op.X) + 1 {
			c.Mem.Write8(c.I+i, c.V[i])
		}
	case opcode.LoadRegs:
		for i := range uint16(op.X) + 1 {
			c.V[i] = c.Mem.Read8(c.I + i)
		}

	default:
		log.ModCPU.DebugZ("Unrecognized instruction").
			Hex16("pc", c.PC).
			Hex16("op", op.Word).
			End()
		c.dbg.Break("unrecognized instruction")
	}
	c.jump(c.PC + 2)
}

// jump sets the program counter, masked to the addressing space.
func (c *CPU) jump(addr uint16) {
	c.PC = addr & hwio.AddrMask
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.jump(c.PC + 4)
	} else {
		c.jump(c.PC + 2)
	}
}

func (c *CPU) draw(x, y, n int) {
	var sprite [15]byte
	for i := range n {
		sprite[i] = c.Mem.Read8(c.I + uint16(i))
	}
	c.V[0xF] = b2u8(c.Display.Draw(x, y, sprite[:n]))
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
