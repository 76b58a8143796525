// Package opcode decodes CHIP-8 instruction words.
//
// Every 16-bit word decodes to an Op. Words matching no known instruction
// shape decode to an Op of Kind Invalid, decoding never fails.
package opcode

//go:generate go tool stringer -type=Kind

// Kind identifies the shape of an instruction.
type Kind uint8

const (
	Invalid Kind = iota // unrecognized word

	ClearScreen // 00E0 CLS
	Return      // 00EE RET
	Sys         // 0nnn SYS addr
	Jump        // 1nnn JP addr
	Call        // 2nnn CALL addr
	SkipEqImm   // 3xkk SE Vx, byte
	SkipNeImm   // 4xkk SNE Vx, byte
	SkipEqReg   // 5xy0 SE Vx, Vy
	LoadImm     // 6xkk LD Vx, byte
	AddImm      // 7xkk ADD Vx, byte
	LoadReg     // 8xy0 LD Vx, Vy
	Or          // 8xy1 OR Vx, Vy
	And         // 8xy2 AND Vx, Vy
	Xor         // 8xy3 XOR Vx, Vy
	AddReg      // 8xy4 ADD Vx, Vy
	Sub         // 8xy5 SUB Vx, Vy
	ShiftRight  // 8xy6 SHR Vx {, Vy}
	SubReverse  // 8xy7 SUBN Vx, Vy
	ShiftLeft   // 8xyE SHL Vx {, Vy}
	SkipNeReg   // 9xy0 SNE Vx, Vy
	LoadIndex   // Annn LD I, addr
	JumpOffset  // Bnnn JP V0, addr
	Random      // Cxkk RND Vx, byte
	Draw        // Dxyn DRW Vx, Vy, nibble
	SkipKey     // Ex9E SKP Vx
	SkipNotKey  // ExA1 SKNP Vx
	LoadDelay   // Fx07 LD Vx, DT
	WaitKey     // Fx0A LD Vx, K
	SetDelay    // Fx15 LD DT, Vx
	SetSound    // Fx18 LD ST, Vx
	AddIndex    // Fx1E ADD I, Vx
	LoadFont    // Fx29 LD F, Vx
	StoreBCD    // Fx33 LD B, Vx
	StoreRegs   // Fx55 LD [I], Vx
	LoadRegs    // Fx65 LD Vx, [I]

	NumKinds
)

// Op is a decoded instruction. Only the operand fields relevant to Kind are
// meaningful, the others are still extracted from Word but carry no meaning.
type Op struct {
	Kind Kind
	Word uint16 // raw instruction word

	X   uint8  // register index, bits 8-11
	Y   uint8  // register index, bits 4-7
	N   uint8  // 4-bit count, bits 0-3
	NN  uint8  // 8-bit immediate, bits 0-7
	NNN uint16 // 12-bit address, bits 0-11
}

// Decode decodes an instruction word. It is a pure, total function.
func Decode(word uint16) Op {
	op := Op{
		Word: word,
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		N:    uint8(word) & 0x0F,
		NN:   uint8(word),
		NNN:  word & 0x0FFF,
	}
	op.Kind = kindOf(word)
	return op
}

func kindOf(word uint16) Kind {
	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00E0:
			return ClearScreen
		case 0x00EE:
			return Return
		}
		return Sys
	case 0x1:
		return Jump
	case 0x2:
		return Call
	case 0x3:
		return SkipEqImm
	case 0x4:
		return SkipNeImm
	case 0x5:
		// The low nibble is ignored, as most historical interpreters do.
		return SkipEqReg
	case 0x6:
		return LoadImm
	case 0x7:
		return AddImm
	case 0x8:
		return aluKinds[word&0x000F]
	case 0x9:
		return SkipNeReg
	case 0xA:
		return LoadIndex
	case 0xB:
		return JumpOffset
	case 0xC:
		return Random
	case 0xD:
		return Draw
	case 0xE:
		switch word & 0x00FF {
		case 0x9E:
			return SkipKey
		case 0xA1:
			return SkipNotKey
		}
	case 0xF:
		switch word & 0x00FF {
		case 0x07:
			return LoadDelay
		case 0x0A:
			return WaitKey
		case 0x15:
			return SetDelay
		case 0x18:
			return SetSound
		case 0x1E:
			return AddIndex
		case 0x29:
			return LoadFont
		case 0x33:
			return StoreBCD
		case 0x55:
			return StoreRegs
		case 0x65:
			return LoadRegs
		}
	}
	return Invalid
}

// 8xy? family, indexed by the low nibble.
var aluKinds = [16]Kind{
	0x0: LoadReg,
	0x1: Or,
	0x2: And,
	0x3: Xor,
	0x4: AddReg,
	0x5: Sub,
	0x6: ShiftRight,
	0x7: SubReverse,
	0xE: ShiftLeft,
}

// IsSkip reports whether the instruction conditionally skips the next one.
func (k Kind) IsSkip() bool {
	switch k {
	case SkipEqImm, SkipNeImm, SkipEqReg, SkipNeReg, SkipKey, SkipNotKey:
		return true
	}
	return false
}

// IsJump reports whether the instruction unconditionally transfers control.
func (k Kind) IsJump() bool {
	return k == Jump || k == JumpOffset || k == Return
}
