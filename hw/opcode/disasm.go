package opcode

import (
	"strconv"
)

const hextable = "0123456789ABCDEF"

func reg(i uint8) string {
	return "V" + hextable[i&0x0F:i&0x0F+1]
}

func hex8(v uint8) string {
	return "#" + string([]byte{hextable[v>>4], hextable[v&0x0F]})
}

func hex12(v uint16) string {
	return "#" + string([]byte{hextable[(v>>8)&0x0F], hextable[(v>>4)&0x0F], hextable[v&0x0F]})
}

func hex16(v uint16) string {
	return "#" + string([]byte{hextable[v>>12], hextable[(v>>8)&0x0F], hextable[(v>>4)&0x0F], hextable[v&0x0F]})
}

// Mnemonic returns the assembler mnemonic of the instruction.
func (op Op) Mnemonic() string {
	return mnemonics[op.Kind]
}

var mnemonics = [NumKinds]string{
	Invalid:     "DW",
	ClearScreen: "CLS",
	Return:      "RET",
	Sys:         "SYS",
	Jump:        "JP",
	Call:        "CALL",
	SkipEqImm:   "SE",
	SkipNeImm:   "SNE",
	SkipEqReg:   "SE",
	LoadImm:     "LD",
	AddImm:      "ADD",
	LoadReg:     "LD",
	Or:          "OR",
	And:         "AND",
	Xor:         "XOR",
	AddReg:      "ADD",
	Sub:         "SUB",
	ShiftRight:  "SHR",
	SubReverse:  "SUBN",
	ShiftLeft:   "SHL",
	SkipNeReg:   "SNE",
	LoadIndex:   "LD",
	JumpOffset:  "JP",
	Random:      "RND",
	Draw:        "DRW",
	SkipKey:     "SKP",
	SkipNotKey:  "SKNP",
	LoadDelay:   "LD",
	WaitKey:     "LD",
	SetDelay:    "LD",
	SetSound:    "LD",
	AddIndex:    "ADD",
	LoadFont:    "LD",
	StoreBCD:    "LD",
	StoreRegs:   "LD",
	LoadRegs:    "LD",
}

// Operands returns the operands of the instruction in assembler syntax.
func (op Op) Operands() string {
	switch op.Kind {
	case Invalid:
		return hex16(op.Word)
	case ClearScreen, Return:
		return ""
	case Sys, Jump, Call:
		return hex12(op.NNN)
	case SkipEqImm, SkipNeImm, LoadImm, AddImm, Random:
		return reg(op.X) + ", " + hex8(op.NN)
	case SkipEqReg, SkipNeReg, LoadReg, Or, And, Xor, AddReg, Sub, SubReverse:
		return reg(op.X) + ", " + reg(op.Y)
	case ShiftRight, ShiftLeft:
		return reg(op.X)
	case LoadIndex:
		return "I, " + hex12(op.NNN)
	case JumpOffset:
		return "V0, " + hex12(op.NNN)
	case Draw:
		return reg(op.X) + ", " + reg(op.Y) + ", " + strconv.Itoa(int(op.N))
	case SkipKey, SkipNotKey:
		return reg(op.X)
	case LoadDelay:
		return reg(op.X) + ", DT"
	case WaitKey:
		return reg(op.X) + ", K"
	case SetDelay:
		return "DT, " + reg(op.X)
	case SetSound:
		return "ST, " + reg(op.X)
	case AddIndex:
		return "I, " + reg(op.X)
	case LoadFont:
		return "F, " + reg(op.X)
	case StoreBCD:
		return "B, " + reg(op.X)
	case StoreRegs:
		return "[I], " + reg(op.X)
	case LoadRegs:
		return reg(op.X) + ", [I]"
	}
	return ""
}

// String returns the instruction in assembler syntax, e.g. "LD VA, #07".
func (op Op) String() string {
	if opers := op.Operands(); opers != "" {
		return op.Mnemonic() + " " + opers
	}
	return op.Mnemonic()
}
