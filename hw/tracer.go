package hw

import (
	"fmt"
	"io"

	"chip8/hw/opcode"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	PC     uint16
	Op     opcode.Op
	V      [16]uint8
	I      uint16
	SP     uint8
	DT, ST uint8
	Cycles int64
}

type tracer struct {
	w io.Writer
}

const hextable = "0123456789ABCDEF"

func hexEncode(dst []byte, v byte) {
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// width of the disassembly column.
const disasmWidth = 18

// write the execution trace for current cycle.
func (t *tracer) write(state cpuState) {
	const prefixLen = 12 + disasmWidth + 2 + 2*len(state.V)
	buf := make([]byte, prefixLen, prefixLen+40)

	hexEncode(buf[0:], byte(state.PC>>8))
	hexEncode(buf[2:], byte(state.PC))
	buf[4], buf[5] = ' ', ' '
	hexEncode(buf[6:], byte(state.Op.Word>>8))
	hexEncode(buf[8:], byte(state.Op.Word))
	buf[10], buf[11] = ' ', ' '

	off := 12 + copy(buf[12:12+disasmWidth], state.Op.String())
	for ; off < 12+disasmWidth; off++ {
		buf[off] = ' '
	}

	buf[off] = 'V'
	buf[off+1] = ':'
	off += 2
	for _, v := range state.V {
		hexEncode(buf[off:], v)
		off += 2
	}

	buf = fmt.Appendf(buf, " I:%04X SP:%X DT:%02X ST:%02X CYC:%d\n",
		state.I, state.SP, state.DT, state.ST, state.Cycles)
	t.w.Write(buf)
}
