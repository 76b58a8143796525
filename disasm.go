package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"chip8/hw/opcode"
	"chip8/rom"
)

var (
	addrColor  = color.New(color.FgHiBlack).SprintFunc()
	labelColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	jumpColor  = color.New(color.FgCyan).SprintFunc()
	skipColor  = color.New(color.FgMagenta).SprintFunc()
	dataColor  = color.New(color.FgRed).SprintFunc()
)

func disasmMain(args Disasm) {
	if args.NoColor {
		color.NoColor = true
	}

	r, err := rom.Open(args.RomPath)
	checkf(err, "failed to open rom")
	printListing(color.Output, r)
}

// printListing writes the disassembly of r to w. Jump and call targets are
// labeled.
func printListing(w io.Writer, r *rom.Rom) {
	targets := r.Targets()
	for _, l := range r.Lines() {
		if targets[l.Addr] {
			fmt.Fprintf(w, "%s:\n", labelColor(label(l.Addr)))
		}
		fmt.Fprintf(w, "  %s  % X  %s\n", addrColor(fmt.Sprintf("%03X", l.Addr)), l.Bytes, instruction(l.Op, targets))
	}
}

func label(addr uint16) string {
	return fmt.Sprintf("L%03X", addr)
}

func instruction(op opcode.Op, targets map[uint16]bool) string {
	switch {
	case op.Kind == opcode.Invalid:
		return dataColor(op.String())
	case op.Kind == opcode.Jump || op.Kind == opcode.Call:
		if targets[op.NNN] {
			return jumpColor(op.Mnemonic() + " " + label(op.NNN))
		}
		return jumpColor(op.String())
	case op.Kind.IsJump():
		return jumpColor(op.String())
	case op.Kind.IsSkip():
		return skipColor(op.String())
	}
	return op.String()
}
