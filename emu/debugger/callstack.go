package debugger

import (
	"fmt"
	"slices"

	"chip8/hw"
)

type stackFrame struct {
	src    uint16 // address of the CALL
	target uint16 // called subroutine
}

// callStack mirrors the CPU stack. Like the CPU stack it holds at most
// hw.StackSize frames, the oldest one being dropped on overflow.
type callStack []stackFrame

func (cs *callStack) push(src, dst uint16) {
	if cs.len() == hw.StackSize {
		*cs = slices.Delete(*cs, 0, 1)
	}
	*cs = append(*cs, stackFrame{src: src, target: dst})
}

func (cs *callStack) len() int {
	return len(*cs)
}

func (cs *callStack) pop() {
	if cs.len() == 0 {
		return
	}
	*cs = (*cs)[:cs.len()-1]
}

func (cs *callStack) reset() {
	*cs = (*cs)[:0]
}

// frameInfo describes a frame: its entry point and the current location
// within it.
type frameInfo [2]string

// build returns the frames, innermost first, pc being the current location in
// the innermost one.
func (cs *callStack) build(pc uint16) []frameInfo {
	nfos := make([]frameInfo, 0, cs.len()+1)
	var curf *stackFrame
	for i, f := range *cs {
		if i > 0 {
			curf = &((*cs)[i-1])
		}
		nfos = append(nfos, frameInfo{entryPoint(curf), fmt.Sprintf("$%03X", f.src)})
	}

	curf = nil
	if cs.len() > 0 {
		curf = &((*cs)[cs.len()-1])
	}
	nfos = append(nfos, frameInfo{entryPoint(curf), fmt.Sprintf("$%03X", pc)})
	slices.Reverse(nfos)
	return nfos
}

func entryPoint(f *stackFrame) string {
	if f == nil {
		return "[bottom of stack]"
	}
	return fmt.Sprintf("$%03X", f.target)
}
