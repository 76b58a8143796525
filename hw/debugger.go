package hw

// A Debugger controls and monitors a CPU.
type Debugger interface {
	// Reset is called when the CPU is reset.
	Reset()

	// Trace must be called before each instruction is executed. This is the
	// main entry point for debugging activity, as the debugger can stop the
	// CPU execution by making this function blocking until user interaction
	// finishes.
	Trace(pc uint16)

	// WatchWrite is called after each memory write, it can be used to
	// implement watchpoints.
	WatchWrite(addr uint16, val uint8)

	// Break can be called by the CPU core to force breaking into the debugger.
	Break(msg string)
}

type nopDebugger struct{}

func (nopDebugger) Reset()                   {}
func (nopDebugger) Trace(uint16)             {}
func (nopDebugger) WatchWrite(uint16, uint8) {}
func (nopDebugger) Break(string)             {}
