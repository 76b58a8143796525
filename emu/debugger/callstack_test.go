package debugger

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"chip8/hw"
)

func TestCallStack(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		var cstack callStack
		cstack.push(0x202, 0x300)
		cstack.push(0x306, 0x400)

		fi := cstack.build(0x40A)
		want := []frameInfo{
			{"$400", "$40A"},
			{"$300", "$306"},
			{"[bottom of stack]", "$202"},
		}
		if diff := cmp.Diff(want, fi); diff != "" {
			t.Fatalf("callstack differs (-want +got):\n%s", diff)
		}
	})

	t.Run("empty", func(t *testing.T) {
		var cstack callStack
		fi := cstack.build(0x200)
		want := []frameInfo{
			{"[bottom of stack]", "$200"},
		}
		if diff := cmp.Diff(want, fi); diff != "" {
			t.Fatalf("callstack differs (-want +got):\n%s", diff)
		}

		cstack.pop()
		if cstack.len() != 0 {
			t.Fatalf("pop on empty stack: len = %d", cstack.len())
		}
	})

	t.Run("overflow", func(t *testing.T) {
		var cstack callStack
		for i := range hw.StackSize + 1 {
			cstack.push(uint16(0x200+i*2), uint16(0x300+i))
		}
		if cstack.len() != hw.StackSize {
			t.Fatalf("len = %d, want %d", cstack.len(), hw.StackSize)
		}
		// The first call has been dropped.
		if cstack[0].src != 0x202 {
			t.Errorf("oldest frame src = $%03X, want $202", cstack[0].src)
		}
	})
}
