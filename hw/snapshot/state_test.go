package snapshot

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecode(t *testing.T) {
	want := CHIP8{
		Version: Version,
		CPU: CPU{
			V:         [16]uint8{0: 1, 0xF: 0xFF},
			I:         0x22A,
			PC:        0x3FE,
			Stack:     [16]uint16{0x200, 0x240},
			SP:        2,
			DT:        60,
			ST:        3,
			Keys:      0x8001,
			Waiting:   true,
			WaitReg:   0xA,
			Cycles:    1 << 40,
			TimerMode: 1,
			TimerDiv:  7,
		},
	}
	want.RAM[0] = 0xF0
	want.RAM[0xFFF] = 0x12
	want.Display[0] = 1 << 63
	want.Display[31] = 1

	var e jx.Encoder
	want.Encode(&e)

	var got CHIP8
	if err := got.Decode(jx.DecodeBytes(e.Bytes())); err != nil {
		t.Fatalf("decode: %v\n%s", err, e.Bytes())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownFields(t *testing.T) {
	const input = `{"version":1,"comment":"from the future","cpu":{"pc":768,"extra":[1,2,{"a":null}]}}`

	var got CHIP8
	if err := got.Decode(jx.DecodeStr(input)); err != nil {
		t.Fatal(err)
	}
	if got.CPU.PC != 0x300 {
		t.Errorf("PC = $%04X, want $0300", got.CPU.PC)
	}
}

func TestDecodeArrayLength(t *testing.T) {
	var got CHIP8
	err := got.Decode(jx.DecodeStr(`{"cpu":{"stack":[1,2,3]}}`))
	if !errors.Is(err, errArrayLen) {
		t.Fatalf("got err = %v, want errArrayLen", err)
	}
	if !strings.Contains(err.Error(), "stack") {
		t.Errorf("error should name the field: %v", err)
	}
}
