package rom

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chip8/hw/opcode"
)

func TestReadFrom(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{"empty", 0, ErrEmpty},
		{"one byte", 1, nil},
		{"max size", MaxSize, nil},
		{"too large", MaxSize + 1, ErrTooLarge},
		{"much too large", 2 * MaxSize, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rom Rom
			_, err := rom.ReadFrom(bytes.NewReader(make([]byte, tt.size)))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && len(rom.Data) != tt.size {
				t.Fatalf("got %d bytes, want %d", len(rom.Data), tt.size)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.ch8")
	data := []byte{0xA2, 0x1E, 0xC2, 0x01, 0x32, 0x01, 0xA2, 0x1A}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rom, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if rom.Name != "maze" {
		t.Errorf("name = %q, want %q", rom.Name, "maze")
	}
	if !bytes.Equal(rom.Data, data) {
		t.Errorf("data = % X, want % X", rom.Data, data)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.ch8")); err == nil {
		t.Errorf("opening a missing file should fail")
	}
}

func TestLines(t *testing.T) {
	rom := Rom{Data: []byte{0x00, 0xE0, 0x12, 0x00, 0xF0}}

	type line struct {
		Addr uint16
		Text string
		N    int
	}
	var got []line
	for _, l := range rom.Lines() {
		got = append(got, line{l.Addr, l.Op.String(), len(l.Bytes)})
	}

	want := []line{
		{0x200, "CLS", 2},
		{0x202, "JP #200", 2},
		{0x204, "DW #F000", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestStats(t *testing.T) {
	rom := Rom{Data: []byte{
		0x22, 0x08, // CALL #208
		0xF1, 0x0A, // LD V1, K
		0x12, 0x04, // JP #204
		0xFF, 0xFF, // DW
		0xF1, 0x18, // LD ST, V1
		0x00, 0xEE, // RET
	}}

	st := rom.Stats()
	if st.Words != 6 || st.Invalid != 1 {
		t.Errorf("words=%d invalid=%d, want 6 and 1", st.Words, st.Invalid)
	}
	if st.MinTarget != 0x204 || st.MaxTarget != 0x208 {
		t.Errorf("targets $%03X-$%03X, want $204-$208", st.MinTarget, st.MaxTarget)
	}
	if st.Kinds[opcode.Call] != 1 || st.Kinds[opcode.SetSound] != 1 {
		t.Errorf("kinds = %v", st.Kinds)
	}

	var buf bytes.Buffer
	if err := rom.PrintInfos(&buf); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"12 bytes ($200-$20B)", "uses sound:     true", "uses keypad:    true"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("infos lack %q:\n%s", s, buf.String())
		}
	}
}
