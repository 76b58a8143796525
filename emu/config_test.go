package emu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chip8/hw"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	checked := cfg
	checked.Check()
	if diff := cmp.Diff(cfg, checked); diff != "" {
		t.Errorf("Check modified the default config (-want +got):\n%s", diff)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	const content = `
[video]
scale = 8
fg = "#33FF66"

[audio]
volume = 3.0

[input]
keys = ["0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "A", "B", "C", "D", "E", "F"]

[emulation]
timer_mode = "60hz"
speed = 2.5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	want := DefaultConfig()
	want.Video.Scale = 8
	want.Video.Foreground = Color{0x33, 0xFF, 0x66, 0xFF}
	want.Input.Keys = [hw.NumKeys]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "A", "B", "C", "D", "E", "F"}
	want.Emulation.TimerMode = TimerMode(hw.Timer60Hz)
	want.Emulation.Speed = 2.5
	// Out of range volume falls back to the default.

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("loading a missing file should fail")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[video]\nfg = \"red\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("malformed color should fail")
	}
}

func TestWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Video.Background = Color{0x10, 0x20, 0x30, 0xFF}
	cfg.Emulation.TimerMode = TimerMode(hw.Timer60Hz)
	if err := writeConfig(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("written config mismatch (-want +got):\n%s", diff)
	}
}

func TestColorText(t *testing.T) {
	var c Color
	if err := c.UnmarshalText([]byte("#0a0B0c")); err != nil {
		t.Fatal(err)
	}
	if c != (Color{0x0A, 0x0B, 0x0C, 0xFF}) {
		t.Errorf("got %v", c)
	}
	txt, _ := c.MarshalText()
	if string(txt) != "#0A0B0C" {
		t.Errorf("MarshalText = %q, want %q", txt, "#0A0B0C")
	}

	for _, s := range []string{"", "0A0B0C", "#0A0B", "#0A0B0C0D", "#GG0000"} {
		if err := c.UnmarshalText([]byte(s)); err == nil {
			t.Errorf("UnmarshalText(%q) should fail", s)
		}
	}
}

func TestTimerModeText(t *testing.T) {
	tests := []struct {
		text string
		want hw.TimerMode
	}{
		{"cycle", hw.TimerPerCycle},
		{"60hz", hw.Timer60Hz},
		{"60Hz", hw.Timer60Hz},
		{"", hw.TimerPerCycle},
	}
	for _, tt := range tests {
		var m TimerMode
		if err := m.UnmarshalText([]byte(tt.text)); err != nil {
			t.Errorf("UnmarshalText(%q): %v", tt.text, err)
			continue
		}
		if hw.TimerMode(m) != tt.want {
			t.Errorf("UnmarshalText(%q) = %d, want %d", tt.text, m, tt.want)
		}
	}

	var m TimerMode
	if err := m.UnmarshalText([]byte("30hz")); err == nil {
		t.Error("unknown timer mode should fail")
	}
	if _, err := TimerMode(42).MarshalText(); err == nil {
		t.Error("marshaling an invalid mode should fail")
	}
}
