package emu

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"chip8/emu/log"
	"chip8/hw"
)

type Config struct {
	Video     VideoConfig     `toml:"video"`
	Audio     AudioConfig     `toml:"audio"`
	Input     InputConfig     `toml:"input"`
	Emulation EmulationConfig `toml:"emulation"`

	// Runtime only settings, set from the command line.
	TraceOut  io.WriteCloser `toml:"-"`
	DebugAddr string         `toml:"-"` // debugger server address, if any
	RPCPort   int            `toml:"-"` // remote control port, 0 disables it
}

type VideoConfig struct {
	Scale        int   `toml:"scale"`
	Foreground   Color `toml:"fg"`
	Background   Color `toml:"bg"`
	DisableVSync bool  `toml:"disable_vsync"`
}

type AudioConfig struct {
	DisableAudio bool    `toml:"disable_audio"`
	ToneHz       int     `toml:"tone_hz"`
	Volume       float64 `toml:"volume"`
	BeepMs       int     `toml:"beep_ms"`
}

// InputConfig maps each key of the hexadecimal keypad to a keyboard key,
// identified by its SDL scancode name.
type InputConfig struct {
	Keys [hw.NumKeys]string `toml:"keys"`
}

type EmulationConfig struct {
	TimerMode TimerMode `toml:"timer_mode"`
	Speed     float64   `toml:"speed"`
}

// DefaultConfig returns the configuration used when there's no config file.
func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{
			Scale:      15,
			Foreground: Color{0xFF, 0xFF, 0xFF, 0xFF},
			Background: Color{0x00, 0x00, 0x00, 0xFF},
		},
		Audio: AudioConfig{
			ToneHz: 440,
			Volume: 0.5,
			BeepMs: 100,
		},
		Input: InputConfig{
			// 1 2 3 C      1 2 3 4
			// 4 5 6 D  ->  Q W E R
			// 7 8 9 E      A S D F
			// A 0 B F      Z X C V
			Keys: [hw.NumKeys]string{
				0x0: "X", 0x1: "1", 0x2: "2", 0x3: "3",
				0x4: "Q", 0x5: "W", 0x6: "E", 0x7: "A",
				0x8: "S", 0x9: "D", 0xA: "Z", 0xB: "C",
				0xC: "4", 0xD: "R", 0xE: "F", 0xF: "V",
			},
		},
		Emulation: EmulationConfig{
			TimerMode: TimerMode(hw.TimerPerCycle),
			Speed:     1,
		},
	}
}

// Check replaces invalid values by their defaults.
func (cfg *Config) Check() {
	def := DefaultConfig()
	if cfg.Video.Scale <= 0 {
		log.ModEmu.Warnf("Invalid video scale %d, fallback to %d", cfg.Video.Scale, def.Video.Scale)
		cfg.Video.Scale = def.Video.Scale
	}
	if cfg.Audio.ToneHz <= 0 || cfg.Audio.ToneHz > maxToneHz {
		log.ModEmu.Warnf("Invalid tone frequency %dHz, fallback to %dHz", cfg.Audio.ToneHz, def.Audio.ToneHz)
		cfg.Audio.ToneHz = def.Audio.ToneHz
	}
	if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 1 {
		log.ModEmu.Warnf("Invalid volume %v, fallback to %v", cfg.Audio.Volume, def.Audio.Volume)
		cfg.Audio.Volume = def.Audio.Volume
	}
	if cfg.Audio.BeepMs <= 0 {
		cfg.Audio.BeepMs = def.Audio.BeepMs
	}
	for i, name := range cfg.Input.Keys {
		if name == "" {
			cfg.Input.Keys[i] = def.Input.Keys[i]
		}
	}
	if cfg.Emulation.Speed <= 0 {
		log.ModEmu.Warnf("Invalid speed %v, fallback to %v", cfg.Emulation.Speed, def.Emulation.Speed)
		cfg.Emulation.Speed = def.Emulation.Speed
	}
}

// Color is an RGB color, written as "#RRGGBB" in the config file.
type Color color.RGBA

func (c Color) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "#%02X%02X%02X", c.R, c.G, c.B), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	var r, g, b uint8
	if _, err := fmt.Sscanf(string(text), "#%02x%02x%02x", &r, &g, &b); err != nil || len(text) != 7 {
		return fmt.Errorf("malformed color %q, want #RRGGBB", text)
	}
	*c = Color{r, g, b, 0xFF}
	return nil
}

// TimerMode is hw.TimerMode, written as "cycle" or "60hz" in the config file.
type TimerMode hw.TimerMode

func (m TimerMode) MarshalText() ([]byte, error) {
	switch hw.TimerMode(m) {
	case hw.TimerPerCycle:
		return []byte("cycle"), nil
	case hw.Timer60Hz:
		return []byte("60hz"), nil
	}
	return nil, fmt.Errorf("invalid timer mode %d", m)
}

func (m *TimerMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "cycle", "":
		*m = TimerMode(hw.TimerPerCycle)
	case "60hz":
		*m = TimerMode(hw.Timer60Hz)
	default:
		return fmt.Errorf("invalid timer mode %q, want \"cycle\" or \"60hz\"", text)
	}
	return nil
}

// ConfigDir returns the chip8 config directory, creating it if needed.
var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("chip8")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the chip8 config directory,
// or provide a default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(filepath.Join(ConfigDir(), cfgFilename))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("Failed to load config, using defaults").Error("err", err).End()
		}
		return DefaultConfig()
	}
	return cfg
}

// LoadConfig loads the configuration file at path. Missing values are set to
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.Warnf("Unknown config key %q in %s", key.String(), path)
	}
	cfg.Check()
	return cfg, nil
}

// SaveConfig into chip8 config directory.
func SaveConfig(cfg Config) error {
	return writeConfig(filepath.Join(ConfigDir(), cfgFilename), cfg)
}

func writeConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}
