package emu

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"chip8/emu/log"
)

// Emulator hotkeys. They can't be mapped to keypad keys.
const (
	hotkeyQuit     = sdl.SCANCODE_ESCAPE
	hotkeyReset    = sdl.SCANCODE_F1
	hotkeySave     = sdl.SCANCODE_F5
	hotkeyLoad     = sdl.SCANCODE_F7
	hotkeyPause    = sdl.SCANCODE_P
	hotkeyTurbo    = sdl.SCANCODE_TAB
	hotkeyShowKeys = sdl.SCANCODE_F12
)

var hotkeys = map[sdl.Scancode]string{
	hotkeyQuit:     "quit",
	hotkeyReset:    "reset",
	hotkeySave:     "save state",
	hotkeyLoad:     "load state",
	hotkeyPause:    "pause",
	hotkeyTurbo:    "turbo",
	hotkeyShowKeys: "show keys",
}

// keymap maps keyboard scancodes to keypad keys.
type keymap map[sdl.Scancode]uint8

func newKeymap(cfg InputConfig) (keymap, error) {
	km := make(keymap, len(cfg.Keys))
	for key, name := range cfg.Keys {
		sc := sdl.GetScancodeFromName(name)
		if sc == sdl.SCANCODE_UNKNOWN {
			return nil, fmt.Errorf("keypad key %X: unknown key name %q", key, name)
		}
		if hk, ok := hotkeys[sc]; ok {
			return nil, fmt.Errorf("keypad key %X: %q is reserved for %s", key, name, hk)
		}
		if prev, ok := km[sc]; ok {
			return nil, fmt.Errorf("keypad keys %X and %X are both mapped to %q", prev, key, name)
		}
		km[sc] = uint8(key)
	}
	return km, nil
}

// String describes the mapping, in the keypad layout.
func (km keymap) String() string {
	var names [16]string
	for sc, key := range km {
		names[key] = sdl.GetScancodeName(sc)
	}

	layout := [4][4]uint8{
		{0x1, 0x2, 0x3, 0xC},
		{0x4, 0x5, 0x6, 0xD},
		{0x7, 0x8, 0x9, 0xE},
		{0xA, 0x0, 0xB, 0xF},
	}
	var s string
	for _, row := range layout {
		for _, key := range row {
			s += fmt.Sprintf("%X:%-6s", key, names[key])
		}
		s += "\n"
	}
	return s
}

func (e *Emulator) handleKey(ev *sdl.KeyboardEvent) {
	pressed := ev.State == sdl.PRESSED
	sc := ev.Keysym.Scancode

	if key, ok := e.keymap[sc]; ok {
		if ev.Repeat != 0 {
			return
		}
		if pressed {
			e.CPU.Press(key)
		} else {
			e.CPU.Release(key)
		}
		return
	}

	if sc == hotkeyTurbo {
		e.turbo = pressed
		return
	}
	if !pressed || ev.Repeat != 0 {
		return
	}

	switch sc {
	case hotkeyQuit:
		e.Stop()
	case hotkeyReset:
		e.Reset()
	case hotkeySave:
		e.saveState()
	case hotkeyLoad:
		e.loadState()
	case hotkeyPause:
		e.SetPause(!e.isPaused())
		log.ModEmu.InfoZ("Pause").Bool("paused", e.isPaused()).End()
	case hotkeyShowKeys:
		log.ModInput.Infof("Keypad mapping:\n%s", e.keymap)
	}
}
