// Package rpc allows to remotely control a running emulator.
package rpc

import (
	"chip8/emu/log"
)

var modRPC = log.NewModule("rpc")

// Emu is the emulator side of the remote control.
type Emu interface {
	Reset()
	SetPause(pause bool)
	Stop()
}
