package emu

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"chip8/emu/debugger"
	"chip8/emu/log"
	"chip8/emu/rpc"
	"chip8/hw"
	"chip8/rom"
)

// Upper bound on the emulated time per loop iteration, so that the emulator
// doesn't try to catch up after being stalled (debugger, window drag...).
const maxStep = 100 * time.Millisecond

// Turbo mode speed multiplier.
const turboSpeed = 8

type Emulator struct {
	CPU *hw.CPU

	rom    *rom.Rom
	win    *window
	beeper *sdlBeeper
	keymap keymap
	dbgsrv *debugger.Server
	rpcsrv *rpc.Server
	cfg    Config

	frame  []byte
	fg, bg color.RGBA
	turbo  bool

	titlePaused bool // pause state shown in the window title

	// These are accessed concurrently by the emulator loop and the outside.
	quit   atomic.Bool
	paused atomic.Bool
	reset  atomic.Bool
}

// Launch powers up the CPU, loads the rom, shows the window and setups audio
// and keyboard mapping. It doesn't start the emulation loop, call Run() for
// that.
func Launch(r *rom.Rom, cfg Config) (*Emulator, error) {
	cfg.Check()

	km, err := newKeymap(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("input config: %w", err)
	}

	cpu := hw.NewCPU(nil)
	cpu.TimerMode = hw.TimerMode(cfg.Emulation.TimerMode)
	if err := cpu.LoadProgram(r.Data); err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	win, err := newWindow(windowTitle(r.Name, false), hw.Width, hw.Height, cfg.Video.Scale, !cfg.Video.DisableVSync)
	if err != nil {
		return nil, err
	}

	e := &Emulator{
		CPU:    cpu,
		rom:    r,
		win:    win,
		keymap: km,
		cfg:    cfg,
		frame:  make([]byte, hw.Width*hw.Height*4),
		fg:     color.RGBA(cfg.Video.Foreground),
		bg:     color.RGBA(cfg.Video.Background),
	}

	if cfg.Audio.DisableAudio {
		log.ModEmu.WarnZ("Audio disabled").End()
	} else {
		if e.beeper, err = newSDLBeeper(cfg.Audio); err != nil {
			win.Close()
			return nil, fmt.Errorf("failed to open audio device: %w", err)
		}
		cpu.SetBeeper(e.beeper)
		log.ModEmu.InfoZ("Audio enabled").End()
	}

	// CPU execution trace setup.
	if cfg.TraceOut != nil {
		cpu.SetTraceOutput(cfg.TraceOut)
	}

	if cfg.DebugAddr != "" {
		if e.dbgsrv, err = debugger.Serve(debugger.New(cpu), cfg.DebugAddr); err != nil {
			e.close()
			return nil, fmt.Errorf("failed to start debugger server: %w", err)
		}
	}
	if cfg.RPCPort != 0 {
		if e.rpcsrv, err = rpc.NewServer(cfg.RPCPort, e); err != nil {
			e.close()
			return nil, fmt.Errorf("failed to start rpc server: %w", err)
		}
	}

	return e, nil
}

// Run runs the emulation loop until the window is closed or Stop is called.
func (e *Emulator) Run() {
	e.render()

	last := time.Now()
	for e.poll() {
		now := time.Now()
		elapsed := min(now.Sub(last), maxStep)
		last = now

		if paused := e.isPaused(); paused != e.titlePaused {
			e.titlePaused = paused
			e.win.setTitle(windowTitle(e.rom.Name, paused))
		}

		if e.isPaused() {
			// Don't burn cpu while paused.
			time.Sleep(50 * time.Millisecond)
		} else {
			speed := e.cfg.Emulation.Speed
			if e.turbo {
				speed *= turboSpeed
			}
			e.CPU.RunFor(elapsed.Seconds() * speed)
		}

		if e.CPU.Display.ConsumeRedraw() {
			e.render()
		} else if e.cfg.Video.DisableVSync {
			time.Sleep(time.Millisecond)
		} else {
			// Keep the pace of the display refresh rate.
			e.present()
		}

		if e.quit.Load() {
			break
		}
		e.handleReset()
	}

	log.ModEmu.InfoZ("Emulation loop exited").Int("cycles", e.CPU.Cycles).End()
	e.close()
}

// poll processes pending window events. It returns false when the window
// has been closed.
func (e *Emulator) poll() bool {
	running := true
	sdl.Do(func() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				e.handleKey(ev)
			case *sdl.WindowEvent:
				if ev.Event == sdl.WINDOWEVENT_RESIZED {
					e.win.resize(ev.Data1, ev.Data2)
				}
			}
		}
	})
	return running
}

func (e *Emulator) render() {
	e.CPU.Display.Frame(e.frame, e.fg, e.bg)
	sdl.Do(func() { e.win.render(e.frame) })
}

func (e *Emulator) present() {
	sdl.Do(func() { e.win.GLSwap() })
}

func (e *Emulator) close() {
	if e.rpcsrv != nil {
		e.rpcsrv.Close()
	}
	if e.dbgsrv != nil {
		e.dbgsrv.Close()
	}
	if e.beeper != nil {
		e.beeper.Close()
	}
	if err := e.win.Close(); err != nil {
		log.ModVideo.WarnZ("Failed to close window").Error("err", err).End()
	}
	if e.cfg.TraceOut != nil {
		e.cfg.TraceOut.Close()
	}
}

// SetPause, Stop and Reset allow to control the emulator loop in a
// concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) Reset()              { e.reset.Store(true) }
func (e *Emulator) Stop()               { e.quit.Store(true) }

func (e *Emulator) isPaused() bool {
	return e.paused.Load()
}

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing reset").String("rom", e.rom.Name).End()
		e.CPU.Reset()
		if err := e.CPU.LoadProgram(e.rom.Data); err != nil {
			// The rom has already been loaded once.
			panic(err)
		}
	}
}

func (e *Emulator) statePath() string {
	return filepath.Join(ConfigDir(), fmt.Sprintf("%s-%08X.state", e.rom.Name, e.rom.CRC32()))
}

func (e *Emulator) saveState() {
	state, err := e.CPU.SaveSnapshot()
	if err != nil {
		log.ModEmu.WarnZ("Failed to save state").Error("err", err).End()
		return
	}

	path := e.statePath()
	if err := os.WriteFile(path, state, 0o644); err != nil {
		log.ModEmu.WarnZ("Failed to save state").Error("err", err).End()
		return
	}
	log.ModEmu.InfoZ("State saved").String("path", path).Int("size", int64(len(state))).End()
}

func (e *Emulator) loadState() {
	path := e.statePath()
	state, err := os.ReadFile(path)
	if err != nil {
		log.ModEmu.WarnZ("No saved state").String("path", path).End()
		return
	}
	if err := e.CPU.LoadSnapshot(state); err != nil {
		log.ModEmu.WarnZ("Failed to load state").String("path", path).Error("err", err).End()
		return
	}
	log.ModEmu.InfoZ("State loaded").String("path", path).End()
}
