package emu

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"chip8/emu/log"
	"chip8/hw"
	"chip8/rom"
)

// HeadlessResult is the state of a rom after a headless run.
type HeadlessResult struct {
	Name    string
	PC      uint16
	Cycles  int64
	Beeps   int
	Waiting bool
	Screen  string
}

func (r HeadlessResult) Print(w io.Writer) {
	fmt.Fprintf(w, "%s: PC=$%03X cycles=%d beeps=%d waiting=%t\n%s",
		r.Name, r.PC, r.Cycles, r.Beeps, r.Waiting, r.Screen)
}

// headless runs are sliced into steps of that many cycles, between which the
// context is checked.
const headlessStep = hw.ClockRate / hw.TimerRate

// RunHeadless runs each rom, in parallel and without window nor audio, for the
// given emulated duration in seconds. Results are in the same order as roms.
func RunHeadless(ctx context.Context, roms []*rom.Rom, seconds float64, cfg Config) ([]HeadlessResult, error) {
	results := make([]HeadlessResult, len(roms))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, r := range roms {
		g.Go(func() error {
			res, err := runHeadless(ctx, r, seconds, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runHeadless(ctx context.Context, r *rom.Rom, seconds float64, cfg Config) (HeadlessResult, error) {
	beeper := &logBeeper{name: r.Name}
	cpu := hw.NewCPU(beeper)
	cpu.TimerMode = hw.TimerMode(cfg.Emulation.TimerMode)
	if err := cpu.LoadProgram(r.Data); err != nil {
		return HeadlessResult{}, err
	}

	remaining := hw.CyclesFor(seconds)
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return HeadlessResult{}, err
		}
		n := min(remaining, headlessStep)
		cpu.Run(n)
		remaining -= n
	}

	_, waiting := cpu.Waiting()
	log.ModEmu.DebugZ("Headless run done").
		String("rom", r.Name).
		Int("cycles", cpu.Cycles).
		End()

	return HeadlessResult{
		Name:    r.Name,
		PC:      cpu.PC,
		Cycles:  cpu.Cycles,
		Beeps:   beeper.count,
		Waiting: waiting,
		Screen:  cpu.Display.String(),
	}, nil
}
