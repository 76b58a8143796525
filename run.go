package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/veandco/go-sdl2/sdl"

	"chip8/emu"
	"chip8/emu/rpc"
	"chip8/rom"
)

// emuMain runs the emulator with the given rom.
func emuMain(args Run, cfg emu.Config) {
	var exitcode int
	sdl.Main(func() {
		r, err := rom.Open(args.RomPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading ROM: %s\n", err)
			exitcode = 1
			return
		}

		var traceout io.WriteCloser
		if args.Trace != nil {
			traceout = args.Trace
		}

		cfg.TraceOut = traceout
		cfg.DebugAddr = args.Debugger
		cfg.RPCPort = args.RPCPort
		if args.Scale > 0 {
			cfg.Video.Scale = args.Scale
		}

		emulator, err := emu.Launch(r, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start emulator: %v\n", err)
			exitcode = 1
			return
		}

		if args.CPUProfile != "" {
			f, err := os.Create(args.CPUProfile)
			checkf(err, "failed to create cpu profile file")
			checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
			defer func() {
				pprof.StopCPUProfile()
				f.Close()
				fmt.Println("CPU profile written to", args.CPUProfile)
			}()
		}

		emulator.Run()
	})
	os.Exit(exitcode)
}

func headlessMain(args Headless) {
	cfg := emu.DefaultConfig()
	checkf(cfg.Emulation.TimerMode.UnmarshalText([]byte(args.TimerMode)), "invalid timer mode")

	roms := make([]*rom.Rom, 0, len(args.RomPaths))
	for _, path := range args.RomPaths {
		r, err := rom.Open(path)
		checkf(err, "failed to open rom %s", path)
		roms = append(roms, r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := emu.RunHeadless(ctx, roms, args.Seconds, cfg)
	checkf(err, "headless run failed")

	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		res.Print(os.Stdout)
	}
}

func remoteMain(args Remote) {
	client, err := rpc.NewClient(args.Port)
	checkf(err, "failed to connect to emulator")
	defer client.Close()

	switch args.Action {
	case "pause":
		err = client.SetPause(true)
	case "resume":
		err = client.SetPause(false)
	case "reset":
		err = client.Reset()
	case "stop":
		err = client.Stop()
	}
	checkf(err, "remote %s failed", args.Action)
}
