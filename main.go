package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"chip8/emu"
	"chip8/rom"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case runMode:
		cfg := emu.LoadConfigOrDefault()
		emuMain(cli.Run, cfg)
	case headlessMode:
		headlessMain(cli.Headless)
	case disasmMode:
		disasmMain(cli.Disasm)
	case romInfosMode:
		r, err := rom.Open(cli.RomInfos.RomPath)
		checkf(err, "failed to open rom")
		checkf(r.PrintInfos(os.Stdout), "failed to print rom infos")
	case remoteMode:
		remoteMain(cli.Remote)
	case versionMode:
		printVersion()
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("chip8", version)
}
