package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"chip8/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM in a window
	headlessMode             // Run ROMs without window nor audio
	disasmMode               // Disassemble a ROM
	romInfosMode             // Show ROM infos
	remoteMode               // Control a running emulator
	versionMode              // Show version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM in emulator. (default command)" default:"withargs"`
		Headless Headless `cmd:"" help:"Run ROMs without window nor audio and print their final screen."`
		Disasm   Disasm   `cmd:"" help:"Disassemble ROM."`
		RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Remote   Remote   `cmd:"" help:"Control an emulator started with --rpc-port."`
		Version  Version  `cmd:"" help:"Show version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"ROM to run." type:"existingfile"`

		Scale      int      `name:"scale" help:"Window scale factor, overrides the config file."`
		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		Debugger   string   `name:"debugger" help:"Start the debugger server." placeholder:"HOST:PORT"`
		RPCPort    int      `name:"rpc-port" help:"Accept remote control on that port."`
	}

	Headless struct {
		RomPaths []string `arg:"" name:"/path/to/rom" help:"ROMs to run." type:"existingfile"`

		Seconds   float64 `name:"seconds" help:"Emulated duration." default:"10"`
		TimerMode string  `name:"timer-mode" help:"Timer cadence." enum:"cycle,60hz" default:"cycle"`
	}

	Disasm struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`

		NoColor bool `name:"no-color" help:"Disable colored output."`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Remote struct {
		Action string `arg:"" enum:"pause,resume,reset,stop" help:"One of pause, resume, reset, stop."`
		Port   int    `name:"port" help:"Emulator rpc port." required:""`
	}

	Version struct{}
)

var vars = kong.Vars{
	"cpuprofile_help": "Write CPU profile to file.",
	"log_help":        "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("chip8"),
		kong.Description("CHIP-8 emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch cmd := ctx.Command(); {
	case strings.HasPrefix(cmd, "headless"):
		cfg.mode = headlessMode
	case strings.HasPrefix(cmd, "disasm"):
		cfg.mode = disasmMode
	case strings.HasPrefix(cmd, "rom-infos"):
		cfg.mode = romInfosMode
	case strings.HasPrefix(cmd, "remote"):
		cfg.mode = remoteMode
	case cmd == "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	cmd := ctx.Command()
	if strings.HasPrefix(cmd, "run") || strings.HasPrefix(cmd, "headless") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf("%s.\n%s", fmt.Sprintf(format, args...), err)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
