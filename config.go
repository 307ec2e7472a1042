package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/octovm/chip8/controller"
)

// version is set at link time.
var version = "dev"

const usage = "chip8 [flags] [rom]"

// Config holds the command line options.
type Config struct {
	// ROM is a binary ROM or assembly source file.
	ROM string

	// Term runs in the terminal instead of a window.
	Term bool

	// Hz is the number of instructions executed per second.
	Hz int

	// Scale is the size of each CHIP-8 pixel in the window.
	Scale int

	// Paused starts the program paused.
	Paused bool

	// Seed for the random number generator, 0 picks one.
	Seed uint64

	// Script runs a Lua script headless against the ROM.
	Script string

	// Cycles limits how many instructions a script may run, 0 is unlimited.
	Cycles int64

	// Debug traces every instruction.
	Debug bool

	// Disasm prints a listing of the ROM and exits.
	Disasm bool

	// Version prints the version and exits.
	Version bool
}

// parseArgs parses the command line into a Config.
func parseArgs(args []string, output io.Writer) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("chip8", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, usage)
		fs.PrintDefaults()
	}

	fs.BoolVar(&cfg.Term, "term", false, "Run in the terminal")
	fs.IntVar(&cfg.Hz, "hz", controller.DefaultSpeed, "Instructions per second")
	fs.IntVar(&cfg.Scale, "scale", 5, "Window pixel scale")
	fs.BoolVar(&cfg.Paused, "paused", false, "Start paused")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "Random number seed (0 is random)")
	fs.StringVar(&cfg.Script, "script", "", "Run a Lua `file` against the ROM and exit")
	fs.Int64Var(&cfg.Cycles, "cycles", 0, "Instruction limit for -script (0 is unlimited)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Log every instruction executed")
	fs.BoolVar(&cfg.Disasm, "disasm", false, "Print a disassembly of the ROM and exit")
	fs.BoolVar(&cfg.Version, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.ROM = fs.Arg(0)
	default:
		return cfg, errors.Errorf("too many arguments; usage: %s", usage)
	}

	if cfg.Hz < controller.MinSpeed || cfg.Hz > controller.MaxSpeed {
		return cfg, errors.Errorf("-hz must be between %d and %d", controller.MinSpeed, controller.MaxSpeed)
	}

	if cfg.Scale < 1 {
		return cfg, errors.New("-scale must be at least 1")
	}

	if cfg.Disasm && cfg.ROM == "" {
		return cfg, errors.New("-disasm needs a rom")
	}

	if cfg.Script != "" && cfg.ROM == "" {
		return cfg, errors.New("-script needs a rom")
	}

	return cfg, nil
}
