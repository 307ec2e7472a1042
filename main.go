package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/octovm/chip8/chip8"
	"github.com/octovm/chip8/controller"
	"github.com/octovm/chip8/script"
)

var (
	/// Command line configuration.
	///
	Cfg Config

	/// The controller running the CHIP-8 virtual machine.
	///
	Ctl *controller.Controller

	/// Structured log, written to the console panel in the window.
	///
	Log *slog.Logger

	/// The scrollable console panel.
	///
	Console *Logger

	/// The SDL Window and Renderer.
	///
	Window   *sdl.Window
	Renderer *sdl.Renderer
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var err error

	if Cfg, err = parseArgs(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if Cfg.Version {
		fmt.Println("chip8", version)
		return
	}

	switch {
	case Cfg.Disasm:
		err = runDisasm(Cfg, os.Stdout)
	case Cfg.Script != "":
		err = runScript(Cfg)
	case Cfg.Term:
		err = runTerminal(Cfg)
	default:
		err = runWindow(Cfg)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

/// newLogger creates a text logger at the configured level.
///
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

/// newController creates a VM and controller, booting the ROM if there is one.
///
func newController(cfg Config, log *slog.Logger) (*controller.Controller, error) {
	vm := chip8.New()
	vm.SetLogger(log)

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	vm.Seed(seed)

	c := controller.New(vm, log)
	c.SetSpeed(cfg.Hz)

	if cfg.ROM != "" {
		p, err := controller.LoadProgram(cfg.ROM)
		if err != nil {
			return nil, err
		}

		if err := c.Boot(p); err != nil {
			return nil, err
		}
	}

	if cfg.Paused {
		c.Pause()
	}

	return c, nil
}

/// runDisasm prints a listing of the ROM, one instruction word per line.
///
func runDisasm(cfg Config, w io.Writer) error {
	p, err := controller.LoadProgram(cfg.ROM)
	if err != nil {
		return err
	}

	for _, line := range chip8.DisassembleROM(p.ROM) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Wrap(err, "disasm")
		}
	}

	return nil
}

/// runScript runs a Lua script against the ROM with no window.
///
func runScript(cfg Config) error {
	log := newLogger(os.Stderr, cfg.Debug)

	c, err := newController(cfg, log)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(cfg.Script)
	if err != nil {
		return errors.Wrap(err, "read script")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := script.New(c, os.Stdout)
	h.SetBudget(cfg.Cycles)

	return h.Run(ctx, string(source), filepath.Base(cfg.Script))
}

/// runWindow runs the emulator and debugger in an SDL window.
///
func runWindow(cfg Config) error {
	var err error

	Console = NewLog()
	Log = newLogger(Console, cfg.Debug)

	if Ctl, err = newController(cfg, Log); err != nil {
		return err
	}

	if err = sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return errors.Wrap(err, "init sdl")
	}

	defer sdl.Quit()

	// create the main window and renderer
	w, h := WindowSize(cfg.Scale)
	if Window, Renderer, err = sdl.CreateWindowAndRenderer(w, h, uint32(sdl.WINDOW_SHOWN)); err != nil {
		return errors.Wrap(err, "create window")
	}

	defer Window.Destroy()
	defer Renderer.Destroy()

	SetTitle()

	// initialize subsystems
	if err = InitScreen(); err != nil {
		return err
	}

	if err = InitFont(); err != nil {
		return err
	}

	// run silent without audio
	if err = InitAudio(); err != nil {
		Log.Error("audio", "err", err)
	}

	defer CloseAudio()

	if Ctl.Program() == nil {
		Console.Log("Press F3 to load a ROM or H for help")
	}

	video := time.NewTicker(time.Second / controller.FrameRate)
	defer video.Stop()

	// loop until window closed or user quit
	for ProcessEvents() {
		<-video.C

		if Ctl.Program() != nil {
			UpdateAudio(RunFrame(Ctl))
		}

		Refresh()
	}

	return nil
}

/// Boot loads a ROM file and starts running it.
///
func Boot(file string) error {
	p, err := controller.LoadProgram(file)
	if err != nil {
		return err
	}

	if err := Ctl.Boot(p); err != nil {
		return err
	}

	Cfg.ROM = file
	SetTitle()

	return nil
}

/// SetTitle shows the loaded ROM in the window title.
///
func SetTitle() {
	if p := Ctl.Program(); p != nil {
		Window.SetTitle("CHIP-8 - " + p.Name)
	} else {
		Window.SetTitle("CHIP-8")
	}
}
