package main

import (
	"fmt"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Mapping of modern keyboard to CHIP-8 keys.
	///
	KeyMap = map[sdl.Scancode]uint{
		sdl.SCANCODE_X: 0x0,
		sdl.SCANCODE_1: 0x1,
		sdl.SCANCODE_2: 0x2,
		sdl.SCANCODE_3: 0x3,
		sdl.SCANCODE_Q: 0x4,
		sdl.SCANCODE_W: 0x5,
		sdl.SCANCODE_E: 0x6,
		sdl.SCANCODE_A: 0x7,
		sdl.SCANCODE_S: 0x8,
		sdl.SCANCODE_D: 0x9,
		sdl.SCANCODE_Z: 0xA,
		sdl.SCANCODE_C: 0xB,
		sdl.SCANCODE_4: 0xC,
		sdl.SCANCODE_R: 0xD,
		sdl.SCANCODE_F: 0xE,
		sdl.SCANCODE_V: 0xF,
	}
)

/// ProcessEvents from SDL and map keys to the CHIP-8 VM. Returns false
/// once the window is closed.
///
func ProcessEvents() bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			key, mapped := KeyMap[ev.Keysym.Scancode]

			if ev.Type == sdl.KEYUP {
				if mapped {
					Ctl.VM().ReleaseKey(key)
				}

				continue
			}

			if mapped {
				Ctl.VM().PressKey(key)
			} else if !KeyDown(ev) {
				return false
			}
		}
	}

	return true
}

/// KeyDown handles emulator keys. Returns false to quit.
///
func KeyDown(ev *sdl.KeyboardEvent) bool {
	switch ev.Keysym.Scancode {
	case sdl.SCANCODE_ESCAPE:
		return false
	case sdl.SCANCODE_BACKSPACE:
		if err := Ctl.Reset(); err != nil {
			Log.Error("reset", "err", err)
		}

		// holding control during reset will reboot paused
		if ev.Keysym.Mod&uint16(sdl.KMOD_CTRL) != 0 {
			Ctl.Pause()
		}
	case sdl.SCANCODE_UP:
		Console.ScrollUp(LogLines)
	case sdl.SCANCODE_DOWN:
		Console.ScrollDown(LogLines)
	case sdl.SCANCODE_PAGEUP:
		for i := 0; i < LogLines; i++ {
			Console.ScrollUp(LogLines)
		}
	case sdl.SCANCODE_PAGEDOWN:
		for i := 0; i < LogLines; i++ {
			Console.ScrollDown(LogLines)
		}
	case sdl.SCANCODE_HOME:
		Console.Home()
	case sdl.SCANCODE_END:
		Console.End()
	case sdl.SCANCODE_F3:
		LoadDialog()
	case sdl.SCANCODE_H, sdl.SCANCODE_F1:
		DebugHelp()
	case sdl.SCANCODE_LEFTBRACKET:
		Ctl.DecSpeed()
	case sdl.SCANCODE_RIGHTBRACKET:
		Ctl.IncSpeed()
	case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
		Ctl.TogglePause()
	case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
		Ctl.Step()
	case sdl.SCANCODE_F7:
		Ctl.StepOver()
	case sdl.SCANCODE_F8:
		if Ctl.Paused() {
			DebugMemory()
		}
	case sdl.SCANCODE_F9:
		if Ctl.Paused() {
			Ctl.ToggleBreakpoint()
		}
	case sdl.SCANCODE_F11:
		if err := CopyDisplay(Ctl.VM().Display()); err != nil {
			Log.Error("copy", "err", err)
		} else {
			Log.Info("display copied to clipboard")
		}
	case sdl.SCANCODE_F12:
		path, err := Screenshot(Ctl.VM().Display(), Cfg.Scale, ".", Cfg.ROM)
		if err != nil {
			Log.Error("screenshot", "err", err)
		} else {
			Log.Info("screenshot", "file", path)
		}
	}

	return true
}

/// LoadDialog opens a file dialog to pick a ROM to boot.
///
func LoadDialog() {
	file, err := dialog.File().
		Filter("CHIP-8 ROMs", "ch8", "c8", "asm", "c8s", "src").
		Filter("All files", "*").
		Title("Load ROM").
		Load()
	if err != nil {
		if err != dialog.ErrCancelled {
			Log.Error("load dialog", "err", err)
		}

		return
	}

	if err := Boot(file); err != nil {
		Log.Error("boot", "err", err)
		Console.Log(fmt.Sprintf("Could not load %s", file))
	}
}
