//go:build unix

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/octovm/chip8/chip8"
	"github.com/octovm/chip8/controller"
)

// holdFrames is how long a typed key stays down. Terminals only report
// key presses, so a key is released once it hasn't repeated for a while.
const holdFrames = 15

// runTerminal runs the emulator in the terminal using half-block
// characters for pixels.
func runTerminal(cfg Config) error {
	Console = NewLog()
	log := newLogger(Console, cfg.Debug)

	// show the end of the log once the terminal is restored
	defer func() {
		for _, line := range Console.Window(LogLines) {
			fmt.Fprintln(os.Stderr, line)
		}
	}()

	c, err := newController(cfg, log)
	if err != nil {
		return err
	}

	if c.Program() == nil {
		return errors.New("-term needs a rom")
	}

	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal")
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "raw mode")
	}

	defer term.Restore(fd, state)

	if err := unix.SetNonblock(fd, true); err != nil {
		return errors.Wrap(err, "nonblocking stdin")
	}

	defer unix.SetNonblock(fd, false)

	// beep if there's audio
	beeper, err := NewBeeper()
	if err != nil {
		log.Error("audio", "err", err)
	} else {
		defer beeper.Close()
	}

	// clear the screen and hide the cursor
	os.Stdout.WriteString("\x1b[2J\x1b[?25l")
	defer os.Stdout.WriteString("\x1b[?25h\r\n")

	var (
		held [chip8.KeyCount]int
		buf  = make([]byte, 64)
		last string
	)

	ticker := time.NewTicker(time.Second / controller.FrameRate)
	defer ticker.Stop()

	for range ticker.C {
		n, err := unix.Read(fd, buf)
		if err != nil && !errors.Is(err, unix.EAGAIN) {
			return errors.Wrap(err, "read stdin")
		}

		for _, b := range buf[:max(n, 0)] {
			switch b {
			case 0x03, 0x1B: // ctrl+c, esc
				return nil
			case ' ':
				c.TogglePause()
			case '.':
				c.Step()
			case 0x7F:
				if err := c.Reset(); err != nil {
					return err
				}
			case '[':
				c.DecSpeed()
			case ']':
				c.IncSpeed()
			default:
				if key, ok := termKey(b); ok {
					c.VM().PressKey(key)
					held[key] = holdFrames
				}
			}
		}

		// release keys that haven't repeated
		for key := range held {
			if held[key] > 0 {
				if held[key]--; held[key] == 0 {
					c.VM().ReleaseKey(uint(key))
				}
			}
		}

		playing := RunFrame(c)

		if beeper != nil {
			beeper.Update(playing)
		}

		// only redraw when something changed
		if frame := RenderTerm(c.VM().Display(), termStatus(c)); frame != last {
			os.Stdout.WriteString(frame)
			last = frame
		}
	}

	return nil
}
