package main

import (
	"fmt"
	"strings"

	"github.com/octovm/chip8/chip8"
	"github.com/octovm/chip8/controller"
)

// halfBlocks maps a pair of vertically stacked pixels (top, bottom) to a
// character that draws both.
var halfBlocks = [2][2]string{
	{" ", "▄"},
	{"▀", "█"},
}

// termKeys maps keyboard characters to CHIP-8 keys.
var termKeys = map[byte]uint{
	'x': 0x0,
	'1': 0x1,
	'2': 0x2,
	'3': 0x3,
	'q': 0x4,
	'w': 0x5,
	'e': 0x6,
	'a': 0x7,
	's': 0x8,
	'd': 0x9,
	'z': 0xA,
	'c': 0xB,
	'4': 0xC,
	'r': 0xD,
	'f': 0xE,
	'v': 0xF,
}

// termKey maps a typed character to a CHIP-8 key, ignoring case.
func termKey(b byte) (uint, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}

	key, ok := termKeys[b]
	return key, ok
}

// RenderTerm draws the display with two pixel rows per line of text, in
// a border, followed by a status line. Lines end with "\r\n" since the
// terminal is in raw mode.
func RenderTerm(d chip8.Display, status string) string {
	var sb strings.Builder

	border := strings.Repeat("─", d.Width())

	// home the cursor and redraw over the last frame
	sb.WriteString("\x1b[H")
	sb.WriteString("┌" + border + "┐\r\n")

	for y := 0; y < d.Height(); y += 2 {
		sb.WriteString("│")

		for x := 0; x < d.Width(); x++ {
			sb.WriteString(halfBlocks[bit(d.Pixel(x, y))][bit(d.Pixel(x, y+1))])
		}

		sb.WriteString("│\r\n")
	}

	sb.WriteString("└" + border + "┘\r\n")

	// clear the rest of the status line
	sb.WriteString(status + "\x1b[K\r\n")

	return sb.String()
}

// termStatus summarizes the emulator on one line.
func termStatus(c *controller.Controller) string {
	vm := c.VM()
	state := "RUN"

	switch {
	case c.Fault() != nil:
		state = fmt.Sprintf("FAULT %v", c.Fault())
	case c.Paused():
		state = "PAUSED"
	case vm.Waiting():
		state = "KEY?"
	}

	return fmt.Sprintf("PC #%04X  I #%04X  %d Hz  %s", vm.PC(), vm.I(), c.Speed(), state)
}

func bit(b bool) int {
	if b {
		return 1
	}

	return 0
}
