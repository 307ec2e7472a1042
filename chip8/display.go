package chip8

import (
	"strings"
)

const (
	/// Width of the display in pixels.
	///
	Width = 64

	/// Height of the display in pixels.
	///
	Height = 32
)

/// Display is a read-only view of the VM video memory. It reflects the VM
/// as it changes; use Pixels for a snapshot.
///
type Display struct {
	buf *[Width * Height]bool
}

/// Width returns the number of columns.
///
func (d Display) Width() int {
	return Width
}

/// Height returns the number of rows.
///
func (d Display) Height() int {
	return Height
}

/// Pixel returns true if the pixel at x, y is lit. Coordinates outside the
/// display are unlit.
///
func (d Display) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}

	return d.buf[x+Width*y]
}

/// Pixels returns a row-major copy of the display.
///
func (d Display) Pixels() []bool {
	return append([]bool(nil), d.buf[:]...)
}

/// String renders the display one line per row, '#' for lit pixels and '.'
/// for unlit ones.
///
func (d Display) String() string {
	var sb strings.Builder

	sb.Grow((Width + 1) * Height)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if d.buf[x+Width*y] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}
