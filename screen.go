package main

import (
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/octovm/chip8/chip8"
)

var (
	/// Screen is the render target the CHIP-8 display is drawn to.
	///
	Screen *sdl.Texture
)

/// InitScreen creates the render target for the display.
///
func InitScreen() error {
	var err error

	// create a render target for the display
	Screen, err = Renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGB888), sdl.TEXTUREACCESS_TARGET, chip8.Width, chip8.Height)
	if err != nil {
		return errors.Wrap(err, "screen texture")
	}

	return nil
}

/// RefreshScreen with the CHIP-8 video memory.
///
func RefreshScreen(d chip8.Display) {
	if err := Renderer.SetRenderTarget(Screen); err != nil {
		Log.Error("render target", "err", err)
		return
	}

	// the background color for the screen
	Renderer.SetDrawColor(143, 145, 133, 255)
	Renderer.Clear()

	// set the pixel color
	Renderer.SetDrawColor(17, 29, 43, 255)

	// draw all the lit pixels
	for y := 0; y < d.Height(); y++ {
		for x := 0; x < d.Width(); x++ {
			if d.Pixel(x, y) {
				Renderer.DrawPoint(int32(x), int32(y))
			}
		}
	}

	// restore the render target
	Renderer.SetRenderTarget(nil)
}

/// CopyScreen to the render target, stretched to fit.
///
func CopyScreen(x, y, w, h int32) {
	Renderer.Copy(Screen, nil, &sdl.Rect{X: x, Y: y, W: w, H: h})
}
