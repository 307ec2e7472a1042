package main

import (
	"image"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	/// Size of each character in the font atlas.
	///
	CharW = 7
	CharH = 13

	/// Printable ASCII in the atlas.
	///
	firstChar = ' '
	lastChar  = '~'
)

var (
	/// Font is a texture atlas of every printable character.
	///
	Font *sdl.Texture
)

/// fontAtlas renders the printable ASCII characters side by side in white.
///
func fontAtlas() *image.RGBA {
	face := basicfont.Face7x13
	n := int(lastChar - firstChar + 1)
	img := image.NewRGBA(image.Rect(0, 0, n*CharW, CharH))

	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}

	for c := firstChar; c <= lastChar; c++ {
		d.Dot = fixed.P((int(c)-firstChar)*CharW, face.Ascent)
		d.DrawString(string(rune(c)))
	}

	return img
}

/// InitFont creates the font texture.
///
func InitFont() error {
	img := fontAtlas()
	w, h := img.Rect.Dx(), img.Rect.Dy()

	// ABGR8888 is image.RGBA's byte order on little-endian machines
	surface, err := sdl.CreateRGBSurfaceWithFormat(0, int32(w), int32(h), 32, uint32(sdl.PIXELFORMAT_ABGR8888))
	if err != nil {
		return errors.Wrap(err, "font surface")
	}

	defer surface.Free()

	// copy the atlas a row at a time, the pitches may differ
	surface.Lock()
	pix := surface.Pixels()

	for y := 0; y < h; y++ {
		copy(pix[y*int(surface.Pitch):], img.Pix[y*img.Stride:y*img.Stride+w*4])
	}

	surface.Unlock()

	if Font, err = Renderer.CreateTextureFromSurface(surface); err != nil {
		return errors.Wrap(err, "font texture")
	}

	Font.SetBlendMode(sdl.BLENDMODE_BLEND)

	return nil
}

/// DrawText using the loaded font.
///
func DrawText(s string, x, y int32) {
	src := sdl.Rect{W: CharW, H: CharH}
	dst := sdl.Rect{
		X: x,
		Y: y,
		W: CharW,
		H: CharH,
	}

	// loop over all the characters in the string
	for _, c := range s {
		if c > firstChar && c <= lastChar {
			src.X = int32(c-firstChar) * CharW

			// draw the character to the renderer
			Renderer.Copy(Font, &src, &dst)
		}

		// advance
		dst.X += CharW
	}
}

/// SetTextColor tints all text drawn after it.
///
func SetTextColor(r, g, b uint8) {
	Font.SetColorMod(r, g, b)
}
