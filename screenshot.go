package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.design/x/clipboard"
	"golang.org/x/image/bmp"

	"github.com/octovm/chip8/chip8"
)

// palette matches the window's screen colors.
var palette = color.Palette{
	color.RGBA{R: 143, G: 145, B: 133, A: 255},
	color.RGBA{R: 17, G: 29, B: 43, A: 255},
}

// DisplayImage renders the display with each pixel scaled to a square.
func DisplayImage(d chip8.Display, scale int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, d.Width()*scale, d.Height()*scale), palette)

	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			if d.Pixel(x/scale, y/scale) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	return img
}

// Screenshot writes the display to a BMP file in dir named after the ROM
// and returns its path.
func Screenshot(d chip8.Display, scale int, dir, rom string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(rom), filepath.Ext(rom))
	if name == "" || name == "." {
		name = "chip8"
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.bmp", name, time.Now().Format("20060102-150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "screenshot")
	}

	defer f.Close()

	if err := bmp.Encode(f, DisplayImage(d, scale)); err != nil {
		return "", errors.Wrapf(err, "encode %s", path)
	}

	return path, nil
}

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// CopyDisplay puts the display on the clipboard as text.
func CopyDisplay(d chip8.Display) error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})

	if clipboardErr != nil {
		return errors.Wrap(clipboardErr, "clipboard")
	}

	clipboard.Write(clipboard.FmtText, []byte(d.String()))

	return nil
}
