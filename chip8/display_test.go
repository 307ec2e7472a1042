package chip8_test

import (
	"strings"
	"testing"

	"github.com/octovm/chip8/chip8"
)

// lit returns the coordinates of all lit pixels.
func lit(d chip8.Display) map[[2]int]bool {
	pixels := make(map[[2]int]bool)

	for y := 0; y < d.Height(); y++ {
		for x := 0; x < d.Width(); x++ {
			if d.Pixel(x, y) {
				pixels[[2]int{x, y}] = true
			}
		}
	}

	return pixels
}

func TestDrawWrapsHorizontally(t *testing.T) {
	asm := assemble(t, `
        LD I, SPRITE
        LD V0, 63
        LD V1, 0
        DRW V0, V1, 1
.SPRITE BYTE $11111111
`)

	vm := load(t, asm.ROM)
	step(t, vm, 4)

	pixels := lit(vm.Display())
	if len(pixels) != 8 {
		t.Fatalf("expected 8 lit pixels; have %d", len(pixels))
	}

	for _, x := range []int{63, 0, 1, 2, 3, 4, 5, 6} {
		if !pixels[[2]int{x, 0}] {
			t.Fatalf("expected pixel %d,0 to be lit", x)
		}
	}

	if vm.V(0xF) != 0 {
		t.Fatal("expected no collision")
	}
}

func TestDrawWrapsVertically(t *testing.T) {
	asm := assemble(t, `
        LD I, SPRITE
        LD V0, 10
        LD V1, 31
        DRW V0, V1, 2
.SPRITE BYTE $1......., $.1......
`)

	vm := load(t, asm.ROM)
	step(t, vm, 4)

	d := vm.Display()

	if !d.Pixel(10, 31) || !d.Pixel(11, 0) || len(lit(d)) != 2 {
		t.Fatalf("expected pixels at 10,31 and 11,0; have %v", lit(d))
	}
}

func TestDrawOriginWraps(t *testing.T) {
	asm := assemble(t, `
        LD I, SPRITE
        LD V0, 66
        LD V1, 33
        DRW V0, V1, 1
.SPRITE BYTE $1.......
`)

	vm := load(t, asm.ROM)
	step(t, vm, 4)

	if !vm.Display().Pixel(2, 1) {
		t.Fatalf("expected pixel at 2,1; have %v", lit(vm.Display()))
	}
}

func TestDrawCollision(t *testing.T) {
	// draw the 0 glyph twice at the same place
	vm := load(t, words(0x6000, 0xF029, 0x6105, 0x6206, 0xD125, 0xD125))

	step(t, vm, 5)

	if vm.V(0xF) != 0 {
		t.Fatal("expected no collision on a clear display")
	}

	if n := len(lit(vm.Display())); n != 14 {
		t.Fatalf("expected 14 lit pixels for glyph 0; have %d", n)
	}

	step(t, vm, 1)

	if vm.V(0xF) != 1 {
		t.Fatal("expected a collision drawing over lit pixels")
	}

	if n := len(lit(vm.Display())); n != 0 {
		t.Fatalf("expected the second draw to erase the glyph; have %d pixels", n)
	}
}

func TestDrawPartialOverlap(t *testing.T) {
	asm := assemble(t, `
        LD I, SPRITE
        DRW V0, V0, 1
        LD V1, 7
        DRW V1, V0, 1
        LD V1, 8
        DRW V1, V0, 1
.SPRITE BYTE $11111111
`)

	vm := load(t, asm.ROM)

	// overlapping by one pixel at x=7
	step(t, vm, 4)

	if vm.V(0xF) != 1 {
		t.Fatal("expected a collision on the shared pixel")
	}

	if d := vm.Display(); d.Pixel(7, 0) || !d.Pixel(6, 0) || !d.Pixel(8, 0) {
		t.Fatalf("expected pixel 7,0 to be flipped off; have %v", lit(d))
	}

	// drawing only over the unlit pixel 7 and lit 8-14 again
	step(t, vm, 2)

	if vm.V(0xF) != 1 {
		t.Fatal("expected a collision")
	}
}

func TestDrawOutOfBounds(t *testing.T) {
	vm := load(t, words(0xAFFC, 0xD005))

	step(t, vm, 1)
	fault(t, vm, chip8.ErrOutOfBounds)

	if len(lit(vm.Display())) != 0 {
		t.Fatal("expected nothing drawn")
	}
}

func TestClearScreen(t *testing.T) {
	vm := load(t, words(0xF029, 0xD005, 0x00E0))

	step(t, vm, 2)

	if len(lit(vm.Display())) == 0 {
		t.Fatal("expected pixels after draw")
	}

	step(t, vm, 1)

	if len(lit(vm.Display())) != 0 {
		t.Fatal("expected a clear display")
	}
}

func TestDisplayView(t *testing.T) {
	vm := load(t, words(0xF029, 0xD005))
	step(t, vm, 2)

	d := vm.Display()

	if d.Width() != chip8.Width || d.Height() != chip8.Height {
		t.Fatalf("expected %dx%d; have %dx%d", chip8.Width, chip8.Height, d.Width(), d.Height())
	}

	if d.Pixel(-1, 0) || d.Pixel(0, chip8.Height) || d.Pixel(chip8.Width, 0) {
		t.Fatal("expected pixels off screen to be unlit")
	}

	pixels := d.Pixels()
	if len(pixels) != chip8.Width*chip8.Height || !pixels[0] {
		t.Fatal("expected a row-major snapshot with pixel 0,0 lit")
	}

	// snapshots don't alias video memory
	pixels[0] = false

	if !d.Pixel(0, 0) {
		t.Fatal("expected the view to be unaffected by the snapshot")
	}

	rows := strings.Split(strings.TrimSuffix(d.String(), "\n"), "\n")
	if len(rows) != chip8.Height {
		t.Fatalf("expected %d rows; have %d", chip8.Height, len(rows))
	}

	if !strings.HasPrefix(rows[0], "####.") || !strings.HasPrefix(rows[1], "#..#.") {
		t.Fatalf("unexpected glyph rendering:\n%s\n%s", rows[0], rows[1])
	}
}

func TestDisassemble(t *testing.T) {
	vm := load(t, words(0x00E0, 0xA123, 0x0000, 0x5121))

	tests := []struct {
		address int
		want    string
	}{
		{0x200, "0200 - CLS"},
		{0x202, "0202 - LD     I, #123"},
		{0x204, "0204 -"},
		{0x206, "0206 - ??     #5121"},
		{chip8.MemorySize - 1, ""},
		{-1, ""},
	}

	for _, test := range tests {
		if text := vm.Disassemble(test.address); text != test.want {
			t.Fatalf("#%04X: expected %q; have %q", test.address, test.want, text)
		}
	}

	lines := chip8.DisassembleROM(words(0x6A42, 0xFFFF))
	if len(lines) != 2 || lines[0] != "0200 - LD     VA, #42" || lines[1] != "0202 - ??     #FFFF" {
		t.Fatalf("unexpected listing: %q", lines)
	}
}
