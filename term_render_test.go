package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/octovm/chip8/chip8"
	"github.com/octovm/chip8/controller"
)

func TestRenderTerm(t *testing.T) {
	out := RenderTerm(drawn(t), "status")
	lines := strings.Split(out, "\r\n")

	// border, 16 rows, border, status and the trailing empty split
	if len(lines) != chip8.Height/2+4 {
		t.Fatalf("expected %d lines; have %d", chip8.Height/2+4, len(lines))
	}

	// rows 0 and 1 of a zero: 1111 over 1001
	if !strings.HasPrefix(lines[1], "│█▀▀█ ") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}

	// rows 2 and 3: 1001 over 1001
	if !strings.HasPrefix(lines[2], "│█  █ ") {
		t.Fatalf("unexpected second row: %q", lines[2])
	}

	// row 4 is the bottom of the zero
	if !strings.HasPrefix(lines[3], "│▀▀▀▀ ") {
		t.Fatalf("unexpected third row: %q", lines[3])
	}

	if !strings.HasPrefix(lines[len(lines)-2], "status") {
		t.Fatalf("expected the status line; have %q", lines[len(lines)-2])
	}
}

func TestTermKey(t *testing.T) {
	tests := []struct {
		b   byte
		key uint
		ok  bool
	}{
		{'1', 0x1, true},
		{'v', 0xF, true},
		{'V', 0xF, true},
		{'x', 0x0, true},
		{'p', 0, false},
		{' ', 0, false},
	}

	for _, test := range tests {
		key, ok := termKey(test.b)
		if ok != test.ok || key != test.key {
			t.Errorf("%q: expected %X, %v; have %X, %v", test.b, test.key, test.ok, key, ok)
		}
	}
}

func TestTermStatus(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := controller.New(chip8.New(), log)

	if s := termStatus(c); s != "PC #0200  I #0000  500 Hz  RUN" {
		t.Fatalf("unexpected status: %q", s)
	}

	c.Pause()

	if s := termStatus(c); !strings.HasSuffix(s, "PAUSED") {
		t.Fatalf("unexpected status: %q", s)
	}
}
