package controller_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/octovm/chip8/chip8"
	"github.com/octovm/chip8/controller"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// boot assembles source and boots a controller running it.
func boot(t *testing.T, source string) *controller.Controller {
	t.Helper()

	asm, err := chip8.Assemble([]byte(source))
	if err != nil {
		t.Fatal(err)
	}

	vm := chip8.New()
	vm.SetLogger(quiet)

	c := controller.New(vm, quiet)

	err = c.Boot(&controller.Program{
		Name:        "test",
		ROM:         asm.ROM,
		Breakpoints: asm.Breakpoints,
	})
	if err != nil {
		t.Fatal(err)
	}

	return c
}

func frame(t *testing.T, c *controller.Controller) bool {
	t.Helper()

	stopped, err := c.Frame()
	if err != nil {
		t.Fatal(err)
	}

	return stopped
}

func TestFrameSpeed(t *testing.T) {
	c := boot(t, ".LOOP ADD V0, 1\n  JP LOOP")

	c.SetSpeed(600)
	frame(t, c)

	if n := c.VM().Cycles(); n != 10 {
		t.Fatalf("expected 10 instructions at 600 Hz; have %d", n)
	}

	// 500 Hz doesn't divide evenly, but catches up over a second
	c = boot(t, ".LOOP ADD V0, 1\n  JP LOOP")

	for i := 0; i < controller.FrameRate; i++ {
		frame(t, c)
	}

	if n := c.VM().Cycles(); n != controller.DefaultSpeed {
		t.Fatalf("expected %d instructions in a second; have %d", controller.DefaultSpeed, n)
	}
}

func TestSpeedLimits(t *testing.T) {
	c := boot(t, "  CLS")

	for i := 0; i < 10; i++ {
		c.IncSpeed()
	}

	if c.Speed() != controller.MaxSpeed {
		t.Fatalf("expected %d; have %d", controller.MaxSpeed, c.Speed())
	}

	for i := 0; i < 10; i++ {
		c.DecSpeed()
	}

	if c.Speed() != controller.MinSpeed {
		t.Fatalf("expected %d; have %d", controller.MinSpeed, c.Speed())
	}
}

func TestFrameTimers(t *testing.T) {
	c := boot(t, `
        LD V0, 2
        LD ST, V0
        LD DT, V0
.LOOP   JP LOOP
`)

	if frame(t, c) {
		t.Fatal("expected the tone to keep playing after one frame")
	}

	if !c.VM().Beeping() || c.VM().DelayTimer() != 1 {
		t.Fatalf("expected one timer tick; have DT=%d", c.VM().DelayTimer())
	}

	if !frame(t, c) {
		t.Fatal("expected the tone to stop on the second frame")
	}

	c.Pause()
	frame(t, c)

	if c.VM().DelayTimer() != 0 {
		t.Fatal("expected the delay timer to have expired")
	}
}

func TestFramePausedDoesNothing(t *testing.T) {
	c := boot(t, ".LOOP ADD V0, 1\n  JP LOOP")

	c.Pause()
	frame(t, c)

	if c.VM().Cycles() != 0 {
		t.Fatal("expected nothing to run while paused")
	}

	if err := c.Step(); err != nil {
		t.Fatal(err)
	}

	if c.VM().V(0) != 1 || c.VM().PC() != 0x202 {
		t.Fatal("expected a single step")
	}

	c.TogglePause()

	if c.Paused() {
		t.Fatal("expected to be running")
	}
}

func TestBreakpoints(t *testing.T) {
	c := boot(t, `
        LD V0, 1
        BREAK after load
        LD V1, 2
.LOOP   JP LOOP
`)

	if !c.IsBreakpoint(0x202) {
		t.Fatalf("expected breakpoint at #0202; have %X", c.Breakpoints())
	}

	frame(t, c)

	if !c.Paused() || c.VM().PC() != 0x202 || c.VM().V(0) != 1 || c.VM().V(1) != 0 {
		t.Fatalf("expected to stop before #0202; have PC=#%04X", c.VM().PC())
	}

	c.Resume()
	frame(t, c)

	if c.Paused() || c.VM().V(1) != 2 {
		t.Fatal("expected to continue past the breakpoint")
	}

	// toggle one on the loop
	c.Pause()
	c.ToggleBreakpoint()

	if got := c.Breakpoints(); len(got) != 2 || got[0] != 0x202 || got[1] != 0x204 {
		t.Fatalf("expected breakpoints at #0202 and #0204; have %X", got)
	}

	c.ToggleBreakpoint()

	if c.IsBreakpoint(0x204) {
		t.Fatal("expected the breakpoint to be cleared")
	}
}

func TestStepOver(t *testing.T) {
	c := boot(t, `
        CALL SUBR
        LD V1, 1
.LOOP   JP LOOP
.SUBR   LD V0, 1
        LD V0, 2
        RET
`)

	c.Pause()

	if err := c.StepOver(); err != nil {
		t.Fatal(err)
	}

	if c.Paused() {
		t.Fatal("expected to run the subroutine")
	}

	frame(t, c)

	if !c.Paused() || c.VM().PC() != 0x202 || c.VM().V(0) != 2 {
		t.Fatalf("expected to stop after the call; have PC=#%04X V0=%d", c.VM().PC(), c.VM().V(0))
	}

	// not a call, so a single step
	if err := c.StepOver(); err != nil {
		t.Fatal(err)
	}

	if c.VM().PC() != 0x204 || c.VM().V(1) != 1 {
		t.Fatalf("expected a single step; have PC=#%04X", c.VM().PC())
	}
}

func TestFault(t *testing.T) {
	c := boot(t, "  LD V0, 1\n  RET\n  LD V0, 2\n.LOOP JP LOOP")

	_, err := c.Frame()
	if !errors.Is(err, chip8.ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow; have %v", err)
	}

	if !c.Paused() || !errors.Is(c.Fault(), chip8.ErrStackUnderflow) {
		t.Fatal("expected to be paused with the fault")
	}

	frame(t, c)

	if c.VM().Cycles() != 1 {
		t.Fatalf("expected nothing to run while faulted; have %d cycles", c.VM().Cycles())
	}

	// resuming skips the faulting instruction
	c.Resume()
	frame(t, c)

	if c.Fault() != nil || c.VM().V(0) != 2 {
		t.Fatal("expected to continue after the fault")
	}

	// reset restarts the program
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}

	if c.VM().PC() != chip8.ProgramStart || c.VM().V(0) != 0 {
		t.Fatal("expected a reset")
	}

	if m, _ := c.VM().Peek(chip8.ProgramStart); m != 0x60 {
		t.Fatal("expected the program to be reloaded")
	}
}

func TestWaitingEndsFrame(t *testing.T) {
	c := boot(t, "  LD V0, K\n  LD V1, 1")

	frame(t, c)

	if c.VM().Cycles() != 1 || !c.VM().Waiting() {
		t.Fatalf("expected the frame to stop while waiting; have %d cycles", c.VM().Cycles())
	}

	c.VM().PressKey(9)
	frame(t, c)

	if c.VM().V(0) != 9 || c.VM().V(1) != 1 {
		t.Fatal("expected to continue after the key press")
	}
}

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()

	src := filepath.Join(dir, "test.asm")
	if err := os.WriteFile(src, []byte("  CLS\n  BREAK here\n  RET\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := controller.LoadProgram(src)
	if err != nil {
		t.Fatal(err)
	}

	if p.Name != "test.asm" || len(p.ROM) != 4 || len(p.Breakpoints) != 1 {
		t.Fatalf("unexpected program: %+v", p)
	}

	rom := filepath.Join(dir, "test.ch8")
	if err := os.WriteFile(rom, []byte{0x00, 0xE0}, 0o644); err != nil {
		t.Fatal(err)
	}

	if p, err = controller.LoadProgram(rom); err != nil || len(p.ROM) != 2 {
		t.Fatalf("expected a 2 byte rom; have %v, %v", p, err)
	}

	big := filepath.Join(dir, "big.ch8")
	if err := os.WriteFile(big, make([]byte, chip8.MemorySize), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := controller.LoadProgram(big); !errors.Is(err, chip8.ErrLoadTooLarge) {
		t.Fatalf("expected ErrLoadTooLarge; have %v", err)
	}

	bad := filepath.Join(dir, "bad.src")
	if err := os.WriteFile(bad, []byte("  JP NOWHERE"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := controller.LoadProgram(bad); err == nil {
		t.Fatal("expected an assembly error")
	}

	if _, err := controller.LoadProgram(filepath.Join(dir, "missing.ch8")); err == nil {
		t.Fatal("expected a read error")
	}
}
