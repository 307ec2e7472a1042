package controller

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/octovm/chip8/chip8"
)

const (
	// FrameRate is how often Frame should be called, and the rate the
	// timers count down at.
	FrameRate = 60

	// DefaultSpeed is instructions per second. The RCA 1802 interpreted
	// roughly 500 CHIP-8 instructions per second.
	DefaultSpeed = 500

	// MinSpeed and MaxSpeed bound IncSpeed and DecSpeed.
	MinSpeed = 60
	MaxSpeed = 6000
)

// Controller runs a CHIP-8 virtual machine in 60 Hz frames and adds the
// debugger features a host needs: pause, single step, breakpoints and
// fault handling. It is used from a single goroutine.
type Controller struct {
	vm      *chip8.VM
	program *Program
	log     *slog.Logger

	// breakpoints maps addresses to the reason for breaking there.
	breakpoints map[uint16]string

	// over is a temporary breakpoint set by StepOver.
	over int

	// resumed is set when resuming from a breakpoint so that it doesn't
	// trigger again before the instruction executes.
	resumed bool

	paused bool
	speed  int

	// budget accumulates fractional instructions between frames.
	budget int

	// fault is the last error raised by the VM.
	fault error
}

// New creates a controller for a virtual machine.
func New(vm *chip8.VM, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}

	return &Controller{
		vm:          vm,
		log:         log,
		breakpoints: make(map[uint16]string),
		over:        -1,
		speed:       DefaultSpeed,
	}
}

// VM returns the virtual machine being controlled.
func (c *Controller) VM() *chip8.VM {
	return c.vm
}

// Program returns the loaded program, or nil.
func (c *Controller) Program() *Program {
	return c.program
}

// Boot loads a program and resets the virtual machine to run it. Any
// breakpoints from the previous program are replaced by the new one's.
func (c *Controller) Boot(p *Program) error {
	c.program = p
	c.breakpoints = make(map[uint16]string)

	for _, bp := range p.Breakpoints {
		c.breakpoints[uint16(bp.Address)] = bp.Reason
	}

	c.log.Info("boot", "rom", p.Name, "size", len(p.ROM), "breakpoints", len(p.Breakpoints))

	return c.Reset()
}

// Reset restarts the loaded program from the beginning.
func (c *Controller) Reset() error {
	c.vm.Reset()
	c.fault = nil
	c.over = -1
	c.resumed = false
	c.budget = 0

	if c.program == nil {
		return nil
	}

	return errors.Wrapf(c.vm.Load(c.program.ROM), "boot %s", c.program.Name)
}

// Paused is true if emulation is stopped.
func (c *Controller) Paused() bool {
	return c.paused
}

// Pause stops emulation.
func (c *Controller) Pause() {
	if !c.paused {
		c.paused = true
		c.log.Info("paused", "pc", fmt.Sprintf("%04X", c.vm.PC()))
	}
}

// Resume continues emulation.
func (c *Controller) Resume() {
	if c.paused {
		c.paused = false
		c.resumed = true
		c.fault = nil
		c.log.Info("resumed", "pc", fmt.Sprintf("%04X", c.vm.PC()))
	}
}

// TogglePause pauses or resumes emulation.
func (c *Controller) TogglePause() {
	if c.paused {
		c.Resume()
	} else {
		c.Pause()
	}
}

// Fault returns the error that last stopped emulation, if any.
func (c *Controller) Fault() error {
	return c.fault
}

// Speed returns the number of instructions executed per second.
func (c *Controller) Speed() int {
	return c.speed
}

// SetSpeed sets the number of instructions per second, within limits.
func (c *Controller) SetSpeed(speed int) {
	if speed < MinSpeed {
		speed = MinSpeed
	}

	if speed > MaxSpeed {
		speed = MaxSpeed
	}

	c.speed = speed
}

// IncSpeed doubles emulation speed.
func (c *Controller) IncSpeed() {
	c.SetSpeed(c.speed * 2)
	c.log.Info("speed", "hz", c.speed)
}

// DecSpeed halves emulation speed.
func (c *Controller) DecSpeed() {
	c.SetSpeed(c.speed / 2)
	c.log.Info("speed", "hz", c.speed)
}

// ToggleBreakpoint sets or clears a breakpoint at the program counter.
func (c *Controller) ToggleBreakpoint() {
	pc := c.vm.PC()

	if _, ok := c.breakpoints[pc]; ok {
		delete(c.breakpoints, pc)
		c.log.Info("breakpoint cleared", "pc", fmt.Sprintf("%04X", pc))
	} else {
		c.breakpoints[pc] = "user"
		c.log.Info("breakpoint set", "pc", fmt.Sprintf("%04X", pc))
	}
}

// Breakpoints returns the addresses of all breakpoints in order.
func (c *Controller) Breakpoints() []uint16 {
	addrs := make([]uint16, 0, len(c.breakpoints))

	for addr := range c.breakpoints {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	return addrs
}

// IsBreakpoint is true if there is a breakpoint at address.
func (c *Controller) IsBreakpoint(address uint16) bool {
	_, ok := c.breakpoints[address]
	return ok
}

// Step executes a single instruction while paused.
func (c *Controller) Step() error {
	if !c.paused {
		return nil
	}

	c.fault = nil

	return c.exec()
}

// StepOver runs a CALL until it returns, or steps any other instruction.
func (c *Controller) StepOver() error {
	if !c.paused {
		return nil
	}

	c.fault = nil

	word := c.word(int(c.vm.PC()))

	if inst, err := chip8.Decode(word); err == nil && inst.Op == chip8.OpCALL {
		c.over = int(c.vm.PC()) + 2
		c.Resume()
		return nil
	}

	return c.exec()
}

// word reads the instruction word at address.
func (c *Controller) word(address int) uint16 {
	hi, _ := c.vm.Peek(address)
	lo, _ := c.vm.Peek(address + 1)

	return uint16(hi)<<8 | uint16(lo)
}

// exec steps the VM, pausing and recording any fault.
func (c *Controller) exec() error {
	if err := c.vm.Step(); err != nil {
		c.fault = err
		c.paused = true
		c.log.Error("fault", "err", err)

		return err
	}

	return nil
}

// Frame runs one 60th of a second of emulation: as many instructions as
// the speed allows, followed by a timer tick. It returns true if the tone
// should stop. Nothing runs while paused or faulted.
func (c *Controller) Frame() (toneStopped bool, err error) {
	if c.paused || c.fault != nil {
		return false, nil
	}

	c.budget += c.speed

	for ; c.budget >= FrameRate; c.budget -= FrameRate {
		if c.checkBreakpoint() {
			c.budget = 0
			return false, nil
		}

		if err := c.exec(); err != nil {
			c.budget = 0
			return false, err
		}

		// no point spinning while waiting for a key
		if c.vm.Waiting() {
			c.budget = 0
			break
		}
	}

	return c.vm.TickTimers(), nil
}

// checkBreakpoint pauses at a breakpoint before it executes.
func (c *Controller) checkBreakpoint() bool {
	pc := c.vm.PC()

	if c.resumed {
		c.resumed = false
		return false
	}

	if int(pc) == c.over {
		c.over = -1
		c.paused = true
		c.log.Info("step over", "pc", fmt.Sprintf("%04X", pc))

		return true
	}

	if reason, ok := c.breakpoints[pc]; ok {
		c.paused = true
		c.log.Info("break", "pc", fmt.Sprintf("%04X", pc), "reason", reason)

		return true
	}

	return false
}
