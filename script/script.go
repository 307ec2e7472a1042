// Package script runs Lua scripts against a CHIP-8 virtual machine. It is
// used for headless checks of ROMs: a script steps the program, presses
// keys and inspects registers, memory and the display.
package script

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/octovm/chip8/controller"
)

// Harness binds a controller to a Lua state.
type Harness struct {
	c   *controller.Controller
	out io.Writer

	// budget is the most instructions step may execute in total, or 0.
	budget int64
}

// New creates a harness for a booted controller. Output from print goes
// to out.
func New(c *controller.Controller, out io.Writer) *Harness {
	if out == nil {
		out = io.Discard
	}

	return &Harness{c: c, out: out}
}

// SetBudget limits the total number of instructions a script may execute.
// A script that exceeds it fails. Zero is unlimited.
func (h *Harness) SetBudget(cycles int64) {
	h.budget = cycles
}

// Run executes a script. The context cancels a long running script.
func (h *Harness) Run(ctx context.Context, source, name string) error {
	L := lua.NewState()
	defer L.Close()

	L.SetContext(ctx)

	for fn, impl := range map[string]lua.LGFunction{
		"print":       h.print,
		"step":        h.step,
		"frame":       h.frame,
		"press":       h.press,
		"release":     h.release,
		"tick_timers": h.tickTimers,
		"reg":         h.reg,
		"pc":          h.pc,
		"index":       h.index,
		"pixel":       h.pixel,
		"peek":        h.peek,
		"screen":      h.screen,
		"delay":       h.delay,
		"sound":       h.sound,
		"cycles":      h.cycles,
		"disasm":      h.disasm,
		"reset":       h.reset,
	} {
		L.SetGlobal(fn, L.NewFunction(impl))
	}

	fn, err := L.Load(strings.NewReader(source), name)
	if err != nil {
		return errors.Wrapf(err, "load %s", name)
	}

	L.Push(fn)

	return errors.Wrapf(L.PCall(0, lua.MultRet, nil), "run %s", name)
}

// Run executes a script file against a controller.
func Run(ctx context.Context, c *controller.Controller, source, name string, out io.Writer) error {
	return New(c, out).Run(ctx, source, name)
}

func (h *Harness) print(L *lua.LState) int {
	args := make([]string, L.GetTop())

	for i := range args {
		args[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}

	fmt.Fprintln(h.out, strings.Join(args, "\t"))

	return 0
}

// step(n) executes n instructions, raising an error on a fault.
func (h *Harness) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	vm := h.c.VM()

	for i := 0; i < n; i++ {
		if h.budget > 0 && vm.Cycles() >= h.budget {
			L.RaiseError("cycle budget of %d exhausted", h.budget)
		}

		if err := vm.Step(); err != nil {
			L.RaiseError("%v", err)
		}
	}

	return 0
}

// frame(n) runs n 60 Hz frames, including the timer ticks. Returns true
// if the tone stopped during any of them.
func (h *Harness) frame(L *lua.LState) int {
	n := L.OptInt(1, 1)
	stopped := false

	for i := 0; i < n; i++ {
		s, err := h.c.Frame()
		if err != nil {
			L.RaiseError("%v", err)
		}

		stopped = stopped || s

		if h.budget > 0 && h.c.VM().Cycles() >= h.budget {
			L.RaiseError("cycle budget of %d exhausted", h.budget)
		}
	}

	L.Push(lua.LBool(stopped))

	return 1
}

func (h *Harness) key(L *lua.LState, pressed bool) int {
	if err := h.c.VM().SetKey(L.CheckInt(1), pressed); err != nil {
		L.ArgError(1, err.Error())
	}

	return 0
}

func (h *Harness) press(L *lua.LState) int {
	return h.key(L, true)
}

func (h *Harness) release(L *lua.LState) int {
	return h.key(L, false)
}

// tick_timers(n) counts the timers down n times. Returns true if the tone
// stopped.
func (h *Harness) tickTimers(L *lua.LState) int {
	n := L.OptInt(1, 1)
	stopped := false

	for i := 0; i < n; i++ {
		stopped = h.c.VM().TickTimers() || stopped
	}

	L.Push(lua.LBool(stopped))

	return 1
}

func (h *Harness) reg(L *lua.LState) int {
	x := L.CheckInt(1)
	if x < 0 || x > 0xF {
		L.ArgError(1, "register must be 0-15")
	}

	L.Push(lua.LNumber(h.c.VM().V(x)))

	return 1
}

func (h *Harness) pc(L *lua.LState) int {
	L.Push(lua.LNumber(h.c.VM().PC()))
	return 1
}

func (h *Harness) index(L *lua.LState) int {
	L.Push(lua.LNumber(h.c.VM().I()))
	return 1
}

func (h *Harness) pixel(L *lua.LState) int {
	L.Push(lua.LBool(h.c.VM().Display().Pixel(L.CheckInt(1), L.CheckInt(2))))
	return 1
}

func (h *Harness) peek(L *lua.LState) int {
	b, err := h.c.VM().Peek(L.CheckInt(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}

	L.Push(lua.LNumber(b))

	return 1
}

func (h *Harness) screen(L *lua.LState) int {
	L.Push(lua.LString(h.c.VM().Display().String()))
	return 1
}

func (h *Harness) delay(L *lua.LState) int {
	L.Push(lua.LNumber(h.c.VM().DelayTimer()))
	return 1
}

func (h *Harness) sound(L *lua.LState) int {
	L.Push(lua.LNumber(h.c.VM().SoundTimer()))
	return 1
}

func (h *Harness) cycles(L *lua.LState) int {
	L.Push(lua.LNumber(h.c.VM().Cycles()))
	return 1
}

// disasm(addr) disassembles the instruction at addr, defaulting to PC.
func (h *Harness) disasm(L *lua.LState) int {
	vm := h.c.VM()
	L.Push(lua.LString(vm.Disassemble(L.OptInt(1, int(vm.PC())))))

	return 1
}

func (h *Harness) reset(L *lua.LState) int {
	if err := h.c.Reset(); err != nil {
		L.RaiseError("%v", err)
	}

	return 0
}
