package main

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/octovm/chip8/chip8"
)

const (
	/// Number of lines of the log shown.
	///
	LogLines = 8

	/// Size of the register and log panels below the screen.
	///
	PanelH = LogLines*CharH + 8
	RegW   = 34 * CharW

	/// Width of the disassembly panel.
	///
	AsmW = 28*CharW + 8
)

var (
	/// Current debug window address.
	///
	Address int
)

/// WindowSize returns the size of the window for a screen scale.
///
func WindowSize(scale int) (int32, int32) {
	w := int32(chip8.Width*scale) + AsmW + 30
	h := int32(chip8.Height*scale) + PanelH + 30

	// leave room for the log
	if w < RegW+320 {
		w = RegW + 320
	}

	return w, h
}

/// Refresh redraws the whole window.
///
func Refresh() {
	sw, sh := int32(chip8.Width*Cfg.Scale), int32(chip8.Height*Cfg.Scale)
	ww, _ := WindowSize(Cfg.Scale)

	Renderer.SetDrawColor(32, 42, 53, 255)
	Renderer.Clear()

	// frame various portions of the app
	Frame(8, 8, sw+4, sh+4)
	Frame(sw+22, 8, ww-sw-30, sh+4)
	Frame(8, sh+22, RegW, PanelH)
	Frame(RegW+16, sh+22, ww-RegW-24, PanelH)

	// update the video screen and copy it
	RefreshScreen(Ctl.VM().Display())
	CopyScreen(10, 10, sw, sh)

	// debug assembly, registers and log
	DebugAssembly(sw+26, 12, ww-sw-34, int(sh-4)/CharH)
	DebugRegisters(12, sh+26)
	DebugLog(RegW+20, sh+26, int(ww-RegW-32)/CharW)

	// show the new frame
	Renderer.Present()
}

/// Frame draws a beveled border.
///
func Frame(x, y, w, h int32) {
	Renderer.SetDrawColor(0, 0, 0, 255)
	Renderer.DrawLine(x, y, x+w, y)
	Renderer.DrawLine(x, y, x, y+h)

	// highlight
	Renderer.SetDrawColor(95, 112, 120, 255)
	Renderer.DrawLine(x+w, y, x+w, y+h)
	Renderer.DrawLine(x, y+h, x+w, y+h)
}

/// Show the HELP text in the log.
///
func DebugHelp() {
	Console.Logln("Virtual keys:")
	Console.Log("  1-2-3-4")
	Console.Log("  Q-W-E-R")
	Console.Log("  A-S-D-F")
	Console.Log("  Z-X-C-V")
	Console.Logln("Emulation keys:")
	Console.Log("  ESC       - Quit")
	Console.Log("  BS        - Reset (CTRL paused)")
	Console.Log("  [ ]       - Slower/faster")
	Console.Log("  Up/Dn     - Scroll log")
	Console.Log("  H/F1      - Help")
	Console.Log("  F3        - Load ROM")
	Console.Log("  F5/SPACE  - Pause")
	Console.Log("  F6/F10    - Step")
	Console.Log("  F7        - Step over")
	Console.Log("  F8        - Dump memory at I")
	Console.Log("  F9        - Toggle breakpoint")
	Console.Log("  F11       - Copy display")
	Console.Log("  F12       - Screenshot")
}

/// DebugAssembly renders the disassembled instructions around the
/// CHIP-8 program counter.
///
func DebugAssembly(x, y, w int32, lines int) {
	vm := Ctl.VM()
	pc := int(vm.PC())

	// keep the window on the program counter
	if pc < Address || pc >= Address+2*lines || (Address^pc)&1 == 1 {
		Address = pc - 2
	}

	if Address < 0 {
		Address = pc & 1
	}

	// show the disassembled instructions
	for i := 0; i < lines; i++ {
		addr := Address + i*2
		row := y + int32(i*CharH)

		if addr == pc {
			switch {
			case Ctl.Fault() != nil:
				Renderer.SetDrawColor(176, 32, 57, 255)
			case Ctl.Paused():
				Renderer.SetDrawColor(176, 122, 32, 255)
			default:
				Renderer.SetDrawColor(57, 102, 176, 255)
			}

			// highlight the current instruction
			Renderer.FillRect(&sdl.Rect{X: x - 2, Y: row, W: w, H: CharH})
		}

		mark := " "
		if Ctl.IsBreakpoint(uint16(addr)) {
			mark = "*"
		}

		DrawText(mark+vm.Disassemble(addr), x, row)
	}
}

/// Show the current value of all the CHIP-8 registers.
///
func DebugRegisters(x, y int32) {
	vm := Ctl.VM()
	v := vm.Registers()

	for i := 0; i < 8; i++ {
		row := y + int32(i*CharH)

		DrawText(fmt.Sprintf("V%X #%02X", i, v[i]), x, row)
		DrawText(fmt.Sprintf("V%X #%02X", i+8, v[i+8]), x+10*CharW, row)
	}

	// shift over for the other registers
	x += 20 * CharW

	DrawText(fmt.Sprintf("PC #%04X", vm.PC()), x, y)
	DrawText(fmt.Sprintf("SP #%02X", vm.SP()), x, y+CharH)
	DrawText(fmt.Sprintf("I  #%04X", vm.I()), x, y+2*CharH)
	DrawText(fmt.Sprintf("DT #%02X", vm.DelayTimer()), x, y+3*CharH)
	DrawText(fmt.Sprintf("ST #%02X", vm.SoundTimer()), x, y+4*CharH)
	DrawText(fmt.Sprintf("%d Hz", Ctl.Speed()), x, y+6*CharH)
	DrawText(State(), x, y+7*CharH)
}

/// State describes what the emulator is doing.
///
func State() string {
	switch {
	case Ctl.Fault() != nil:
		return "FAULT"
	case Ctl.Paused():
		return "PAUSED"
	case Ctl.VM().Waiting():
		return "KEY?"
	case Ctl.Program() == nil:
		return "NO ROM"
	default:
		return "RUN"
	}
}

/// Show the current log text.
///
func DebugLog(x, y int32, width int) {
	for _, line := range Console.Window(LogLines) {
		if len(line) > width && width > 3 {
			line = line[:width-3] + "..."
		}

		DrawText(line, x, y)

		// advance to the next line
		y += CharH
	}
}

/// DebugMemory logs the 16 bytes of memory at I.
///
func DebugMemory() {
	vm := Ctl.VM()

	Console.Log(HexDump(vm.Memory(), int(vm.I()), 16))
}

/// HexDump formats n bytes of mem starting at address, stopping at the
/// end of memory.
///
func HexDump(mem []byte, address, n int) string {
	if address >= len(mem) {
		return fmt.Sprintf("%04X -", address)
	}

	end := min(address+n, len(mem))
	bytes := make([]string, 0, n)

	for _, b := range mem[address:end] {
		bytes = append(bytes, fmt.Sprintf("%02X", b))
	}

	return fmt.Sprintf("%04X - %s", address, strings.Join(bytes, " "))
}
