package chip8

import (
	"fmt"

	"github.com/pkg/errors"
)

/// execute a decoded instruction.
///
func (vm *VM) execute(inst Instruction) error {
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OpNOP:
	case OpCLS:
		vm.cls()
	case OpRET:
		return vm.ret()
	case OpJP:
		vm.jump(inst.NNN)
	case OpCALL:
		return vm.call(inst.NNN)
	case OpSEByte:
		vm.skipIf(x, inst.NN)
	case OpSNEByte:
		vm.skipIfNot(x, inst.NN)
	case OpSEReg:
		vm.skipIfXY(x, y)
	case OpLDByte:
		vm.loadX(x, inst.NN)
	case OpADDByte:
		vm.addX(x, inst.NN)
	case OpLDReg:
		vm.loadXY(x, y)
	case OpOR:
		vm.or(x, y)
	case OpAND:
		vm.and(x, y)
	case OpXOR:
		vm.xor(x, y)
	case OpADDReg:
		vm.addXY(x, y)
	case OpSUB:
		vm.subXY(x, y)
	case OpSHR:
		vm.shr(x)
	case OpSUBN:
		vm.subYX(x, y)
	case OpSHL:
		vm.shl(x)
	case OpSNEReg:
		vm.skipIfNotXY(x, y)
	case OpLDI:
		vm.loadI(inst.NNN)
	case OpJPV0:
		vm.jumpV0(inst.NNN)
	case OpRND:
		vm.rnd(x, inst.NN)
	case OpDRW:
		return vm.drw(x, y, inst.N)
	case OpSKP:
		return vm.skipIfPressed(x)
	case OpSKNP:
		return vm.skipIfNotPressed(x)
	case OpLDVDT:
		vm.loadXDT(x)
	case OpLDVK:
		vm.loadXK(x)
	case OpLDDTV:
		vm.loadDTX(x)
	case OpLDSTV:
		vm.loadSTX(x)
	case OpADDI:
		vm.addIX(x)
	case OpLDF:
		vm.loadF(x)
	case OpLDB:
		return vm.loadB(x)
	case OpSTORE:
		return vm.saveRegs(x)
	case OpRESTORE:
		return vm.loadRegs(x)
	default:
		return errors.Wrapf(ErrUnknownOpcode, "#%04X", inst.Word)
	}

	return nil
}

/// span checks that n bytes starting at I are in memory.
///
func (vm *VM) span(n int) error {
	if int(vm.i)+n > MemorySize {
		return errors.Wrapf(ErrOutOfBounds, "%d bytes at I=#%04X", n, vm.i)
	}

	return nil
}

func hex4(n uint16) string {
	return fmt.Sprintf("%04X", n)
}

/// clear the video display memory.
///
func (vm *VM) cls() {
	vm.video = [Width * Height]bool{}
}

/// call a subroutine at address.
///
func (vm *VM) call(address uint16) error {
	if vm.sp >= StackDepth {
		return errors.Wrapf(ErrStackOverflow, "call #%03X", address)
	}

	vm.stack[vm.sp] = vm.pc
	vm.sp++

	// jump to address
	vm.pc = address

	return nil
}

/// return from subroutine.
///
func (vm *VM) ret() error {
	if vm.sp == 0 {
		return ErrStackUnderflow
	}

	vm.sp--
	vm.pc = vm.stack[vm.sp]

	return nil
}

/// jump to address.
///
func (vm *VM) jump(address uint16) {
	vm.pc = address
}

/// jump to address + v0.
///
func (vm *VM) jumpV0(address uint16) {
	vm.pc = address + uint16(vm.v[0])
}

/// skip next instruction if vx == n.
///
func (vm *VM) skipIf(x, b byte) {
	if vm.v[x] == b {
		vm.pc += 2
	}
}

/// skip next instruction if vx != n.
///
func (vm *VM) skipIfNot(x, b byte) {
	if vm.v[x] != b {
		vm.pc += 2
	}
}

/// skip next instruction if vx == vy.
///
func (vm *VM) skipIfXY(x, y byte) {
	if vm.v[x] == vm.v[y] {
		vm.pc += 2
	}
}

/// skip next instruction if vx != vy.
///
func (vm *VM) skipIfNotXY(x, y byte) {
	if vm.v[x] != vm.v[y] {
		vm.pc += 2
	}
}

/// key returns the pressed state of the key named by vx.
///
func (vm *VM) key(x byte) (bool, error) {
	k := vm.v[x]
	if int(k) >= KeyCount {
		return false, errors.Wrapf(ErrOutOfBounds, "key V%X=#%02X", x, k)
	}

	return vm.keys[k], nil
}

/// skip next instruction if key(vx) is pressed.
///
func (vm *VM) skipIfPressed(x byte) error {
	down, err := vm.key(x)
	if err != nil {
		return err
	}

	if down {
		vm.pc += 2
	}

	return nil
}

/// skip next instruction if key(vx) is not pressed.
///
func (vm *VM) skipIfNotPressed(x byte) error {
	down, err := vm.key(x)
	if err != nil {
		return err
	}

	if !down {
		vm.pc += 2
	}

	return nil
}

/// load n into vx.
///
func (vm *VM) loadX(x, b byte) {
	vm.v[x] = b
}

/// load vy into vx.
///
func (vm *VM) loadXY(x, y byte) {
	vm.v[x] = vm.v[y]
}

/// load delay timer into vx.
///
func (vm *VM) loadXDT(x byte) {
	vm.v[x] = vm.dt
}

/// load vx into delay timer.
///
func (vm *VM) loadDTX(x byte) {
	vm.dt = vm.v[x]
}

/// load vx into sound timer.
///
func (vm *VM) loadSTX(x byte) {
	vm.st = vm.v[x]
}

/// load vx with the lowest key pressed. With no key down the program counter
/// is rewound so this instruction runs again on the next step.
///
func (vm *VM) loadXK(x byte) {
	for k, down := range vm.keys {
		if down {
			vm.v[x] = byte(k)
			return
		}
	}

	vm.pc -= 2
	vm.waiting = true
}

/// load address register.
///
func (vm *VM) loadI(address uint16) {
	vm.i = address
}

/// store the BCD of vx at I, I+1 and I+2.
///
func (vm *VM) loadB(x byte) error {
	if err := vm.span(3); err != nil {
		return err
	}

	n := vm.v[x]

	vm.memory[vm.i+0] = n / 100
	vm.memory[vm.i+1] = n / 10 % 10
	vm.memory[vm.i+2] = n % 10

	return nil
}

/// load font sprite for vx into I.
///
func (vm *VM) loadF(x byte) {
	vm.i = uint16(vm.v[x]) * GlyphSize
}

/// or vx with vy into vx.
///
func (vm *VM) or(x, y byte) {
	vm.v[x] |= vm.v[y]
}

/// and vx with vy into vx.
///
func (vm *VM) and(x, y byte) {
	vm.v[x] &= vm.v[y]
}

/// xor vx with vy into vx.
///
func (vm *VM) xor(x, y byte) {
	vm.v[x] ^= vm.v[y]
}

/// shl vx 1 bit, set carry to MSB of vx before shift.
///
func (vm *VM) shl(x byte) {
	carry := vm.v[x] >> 7

	vm.v[x] <<= 1
	vm.v[0xF] = carry
}

/// shr vx 1 bit, set carry to LSB of vx before shift.
///
func (vm *VM) shr(x byte) {
	carry := vm.v[x] & 1

	vm.v[x] >>= 1
	vm.v[0xF] = carry
}

/// add n to vx, no carry.
///
func (vm *VM) addX(x, b byte) {
	vm.v[x] += b
}

/// add vy to vx and set carry.
///
func (vm *VM) addXY(x, y byte) {
	sum := uint16(vm.v[x]) + uint16(vm.v[y])

	vm.v[x] = byte(sum)
	vm.v[0xF] = byte(sum >> 8)
}

/// add vx to i.
///
func (vm *VM) addIX(x byte) {
	vm.i += uint16(vm.v[x])
}

/// subtract vy from vx, set carry if no borrow.
///
func (vm *VM) subXY(x, y byte) {
	carry := flag(vm.v[x] >= vm.v[y])

	vm.v[x] -= vm.v[y]
	vm.v[0xF] = carry
}

/// subtract vx from vy and store in vx, set carry if no borrow.
///
func (vm *VM) subYX(x, y byte) {
	carry := flag(vm.v[y] >= vm.v[x])

	vm.v[x] = vm.v[y] - vm.v[x]
	vm.v[0xF] = carry
}

/// load a random number & n into vx.
///
func (vm *VM) rnd(x, b byte) {
	vm.v[x] = byte(vm.rng.Uint32()) & b
}

/// draw an n byte sprite at I to video memory at vx, vy. Pixels are XOR'd
/// onto the display and wrap around the edges. VF is set if any pixel that
/// was lit got turned off.
///
func (vm *VM) drw(x, y, n byte) error {
	if err := vm.span(int(n)); err != nil {
		return err
	}

	ox := int(vm.v[x])
	oy := int(vm.v[y])

	collision := false

	// draw each row of the sprite
	for row, s := range vm.memory[vm.i : vm.i+uint16(n)] {
		py := (oy + row) % Height

		for col := 0; col < 8; col++ {
			if s&(0x80>>col) == 0 {
				continue
			}

			p := (ox+col)%Width + Width*py

			// was the pixel lit before being flipped?
			if vm.video[p] {
				collision = true
			}

			vm.video[p] = !vm.video[p]
		}
	}

	vm.v[0xF] = flag(collision)

	return nil
}

/// save registers v0..vx to I.
///
func (vm *VM) saveRegs(x byte) error {
	if err := vm.span(int(x) + 1); err != nil {
		return err
	}

	copy(vm.memory[vm.i:], vm.v[:x+1])

	return nil
}

/// load registers v0..vx from I.
///
func (vm *VM) loadRegs(x byte) error {
	if err := vm.span(int(x) + 1); err != nil {
		return err
	}

	copy(vm.v[:x+1], vm.memory[vm.i:])

	return nil
}

func flag(b bool) byte {
	if b {
		return 1
	}

	return 0
}
