package chip8

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	/// MemorySize is the number of addressable bytes.
	///
	MemorySize = 0x1000

	/// ProgramStart is where programs are loaded and execution begins. The
	/// bytes below it are reserved for the interpreter and the font.
	///
	ProgramStart = 0x200

	/// StackDepth is how many return addresses CALL can nest.
	///
	StackDepth = 16

	/// KeyCount is the number of keys on the hex keypad.
	///
	KeyCount = 16
)

/// VM is a CHIP-8 virtual machine. It is not safe for concurrent use; the
/// host serializes Step, TickTimers, SetKey and Display reads.
///
type VM struct {
	/// memory holds the font at 0x000 and the program from 0x200.
	///
	memory [MemorySize]byte

	/// video is the 64x32 display, row-major, true is lit.
	///
	video [Width * Height]bool

	/// pc is the program counter.
	///
	pc uint16

	/// sp is the number of return addresses on the stack.
	///
	sp uint16

	/// stack holds the return addresses pushed by CALL.
	///
	stack [StackDepth]uint16

	/// i is the address register.
	///
	i uint16

	/// v are the 16 virtual registers. VF is the flag register.
	///
	v [16]byte

	/// keys hold the current state for the 16-key pad.
	///
	keys [KeyCount]bool

	/// dt and st are the delay and sound timers, in 60 Hz ticks.
	///
	dt byte
	st byte

	/// cycles is how many instructions were executed since reset.
	///
	cycles int64

	/// waiting is true while LD Vx, K is spinning for a key.
	///
	waiting bool

	pcg *rand.PCG
	rng *rand.Rand
	log *slog.Logger
}

/// New returns a reset virtual machine with the font loaded and nothing else.
///
func New() *VM {
	pcg := rand.NewPCG(uint64(time.Now().UnixNano()), 0)

	vm := &VM{
		pcg: pcg,
		rng: rand.New(pcg),
		log: slog.Default(),
	}

	vm.Reset()

	return vm
}

/// Reset clears all memory, registers, timers, keys and video. Only the font
/// survives, so a program has to be loaded again after reset.
///
func (vm *VM) Reset() {
	vm.memory = [MemorySize]byte{}
	copy(vm.memory[:], Font[:])

	vm.video = [Width * Height]bool{}
	vm.keys = [KeyCount]bool{}
	vm.stack = [StackDepth]uint16{}
	vm.v = [16]byte{}

	vm.pc = ProgramStart
	vm.sp = 0
	vm.i = 0
	vm.dt = 0
	vm.st = 0

	vm.cycles = 0
	vm.waiting = false
}

/// Seed makes the RND instruction deterministic.
///
func (vm *VM) Seed(seed uint64) {
	vm.pcg.Seed(seed, 0)
}

/// SetLogger replaces the logger used for instruction tracing.
///
func (vm *VM) SetLogger(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}

	vm.log = log
}

/// Load copies a program into memory at ProgramStart.
///
func (vm *VM) Load(program []byte) error {
	if len(program) > MemorySize-ProgramStart {
		return errors.Wrapf(ErrLoadTooLarge, "%d bytes, only %d available", len(program), MemorySize-ProgramStart)
	}

	copy(vm.memory[ProgramStart:], program)

	vm.log.Info("load program", "at", "#200", "n", len(program))

	return nil
}

/// LoadFile reads a ROM file and loads it.
///
func (vm *VM) LoadFile(file string) error {
	program, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrapf(err, "read %s", file)
	}

	return errors.Wrapf(vm.Load(program), "load %s", file)
}

/// Step executes a single instruction. Any error returned is a *Fault. The
/// program counter is already past the faulting word, so calling Step again
/// skips it.
///
func (vm *VM) Step() error {
	pc := vm.pc

	// not waiting unless LD Vx, K says so
	vm.waiting = false

	word, err := vm.fetch()
	if err != nil {
		return &Fault{PC: pc, Err: err}
	}

	inst, err := Decode(word)
	if err == nil {
		if vm.log.Enabled(context.Background(), slog.LevelDebug) {
			vm.log.Debug("exec", "pc", hex4(pc), "opcode", hex4(word), "inst", inst.String())
		}

		err = vm.execute(inst)
	}

	if err != nil {
		return &Fault{PC: pc, Opcode: word, Err: err}
	}

	vm.cycles++

	return nil
}

/// fetch the next 16-bit, big-endian instruction and advance the program
/// counter past it.
///
func (vm *VM) fetch() (uint16, error) {
	if int(vm.pc)+1 >= MemorySize {
		return 0, errors.Wrapf(ErrOutOfBounds, "fetch at #%04X", vm.pc)
	}

	i := vm.pc

	// advance the program counter
	vm.pc += 2

	return uint16(vm.memory[i])<<8 | uint16(vm.memory[i+1]), nil
}

/// TickTimers counts both timers down by one, stopping at zero. Call it at
/// 60 Hz. It returns true when the sound timer just expired and the tone
/// should stop.
///
func (vm *VM) TickTimers() bool {
	if vm.dt > 0 {
		vm.dt--
	}

	if vm.st > 0 {
		vm.st--

		return vm.st == 0
	}

	return false
}

/// Beeping is true while the sound timer is running.
///
func (vm *VM) Beeping() bool {
	return vm.st > 0
}

/// SetKey updates the pressed state of a keypad key.
///
func (vm *VM) SetKey(key int, pressed bool) error {
	if key < 0 || key >= KeyCount {
		return errors.Wrapf(ErrOutOfBounds, "key %d", key)
	}

	vm.keys[key] = pressed

	return nil
}

/// PressKey emulates a CHIP-8 key being pressed. Invalid keys are ignored.
///
func (vm *VM) PressKey(key uint) {
	_ = vm.SetKey(int(key), true)
}

/// ReleaseKey emulates a CHIP-8 key being released. Invalid keys are ignored.
///
func (vm *VM) ReleaseKey(key uint) {
	_ = vm.SetKey(int(key), false)
}

/// Keys returns the state of the keypad.
///
func (vm *VM) Keys() [KeyCount]bool {
	return vm.keys
}

/// Display returns a read-only view of video memory.
///
func (vm *VM) Display() Display {
	return Display{buf: &vm.video}
}

/// PC returns the program counter.
///
func (vm *VM) PC() uint16 {
	return vm.pc
}

/// I returns the address register.
///
func (vm *VM) I() uint16 {
	return vm.i
}

/// SP returns the number of return addresses on the stack.
///
func (vm *VM) SP() int {
	return int(vm.sp)
}

/// Stack returns the return addresses in use, oldest first.
///
func (vm *VM) Stack() []uint16 {
	return append([]uint16(nil), vm.stack[:vm.sp]...)
}

/// V returns register Vx. Only the low nibble of x is used.
///
func (vm *VM) V(x int) byte {
	return vm.v[x&0xF]
}

/// Registers returns a copy of V0-VF.
///
func (vm *VM) Registers() [16]byte {
	return vm.v
}

/// DelayTimer returns the delay timer register.
///
func (vm *VM) DelayTimer() byte {
	return vm.dt
}

/// SoundTimer returns the sound timer register.
///
func (vm *VM) SoundTimer() byte {
	return vm.st
}

/// Cycles returns the number of instructions executed since reset.
///
func (vm *VM) Cycles() int64 {
	return vm.cycles
}

/// Waiting is true if the last instruction was LD Vx, K and no key was down.
///
func (vm *VM) Waiting() bool {
	return vm.waiting
}

/// Memory returns a copy of all memory.
///
func (vm *VM) Memory() []byte {
	return append([]byte(nil), vm.memory[:]...)
}

/// Peek returns the byte at address.
///
func (vm *VM) Peek(address int) (byte, error) {
	if address < 0 || address >= MemorySize {
		return 0, errors.Wrapf(ErrOutOfBounds, "peek at #%04X", address)
	}

	return vm.memory[address], nil
}
