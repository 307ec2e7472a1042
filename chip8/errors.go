package chip8

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	/// ErrOutOfBounds is returned when an address, register or key index
	/// falls outside of the machine.
	///
	ErrOutOfBounds = errors.New("out of bounds")

	/// ErrStackOverflow is returned by CALL when all 16 stack cells are used.
	///
	ErrStackOverflow = errors.New("stack overflow")

	/// ErrStackUnderflow is returned by RET with an empty stack.
	///
	ErrStackUnderflow = errors.New("stack underflow")

	/// ErrUnknownOpcode is returned when an instruction word doesn't decode.
	///
	ErrUnknownOpcode = errors.New("unknown opcode")

	/// ErrLoadTooLarge is returned when a program doesn't fit in memory.
	///
	ErrLoadTooLarge = errors.New("program too large")
)

/// Fault is a runtime error raised while executing the instruction at PC.
/// It wraps one of the Err* values above.
///
type Fault struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%04X: %04X - %s", f.PC, f.Opcode, f.Err)
}

/// Unwrap returns the underlying error kind.
///
func (f *Fault) Unwrap() error {
	return f.Err
}
