package chip8

import (
	"fmt"

	"github.com/pkg/errors"
)

/// Op identifies a decoded CHIP-8 instruction.
///
type Op uint8

/// All the instructions understood by the VM. Names follow the assembler
/// mnemonics and operand forms.
///
const (
	OpNOP     Op = iota // 0000
	OpCLS               // 00E0
	OpRET               // 00EE
	OpJP                // 1NNN
	OpCALL              // 2NNN
	OpSEByte            // 3XNN
	OpSNEByte           // 4XNN
	OpSEReg             // 5XY0
	OpLDByte            // 6XNN
	OpADDByte           // 7XNN
	OpLDReg             // 8XY0
	OpOR                // 8XY1
	OpAND               // 8XY2
	OpXOR               // 8XY3
	OpADDReg            // 8XY4
	OpSUB               // 8XY5
	OpSHR               // 8XY6
	OpSUBN              // 8XY7
	OpSHL               // 8XYE
	OpSNEReg            // 9XY0
	OpLDI               // ANNN
	OpJPV0              // BNNN
	OpRND               // CXNN
	OpDRW               // DXYN
	OpSKP               // EX9E
	OpSKNP              // EXA1
	OpLDVDT             // FX07
	OpLDVK              // FX0A
	OpLDDTV             // FX15
	OpLDSTV             // FX18
	OpADDI              // FX1E
	OpLDF               // FX29
	OpLDB               // FX33
	OpSTORE             // FX55
	OpRESTORE           // FX65
)

/// Instruction is a decoded 16-bit instruction word.
///
type Instruction struct {
	Op Op

	/// X and Y are register operands, N is the low nibble (sprite height).
	///
	X, Y, N uint8

	/// NN is the low byte, NNN the low 12 bits.
	///
	NN  uint8
	NNN uint16

	/// Word is the raw instruction.
	///
	Word uint16
}

/// Decode splits an instruction word into its nibbles and matches them
/// against the instruction set. Words that match nothing return an error
/// wrapping ErrUnknownOpcode.
///
func Decode(word uint16) (Instruction, error) {
	d1 := uint8(word >> 12)
	d2 := uint8(word>>8) & 0xF
	d3 := uint8(word>>4) & 0xF
	d4 := uint8(word) & 0xF

	inst := Instruction{
		X:    d2,
		Y:    d3,
		N:    d4,
		NN:   uint8(word),
		NNN:  word & 0xFFF,
		Word: word,
	}

	switch d1 {
	case 0x0:
		switch word {
		case 0x0000:
			inst.Op = OpNOP
		case 0x00E0:
			inst.Op = OpCLS
		case 0x00EE:
			inst.Op = OpRET
		default:
			return inst, unknown(word)
		}
	case 0x1:
		inst.Op = OpJP
	case 0x2:
		inst.Op = OpCALL
	case 0x3:
		inst.Op = OpSEByte
	case 0x4:
		inst.Op = OpSNEByte
	case 0x5:
		if d4 != 0 {
			return inst, unknown(word)
		}
		inst.Op = OpSEReg
	case 0x6:
		inst.Op = OpLDByte
	case 0x7:
		inst.Op = OpADDByte
	case 0x8:
		switch d4 {
		case 0x0:
			inst.Op = OpLDReg
		case 0x1:
			inst.Op = OpOR
		case 0x2:
			inst.Op = OpAND
		case 0x3:
			inst.Op = OpXOR
		case 0x4:
			inst.Op = OpADDReg
		case 0x5:
			inst.Op = OpSUB
		case 0x6:
			inst.Op = OpSHR
		case 0x7:
			inst.Op = OpSUBN
		case 0xE:
			inst.Op = OpSHL
		default:
			return inst, unknown(word)
		}
	case 0x9:
		if d4 != 0 {
			return inst, unknown(word)
		}
		inst.Op = OpSNEReg
	case 0xA:
		inst.Op = OpLDI
	case 0xB:
		inst.Op = OpJPV0
	case 0xC:
		inst.Op = OpRND
	case 0xD:
		inst.Op = OpDRW
	case 0xE:
		switch inst.NN {
		case 0x9E:
			inst.Op = OpSKP
		case 0xA1:
			inst.Op = OpSKNP
		default:
			return inst, unknown(word)
		}
	case 0xF:
		switch inst.NN {
		case 0x07:
			inst.Op = OpLDVDT
		case 0x0A:
			inst.Op = OpLDVK
		case 0x15:
			inst.Op = OpLDDTV
		case 0x18:
			inst.Op = OpLDSTV
		case 0x1E:
			inst.Op = OpADDI
		case 0x29:
			inst.Op = OpLDF
		case 0x33:
			inst.Op = OpLDB
		case 0x55:
			inst.Op = OpSTORE
		case 0x65:
			inst.Op = OpRESTORE
		default:
			return inst, unknown(word)
		}
	}

	return inst, nil
}

func unknown(word uint16) error {
	return errors.Wrapf(ErrUnknownOpcode, "#%04X", word)
}

/// String returns the assembly for the instruction.
///
func (inst Instruction) String() string {
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OpNOP:
		return "NOP"
	case OpCLS:
		return "CLS"
	case OpRET:
		return "RET"
	case OpJP:
		return fmt.Sprintf("JP     #%03X", inst.NNN)
	case OpCALL:
		return fmt.Sprintf("CALL   #%03X", inst.NNN)
	case OpSEByte:
		return fmt.Sprintf("SE     V%X, #%02X", x, inst.NN)
	case OpSNEByte:
		return fmt.Sprintf("SNE    V%X, #%02X", x, inst.NN)
	case OpSEReg:
		return fmt.Sprintf("SE     V%X, V%X", x, y)
	case OpLDByte:
		return fmt.Sprintf("LD     V%X, #%02X", x, inst.NN)
	case OpADDByte:
		return fmt.Sprintf("ADD    V%X, #%02X", x, inst.NN)
	case OpLDReg:
		return fmt.Sprintf("LD     V%X, V%X", x, y)
	case OpOR:
		return fmt.Sprintf("OR     V%X, V%X", x, y)
	case OpAND:
		return fmt.Sprintf("AND    V%X, V%X", x, y)
	case OpXOR:
		return fmt.Sprintf("XOR    V%X, V%X", x, y)
	case OpADDReg:
		return fmt.Sprintf("ADD    V%X, V%X", x, y)
	case OpSUB:
		return fmt.Sprintf("SUB    V%X, V%X", x, y)
	case OpSHR:
		return fmt.Sprintf("SHR    V%X", x)
	case OpSUBN:
		return fmt.Sprintf("SUBN   V%X, V%X", x, y)
	case OpSHL:
		return fmt.Sprintf("SHL    V%X", x)
	case OpSNEReg:
		return fmt.Sprintf("SNE    V%X, V%X", x, y)
	case OpLDI:
		return fmt.Sprintf("LD     I, #%03X", inst.NNN)
	case OpJPV0:
		return fmt.Sprintf("JP     V0, #%03X", inst.NNN)
	case OpRND:
		return fmt.Sprintf("RND    V%X, #%02X", x, inst.NN)
	case OpDRW:
		return fmt.Sprintf("DRW    V%X, V%X, %d", x, y, inst.N)
	case OpSKP:
		return fmt.Sprintf("SKP    V%X", x)
	case OpSKNP:
		return fmt.Sprintf("SKNP   V%X", x)
	case OpLDVDT:
		return fmt.Sprintf("LD     V%X, DT", x)
	case OpLDVK:
		return fmt.Sprintf("LD     V%X, K", x)
	case OpLDDTV:
		return fmt.Sprintf("LD     DT, V%X", x)
	case OpLDSTV:
		return fmt.Sprintf("LD     ST, V%X", x)
	case OpADDI:
		return fmt.Sprintf("ADD    I, V%X", x)
	case OpLDF:
		return fmt.Sprintf("LD     F, V%X", x)
	case OpLDB:
		return fmt.Sprintf("LD     B, V%X", x)
	case OpSTORE:
		return fmt.Sprintf("LD     [I], V%X", x)
	case OpRESTORE:
		return fmt.Sprintf("LD     V%X, [I]", x)
	}

	return "??"
}
