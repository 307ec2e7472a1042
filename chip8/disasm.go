package chip8

import "fmt"

/// Disassemble the instruction at address. Zero words, which are usually
/// the end of the program or padding, are shown without a mnemonic.
///
func (vm *VM) Disassemble(address int) string {
	if address < 0 || address >= MemorySize-1 {
		return ""
	}

	word := uint16(vm.memory[address])<<8 | uint16(vm.memory[address+1])

	// end of program memory?
	if word == 0 {
		return fmt.Sprintf("%04X -", address)
	}

	inst, err := Decode(word)
	if err != nil {
		return fmt.Sprintf("%04X - ??     #%04X", address, word)
	}

	return fmt.Sprintf("%04X - %s", address, inst)
}

/// DisassembleROM returns one line per instruction word of a program loaded
/// at ProgramStart.
///
func DisassembleROM(program []byte) []string {
	lines := make([]string, 0, len(program)/2)

	for i := 0; i+1 < len(program); i += 2 {
		word := uint16(program[i])<<8 | uint16(program[i+1])
		address := ProgramStart + i

		if inst, err := Decode(word); err == nil {
			lines = append(lines, fmt.Sprintf("%04X - %s", address, inst))
		} else {
			lines = append(lines, fmt.Sprintf("%04X - ??     #%04X", address, word))
		}
	}

	return lines
}
