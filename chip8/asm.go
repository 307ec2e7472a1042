/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

import (
	"bufio"
	"bytes"
	"fmt"
)

/// Breakpoint is an address marked with BREAK in the source.
///
type Breakpoint struct {
	Address int
	Reason  string
}

/// Assembly is a completely assembled source file.
///
type Assembly struct {
	/// ROM is the assembled program, to be loaded at ProgramStart.
	///
	ROM []byte

	/// Labels maps each label to its address.
	///
	Labels map[string]int

	/// Breakpoints in the order they appear in the source.
	///
	Breakpoints []Breakpoint

	/// unresolved maps the address of an instruction to the label its
	/// 12-bit operand refers to.
	///
	unresolved map[int]string

	/// image is all memory up to the end of the program, so len(image) is
	/// always the current address.
	///
	image []byte
}

/// form is one accepted operand pattern of a mnemonic and its encoding.
///
type form struct {
	operands []tokenType
	encode   func(ops []int) []byte
}

/// op builds a 2-byte instruction word.
///
func op(word int) []byte {
	return []byte{byte(word >> 8), byte(word)}
}

/// forms lists the operand patterns of each instruction mnemonic, tried in
/// order. Register operands carry their number, literals their value.
///
var forms = map[string][]form{
	"CLS": {
		{nil, func([]int) []byte { return op(0x00E0) }},
	},
	"RET": {
		{nil, func([]int) []byte { return op(0x00EE) }},
	},
	"JP": {
		{[]tokenType{tokAddr}, func(o []int) []byte { return op(0x1000 | addr(o[0])) }},
		{[]tokenType{tokV, tokAddr}, func(o []int) []byte { return op(0xB000 | v0(o[0]) | addr(o[1])) }},
	},
	"CALL": {
		{[]tokenType{tokAddr}, func(o []int) []byte { return op(0x2000 | addr(o[0])) }},
	},
	"SE": {
		{[]tokenType{tokV, tokLit}, func(o []int) []byte { return op(0x3000 | o[0]<<8 | imm(o[1])) }},
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x5000 | o[0]<<8 | o[1]<<4) }},
	},
	"SNE": {
		{[]tokenType{tokV, tokLit}, func(o []int) []byte { return op(0x4000 | o[0]<<8 | imm(o[1])) }},
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x9000 | o[0]<<8 | o[1]<<4) }},
	},
	"LD": {
		{[]tokenType{tokV, tokLit}, func(o []int) []byte { return op(0x6000 | o[0]<<8 | imm(o[1])) }},
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x8000 | o[0]<<8 | o[1]<<4) }},
		{[]tokenType{tokI, tokAddr}, func(o []int) []byte { return op(0xA000 | addr(o[1])) }},
		{[]tokenType{tokV, tokDT}, func(o []int) []byte { return op(0xF007 | o[0]<<8) }},
		{[]tokenType{tokV, tokK}, func(o []int) []byte { return op(0xF00A | o[0]<<8) }},
		{[]tokenType{tokDT, tokV}, func(o []int) []byte { return op(0xF015 | o[1]<<8) }},
		{[]tokenType{tokST, tokV}, func(o []int) []byte { return op(0xF018 | o[1]<<8) }},
		{[]tokenType{tokF, tokV}, func(o []int) []byte { return op(0xF029 | o[1]<<8) }},
		{[]tokenType{tokB, tokV}, func(o []int) []byte { return op(0xF033 | o[1]<<8) }},
		{[]tokenType{tokIndirect, tokV}, func(o []int) []byte { return op(0xF055 | o[1]<<8) }},
		{[]tokenType{tokV, tokIndirect}, func(o []int) []byte { return op(0xF065 | o[0]<<8) }},
	},
	"ADD": {
		{[]tokenType{tokV, tokLit}, func(o []int) []byte { return op(0x7000 | o[0]<<8 | imm(o[1])) }},
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x8004 | o[0]<<8 | o[1]<<4) }},
		{[]tokenType{tokI, tokV}, func(o []int) []byte { return op(0xF01E | o[1]<<8) }},
	},
	"OR": {
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x8001 | o[0]<<8 | o[1]<<4) }},
	},
	"AND": {
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x8002 | o[0]<<8 | o[1]<<4) }},
	},
	"XOR": {
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x8003 | o[0]<<8 | o[1]<<4) }},
	},
	"SUB": {
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x8005 | o[0]<<8 | o[1]<<4) }},
	},
	"SUBN": {
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x8007 | o[0]<<8 | o[1]<<4) }},
	},
	"SHR": {
		{[]tokenType{tokV}, func(o []int) []byte { return op(0x8006 | o[0]<<8 | o[0]<<4) }},
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x8006 | o[0]<<8 | o[1]<<4) }},
	},
	"SHL": {
		{[]tokenType{tokV}, func(o []int) []byte { return op(0x800E | o[0]<<8 | o[0]<<4) }},
		{[]tokenType{tokV, tokV}, func(o []int) []byte { return op(0x800E | o[0]<<8 | o[1]<<4) }},
	},
	"RND": {
		{[]tokenType{tokV, tokLit}, func(o []int) []byte { return op(0xC000 | o[0]<<8 | imm(o[1])) }},
	},
	"DRW": {
		{[]tokenType{tokV, tokV, tokLit}, func(o []int) []byte { return op(0xD000 | o[0]<<8 | o[1]<<4 | nibble(o[2])) }},
	},
	"SKP": {
		{[]tokenType{tokV}, func(o []int) []byte { return op(0xE09E | o[0]<<8) }},
	},
	"SKNP": {
		{[]tokenType{tokV}, func(o []int) []byte { return op(0xE0A1 | o[0]<<8) }},
	},
}

/// addr validates a 12-bit address operand.
///
func addr(n int) int {
	if n < 0 || n >= MemorySize {
		panic(fmt.Errorf("address out of range: %d", n))
	}

	return n
}

/// imm validates an 8-bit immediate operand. Negative values are allowed
/// down to -128 and stored as two's complement.
///
func imm(n int) int {
	if n < -0x80 || n > 0xFF {
		panic(fmt.Errorf("byte out of range: %d", n))
	}

	return n & 0xFF
}

/// nibble validates a 4-bit operand.
///
func nibble(n int) int {
	if n < 0 || n > 0xF {
		panic(fmt.Errorf("nibble out of range: %d", n))
	}

	return n
}

/// v0 accepts only V0 as the base register of JP V0, NNN.
///
func v0(n int) int {
	if n != 0 {
		panic("only V0 can offset a jump")
	}

	return 0
}

/// Assemble an input CHIP-8 source code file. The source is case-insensitive.
///
func Assemble(program []byte) (out *Assembly, err error) {
	var line int

	out = &Assembly{
		Labels:     make(map[string]int),
		unresolved: make(map[int]string),
		image:      make([]byte, ProgramStart, MemorySize),
	}

	// assembly errors are panics, report them with the line number
	defer func() {
		if r := recover(); r != nil {
			if line > 0 {
				err = fmt.Errorf("line %d - %v", line, r)
			} else {
				err = fmt.Errorf("%v", r)
			}

			out = nil
		}
	}()

	scanner := bufio.NewScanner(bytes.NewReader(bytes.ToUpper(program)))

	for line = 1; scanner.Scan(); line++ {
		out.assemble(&tokenScanner{bytes: scanner.Bytes()})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// done with lines, errors from here on aren't tied to one
	line = 0

	out.resolve()

	if len(out.image) > MemorySize {
		panic("program too large")
	}

	out.ROM = out.image[ProgramStart:]

	return out, nil
}

/// resolve patches the 12-bit operand of every instruction that referenced
/// a label before it was defined.
///
func (a *Assembly) resolve() {
	for address, label := range a.unresolved {
		target, ok := a.Labels[label]
		if !ok {
			panic(fmt.Errorf("unresolved label: %s", label))
		}

		a.image[address] |= byte(target >> 8 & 0xF)
		a.image[address+1] = byte(target)
	}
}

/// assemble a single line.
///
func (a *Assembly) assemble(s *tokenScanner) {
	t := s.scanToken()

	if t.typ == tokLabel {
		a.assembleLabel(t.val.(string))

		// an instruction may follow on the same line
		t = s.scanToken()
	}

	switch t.typ {
	case tokMnemonic:
		a.assembleInstruction(t.val.(string), s)
	case tokBreak:
		a.Breakpoints = append(a.Breakpoints, Breakpoint{
			Address: len(a.image),
			Reason:  s.scanToEnd().val.(string),
		})
	case tokEnd:
	default:
		panic("unexpected token")
	}
}

/// assembleLabel assigns the current address to a label.
///
func (a *Assembly) assembleLabel(label string) {
	if _, exists := a.Labels[label]; exists {
		panic(fmt.Errorf("duplicate label: %s", label))
	}

	a.Labels[label] = len(a.image)
}

/// assembleInstruction encodes an instruction or directive.
///
func (a *Assembly) assembleInstruction(mnemonic string, s *tokenScanner) {
	tokens := s.scanOperands()

	switch mnemonic {
	case "BYTE":
		a.emit(a.assembleBYTE(tokens))
	case "WORD":
		a.emit(a.assembleWORD(tokens))
	case "ALIGN":
		a.emit(a.assembleALIGN(tokens))
	case "PAD":
		a.emit(a.assemblePAD(tokens))
	default:
		for _, t := range tokens {
			if t.typ == tokMnemonic || t.typ == tokBreak {
				panic(fmt.Errorf("reserved word used as an operand of %s", mnemonic))
			}
		}

		for _, f := range forms[mnemonic] {
			if ops, ok := a.match(tokens, f.operands); ok {
				a.emit(f.encode(ops))
				return
			}
		}

		panic(fmt.Errorf("illegal operands for %s", mnemonic))
	}
}

/// emit appends bytes to the image.
///
func (a *Assembly) emit(b []byte) {
	if len(a.image)+len(b) > MemorySize {
		panic("program too large")
	}

	a.image = append(a.image, b...)
}

/// operand expands a label reference to its address. A label that isn't
/// defined yet is recorded as unresolved at the current address and reads
/// as 0 until resolve patches it.
///
func (a *Assembly) operand(t token) (token, bool) {
	if t.typ != tokRef {
		return t, false
	}

	if address, ok := a.Labels[t.val.(string)]; ok {
		return token{typ: tokLit, val: address}, false
	}

	return token{typ: tokLit, val: 0}, true
}

/// match compares tokens against an operand pattern, returning the values
/// of the operands on success.
///
func (a *Assembly) match(tokens []token, pattern []tokenType) ([]int, bool) {
	if len(tokens) != len(pattern) {
		return nil, false
	}

	ops := make([]int, len(tokens))
	label := ""

	for i, typ := range pattern {
		t, forward := a.operand(tokens[i])

		switch {
		case typ == tokAddr && t.typ == tokLit:
			if forward {
				label = tokens[i].val.(string)
			}
		case forward || t.typ != typ:
			return nil, false
		}

		if n, ok := t.val.(int); ok {
			ops[i] = n
		}
	}

	if label != "" {
		a.unresolved[len(a.image)] = label
	}

	return ops, true
}

/// assembleBYTE encodes literal bytes and strings.
///
func (a *Assembly) assembleBYTE(tokens []token) []byte {
	b := make([]byte, 0, len(tokens))

	for _, t := range tokens {
		lit, forward := a.operand(t)
		if forward {
			panic("forward label reference in BYTE")
		}

		switch lit.typ {
		case tokLit:
			b = append(b, byte(imm(lit.val.(int))))
		case tokText:
			b = append(b, lit.val.(string)...)
		default:
			panic("invalid byte")
		}
	}

	return b
}

/// assembleWORD encodes 16-bit big-endian values.
///
func (a *Assembly) assembleWORD(tokens []token) []byte {
	b := make([]byte, 0, len(tokens)*2)

	for _, t := range tokens {
		lit, forward := a.operand(t)

		if lit.typ != tokLit || lit.val.(int) < 0 || lit.val.(int) > 0xFFFF {
			panic("invalid word")
		}

		if forward {
			a.unresolved[len(a.image)+len(b)] = t.val.(string)
		}

		b = append(b, byte(lit.val.(int)>>8), byte(lit.val.(int)))
	}

	return b
}

/// assembleALIGN pads to the next multiple of a power of two.
///
func (a *Assembly) assembleALIGN(tokens []token) []byte {
	if ops, ok := a.match(tokens, []tokenType{tokLit}); ok {
		n := ops[0]

		if n > 0 && n&(n-1) == 0 {
			return make([]byte, (n-len(a.image)&(n-1))&(n-1))
		}
	}

	panic("illegal alignment")
}

/// assemblePAD reserves n zero bytes.
///
func (a *Assembly) assemblePAD(tokens []token) []byte {
	if ops, ok := a.match(tokens, []tokenType{tokLit}); ok {
		if n := ops[0]; n >= 0 && n <= MemorySize-len(a.image) {
			return make([]byte, n)
		}
	}

	panic("illegal size")
}
