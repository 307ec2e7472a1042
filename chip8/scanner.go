package chip8

import (
	"fmt"
	"strconv"
	"strings"
)

/// tokenType is the kind of a scanned assembler token.
///
type tokenType uint

/// Lexical assembly tokens.
///
const (
	tokEnd tokenType = iota
	tokChar
	tokLabel
	tokRef
	tokMnemonic
	tokOperand
	tokV
	tokI
	tokIndirect
	tokDT
	tokST
	tokK
	tokF
	tokB
	tokLit
	tokText
	tokBreak

	/// tokAddr never comes out of the scanner. Operand patterns use it to
	/// accept a literal or a label that isn't defined yet.
	///
	tokAddr
)

/// token is a single lexical token with an optional value: register number
/// or literal (int), label or text (string), byte (tokChar) or a nested
/// token (tokOperand).
///
type token struct {
	typ tokenType
	val interface{}
}

/// tokenScanner scans a single line of source.
///
type tokenScanner struct {
	bytes []byte

	/// scan position
	///
	pos int
}

/// registers maps register names to their token.
///
var registers = map[string]token{
	"I":  {typ: tokI},
	"DT": {typ: tokDT},
	"ST": {typ: tokST},
	"K":  {typ: tokK},
	"F":  {typ: tokF},
	"B":  {typ: tokB},
}

/// mnemonics are all the instructions and directives the assembler knows.
///
var mnemonics = map[string]bool{
	"CLS": true, "RET": true, "JP": true, "CALL": true, "SE": true,
	"SNE": true, "LD": true, "ADD": true, "OR": true, "AND": true,
	"XOR": true, "SUB": true, "SUBN": true, "SHR": true, "SHL": true,
	"RND": true, "DRW": true, "SKP": true, "SKNP": true,
	"BYTE": true, "WORD": true, "ALIGN": true, "PAD": true,
}

/// scanToken reads the next token from the line.
///
func (s *tokenScanner) scanToken() token {
	for s.pos < len(s.bytes) && s.bytes[s.pos] <= ' ' {
		s.pos++
	}

	// end of line
	if s.pos >= len(s.bytes) {
		return token{typ: tokEnd, val: ""}
	}

	c := s.bytes[s.pos]

	switch {
	case c == ';':
		return s.scanToEnd()
	case c == '.' && s.pos == 0:
		return s.scanLabel()
	case s.pos == 0:
		panic("expected .label or indentation")
	case c == '[':
		return s.scanIndirection()
	case c == ',':
		return s.scanOperand()
	case c == '#':
		return s.scanLit(16, "0123456789ABCDEF", "hex")
	case c == '$':
		return s.scanLit(2, ".01", "binary")
	case c == '-' || (c >= '0' && c <= '9'):
		return s.scanDecLit()
	case c >= 'A' && c <= 'Z' || c == '_':
		return s.scanIdentifier()
	case c == '"' || c == '\'':
		return s.scanString(c)
	}

	return s.scanChar()
}

/// scanOperands reads a comma-separated list of tokens up to the end of line.
///
func (s *tokenScanner) scanOperands() []token {
	tokens := make([]token, 0, 3)

	for t := s.scanToken(); t.typ != tokEnd; {
		tokens = append(tokens, t)

		// only a comma or the end of the line may follow
		if t = s.scanToken(); t.typ != tokOperand {
			if t.typ == tokEnd {
				break
			}

			panic("unexpected token")
		}

		// unwrap the operand
		t = t.val.(token)
	}

	return tokens
}

/// scanChar returns a single character.
///
func (s *tokenScanner) scanChar() token {
	c := s.bytes[s.pos]

	s.pos++

	return token{typ: tokChar, val: c}
}

/// scanToEnd consumes the rest of the line, returning it as the value of an
/// end token. Used for comments and breakpoint reasons.
///
func (s *tokenScanner) scanToEnd() token {
	text := string(s.bytes[s.pos:])

	s.pos = len(s.bytes)

	return token{typ: tokEnd, val: strings.TrimSpace(text)}
}

/// scanOperand reads the token following a comma.
///
func (s *tokenScanner) scanOperand() token {
	s.pos++

	t := s.scanToken()
	if t.typ == tokEnd {
		panic("expected operand")
	}

	return token{typ: tokOperand, val: t}
}

/// scanLabel reads a .LABEL at the start of a line.
///
func (s *tokenScanner) scanLabel() token {
	s.pos++

	if s.pos < len(s.bytes) && s.bytes[s.pos] >= 'A' && s.bytes[s.pos] <= 'Z' {
		i := s.pos

		if id := s.scanIdentifier(); id.typ == tokRef {
			return token{typ: tokLabel, val: id.val}
		}

		// registers, mnemonics and directives can't be labels
		panic(fmt.Errorf("reserved word: %s", s.bytes[i:s.pos]))
	}

	panic("expected label")
}

/// scanIdentifier reads a register, mnemonic or label reference.
///
func (s *tokenScanner) scanIdentifier() token {
	i := s.pos

	for ; s.pos < len(s.bytes); s.pos++ {
		c := s.bytes[s.pos]

		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			break
		}
	}

	id := string(s.bytes[i:s.pos])

	// V0-VF
	if len(id) == 2 && id[0] == 'V' {
		if n := strings.IndexByte("0123456789ABCDEF", id[1]); n >= 0 {
			return token{typ: tokV, val: n}
		}
	}

	if t, ok := registers[id]; ok {
		return t
	}

	if mnemonics[id] {
		return token{typ: tokMnemonic, val: id}
	}

	if id == "BREAK" {
		return token{typ: tokBreak}
	}

	return token{typ: tokRef, val: id}
}

/// scanIndirection reads [I].
///
func (s *tokenScanner) scanIndirection() token {
	s.pos++

	if t := s.scanToken(); t.typ != tokI {
		panic("only [I] is addressable")
	}

	if c := s.scanToken(); c.typ != tokChar || c.val.(byte) != ']' {
		panic("illegal indirection")
	}

	return token{typ: tokIndirect}
}

/// scanDecLit reads a possibly negative decimal literal.
///
func (s *tokenScanner) scanDecLit() token {
	i := s.pos

	if s.bytes[s.pos] == '-' {
		s.pos++
	}

	for s.pos < len(s.bytes) && s.bytes[s.pos] >= '0' && s.bytes[s.pos] <= '9' {
		s.pos++
	}

	lit := string(s.bytes[i:s.pos])

	n, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		panic(fmt.Errorf("illegal decimal value: %s", lit))
	}

	return token{typ: tokLit, val: int(n)}
}

/// scanLit reads a prefixed (#hex or $binary) literal. Binary literals may
/// use '.' for 0 so sprites are readable.
///
func (s *tokenScanner) scanLit(base int, digits, name string) token {
	i := s.pos

	for s.pos++; s.pos < len(s.bytes); s.pos++ {
		if strings.IndexByte(digits, s.bytes[s.pos]) < 0 {
			break
		}
	}

	lit := strings.ReplaceAll(string(s.bytes[i+1:s.pos]), ".", "0")

	n, err := strconv.ParseInt(lit, base, 32)
	if err != nil {
		panic(fmt.Errorf("illegal %s value: %s", name, string(s.bytes[i:s.pos])))
	}

	return token{typ: tokLit, val: int(n)}
}

/// scanString reads a quoted string.
///
func (s *tokenScanner) scanString(term byte) token {
	s.pos++

	i := s.pos

	for s.pos < len(s.bytes) && s.bytes[s.pos] != term {
		s.pos++
	}

	if s.pos >= len(s.bytes) {
		panic("unterminated string")
	}

	text := string(s.bytes[i:s.pos])

	// skip the closing quote
	s.pos++

	return token{typ: tokText, val: text}
}
