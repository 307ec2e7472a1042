package chip8_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/octovm/chip8/chip8"
)

func assemble(t *testing.T, source string) *chip8.Assembly {
	t.Helper()

	asm, err := chip8.Assemble([]byte(source))
	if err != nil {
		t.Fatal(err)
	}

	return asm
}

func TestAssembleForms(t *testing.T) {
	tests := []struct {
		line string
		want []byte
	}{
		{"CLS", []byte{0x00, 0xE0}},
		{"RET", []byte{0x00, 0xEE}},
		{"jp #234", []byte{0x12, 0x34}},
		{"JP V0, #200", []byte{0xB2, 0x00}},
		{"CALL #ABC", []byte{0x2A, 0xBC}},
		{"SE V1, #42", []byte{0x31, 0x42}},
		{"SE V1, V2", []byte{0x51, 0x20}},
		{"SNE V1, 42", []byte{0x41, 0x2A}},
		{"SNE V1, V2", []byte{0x91, 0x20}},
		{"LD V1, 10", []byte{0x61, 0x0A}},
		{"LD V0, -1", []byte{0x60, 0xFF}},
		{"LD V1, V2", []byte{0x81, 0x20}},
		{"LD I, #300", []byte{0xA3, 0x00}},
		{"LD V4, DT", []byte{0xF4, 0x07}},
		{"LD V4, K", []byte{0xF4, 0x0A}},
		{"LD DT, V4", []byte{0xF4, 0x15}},
		{"LD ST, V4", []byte{0xF4, 0x18}},
		{"LD F, V5", []byte{0xF5, 0x29}},
		{"LD B, V6", []byte{0xF6, 0x33}},
		{"ld [i], v3", []byte{0xF3, 0x55}},
		{"ld v3, [i]", []byte{0xF3, 0x65}},
		{"ADD V1, 1", []byte{0x71, 0x01}},
		{"ADD V1, V2", []byte{0x81, 0x24}},
		{"ADD I, V2", []byte{0xF2, 0x1E}},
		{"OR VA, VB", []byte{0x8A, 0xB1}},
		{"AND VA, VB", []byte{0x8A, 0xB2}},
		{"XOR VA, VB", []byte{0x8A, 0xB3}},
		{"SUB VA, VB", []byte{0x8A, 0xB5}},
		{"SUBN VA, VB", []byte{0x8A, 0xB7}},
		{"SHR V3", []byte{0x83, 0x36}},
		{"SHL V3, V4", []byte{0x83, 0x4E}},
		{"RND V7, #0F", []byte{0xC7, 0x0F}},
		{"DRW V0, V1, 5", []byte{0xD0, 0x15}},
		{"SKP V8", []byte{0xE8, 0x9E}},
		{"SKNP V9", []byte{0xE9, 0xA1}},
		{"BYTE $11..11.., 'AB', 7", []byte{0xCC, 'A', 'B', 7}},
		{"WORD #1234, 5", []byte{0x12, 0x34, 0x00, 0x05}},
		{"PAD 3", []byte{0, 0, 0}},
		{"CLS ; comment", []byte{0x00, 0xE0}},
	}

	for _, test := range tests {
		asm := assemble(t, "  "+test.line)

		if !bytes.Equal(asm.ROM, test.want) {
			t.Fatalf("%s: expected % X; have % X", test.line, test.want, asm.ROM)
		}
	}
}

func TestAssembleLabels(t *testing.T) {
	asm := assemble(t, `
; subroutine declared after use
.START  CALL SUBR
        JP START
        BREAK check v0
.SUBR   LD V0, 1
        RET
.TABLE  WORD SUBR, TABLE
`)

	want := []byte{0x22, 0x04, 0x12, 0x00, 0x60, 0x01, 0x00, 0xEE, 0x02, 0x04, 0x02, 0x08}
	if !bytes.Equal(asm.ROM, want) {
		t.Fatalf("expected % X; have % X", want, asm.ROM)
	}

	if asm.Labels["START"] != 0x200 || asm.Labels["SUBR"] != 0x204 || asm.Labels["TABLE"] != 0x208 {
		t.Fatalf("unexpected labels: %v", asm.Labels)
	}

	if len(asm.Breakpoints) != 1 {
		t.Fatalf("expected 1 breakpoint; have %d", len(asm.Breakpoints))
	}

	if bp := asm.Breakpoints[0]; bp.Address != 0x204 || bp.Reason != "CHECK V0" {
		t.Fatalf("unexpected breakpoint: %+v", bp)
	}
}

func TestAssembleAlign(t *testing.T) {
	asm := assemble(t, "  BYTE 1\n  ALIGN 4\n  BYTE 2\n  ALIGN 2\n  ALIGN 2\n")

	want := []byte{1, 0, 0, 0, 2, 0}
	if !bytes.Equal(asm.ROM, want) {
		t.Fatalf("expected % X; have % X", want, asm.ROM)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		source string
		err    string
	}{
		{"CLS", "line 1 - expected .label"},
		{"  LD V0, 256", "line 1 - byte out of range"},
		{"\n  FOO", "line 2 - unexpected token"},
		{"  JP NOWHERE", "unresolved label: NOWHERE"},
		{".A CLS\n.A CLS", "line 2 - duplicate label: A"},
		{"  DRW V0, V1, 16", "nibble out of range"},
		{"  JP V1, #200", "only V0"},
		{"  JP #1000", "address out of range"},
		{"  BYTE 'abc", "unterminated string"},
		{"  LD [V0], V1", "only [I]"},
		{"  ADD V0", "illegal operands for ADD"},
		{".SUB RET", "line 1 - reserved word: SUB"},
		{".V3 RET", "line 1 - reserved word: V3"},
		{".BREAK RET", "line 1 - reserved word: BREAK"},
		{"  CALL SUB", "line 1 - reserved word used as an operand of CALL"},
		{"  ALIGN 3", "illegal alignment"},
		{"  PAD 4000", "illegal size"},
		{"  LD V0, #ZZ", "illegal hex value"},
		{"  LD V0 V1", "unexpected token"},
	}

	for _, test := range tests {
		asm, err := chip8.Assemble([]byte(test.source))
		if err == nil {
			t.Fatalf("%q: expected an error", test.source)
		}

		if asm != nil {
			t.Fatalf("%q: expected no assembly on error", test.source)
		}

		if !strings.Contains(err.Error(), test.err) {
			t.Fatalf("%q: expected %q; have %q", test.source, test.err, err)
		}
	}
}

func TestAssembleAndRun(t *testing.T) {
	asm := assemble(t, `
        LD V0, 234
        LD I, DIGITS
        LD B, V0
        LD V2, [I]
        CALL DOUBLE
.DONE   JP DONE
.DOUBLE ADD V2, V2
        RET
.DIGITS PAD 3
`)

	vm := load(t, asm.ROM)
	step(t, vm, 8)

	if vm.PC() != uint16(asm.Labels["DONE"]) {
		t.Fatalf("expected to spin at DONE; have PC=#%04X", vm.PC())
	}

	if vm.V(0) != 2 || vm.V(1) != 3 || vm.V(2) != 8 {
		t.Fatalf("unexpected registers: %v", vm.Registers())
	}
}
