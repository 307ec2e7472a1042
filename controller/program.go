package controller

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/octovm/chip8/chip8"
)

// Program is a ROM ready to be loaded, with any breakpoints assembled into it.
type Program struct {
	// Name is the base name of the file it came from.
	Name string

	// ROM is loaded at chip8.ProgramStart.
	ROM []byte

	// Breakpoints from BREAK directives in assembly source.
	Breakpoints []chip8.Breakpoint
}

// sourceExts are the file extensions treated as assembly source.
var sourceExts = map[string]bool{
	".asm": true,
	".c8s": true,
	".src": true,
}

// LoadProgram reads a ROM file. Assembly source files are assembled first.
func LoadProgram(file string) (*Program, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}

	p := &Program{Name: filepath.Base(file)}

	if !sourceExts[strings.ToLower(filepath.Ext(file))] {
		p.ROM = data
	} else {
		asm, err := chip8.Assemble(data)
		if err != nil {
			return nil, errors.Wrapf(err, "assemble %s", file)
		}

		p.ROM = asm.ROM
		p.Breakpoints = asm.Breakpoints
	}

	if len(p.ROM) > chip8.MemorySize-chip8.ProgramStart {
		return nil, errors.Wrapf(chip8.ErrLoadTooLarge, "%s is %d bytes", file, len(p.ROM))
	}

	return p, nil
}
