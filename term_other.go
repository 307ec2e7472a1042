//go:build !unix

package main

import (
	"github.com/pkg/errors"
)

// runTerminal needs a unix terminal.
func runTerminal(Config) error {
	return errors.New("-term is only supported on unix")
}
