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

package main

import (
	"strings"
	"sync"
)

// logLimit is the most lines kept before the oldest are dropped.
const logLimit = 1000

// Logger is an output log that can be viewed and scrolled. It is an
// io.Writer so slog handlers can write to it, and is safe to write to
// from multiple goroutines.
type Logger struct {
	mu sync.Mutex

	// buf contains each line of logged text.
	buf []string

	// partial is text written without a trailing newline.
	partial string

	// pos is the current user read position within the log.
	pos int
}

// NewLog creates a new Logger.
func NewLog() *Logger {
	return &Logger{
		buf: make([]string, 0, 100),
		pos: 0,
	}
}

// Write appends each complete line of p to the log.
func (log *Logger) Write(p []byte) (int, error) {
	log.mu.Lock()
	defer log.mu.Unlock()

	lines := strings.Split(log.partial+string(p), "\n")

	// the last element is whatever follows the final newline
	log.partial = lines[len(lines)-1]
	log.append(lines[:len(lines)-1]...)

	return len(p), nil
}

// Log outputs a new line to the log.
func (log *Logger) Log(s ...string) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.append(strings.Join(s, " "))
}

// Logln outputs a new line to the log, with an empty line prefixed.
func (log *Logger) Logln(s ...string) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.append("", strings.Join(s, " "))
}

// append lines, following them if the log is scrolled to the end.
func (log *Logger) append(lines ...string) {
	scroll := log.pos == len(log.buf)

	log.buf = append(log.buf, lines...)

	// drop the oldest lines
	if n := len(log.buf) - logLimit; n > 0 {
		log.buf = append(log.buf[:0], log.buf[n:]...)
		log.pos -= n

		if log.pos < 0 {
			log.pos = 0
		}
	}

	if scroll {
		log.pos = len(log.buf)
	}
}

// Len returns the number of lines logged.
func (log *Logger) Len() int {
	log.mu.Lock()
	defer log.mu.Unlock()

	return len(log.buf)
}

// Window returns up to n lines ending at the read position.
func (log *Logger) Window(n int) []string {
	log.mu.Lock()
	defer log.mu.Unlock()

	start := log.pos - n

	// don't scroll past the beginning
	if start < 0 {
		start = 0
	}

	end := start + n
	if end > len(log.buf) {
		end = len(log.buf)
	}

	return append([]string(nil), log.buf[start:end]...)
}

// Home scrolls the log to the beginning.
func (log *Logger) Home() {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos = 0
}

// End scrolls the log to the end.
func (log *Logger) End() {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos = len(log.buf)
}

// ScrollUp scrolls the log back one position, but never so far that the
// window would be short.
func (log *Logger) ScrollUp(windowSize int) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos -= 1

	// clamp to home
	if log.pos < windowSize {
		log.pos = windowSize
	}

	if log.pos > len(log.buf) {
		log.pos = len(log.buf)
	}
}

// ScrollDown scrolls the log forward one position.
func (log *Logger) ScrollDown(windowSize int) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos += 1

	// if less than the window size, drop to it
	if log.pos <= windowSize {
		log.pos = windowSize + 1
	}

	// clamp to the end
	if log.pos >= len(log.buf) {
		log.pos = len(log.buf)
	}
}
