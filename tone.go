package main

import (
	"sync/atomic"

	"github.com/octovm/chip8/controller"
)

const (
	// SampleRate of the generated tone.
	SampleRate = 22050

	// ToneHz is the pitch of the buzzer.
	ToneHz = 440

	// silence is the midpoint of an unsigned 8-bit sample.
	silence = 0x80
)

// Tone is an io.Reader of unsigned 8-bit mono samples: a square wave while
// on, silence while off. Read may be called from an audio goroutine while
// the emulator turns it on and off.
type Tone struct {
	on     atomic.Bool
	volume byte

	// n counts samples generated for the wave phase.
	n int
}

// NewTone creates a silent square wave generator.
func NewTone(volume byte) *Tone {
	if volume > 0x7F {
		volume = 0x7F
	}

	return &Tone{volume: volume}
}

// Play turns the tone on or off.
func (t *Tone) Play(on bool) {
	t.on.Store(on)
}

// Playing is true while the tone is on.
func (t *Tone) Playing() bool {
	return t.on.Load()
}

// Read fills p with samples.
func (t *Tone) Read(p []byte) (int, error) {
	half := SampleRate / ToneHz / 2

	if !t.on.Load() {
		for i := range p {
			p[i] = silence
		}

		return len(p), nil
	}

	for i := range p {
		if (t.n/half)&1 == 0 {
			p[i] = silence + t.volume
		} else {
			p[i] = silence - t.volume
		}

		t.n++
	}

	return len(p), nil
}

// RunFrame runs one frame of emulation and returns whether the tone should
// be playing afterwards. A fault has already paused the controller, which
// logs it and keeps it for Fault, so it only silences the tone here.
func RunFrame(c *controller.Controller) bool {
	stopped, err := c.Frame()
	if err != nil {
		return false
	}

	return c.VM().Beeping() && !c.Paused() && !stopped
}
