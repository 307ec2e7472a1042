package main

import (
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

// Beeper plays the buzzer tone through oto, for hosts without SDL audio.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	tone   *Tone
}

// NewBeeper opens the default audio output and starts a silent tone.
func NewBeeper() (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
		BufferSize:   time.Second / 30,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, errors.Wrap(err, "audio context")
	}

	<-ready

	b := &Beeper{
		ctx:  ctx,
		tone: NewTone(0x30),
	}

	b.player = ctx.NewPlayer(b.tone)
	b.player.Play()

	return b, nil
}

// Update turns the tone on or off.
func (b *Beeper) Update(beeping bool) {
	b.tone.Play(beeping)
}

// Close stops playing.
func (b *Beeper) Close() error {
	return b.player.Close()
}
