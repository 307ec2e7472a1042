package main

import (
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// The SDL audio device the tone is queued to.
	///
	AudioDevice sdl.AudioDeviceID

	/// The square wave played while the sound timer runs.
	///
	Buzzer = NewTone(0x30)

	/// One frame of samples, queued each frame the tone plays.
	///
	audioFrame = make([]byte, SampleRate/60)
)

/// InitAudio opens the default audio device for queued 8-bit samples.
///
func InitAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     SampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	dev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return errors.Wrap(err, "open audio")
	}

	AudioDevice = dev

	// start playing whatever gets queued
	sdl.PauseAudioDevice(AudioDevice, false)

	return nil
}

/// UpdateAudio keeps a frame of tone queued while playing and drops
/// whatever is queued once it stops.
///
func UpdateAudio(playing bool) {
	if AudioDevice == 0 {
		return
	}

	if !playing {
		if Buzzer.Playing() {
			Buzzer.Play(false)
			sdl.ClearQueuedAudio(AudioDevice)
		}

		return
	}

	Buzzer.Play(true)

	// keep no more than two frames queued
	if sdl.GetQueuedAudioSize(AudioDevice) < uint32(2*len(audioFrame)) {
		Buzzer.Read(audioFrame)

		if err := sdl.QueueAudio(AudioDevice, audioFrame); err != nil {
			Log.Error("queue audio", "err", err)
		}
	}
}

/// CloseAudio stops and closes the audio device.
///
func CloseAudio() {
	if AudioDevice != 0 {
		sdl.CloseAudioDevice(AudioDevice)
	}
}
