// Package midiin plays the instrument from a MIDI keyboard by turning note
// messages into virtual beam breaks.
package midiin

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cwbudde/algo-guitar/guitar"
)

// Instrument is the part of guitar.Guitar a keyboard drives.
type Instrument interface {
	Params() *guitar.Params
	Resolver() *guitar.Resolver
	InjectPluck(stringIndex int, fretReading, intensity uint16)
	ReleasePluck()
}

// Keyboard maps note-on to a pluck on the string and fret that play the key,
// and the matching note-off to releasing the beam.
type Keyboard struct {
	inst   Instrument
	logger *slog.Logger

	mu      sync.Mutex
	holding int // pitch of the held key, -1 when none
}

// NewKeyboard creates a keyboard for inst.
func NewKeyboard(inst Instrument, logger *slog.Logger) *Keyboard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Keyboard{inst: inst, logger: logger, holding: -1}
}

// Intensity is the sampler reading that makes velocity produce a
// proportional share of the amplitude ceiling.
func Intensity(p *guitar.Params, velocity uint8) uint16 {
	if p.IntensityGain <= 0 {
		return 0
	}
	full := p.MaxAmplitude * p.IntensityFullScale / p.IntensityGain
	v := full * float64(velocity) / 127.0
	if v > 0xFFFF {
		v = 0xFFFF
	}
	return uint16(v)
}

// NoteOn plucks the string for pitch. Keys the instrument cannot reach even
// after octave folding are ignored.
func (k *Keyboard) NoteOn(pitch int, velocity uint8) {
	if velocity == 0 {
		k.NoteOff(pitch)
		return
	}
	str, reading, ok := k.inst.Resolver().Locate(pitch)
	if !ok {
		k.logger.Debug("midi: key out of range", "pitch", pitch)
		return
	}
	k.mu.Lock()
	k.holding = pitch
	k.mu.Unlock()
	k.inst.InjectPluck(str, reading, Intensity(k.inst.Params(), velocity))
	k.logger.Debug("midi: pluck", "pitch", pitch, "string", str, "fret_reading", reading, "vel", velocity)
}

// NoteOff releases the beam when pitch is the most recently plucked key.
func (k *Keyboard) NoteOff(pitch int) {
	k.mu.Lock()
	release := k.holding == pitch
	if release {
		k.holding = -1
	}
	k.mu.Unlock()
	if release {
		k.inst.ReleasePluck()
	}
}

// Handle dispatches one MIDI message.
func (k *Keyboard) Handle(msg midi.Message, _ int32) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		k.NoteOn(int(key), vel)
	case msg.GetNoteEnd(&ch, &key):
		k.NoteOff(int(key))
	}
}

// Listen opens in and feeds its messages to the keyboard. The returned
// function stops listening and closes the port.
func (k *Keyboard) Listen(in drivers.In) (func(), error) {
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("open %q: %w", in.String(), err)
	}
	stop, err := midi.ListenTo(in, k.Handle, midi.HandleError(func(err error) {
		k.logger.Warn("midi: listener error", "device", in.String(), "err", err)
	}))
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("listen %q: %w", in.String(), err)
	}
	k.logger.Info("midi: connected", "device", in.String())
	return func() {
		stop()
		_ = in.Close()
	}, nil
}

// FindInput picks the first input whose name contains pattern
// (case-insensitive). An empty pattern picks the only input when there is
// exactly one.
func FindInput(ins []drivers.In, pattern string) (drivers.In, error) {
	if pattern == "" {
		if len(ins) == 1 {
			return ins[0], nil
		}
		return nil, fmt.Errorf("%d MIDI inputs, choose one by name", len(ins))
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(pattern)) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input matching %q", pattern)
}
