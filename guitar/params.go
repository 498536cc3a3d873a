package guitar

import (
	"fmt"
	"time"
)

// NumAnalogChannels is the number of sampler channels: intensity plus one
// fret sensor per string.
const NumAnalogChannels = NumStrings + 1

// Params holds all runtime constants of the instrument.
type Params struct {
	SampleRate int

	// Duration is the length of one note in samples (the OutputFrame size).
	Duration int
	// PlaybackOffset skips the first samples of each OutputFrame.
	PlaybackOffset int
	// SynthesisChunk is how many samples are materialized per scheduler tick.
	SynthesisChunk int

	Decay           float64
	ExcitationSize  int
	MinBufferLength int

	ClipThreshold uint8
	ClipValue     uint8

	// Amplitude = IntensityGain * reading / IntensityFullScale, clamped to
	// [0, MaxAmplitude].
	IntensityGain      float64
	IntensityFullScale float64
	MaxAmplitude       float64

	ScanChannels int
	ScanTick     time.Duration

	IntensityChannel int
	FretChannels     [NumStrings]int

	Strings     [NumStrings]StringBands
	DefaultNote Note

	// BodyIRPath is an optional body impulse response applied by offline
	// renderers; the real-time path ignores it.
	BodyIRPath string
}

// NewDefaultParams creates the stock instrument settings.
func NewDefaultParams() *Params {
	return &Params{
		SampleRate:         44100,
		Duration:           44100,
		PlaybackOffset:     0,
		SynthesisChunk:     256,
		Decay:              0.999,
		ExcitationSize:     600,
		MinBufferLength:    2,
		ClipThreshold:      105,
		ClipValue:          180,
		IntensityGain:      10.0,
		IntensityFullScale: 59456.0,
		MaxAmplitude:       1.0,
		ScanChannels:       NumStrings,
		ScanTick:           10 * time.Microsecond,
		IntensityChannel:   0,
		FretChannels:       [NumStrings]int{6, 1, 2, 3, 4, 5},
		Strings:            DefaultStringBands(),
		DefaultNote:        NewNote(4, 4),
	}
}

// Validate checks the invariants the real-time path relies on.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("nil params")
	}
	if p.SampleRate < 1000 {
		return fmt.Errorf("sample rate too low: %d", p.SampleRate)
	}
	if p.Duration < 1 {
		return fmt.Errorf("duration must be >= 1")
	}
	if p.PlaybackOffset < 0 || p.PlaybackOffset >= p.Duration {
		return fmt.Errorf("playback offset must be in [0,%d)", p.Duration)
	}
	if p.SynthesisChunk < 1 {
		return fmt.Errorf("synthesis chunk must be >= 1")
	}
	if p.Decay <= 0 || p.Decay >= 1 {
		return fmt.Errorf("decay must be in (0,1)")
	}
	if p.MinBufferLength < 2 || p.MinBufferLength&1 == 1 {
		return fmt.Errorf("min buffer length must be even and >= 2")
	}
	if p.ExcitationSize < p.MinBufferLength {
		return fmt.Errorf("excitation size must be >= min buffer length")
	}
	if p.IntensityFullScale <= 0 {
		return fmt.Errorf("intensity full scale must be > 0")
	}
	if p.IntensityGain < 0 {
		return fmt.Errorf("intensity gain must be >= 0")
	}
	if p.MaxAmplitude <= 0 {
		return fmt.Errorf("max amplitude must be > 0")
	}
	if p.ScanChannels < 1 || p.ScanChannels > NumStrings {
		return fmt.Errorf("scan channels must be in [1,%d]", NumStrings)
	}
	if p.IntensityChannel < 0 || p.IntensityChannel >= NumAnalogChannels {
		return fmt.Errorf("intensity channel out of range: %d", p.IntensityChannel)
	}
	for i, ch := range p.FretChannels {
		if ch < 0 || ch >= NumAnalogChannels {
			return fmt.Errorf("fret channel %d out of range: %d", i, ch)
		}
	}
	for i, sb := range p.Strings {
		if !sb.Sorted() {
			return fmt.Errorf("string %d bands must have descending cut-points", i)
		}
		if sb.Default.Frequency <= 0 {
			return fmt.Errorf("string %d has no default note", i)
		}
		for _, b := range sb.Bands {
			if b.Note.Frequency <= 0 {
				return fmt.Errorf("string %d has a band without a note", i)
			}
		}
	}
	if p.DefaultNote.Frequency <= 0 {
		return fmt.Errorf("default note must have a frequency")
	}
	return nil
}

// RotateChannels shifts the band tables and fret sensor assignments so that
// selecting channel i resolves with what channel i+n had before. A rotation
// of 1 matches devices whose scan counter has already advanced past the
// selected channel when a beam breaks.
func (p *Params) RotateChannels(n int) {
	n %= NumStrings
	if n < 0 {
		n += NumStrings
	}
	if n == 0 {
		return
	}
	strs, frets := p.Strings, p.FretChannels
	for i := range p.Strings {
		p.Strings[i] = strs[(i+n)%NumStrings]
		p.FretChannels[i] = frets[(i+n)%NumStrings]
	}
}
