package guitar

// PluckEvent is one beam interruption as consumed by the resolver.
type PluckEvent struct {
	StringIndex int
	FretReading uint16
	Intensity   uint16
}

// Selection is what a pluck resolves to.
type Selection struct {
	Note         Note
	BufferLength int
	Amplitude    float64
}

// Resolver maps sensor readings to notes and output levels. It has no state
// beyond its tables and is safe for concurrent use.
type Resolver struct {
	sampleRate   int
	strings      [NumStrings]StringBands
	defaultNote  Note
	minLen       int
	maxLen       int
	gain         float64
	fullScale    float64
	maxAmplitude float64
}

// NewResolver builds a resolver from params.
func NewResolver(p *Params) *Resolver {
	return &Resolver{
		sampleRate:   p.SampleRate,
		strings:      p.Strings,
		defaultNote:  p.DefaultNote,
		minLen:       p.MinBufferLength,
		maxLen:       evenFloor(p.ExcitationSize),
		gain:         p.IntensityGain,
		fullScale:    p.IntensityFullScale,
		maxAmplitude: p.MaxAmplitude,
	}
}

// Resolve turns a pluck into a note, a delay line length and an amplitude.
func (r *Resolver) Resolve(ev PluckEvent) Selection {
	n := r.Note(ev.StringIndex, ev.FretReading)
	return Selection{
		Note:         n,
		BufferLength: r.BufferLength(n),
		Amplitude:    r.Amplitude(ev.Intensity),
	}
}

// Note looks up the band table of a string. Unknown strings resolve to the
// default note.
func (r *Resolver) Note(stringIndex int, fretReading uint16) Note {
	if stringIndex < 0 || stringIndex >= NumStrings {
		return r.defaultNote
	}
	return r.strings[stringIndex].Lookup(fretReading)
}

// BufferLength is BufferLength clamped to the range the delay line supports.
func (r *Resolver) BufferLength(n Note) int {
	return clampInt(BufferLength(r.sampleRate, n), r.minLen, r.maxLen)
}

// Amplitude scales an intensity reading into an output gain.
func (r *Resolver) Amplitude(intensity uint16) float64 {
	a := r.gain * float64(intensity) / r.fullScale
	return clampf(a, 0, r.maxAmplitude)
}

// Locate finds the string and fret reading that plays a MIDI pitch, shifting
// it by octaves into the instrument's range when needed. The lowest fret wins,
// then the lowest channel.
func (r *Resolver) Locate(pitch int) (stringIndex int, fretReading uint16, ok bool) {
	lo, hi := r.pitchRange()
	if lo < 0 {
		return 0, 0, false
	}
	for pitch < lo {
		pitch += 12
	}
	for pitch > hi {
		pitch -= 12
	}
	if pitch < lo {
		return 0, 0, false
	}

	bestFret := -1
	for s := 0; s < NumStrings; s++ {
		sb := r.strings[s]
		open := sb.Default.Pitch()
		for _, reading := range candidateReadings(sb) {
			if sb.Lookup(reading).Pitch() != pitch {
				continue
			}
			fret := pitch - open
			if bestFret < 0 || fret < bestFret {
				bestFret, stringIndex, fretReading = fret, s, reading
			}
		}
	}
	if bestFret < 0 {
		return 0, 0, false
	}
	return stringIndex, fretReading, true
}

// candidateReadings returns one reading per reachable band of a table.
func candidateReadings(sb StringBands) []uint16 {
	out := []uint16{0xFFFF}
	for _, b := range sb.Bands {
		if b.Above < 0xFFFF {
			out = append(out, b.Above+1)
		}
	}
	return append(out, 0)
}

func (r *Resolver) pitchRange() (int, int) {
	lo, hi := -1, -1
	for _, sb := range r.strings {
		for _, reading := range candidateReadings(sb) {
			p := sb.Lookup(reading).Pitch()
			if p < 0 {
				continue
			}
			if lo < 0 || p < lo {
				lo = p
			}
			if p > hi {
				hi = p
			}
		}
	}
	return lo, hi
}
