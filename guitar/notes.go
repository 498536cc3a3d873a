package guitar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumStrings is the number of laser strings behind the multiplexer.
const NumStrings = 6

var pitchClassNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "G#", "A", "Bb", "B"}

// octaveZero holds the octave-0 fundamentals every note is derived from.
var octaveZero = [12]float32{
	16.35, 17.32, 18.35, 19.45, 20.60, 21.83,
	23.12, 24.50, 25.96, 27.50, 29.14, 30.87,
}

// Note is a resolved pitch: an octave-0 frequency shifted up by Octave octaves.
type Note struct {
	Frequency float32
	Octave    int
}

// NewNote builds a note from a pitch class (0 = C) and an octave.
func NewNote(class int, octave int) Note {
	class %= 12
	if class < 0 {
		class += 12
	}
	return Note{Frequency: octaveZero[class], Octave: octave}
}

// ParseNote parses names like "E2", "G#3", "Bb2" or "Db4".
func ParseNote(name string) (Note, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 {
		return Note{}, fmt.Errorf("invalid note name %q", name)
	}
	split := 1
	if s[1] == '#' || s[1] == 'b' {
		split = 2
	}
	class := -1
	letter := strings.ToUpper(s[:1])
	for i, n := range pitchClassNames {
		if n[:1] == letter && len(n) == 1 {
			class = i
			break
		}
	}
	if class < 0 {
		return Note{}, fmt.Errorf("invalid note name %q", name)
	}
	if split == 2 {
		if s[1] == '#' {
			class++
		} else {
			class--
		}
	}
	octave, err := strconv.Atoi(s[split:])
	if err != nil || octave < 0 || octave > 8 {
		return Note{}, fmt.Errorf("invalid octave in note name %q", name)
	}
	switch class {
	case -1:
		class, octave = 11, octave-1
	case 12:
		class, octave = 0, octave+1
	}
	if octave < 0 {
		return Note{}, fmt.Errorf("invalid octave in note name %q", name)
	}
	return NewNote(class, octave), nil
}

func (n Note) class() int {
	for i, f := range octaveZero {
		if f == n.Frequency {
			return i
		}
	}
	return -1
}

// Pitch returns the MIDI note number, or -1 for frequencies outside the table.
func (n Note) Pitch() int {
	c := n.class()
	if c < 0 {
		return -1
	}
	return 12*(n.Octave+1) + c
}

// String returns the note name, e.g. "G#2".
func (n Note) String() string {
	c := n.class()
	if c < 0 {
		return fmt.Sprintf("%.2fHz/%d", n.Frequency, n.Octave)
	}
	return pitchClassNames[c] + strconv.Itoa(n.Octave)
}

// Hz returns the sounding fundamental.
func (n Note) Hz() float64 {
	return float64(n.Frequency) * float64(uint(1)<<uint(n.Octave))
}

// BufferLength returns the delay line period for the note: the truncated
// sampleRate/(f*2^octave), bumped to the next even value.
func BufferLength(sampleRate int, n Note) int {
	hz := n.Hz()
	if hz <= 0 {
		return 0
	}
	l := int(float64(sampleRate) / hz)
	if l&1 == 1 {
		l++
	}
	return l
}

// CentsOff reports how far a delay line of length l at sampleRate sounds from
// the equal-tempered pitch of the note.
func (n Note) CentsOff(sampleRate int, l int) float64 {
	p := n.Pitch()
	if p < 0 || l <= 0 {
		return math.NaN()
	}
	realized := float64(sampleRate) / float64(l)
	ref := float64(midiNoteToFreq(p))
	return 1200.0 * math.Log2(realized/ref)
}

// Band maps readings strictly above Above to Note.
type Band struct {
	Above uint16
	Note  Note
}

// StringBands is the ordered band table for one string. Bands are checked
// in order (descending cut-points); readings matching none resolve to Default.
type StringBands struct {
	Bands   []Band
	Default Note
}

// Lookup resolves a fret reading to a note.
func (s StringBands) Lookup(reading uint16) Note {
	for _, b := range s.Bands {
		if reading > b.Above {
			return b.Note
		}
	}
	return s.Default
}

// Sorted reports whether the cut-points are strictly descending.
func (s StringBands) Sorted() bool {
	for i := 1; i < len(s.Bands); i++ {
		if s.Bands[i].Above >= s.Bands[i-1].Above {
			return false
		}
	}
	return true
}

// openCutoff and fretCutoffs are the fret sensor cut-points; a reading above
// openCutoff means no fret is pressed.
const openCutoff = 60000

var fretCutoffs = [4]uint16{32000, 35000, 39000, 42000}

// StandardBands builds the stock band table for an open string: the open
// note above the open cut-point, then frets 4 down to 1. Notes outside the
// pitch table only get the open band.
func StandardBands(open Note) StringBands {
	sb := StringBands{Default: open}
	sb.Bands = append(sb.Bands, Band{Above: openCutoff, Note: open})
	class := open.class()
	if class < 0 {
		return sb
	}
	for fret := 4; fret >= 1; fret-- {
		c := class + fret
		sb.Bands = append(sb.Bands, Band{Above: fretCutoffs[fret-1], Note: NewNote(c%12, open.Octave+c/12)})
	}
	return sb
}

// DefaultStringBands returns the band tables indexed by scanner channel.
func DefaultStringBands() [NumStrings]StringBands {
	return [NumStrings]StringBands{
		StandardBands(NewNote(4, 4)),  // channel 0: string 1, E4
		StandardBands(NewNote(4, 2)),  // channel 1: string 6, E2
		StandardBands(NewNote(9, 2)),  // channel 2: string 5, A2
		StandardBands(NewNote(2, 3)),  // channel 3: string 4, D3
		StandardBands(NewNote(7, 3)),  // channel 4: string 3, G3
		StandardBands(NewNote(11, 3)), // channel 5: string 2, B3
	}
}
