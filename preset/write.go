package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cwbudde/algo-guitar/guitar"
)

// FromParams converts params into a fully populated preset file. Notes
// outside the pitch table cannot be named and make the conversion fail.
func FromParams(p *guitar.Params) (*File, error) {
	if p == nil {
		return nil, fmt.Errorf("nil params")
	}
	f := &File{
		SampleRate:         intPtr(p.SampleRate),
		Duration:           intPtr(p.Duration),
		PlaybackOffset:     intPtr(p.PlaybackOffset),
		SynthesisChunk:     intPtr(p.SynthesisChunk),
		Decay:              floatPtr(p.Decay),
		ExcitationSize:     intPtr(p.ExcitationSize),
		MinBufferLength:    intPtr(p.MinBufferLength),
		ClipThreshold:      intPtr(int(p.ClipThreshold)),
		ClipValue:          intPtr(int(p.ClipValue)),
		IntensityGain:      floatPtr(p.IntensityGain),
		IntensityFullScale: floatPtr(p.IntensityFullScale),
		MaxAmplitude:       floatPtr(p.MaxAmplitude),
		ScanTickMicros:     intPtr(int(p.ScanTick / time.Microsecond)),
		IntensityChannel:   intPtr(p.IntensityChannel),
		FretChannels:       append([]int(nil), p.FretChannels[:]...),
		BodyIRPath:         p.BodyIRPath,
		Strings:            make(map[string]StringSetting, guitar.NumStrings),
	}

	name, err := noteName(p.DefaultNote)
	if err != nil {
		return nil, fmt.Errorf("default note: %w", err)
	}
	f.DefaultNote = name

	for i, sb := range p.Strings {
		def, err := noteName(sb.Default)
		if err != nil {
			return nil, fmt.Errorf("string %d default: %w", i, err)
		}
		s := StringSetting{Default: def}
		for j, b := range sb.Bands {
			n, err := noteName(b.Note)
			if err != nil {
				return nil, fmt.Errorf("string %d band %d: %w", i, j, err)
			}
			s.Bands = append(s.Bands, BandSetting{Above: int(b.Above), Note: n})
		}
		f.Strings[strconv.Itoa(i)] = s
	}
	return f, nil
}

// WriteJSON writes params as an indented preset file.
func WriteJSON(path string, p *guitar.Params) error {
	f, err := FromParams(p)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func noteName(n guitar.Note) (string, error) {
	if n.Pitch() < 0 {
		return "", fmt.Errorf("note %s is not in the pitch table", n)
	}
	return n.String(), nil
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
