package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-guitar/guitar"
)

// File is the JSON schema for guitar presets.
type File struct {
	SampleRate         *int                     `json:"sample_rate,omitempty"`
	Duration           *int                     `json:"duration,omitempty"`
	PlaybackOffset     *int                     `json:"playback_offset,omitempty"`
	SynthesisChunk     *int                     `json:"synthesis_chunk,omitempty"`
	Decay              *float64                 `json:"decay,omitempty"`
	ExcitationSize     *int                     `json:"excitation_size,omitempty"`
	MinBufferLength    *int                     `json:"min_buffer_length,omitempty"`
	ClipThreshold      *int                     `json:"clip_threshold,omitempty"`
	ClipValue          *int                     `json:"clip_value,omitempty"`
	IntensityGain      *float64                 `json:"intensity_gain,omitempty"`
	IntensityFullScale *float64                 `json:"intensity_full_scale,omitempty"`
	MaxAmplitude       *float64                 `json:"max_amplitude,omitempty"`
	ScanTickMicros     *int                     `json:"scan_tick_us,omitempty"`
	IntensityChannel   *int                     `json:"intensity_channel,omitempty"`
	ChannelRotation    *int                     `json:"channel_rotation,omitempty"`
	FretChannels       []int                    `json:"fret_channels,omitempty"`
	DefaultNote        string                   `json:"default_note,omitempty"`
	BodyIRPath         string                   `json:"body_ir_path,omitempty"`
	Strings            map[string]StringSetting `json:"strings,omitempty"`
}

// StringSetting overrides the band table of one scanner channel. Open
// rebuilds the standard four-fret table from an open note; Bands replaces the
// table entirely.
type StringSetting struct {
	Open    string        `json:"open,omitempty"`
	Default string        `json:"default,omitempty"`
	Bands   []BandSetting `json:"bands,omitempty"`
}

// BandSetting maps fret readings strictly above Above to Note.
type BandSetting struct {
	Above int    `json:"above"`
	Note  string `json:"note"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*guitar.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := guitar.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}

	if p.BodyIRPath != "" && !filepath.IsAbs(p.BodyIRPath) {
		base := filepath.Dir(path)
		p.BodyIRPath = filepath.Clean(filepath.Join(base, p.BodyIRPath))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *guitar.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.SampleRate != nil {
		if *f.SampleRate < 1000 {
			return fmt.Errorf("sample_rate must be >= 1000")
		}
		dst.SampleRate = *f.SampleRate
	}
	if f.Duration != nil {
		if *f.Duration < 1 {
			return fmt.Errorf("duration must be >= 1")
		}
		dst.Duration = *f.Duration
	}
	if f.PlaybackOffset != nil {
		if *f.PlaybackOffset < 0 {
			return fmt.Errorf("playback_offset must be >= 0")
		}
		dst.PlaybackOffset = *f.PlaybackOffset
	}
	if f.SynthesisChunk != nil {
		if *f.SynthesisChunk < 1 {
			return fmt.Errorf("synthesis_chunk must be >= 1")
		}
		dst.SynthesisChunk = *f.SynthesisChunk
	}
	if f.Decay != nil {
		if *f.Decay <= 0 || *f.Decay >= 1 {
			return fmt.Errorf("decay must be in (0,1)")
		}
		dst.Decay = *f.Decay
	}
	if f.ExcitationSize != nil {
		if *f.ExcitationSize < 2 {
			return fmt.Errorf("excitation_size must be >= 2")
		}
		dst.ExcitationSize = *f.ExcitationSize
	}
	if f.MinBufferLength != nil {
		dst.MinBufferLength = *f.MinBufferLength
	}
	if f.ClipThreshold != nil {
		v, err := byteField("clip_threshold", *f.ClipThreshold)
		if err != nil {
			return err
		}
		dst.ClipThreshold = v
	}
	if f.ClipValue != nil {
		v, err := byteField("clip_value", *f.ClipValue)
		if err != nil {
			return err
		}
		dst.ClipValue = v
	}
	if f.IntensityGain != nil {
		if *f.IntensityGain < 0 {
			return fmt.Errorf("intensity_gain must be >= 0")
		}
		dst.IntensityGain = *f.IntensityGain
	}
	if f.IntensityFullScale != nil {
		if *f.IntensityFullScale <= 0 {
			return fmt.Errorf("intensity_full_scale must be > 0")
		}
		dst.IntensityFullScale = *f.IntensityFullScale
	}
	if f.MaxAmplitude != nil {
		if *f.MaxAmplitude <= 0 {
			return fmt.Errorf("max_amplitude must be > 0")
		}
		dst.MaxAmplitude = *f.MaxAmplitude
	}
	if f.ScanTickMicros != nil {
		if *f.ScanTickMicros < 1 {
			return fmt.Errorf("scan_tick_us must be >= 1")
		}
		dst.ScanTick = time.Duration(*f.ScanTickMicros) * time.Microsecond
	}
	if f.IntensityChannel != nil {
		dst.IntensityChannel = *f.IntensityChannel
	}
	// Rotation comes first so fret_channels and strings address the
	// rotated channels.
	if f.ChannelRotation != nil {
		dst.RotateChannels(*f.ChannelRotation)
	}
	if len(f.FretChannels) > 0 {
		if len(f.FretChannels) != guitar.NumStrings {
			return fmt.Errorf("fret_channels must have %d entries", guitar.NumStrings)
		}
		copy(dst.FretChannels[:], f.FretChannels)
	}
	if f.DefaultNote != "" {
		n, err := guitar.ParseNote(f.DefaultNote)
		if err != nil {
			return fmt.Errorf("default_note: %w", err)
		}
		dst.DefaultNote = n
	}
	if f.BodyIRPath != "" {
		dst.BodyIRPath = strings.TrimSpace(f.BodyIRPath)
	}

	keys := make([]string, 0, len(f.Strings))
	for k := range f.Strings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx >= guitar.NumStrings {
			return fmt.Errorf("invalid strings key %q (expected 0..%d)", k, guitar.NumStrings-1)
		}
		sb, err := applyString(dst.Strings[idx], f.Strings[k])
		if err != nil {
			return fmt.Errorf("strings[%d]: %w", idx, err)
		}
		dst.Strings[idx] = sb
	}
	return nil
}

func applyString(sb guitar.StringBands, s StringSetting) (guitar.StringBands, error) {
	if s.Open != "" {
		n, err := guitar.ParseNote(s.Open)
		if err != nil {
			return sb, fmt.Errorf("open: %w", err)
		}
		sb = guitar.StandardBands(n)
	}
	if s.Default != "" {
		n, err := guitar.ParseNote(s.Default)
		if err != nil {
			return sb, fmt.Errorf("default: %w", err)
		}
		sb.Default = n
	}
	if len(s.Bands) == 0 {
		return sb, nil
	}

	bands := make([]guitar.Band, 0, len(s.Bands))
	for i, b := range s.Bands {
		if b.Above < 0 || b.Above > 0xFFFF {
			return sb, fmt.Errorf("bands[%d].above must be in [0,65535]", i)
		}
		n, err := guitar.ParseNote(b.Note)
		if err != nil {
			return sb, fmt.Errorf("bands[%d].note: %w", i, err)
		}
		bands = append(bands, guitar.Band{Above: uint16(b.Above), Note: n})
	}
	sb.Bands = bands
	if !sb.Sorted() {
		return sb, fmt.Errorf("bands must have strictly descending cut-points")
	}
	return sb, nil
}

func byteField(name string, v int) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("%s must be in [0,255]", name)
	}
	return uint8(v), nil
}
