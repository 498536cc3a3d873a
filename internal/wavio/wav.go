package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadMono reads a WAV file and downmixes it to mono.
func ReadMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out, buf.Format.SampleRate, nil
}

// ResampleIfNeeded converts in from fromRate to toRate.
func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// ResampleInterleaved resamples every channel of an interleaved buffer.
func ResampleInterleaved(in []float32, channels int, fromRate int, toRate int) ([]float32, error) {
	if fromRate == toRate || channels < 1 {
		return in, nil
	}
	frames := len(in) / channels
	var out []float32
	for c := 0; c < channels; c++ {
		mono := make([]float64, frames)
		for i := range mono {
			mono[i] = float64(in[i*channels+c])
		}
		res, err := ResampleIfNeeded(mono, fromRate, toRate)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = make([]float32, len(res)*channels)
		}
		for i := 0; i < len(res) && i*channels+c < len(out); i++ {
			out[i*channels+c] = float32(res[i])
		}
	}
	return out, nil
}

// WriteInterleaved writes 16-bit PCM from interleaved float samples in [-1,1].
func WriteInterleaved(path string, samples []float32, channels int, sampleRate int) error {
	if channels < 1 {
		return fmt.Errorf("channels must be >= 1")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

// WriteStereo writes an interleaved stereo WAV.
func WriteStereo(path string, samples []float32, sampleRate int) error {
	return WriteInterleaved(path, samples, 2, sampleRate)
}

// WriteMono writes a mono WAV.
func WriteMono(path string, data []float32, sampleRate int) error {
	return WriteInterleaved(path, data, 1, sampleRate)
}

// StereoToMono averages an interleaved stereo buffer.
func StereoToMono(st []float32) []float64 {
	if len(st) < 2 {
		return nil
	}
	n := len(st) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = 0.5 * (float64(st[i*2]) + float64(st[i*2+1]))
	}
	return out
}
