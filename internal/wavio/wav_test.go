package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteStereoReadMono(t *testing.T) {
	const sr = 8000
	st := make([]float32, 2*sr/10)
	for i := 0; i < len(st)/2; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/sr))
		st[2*i], st[2*i+1] = v, v
	}
	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	if err := WriteStereo(path, st, sr); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	mono, rate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if rate != sr {
		t.Fatalf("rate = %d, want %d", rate, sr)
	}
	if len(mono) != len(st)/2 {
		t.Fatalf("frames = %d, want %d", len(mono), len(st)/2)
	}
}

func TestReadMonoRejectsMissingFile(t *testing.T) {
	if _, _, err := ReadMono(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStereoToMono(t *testing.T) {
	got := StereoToMono([]float32{1, 0, 0.5, 0.5, -1, 1})
	want := []float64{0.5, 0.5, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if StereoToMono([]float32{1}) != nil {
		t.Fatalf("short input should give nil")
	}
}

func TestResampleIfNeededIdentity(t *testing.T) {
	in := []float64{1, 2, 3}
	out, err := ResampleIfNeeded(in, 44100, 44100)
	if err != nil || &out[0] != &in[0] {
		t.Fatalf("same-rate resample should return input")
	}
}

func TestResampleInterleavedLength(t *testing.T) {
	in := make([]float32, 2*4410)
	out, err := ResampleInterleaved(in, 2, 44100, 22050)
	if err != nil {
		t.Fatalf("ResampleInterleaved: %v", err)
	}
	frames := len(out) / 2
	if frames < 2100 || frames > 2300 {
		t.Fatalf("frames = %d, want about 2205", frames)
	}
}
