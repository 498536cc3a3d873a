package preset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/cwbudde/algo-guitar/guitar"
)

func writePreset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return path
}

func TestLoadJSONAppliesGlobalAndStrings(t *testing.T) {
	dir := t.TempDir()
	irPath := filepath.Join(dir, "body.wav")
	presetPath := filepath.Join(dir, "preset.json")
	content := `{
  "playback_offset": 1000,
  "decay": 0.995,
  "clip_threshold": 90,
  "scan_tick_us": 20,
  "default_note": "A2",
  "body_ir_path": "body.wav",
  "strings": {
    "1": {"open": "D2"},
    "4": {
      "default": "G3",
      "bands": [
        {"above": 50000, "note": "G3"},
        {"above": 30000, "note": "A3"}
      ]
    }
  }
}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.PlaybackOffset != 1000 || p.Decay != 0.995 || p.ClipThreshold != 90 {
		t.Fatalf("global fields mismatch: %+v", p)
	}
	if p.ScanTick != 20*time.Microsecond {
		t.Fatalf("scan tick = %s", p.ScanTick)
	}
	if p.DefaultNote.String() != "A2" {
		t.Fatalf("default note = %s", p.DefaultNote)
	}
	if p.BodyIRPath != irPath {
		t.Fatalf("ir path mismatch: got=%q want=%q", p.BodyIRPath, irPath)
	}
	if got := p.Strings[1].Lookup(0xFFFF).String(); got != "D2" {
		t.Fatalf("dropped-D open note = %s", got)
	}
	if got := p.Strings[1].Lookup(43000).String(); got != "F#2" {
		t.Fatalf("dropped-D fret 4 = %s", got)
	}
	if got := p.Strings[4].Lookup(40000).String(); got != "A3" {
		t.Fatalf("custom band = %s", got)
	}
	if got := p.Strings[4].Lookup(10).String(); got != "G3" {
		t.Fatalf("custom default = %s", got)
	}
}

func TestLoadJSONChannelRotation(t *testing.T) {
	path := writePreset(t, `{
  "channel_rotation": 1,
  "strings": {"5": {"open": "D4"}}
}`)
	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	want := []string{"E2", "A2", "D3", "G3", "B3", "D4"}
	for i, w := range want {
		if got := p.Strings[i].Default.String(); got != w {
			t.Fatalf("channel %d open = %s, want %s", i, got, w)
		}
	}
	if got := p.FretChannels; got != [guitar.NumStrings]int{1, 2, 3, 4, 5, 6} {
		t.Fatalf("fret channels = %v", got)
	}
}

func TestLoadJSONRejectsInvalidInput(t *testing.T) {
	tests := map[string]string{
		"string key":     `{"strings": {"x": {"open": "E2"}}}`,
		"string range":   `{"strings": {"6": {"open": "E2"}}}`,
		"note name":      `{"default_note": "H2"}`,
		"decay":          `{"decay": 1.2}`,
		"clip":           `{"clip_value": 300}`,
		"unsorted bands": `{"strings": {"0": {"bands": [{"above": 1, "note": "E2"}, {"above": 5, "note": "F2"}]}}}`,
		"fret channels":  `{"fret_channels": [1, 2]}`,
		"offset":         `{"duration": 100, "playback_offset": 100}`,
		"json":           `{"decay":`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadJSON(writePreset(t, content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestWriteJSONLoadsBack(t *testing.T) {
	p := guitar.NewDefaultParams()
	p.PlaybackOffset = 1000
	p.Strings[2] = guitar.StandardBands(guitar.NewNote(7, 2))

	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteJSON(path, p); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("params changed on reload:\n got %+v\nwant %+v", got, p)
	}
}

func TestWriteJSONRejectsUnnamedNote(t *testing.T) {
	p := guitar.NewDefaultParams()
	p.DefaultNote = guitar.Note{Frequency: 19, Octave: 2}
	if err := WriteJSON(filepath.Join(t.TempDir(), "x.json"), p); err == nil {
		t.Fatalf("expected error")
	}
}
