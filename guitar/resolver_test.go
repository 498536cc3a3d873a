package guitar

import "testing"

func TestResolveOpenStringBelowAllBands(t *testing.T) {
	r := NewResolver(NewDefaultParams())
	sel := r.Resolve(PluckEvent{StringIndex: 0, FretReading: 0, Intensity: 1000})
	if sel.Note.String() != "E4" {
		t.Fatalf("note = %s, want E4", sel.Note)
	}
	if sel.BufferLength != 134 {
		t.Fatalf("buffer length = %d, want 134", sel.BufferLength)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := NewResolver(NewDefaultParams())
	for s := -1; s <= NumStrings; s++ {
		for fret := 0; fret <= 65535; fret += 997 {
			for _, in := range []uint16{0, 1, 3000, 59456, 65535} {
				ev := PluckEvent{StringIndex: s, FretReading: uint16(fret), Intensity: in}
				a, b := r.Resolve(ev), r.Resolve(ev)
				if a != b {
					t.Fatalf("Resolve(%+v) not deterministic: %+v vs %+v", ev, a, b)
				}
				if a.BufferLength < 2 || a.BufferLength%2 != 0 {
					t.Fatalf("Resolve(%+v) buffer length %d", ev, a.BufferLength)
				}
			}
		}
	}
}

func TestResolveUnknownStringUsesDefaultNote(t *testing.T) {
	p := NewDefaultParams()
	r := NewResolver(p)
	for _, s := range []int{-1, NumStrings, 200} {
		if got := r.Note(s, 50000); got != p.DefaultNote {
			t.Fatalf("Note(%d) = %s, want %s", s, got, p.DefaultNote)
		}
	}
}

func TestResolveBufferLengthClamped(t *testing.T) {
	p := NewDefaultParams()
	p.ExcitationSize = 301
	r := NewResolver(p)
	// E2 needs 536 samples; the delay line only holds 300.
	if got := r.Resolve(PluckEvent{StringIndex: 1}).BufferLength; got != 300 {
		t.Fatalf("buffer length = %d, want 300", got)
	}

	tiny := Note{Frequency: 30.87, Octave: 15}
	if got := r.BufferLength(tiny); got != p.MinBufferLength {
		t.Fatalf("buffer length = %d, want %d", got, p.MinBufferLength)
	}
}

func TestAmplitude(t *testing.T) {
	r := NewResolver(NewDefaultParams())
	tests := []struct {
		in   uint16
		want float64
	}{
		{0, 0},
		{2973, 10 * 2973.0 / 59456},
		{fullIntensity, 1},
		{59456, 1},
		{65535, 1},
	}
	for _, tt := range tests {
		if got := r.Amplitude(tt.in); got != tt.want {
			t.Fatalf("Amplitude(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLocate(t *testing.T) {
	r := NewResolver(NewDefaultParams())
	tests := []struct {
		pitch   int
		str     int
		reading uint16
	}{
		{40, 1, 0xFFFF},  // E2 open
		{44, 1, 42001},   // G#2, fret 4 on E2
		{45, 2, 0xFFFF},  // A2 open
		{60, 5, 32001},   // C4, fret 1 on B3
		{62, 5, 39001},   // D4, fret 3 on B3
		{64, 0, 0xFFFF},  // E4 open
		{28, 1, 0xFFFF},  // E1 folded up to E2
		{100, 0, 0xFFFF}, // E7 folded down to E4
	}
	for _, tt := range tests {
		s, reading, ok := r.Locate(tt.pitch)
		if !ok {
			t.Fatalf("Locate(%d) failed", tt.pitch)
		}
		if s != tt.str || reading != tt.reading {
			t.Fatalf("Locate(%d) = (%d, %d), want (%d, %d)", tt.pitch, s, reading, tt.str, tt.reading)
		}
		if got := r.Note(s, reading).Pitch() % 12; got != tt.pitch%12 {
			t.Fatalf("Locate(%d) resolves to pitch class %d", tt.pitch, got)
		}
	}
}
