package guitar

import "testing"

func TestPollEdge(t *testing.T) {
	tests := []struct {
		flags CaptureFlags
		kind  EdgeKind
		ok    bool
	}{
		{0, 0, false},
		{CaptureRising, BreakStart, true},
		{CaptureFalling, BreakEnd, true},
		{CaptureRising | CaptureFalling, BreakStart, true},
	}
	for _, tt := range tests {
		kind, ok := PollEdge(tt.flags)
		if ok != tt.ok || (ok && kind != tt.kind) {
			t.Fatalf("PollEdge(%b) = (%s, %v), want (%s, %v)", tt.flags, kind, ok, tt.kind, tt.ok)
		}
	}
}

func TestBreakStartLatchesIntensityAndFreezesScanner(t *testing.T) {
	ctl := NewControl()
	in := &fakeInputs{}
	in[0] = 30000
	ctl.SetStringIndex(3)

	src := NewPluckSource(ctl, in, 0)
	src.OnCapture(CaptureRising)

	if ctl.ScannerEnabled() {
		t.Fatalf("scanner should be frozen after a break")
	}
	in[0] = 1
	p, ok := ctl.TakePluck()
	if !ok {
		t.Fatalf("no pluck pending")
	}
	if p.StringIndex != 3 || p.Intensity != 30000 {
		t.Fatalf("pluck = %+v, want string 3 intensity 30000", p)
	}

	src.OnCapture(CaptureFalling)
	if !ctl.ScannerEnabled() {
		t.Fatalf("scanner should resume after the beam is restored")
	}
	if ctl.PluckPending() {
		t.Fatalf("BreakEnd must not raise a pluck")
	}
}

func TestRepeatedBreaksKeepMostRecent(t *testing.T) {
	ctl := NewControl()
	in := &fakeInputs{}
	src := NewPluckSource(ctl, in, 0)

	for i := 1; i <= 3; i++ {
		ctl.SetStringIndex(i)
		in[0] = uint16(1000 * i)
		src.HandleEdge(BreakStart)
	}
	p, ok := ctl.TakePluck()
	if !ok || p.StringIndex != 3 || p.Intensity != 3000 {
		t.Fatalf("pluck = %+v ok=%v, want the last break", p, ok)
	}
	if _, ok := ctl.TakePluck(); ok {
		t.Fatalf("pluck slot should be empty after take")
	}
}

func TestModeSwitch(t *testing.T) {
	ctl := NewControl()
	m := NewModeSwitch(ctl)
	m.OnLevel(true)
	if !ctl.EffectEnabled() {
		t.Fatalf("effect should be on")
	}
	m.OnLevel(false)
	if ctl.EffectEnabled() {
		t.Fatalf("effect should be off")
	}
}
