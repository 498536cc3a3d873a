package guitar

import "testing"

type schedulerRig struct {
	s      *Scheduler
	ctl    *Control
	in     *fakeInputs
	out    *recordingOutput
	exc    []uint8
	events []NoteEvent
}

func newSchedulerRig(p *Params, out *recordingOutput) *schedulerRig {
	r := &schedulerRig{ctl: NewControl(), in: &fakeInputs{}, out: out}
	exc := NewExcitation(p.ExcitationSize, NewRandomSource(5))
	r.exc = append([]uint8(nil), exc...)
	ks := NewKarplusStrong(exc, p.Decay)
	r.s = NewScheduler(p, r.ctl, r.in, NewResolver(p), ks, out)
	r.s.SetObserver(func(ev NoteEvent) { r.events = append(r.events, ev) })
	return r
}

func (r *schedulerRig) pluck(p *Params, str int, fret, intensity uint16) {
	r.in[p.FretChannels[str]] = fret
	r.ctl.Raise(str, intensity)
}

func (r *schedulerRig) runUntil(t *testing.T, kind NoteEventKind) {
	t.Helper()
	for i := 0; i < 100000; i++ {
		if n := len(r.events); n > 0 && r.events[n-1].Kind == kind {
			return
		}
		r.s.Tick()
	}
	t.Fatalf("no %s event", kind)
}

// firstNoteSlot is the device slot index of the first note sample for an
// always-ready device starting on a left slot.
func firstNoteSlot(p *Params) int {
	ticks := (p.Duration + p.SynthesisChunk - 1) / p.SynthesisChunk
	slot := ticks - 1
	return slot + slot%2
}

func TestSchedulerEmitsFrameDuplicated(t *testing.T) {
	p := smallParams()
	r := newSchedulerRig(p, newReadyOutput())
	r.pluck(p, 0, 0, fullIntensity)
	r.runUntil(t, NoteFinished)

	want := expectedFrame(r.exc, p.Decay, 134, p.Duration)
	start := firstNoteSlot(p)
	for i := 0; i < start; i++ {
		if r.out.data[i] != 0 {
			t.Fatalf("slot %d = %d during synthesis, want silence", i, r.out.data[i])
		}
	}
	for i, w := range want {
		l, rr := r.out.data[start+2*i], r.out.data[start+2*i+1]
		if l != int16(w) || rr != int16(w) {
			t.Fatalf("sample %d = (%d, %d), want %d twice", i, l, rr, w)
		}
	}

	ev := r.events[len(r.events)-1]
	if ev.Emitted != p.Duration {
		t.Fatalf("emitted = %d, want %d", ev.Emitted, p.Duration)
	}
	if r.s.Phase() != Idle || r.s.str.State() != Resting {
		t.Fatalf("after finish phase %s string %s", r.s.Phase(), r.s.str.State())
	}
}

func TestSchedulerPlaybackOffset(t *testing.T) {
	p := smallParams()
	p.PlaybackOffset = 100
	r := newSchedulerRig(p, newReadyOutput())
	r.pluck(p, 0, 0, fullIntensity)
	r.runUntil(t, NoteFinished)

	want := expectedFrame(r.exc, p.Decay, 134, p.Duration)[100:]
	start := firstNoteSlot(p)
	for i, w := range want {
		if got := r.out.data[start+2*i]; got != int16(w) {
			t.Fatalf("sample %d = %d, want %d", i, got, w)
		}
	}
	if got := r.events[len(r.events)-1].Emitted; got != 200 {
		t.Fatalf("emitted = %d, want 200", got)
	}
}

func TestSchedulerAbortRestartsFromFreshDelayLine(t *testing.T) {
	p := smallParams()
	r := newSchedulerRig(p, newReadyOutput())
	r.pluck(p, 0, 0, fullIntensity)

	for r.s.Phase() != Playing {
		r.s.Tick()
	}
	for i := 0; i < 41; i++ {
		r.s.Tick()
	}
	abortAt := len(r.out.data)

	// A2 open: delay line of 400 samples.
	r.pluck(p, 2, 65535, fullIntensity)
	before := 0
	for {
		before = len(r.out.data)
		r.s.Tick()
		if r.s.Phase() == Playing {
			break
		}
	}

	kinds := []NoteEventKind{NoteStarted, NoteAborted, NoteStarted}
	if len(r.events) != len(kinds) {
		t.Fatalf("events = %+v", r.events)
	}
	for i, k := range kinds {
		if r.events[i].Kind != k {
			t.Fatalf("event %d = %s, want %s", i, r.events[i].Kind, k)
		}
	}
	if r.events[1].Emitted == 0 || r.events[1].Emitted >= p.Duration {
		t.Fatalf("aborted after %d samples", r.events[1].Emitted)
	}

	firstLeft := before + before%2
	for i := abortAt + abortAt%2; i < firstLeft; i++ {
		if r.out.data[i] != 0 {
			t.Fatalf("slot %d = %d between notes, want silence", i, r.out.data[i])
		}
	}

	r.runUntil(t, NoteFinished)
	want := expectedFrame(r.exc, p.Decay, 400, p.Duration)
	for i, w := range want {
		if got := r.out.data[firstLeft+2*i]; got != int16(w) {
			t.Fatalf("restarted sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestSchedulerPluckDuringSynthesisPreempts(t *testing.T) {
	p := smallParams()
	r := newSchedulerRig(p, newReadyOutput())
	// E4 below all bands: delay line of 134 samples.
	r.pluck(p, 0, 0, fullIntensity)
	r.s.Tick()
	if r.s.Phase() != Synthesizing {
		t.Fatalf("phase after one tick = %s, want synthesizing", r.s.Phase())
	}

	// A2 open: delay line of 400 samples.
	r.pluck(p, 2, 65535, fullIntensity)
	before := 0
	for {
		before = len(r.out.data)
		r.s.Tick()
		if r.s.Phase() == Playing {
			break
		}
	}

	kinds := []NoteEventKind{NoteStarted, NoteAborted, NoteStarted}
	if len(r.events) != len(kinds) {
		t.Fatalf("events = %+v", r.events)
	}
	for i, k := range kinds {
		if r.events[i].Kind != k {
			t.Fatalf("event %d = %s, want %s", i, r.events[i].Kind, k)
		}
	}
	if r.events[1].Emitted != 0 || r.events[1].Selection.BufferLength != 134 {
		t.Fatalf("aborted note = %+v", r.events[1])
	}
	if r.events[2].StringIndex != 2 || r.events[2].Selection.BufferLength != 400 {
		t.Fatalf("new note = %+v", r.events[2])
	}

	want := expectedFrame(r.exc, p.Decay, 400, p.Duration)
	frame := r.s.Frame()
	if len(frame) != len(want) {
		t.Fatalf("frame length = %d, want %d", len(frame), len(want))
	}
	for i, w := range want {
		if frame[i] != w {
			t.Fatalf("frame[%d] = %d, want %d", i, frame[i], w)
		}
	}

	firstLeft := before + before%2
	for i := 0; i < firstLeft; i++ {
		if r.out.data[i] != 0 {
			t.Fatalf("slot %d = %d before the new note, want silence", i, r.out.data[i])
		}
	}
	r.runUntil(t, NoteFinished)
	for i, w := range want {
		if got := r.out.data[firstLeft+2*i]; got != int16(w) {
			t.Fatalf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestSchedulerPacesToDevice(t *testing.T) {
	p := smallParams()
	out := &recordingOutput{pattern: []bool{false}}
	r := newSchedulerRig(p, out)

	if r.s.Tick() {
		t.Fatalf("idle tick on a busy device should report no progress")
	}
	r.pluck(p, 0, 0, fullIntensity)
	for i := 0; i < 5; i++ {
		if !r.s.Tick() {
			t.Fatalf("synthesis tick %d reported no progress", i)
		}
	}
	if r.s.Phase() != Playing {
		t.Fatalf("phase = %s, want playing", r.s.Phase())
	}
	if r.s.Tick() {
		t.Fatalf("playing tick on a busy device should report no progress")
	}
	if len(out.data) != 0 {
		t.Fatalf("sent %d samples to a busy device", len(out.data))
	}

	out.pattern = []bool{true, false, false}
	for len(out.data) < 4 {
		r.s.Tick()
	}
	want := expectedFrame(r.exc, p.Decay, 134, 2)
	if out.data[0] != int16(want[0]) || out.data[1] != int16(want[0]) || out.data[2] != int16(want[1]) {
		t.Fatalf("paced output = %v, want %v duplicated", out.data, want)
	}
}

func TestSchedulerAppliesEffectAndAmplitude(t *testing.T) {
	p := smallParams()
	r := newSchedulerRig(p, newReadyOutput())
	r.ctl.SetEffectEnabled(true)
	r.pluck(p, 0, 0, 2973)
	r.runUntil(t, NoteFinished)

	amp := NewResolver(p).Amplitude(2973)
	clip := NewClipper(p)
	want := expectedFrame(r.exc, p.Decay, 134, p.Duration)
	start := firstNoteSlot(p)
	for i, w := range want {
		exp := int16(amp * float64(clip.Apply(w, true)))
		if got := r.out.data[start+2*i]; got != exp {
			t.Fatalf("sample %d = %d, want %d", i, got, exp)
		}
	}
}
