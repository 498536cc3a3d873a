package guitar

import "log/slog"

// Phase is the scheduler phase.
type Phase int

const (
	// Idle emits silence until a pluck arrives.
	Idle Phase = iota
	// Synthesizing materializes the output frame while emitting silence.
	Synthesizing
	// Playing emits the output frame.
	Playing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Synthesizing:
		return "synthesizing"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// NoteEventKind tells how a note cycle changed.
type NoteEventKind int

const (
	NoteStarted NoteEventKind = iota
	NoteFinished
	NoteAborted
)

func (k NoteEventKind) String() string {
	switch k {
	case NoteStarted:
		return "started"
	case NoteFinished:
		return "finished"
	case NoteAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// NoteEvent is delivered to the note observer.
type NoteEvent struct {
	Kind        NoteEventKind
	StringIndex int
	FretReading uint16
	Selection   Selection
	// Emitted counts the logical samples of the note sent so far.
	Emitted int
}

// Scheduler is the foreground loop: it consumes plucks, drives synthesis in
// chunks and paces frame emission to the output device. It is not safe for
// concurrent use; interrupt-side code talks to it only through Control.
type Scheduler struct {
	ctl      *Control
	inputs   AnalogInputs
	resolver *Resolver
	str      *KarplusStrong
	clipper  Clipper
	out      AudioOutput

	duration     int
	offset       int
	chunk        int
	fretChannels [NumStrings]int

	frame       []uint8
	synthesized int
	pos         int
	phase       Phase

	// right is true when the next device slot is the right channel.
	right   bool
	current int16

	note     NoteEvent
	observer func(NoteEvent)
	logger   *slog.Logger
}

// NewScheduler wires a scheduler. The output frame is allocated once.
func NewScheduler(p *Params, ctl *Control, inputs AnalogInputs, resolver *Resolver, str *KarplusStrong, out AudioOutput) *Scheduler {
	return &Scheduler{
		ctl:          ctl,
		inputs:       inputs,
		resolver:     resolver,
		str:          str,
		clipper:      NewClipper(p),
		out:          out,
		duration:     p.Duration,
		offset:       p.PlaybackOffset,
		chunk:        p.SynthesisChunk,
		fretChannels: p.FretChannels,
		frame:        make([]uint8, p.Duration),
		logger:       discardLogger(),
	}
}

// SetObserver installs a callback for note boundaries. It runs on the
// foreground loop and must not block.
func (s *Scheduler) SetObserver(fn func(NoteEvent)) { s.observer = fn }

// SetLogger sets the debug logger; nil discards.
func (s *Scheduler) SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger()
	}
	s.logger = l
}

// Phase returns the current phase.
func (s *Scheduler) Phase() Phase { return s.phase }

// Tick runs one scheduler iteration: check for a pluck, advance synthesis by
// one chunk, and serve at most one device slot. It reports whether anything
// was done, so callers can back off when idle.
func (s *Scheduler) Tick() bool {
	progress := false
	if s.ctl.PluckPending() {
		s.begin()
		progress = true
	}

	if s.phase == Synthesizing {
		s.synthesize()
		progress = true
	}

	if s.out.Poll() == Ready {
		s.serve()
		progress = true
	}
	return progress
}

func (s *Scheduler) begin() {
	if s.phase != Idle {
		s.abort()
	}
	p, ok := s.ctl.TakePluck()
	if !ok {
		return
	}

	fret := p.FretReading
	if !p.FretLatched && p.StringIndex >= 0 && p.StringIndex < NumStrings {
		fret = s.inputs.Reading(s.fretChannels[p.StringIndex])
	}
	sel := s.resolver.Resolve(PluckEvent{StringIndex: p.StringIndex, FretReading: fret, Intensity: p.Intensity})

	s.str.Start(sel.BufferLength)
	s.synthesized = 0
	s.pos = s.offset
	s.phase = Synthesizing
	s.note = NoteEvent{Kind: NoteStarted, StringIndex: p.StringIndex, FretReading: fret, Selection: sel}

	s.logger.Debug("note started",
		"string", p.StringIndex,
		"fret_reading", fret,
		"note", sel.Note.String(),
		"buffer_length", sel.BufferLength,
		"amplitude", sel.Amplitude)
	s.notify(NoteStarted)
}

func (s *Scheduler) abort() {
	s.logger.Debug("note aborted", "note", s.note.Selection.Note.String(), "emitted", s.note.Emitted)
	s.notify(NoteAborted)
	s.phase = Idle
}

func (s *Scheduler) finish() {
	s.str.Reseed()
	s.phase = Idle
	s.logger.Debug("note finished", "note", s.note.Selection.Note.String(), "emitted", s.note.Emitted)
	s.notify(NoteFinished)
}

func (s *Scheduler) synthesize() {
	end := s.synthesized + s.chunk
	if end > s.duration {
		end = s.duration
	}
	s.str.Render(s.frame[s.synthesized:end])
	s.synthesized = end
	if s.synthesized == s.duration {
		s.phase = Playing
	}
}

// serve fills one device slot. A logical sample is computed on the left slot
// and repeated on the right one, so notes always start on a left slot.
func (s *Scheduler) serve() {
	if s.right {
		s.out.SendSample(s.current)
		s.right = false
		return
	}

	s.current = 0
	if s.phase == Playing {
		if s.pos >= s.duration {
			s.finish()
		} else {
			raw := s.clipper.Apply(s.frame[s.pos], s.ctl.EffectEnabled())
			s.current = int16(s.note.Selection.Amplitude * float64(raw))
			s.pos++
			s.note.Emitted++
		}
	}
	s.out.SendSample(s.current)
	s.right = true
}

func (s *Scheduler) notify(kind NoteEventKind) {
	if s.observer == nil {
		return
	}
	ev := s.note
	ev.Kind = kind
	s.observer(ev)
}

// Frame returns the materialized output frame of the current note.
func (s *Scheduler) Frame() []uint8 { return s.frame[:s.synthesized] }
