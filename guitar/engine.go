package guitar

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// Guitar wires the control block, the sensor inputs, the synthesizer and the
// scheduler into one instrument. Interrupt-side entry points (OnCapture,
// HandleEdge, ScanTick, SetMode, Readings().Set) may be called from other
// goroutines; Tick and Run belong to a single foreground goroutine.
type Guitar struct {
	params     *Params
	ctl        *Control
	readings   *Readings
	excitation []uint8
	str        *KarplusStrong
	resolver   *Resolver
	scheduler  *Scheduler
	pluck      *PluckSource
	scanner    *Scanner
	mode       *ModeSwitch
	logger     *slog.Logger

	rnd      RandomSource
	selector Selector
	fresh    bool
}

// Option configures a Guitar.
type Option func(*Guitar)

// WithRandomSource sets the excitation noise source.
func WithRandomSource(rnd RandomSource) Option {
	return func(g *Guitar) { g.rnd = rnd }
}

// WithSelector sets the multiplexer driven by the scanner.
func WithSelector(sel Selector) Option {
	return func(g *Guitar) { g.selector = sel }
}

// WithLogger sets the logger for note boundaries.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guitar) { g.logger = l }
}

// WithFreshExcitation redraws the excitation noise on every reseed instead of
// reusing the startup noise.
func WithFreshExcitation() Option {
	return func(g *Guitar) { g.fresh = true }
}

// NewGuitar creates an instrument emitting to out.
func NewGuitar(params *Params, out AudioOutput, opts ...Option) (*Guitar, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("nil audio output")
	}

	g := &Guitar{
		params:   params,
		ctl:      NewControl(),
		readings: &Readings{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = NewRandomSource(time.Now().UnixNano())
	}
	if g.logger == nil {
		g.logger = discardLogger()
	}

	g.excitation = NewExcitation(params.ExcitationSize, g.rnd)
	g.str = NewKarplusStrong(g.excitation, params.Decay)
	if g.fresh {
		g.str.SetRefresh(g.rnd)
	}
	g.resolver = NewResolver(params)
	g.scheduler = NewScheduler(params, g.ctl, g.readings, g.resolver, g.str, out)
	g.scheduler.SetLogger(g.logger)
	g.pluck = NewPluckSource(g.ctl, g.readings, params.IntensityChannel)
	g.scanner = NewScanner(g.ctl, g.selector, params.ScanChannels)
	g.mode = NewModeSwitch(g.ctl)
	return g, nil
}

func (g *Guitar) Params() *Params       { return g.params }
func (g *Guitar) Control() *Control     { return g.ctl }
func (g *Guitar) Readings() *Readings   { return g.readings }
func (g *Guitar) Resolver() *Resolver   { return g.resolver }
func (g *Guitar) Synth() *KarplusStrong { return g.str }
func (g *Guitar) Phase() Phase          { return g.scheduler.Phase() }

// OnNote installs the note observer.
func (g *Guitar) OnNote(fn func(NoteEvent)) { g.scheduler.SetObserver(fn) }

// Tick runs one foreground iteration.
func (g *Guitar) Tick() bool { return g.scheduler.Tick() }

// ScanTick advances the string scanner by one timer period.
func (g *Guitar) ScanTick() { g.scanner.Tick() }

// OnCapture handles one beam edge interrupt.
func (g *Guitar) OnCapture(flags CaptureFlags) { g.pluck.OnCapture(flags) }

// HandleEdge handles an already classified beam edge.
func (g *Guitar) HandleEdge(kind EdgeKind) { g.pluck.HandleEdge(kind) }

// SetMode sets the effect switch level.
func (g *Guitar) SetMode(on bool) { g.mode.OnLevel(on) }

// InjectPluck breaks a beam without hardware: the scanner is frozen on
// stringIndex and a pluck carrying its own fret reading and intensity is
// raised. The shared sensor table is left untouched, so a live sensor sweep
// can neither change the injected note nor be clobbered by it.
func (g *Guitar) InjectPluck(stringIndex int, fretReading, intensity uint16) {
	g.ctl.SetScannerEnabled(false)
	g.ctl.SetStringIndex(stringIndex)
	g.ctl.RaiseLatched(stringIndex, fretReading, intensity)
}

// ReleasePluck restores the beam of the last injected pluck.
func (g *Guitar) ReleasePluck() { g.pluck.HandleEdge(BreakEnd) }

const (
	idleSpins = 64
	idleSleep = 50 * time.Microsecond
)

// Run drives the foreground loop until ctx is done. Idle iterations yield
// first and then sleep briefly.
func (g *Guitar) Run(ctx context.Context) error {
	idle := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if g.scheduler.Tick() {
			idle = 0
			continue
		}
		idle++
		if idle < idleSpins {
			runtime.Gosched()
		} else {
			time.Sleep(idleSleep)
		}
	}
}

// RunScanner ticks the scanner every period until ctx is done.
func (g *Guitar) RunScanner(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		period = g.params.ScanTick
	}
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			g.scanner.Tick()
		}
	}
}
