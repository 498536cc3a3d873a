package guitar

import "sync/atomic"

// Control is the state shared between the interrupt-side handlers (pluck
// capture, scanner tick, mode switch, sampler refresh) and the foreground
// scheduler. Every field has a single writer side:
//
//	pending, scanner, stringIndex: written by PluckSource and Scanner, read by Scheduler
//	effect:                        written by the mode switch, read by Scheduler
//
// Fields are independent atomics; a reader may observe a string index and an
// unrelated fret reading from different moments.
type Control struct {
	// pending packs the single pluck slot: bit 63 = valid, bit 62 = fret
	// latched, bits 32..39 = string index, bits 16..31 = latched fret
	// reading, bits 0..15 = latched intensity.
	pending     atomic.Uint64
	scanner     atomic.Bool
	effect      atomic.Bool
	stringIndex atomic.Int32
}

const (
	pendingValid = uint64(1) << 63
	pendingFret  = uint64(1) << 62
)

// NewControl returns a control block with the scanner running.
func NewControl() *Control {
	c := &Control{}
	c.scanner.Store(true)
	return c
}

// PendingPluck is the consumed form of a pluck slot.
type PendingPluck struct {
	StringIndex int
	Intensity   uint16
	// FretReading is only meaningful when FretLatched is set; otherwise the
	// consumer samples the fret sensor itself.
	FretReading uint16
	FretLatched bool
}

// Raise overwrites the pluck slot; an unconsumed earlier pluck is lost.
func (c *Control) Raise(stringIndex int, intensity uint16) {
	v := pendingValid | uint64(uint8(stringIndex))<<32 | uint64(intensity)
	c.pending.Store(v)
}

// RaiseLatched overwrites the pluck slot with a pluck that carries its own
// fret reading. Later sensor sweeps and scanner ticks do not affect it.
func (c *Control) RaiseLatched(stringIndex int, fretReading, intensity uint16) {
	v := pendingValid | pendingFret | uint64(uint8(stringIndex))<<32 |
		uint64(fretReading)<<16 | uint64(intensity)
	c.pending.Store(v)
}

// PluckPending reports whether a pluck waits without consuming it.
func (c *Control) PluckPending() bool {
	return c.pending.Load()&pendingValid != 0
}

// TakePluck consumes the pluck slot.
func (c *Control) TakePluck() (PendingPluck, bool) {
	v := c.pending.Swap(0)
	if v&pendingValid == 0 {
		return PendingPluck{}, false
	}
	return PendingPluck{
		StringIndex: int(uint8(v >> 32)),
		Intensity:   uint16(v),
		FretReading: uint16(v >> 16),
		FretLatched: v&pendingFret != 0,
	}, true
}

// ScannerEnabled reports whether the scanner may advance; it is off while a
// beam is broken.
func (c *Control) ScannerEnabled() bool { return c.scanner.Load() }

// SetScannerEnabled freezes or resumes the scanner.
func (c *Control) SetScannerEnabled(on bool) { c.scanner.Store(on) }

// EffectEnabled reports whether the scheduler applies the body effect.
func (c *Control) EffectEnabled() bool { return c.effect.Load() }

// SetEffectEnabled sets the effect mode.
func (c *Control) SetEffectEnabled(on bool) { c.effect.Store(on) }

// StringIndex is the channel the scanner last selected.
func (c *Control) StringIndex() int { return int(c.stringIndex.Load()) }

// SetStringIndex records the channel the scanner just selected.
func (c *Control) SetStringIndex(channel int) { c.stringIndex.Store(int32(channel)) }

// Readings is the analog sampler's continuously refreshed channel table.
type Readings struct {
	ch [NumAnalogChannels]atomic.Uint32
}

// Set stores the latest value of one channel; out of range channels are ignored.
func (r *Readings) Set(channel int, v uint16) {
	if channel < 0 || channel >= NumAnalogChannels {
		return
	}
	r.ch[channel].Store(uint32(v))
}

// SetAll refreshes channels in order, as one DMA sweep does.
func (r *Readings) SetAll(values []uint16) {
	for i, v := range values {
		r.Set(i, v)
	}
}

// Reading returns the latest value of one channel.
func (r *Readings) Reading(channel int) uint16 {
	if channel < 0 || channel >= NumAnalogChannels {
		return 0
	}
	return uint16(r.ch[channel].Load())
}

// AnalogInputs is the sampler as seen by the pluck source and the scheduler.
type AnalogInputs interface {
	Reading(channel int) uint16
}
