package dsp

// FullScale is the largest magnitude the synthesizer emits at unity amplitude.
const FullScale = 255

// Conditioner turns the synthesizer's interleaved 16-bit stream, which only
// carries non-negative magnitudes, into zero-centred float audio for host
// sinks. Each channel gets its own DC blocker and optional lowpass.
type Conditioner struct {
	channels int
	gain     float32
	dc       []*DCBlocker
	lp       []*Biquad
}

// ConditionerConfig configures a Conditioner.
type ConditionerConfig struct {
	SampleRate int
	Channels   int
	// DCCutoff is the DC blocker corner in Hz.
	DCCutoff float32
	// LowpassCutoff <= 0 disables the lowpass.
	LowpassCutoff float32
	// Gain scales the output after normalisation to FullScale.
	Gain float32
}

// DefaultConditionerConfig returns a stereo config for the given sample rate.
func DefaultConditionerConfig(sampleRate int) ConditionerConfig {
	return ConditionerConfig{
		SampleRate:    sampleRate,
		Channels:      2,
		DCCutoff:      10,
		LowpassCutoff: 0,
		Gain:          1,
	}
}

// NewConditioner creates a conditioner.
func NewConditioner(cfg ConditionerConfig) *Conditioner {
	if cfg.Channels < 1 {
		cfg.Channels = 1
	}
	if cfg.Gain == 0 {
		cfg.Gain = 1
	}
	c := &Conditioner{
		channels: cfg.Channels,
		gain:     cfg.Gain / FullScale,
		dc:       make([]*DCBlocker, cfg.Channels),
	}
	sr := float32(cfg.SampleRate)
	for ch := range c.dc {
		c.dc[ch] = NewDCBlocker(cfg.DCCutoff, sr)
	}
	if cfg.LowpassCutoff > 0 && cfg.LowpassCutoff < sr/2 {
		c.lp = make([]*Biquad, cfg.Channels)
		for ch := range c.lp {
			c.lp[ch] = NewLowpass(cfg.LowpassCutoff, sr, 0.7071)
		}
	}
	return c
}

// Process converts interleaved samples. dst is grown when too short and the
// filled slice is returned.
func (c *Conditioner) Process(dst []float32, src []int16) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]
	for i, s := range src {
		ch := i % c.channels
		y := c.dc[ch].Process(float32(s) * c.gain)
		if c.lp != nil {
			y = c.lp[ch].Process(y)
		}
		dst[i] = y
	}
	return dst
}

// Reset clears all filter state.
func (c *Conditioner) Reset() {
	for _, d := range c.dc {
		d.Reset()
	}
	for _, b := range c.lp {
		b.Reset()
	}
}
