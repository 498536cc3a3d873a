// Package body synthesizes short guitar-body impulse responses and applies
// them to rendered notes.
package body

import (
	"fmt"
	"math"
	"math/rand"
)

// Config controls body IR generation.
//
// The top is modelled as a clamped orthotropic plate. Modes below
// CrossoverHz ring for about LowDecayS, modes above for about HighDecayS.
type Config struct {
	SampleRate int
	DurationS  float64
	Modes      int
	Seed       int64

	// F11 is the main top resonance.
	F11            float64
	MaxHz          float64
	GridPoints     int
	PlateRatio     float64 // lower bout length / width
	StiffnessRatio float64 // along / across grain
	Brightness     float64
	DirectLevel    float64
	LowDecayS      float64
	HighDecayS     float64
	CrossoverHz    float64
	FadeOutS       float64

	NormalizePeak float64
}

// DefaultConfig returns a steel-string flat-top body.
func DefaultConfig() Config {
	return Config{
		SampleRate:     44100,
		DurationS:      0.08,
		Modes:          48,
		Seed:           1,
		F11:            190,
		MaxHz:          8000,
		GridPoints:     48,
		PlateRatio:     1.25,
		StiffnessRatio: 12,
		Brightness:     0.8,
		DirectLevel:    0.5,
		LowDecayS:      0.06,
		HighDecayS:     0.012,
		CrossoverHz:    600,
		FadeOutS:       0.005,
		NormalizePeak:  0.9,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Modes < 1 {
		return fmt.Errorf("modes must be >= 1")
	}
	if c.F11 <= 0 {
		return fmt.Errorf("f11 must be > 0")
	}
	if c.GridPoints < 2 {
		return fmt.Errorf("grid points must be >= 2")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.DirectLevel < 0 {
		return fmt.Errorf("direct level must be >= 0")
	}
	if c.LowDecayS <= 0 || c.HighDecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.CrossoverHz <= 0 {
		return fmt.Errorf("crossover Hz must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// Generate synthesizes a mono body IR.
func Generate(cfg Config) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := int(math.Round(cfg.DurationS * float64(cfg.SampleRate)))
	if n < 1 {
		n = 1
	}
	buf := make([]float64, n)
	buf[0] += cfg.DirectLevel

	maxF := 0.47 * float64(cfg.SampleRate)
	if cfg.MaxHz > 0 && cfg.MaxHz < maxF {
		maxF = cfg.MaxHz
	}
	freqs, err := PlateModes(cfg.F11, maxF, cfg.Modes, cfg.GridPoints, cfg.PlateRatio, cfg.StiffnessRatio)
	if err != nil {
		return nil, fmt.Errorf("plate modes: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	logCrossover := math.Log(cfg.CrossoverHz)
	tilt := 0.7 + 0.9*cfg.Brightness
	for _, f := range freqs {
		amp := 0.9 / math.Pow(1.0+f/cfg.F11, tilt)
		amp *= 0.7 + 0.6*rng.Float64()

		blend := 1.0 / (1.0 + math.Exp(-3.0*(math.Log(f)-logCrossover)))
		tau := cfg.LowDecayS*(1.0-blend) + cfg.HighDecayS*blend
		decay := math.Exp(-1.0 / (tau * float64(cfg.SampleRate)))

		addMode(buf, amp, f, rng.Float64()*2.0*math.Pi, decay, cfg.SampleRate)
	}

	removeDC(buf, 0.995)
	fadeOut(buf, cfg.FadeOutS, cfg.SampleRate)

	peak := maxAbs(buf)
	if peak < 1e-12 {
		peak = 1e-12
	}
	s := cfg.NormalizePeak / peak
	out := make([]float32, n)
	for i := range buf {
		out[i] = float32(buf[i] * s)
	}
	return out, nil
}

// addMode adds a decaying cosine using the two-term recurrence.
func addMode(out []float64, amp, freq, phase, decay float64, sampleRate int) {
	if len(out) == 0 {
		return
	}
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	x0 := math.Cos(phase)
	x1 := math.Cos(phase + w)
	env := amp

	out[0] += env * x0
	env *= decay
	if len(out) == 1 {
		return
	}
	out[1] += env * x1
	env *= decay
	for i := 2; i < len(out); i++ {
		x2 := 2.0*cw*x1 - x0
		x0, x1 = x1, x2
		out[i] += env * x2
		env *= decay
	}
}

func removeDC(x []float64, r float64) {
	prevIn, prevOut := 0.0, 0.0
	for i := range x {
		y := x[i] - prevIn + r*prevOut
		prevIn = x[i]
		prevOut = y
		x[i] = y
	}
}

func fadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	n := int(math.Round(fadeS * float64(sampleRate)))
	if n > len(buf) {
		n = len(buf)
	}
	start := len(buf) - n
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		buf[start+i] *= 0.5 * (1.0 + math.Cos(t*math.Pi))
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}
