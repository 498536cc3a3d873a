package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// NewBiquad creates a new biquad filter with the given coefficients
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	output = float32(dspcore.FlushDenormals(float64(output)))

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// NewLowpass creates an RBJ lowpass biquad.
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(
		float32(b0/a0),
		float32(b1/a0),
		float32(b2/a0),
		float32(a1/a0),
		float32(a2/a0),
	)
}

// DCBlocker is a one-pole highpass: y[n] = x[n] - x[n-1] + r*y[n-1].
type DCBlocker struct {
	r  float32
	x1 float32
	y1 float32
}

// NewDCBlocker creates a DC blocker with its corner at cutoff Hz.
func NewDCBlocker(cutoff, sampleRate float32) *DCBlocker {
	r := 1.0 - 2.0*math.Pi*float64(cutoff)/float64(sampleRate)
	if r < 0 {
		r = 0
	}
	return &DCBlocker{r: float32(r)}
}

// Process filters one sample.
func (d *DCBlocker) Process(x float32) float32 {
	y := x - d.x1 + d.r*d.y1
	y = float32(dspcore.FlushDenormals(float64(y)))
	d.x1 = x
	d.y1 = y
	return y
}

// Reset clears the filter state.
func (d *DCBlocker) Reset() {
	d.x1, d.y1 = 0, 0
}
