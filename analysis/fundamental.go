package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	maxAnalysisFrame = 1 << 14
	zeroPadFactor    = 4
	peakRadius       = 2 * zeroPadFactor

	subharmonicChecks = 4
	subharmonicRatio  = 0.1
)

// Fundamental estimates the fundamental frequency of x in Hz within
// [minHz, maxHz]. It windows up to the first 16384 samples, zero-pads, finds
// the strongest partial and walks down to its lowest energetic subharmonic;
// the result is refined by parabolic interpolation.
func Fundamental(x []float64, sampleRate int, minHz, maxHz float64) (float64, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if minHz <= 0 || maxHz <= minHz {
		return 0, fmt.Errorf("invalid search range %.1f..%.1f Hz", minHz, maxHz)
	}
	frame := len(x)
	if frame > maxAnalysisFrame {
		frame = maxAnalysisFrame
	}
	if frame < 64 {
		return 0, fmt.Errorf("signal too short: %d samples", len(x))
	}

	fftSize := nextPow2(frame) * zeroPadFactor
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return 0, fmt.Errorf("fft plan: %w", err)
	}

	seg := RemoveMean(x[:frame])
	buf := make([]float64, fftSize)
	for i, v := range seg {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(frame-1))
		buf[i] = v * w
	}
	spec := make([]complex128, fftSize/2+1)
	plan.Forward(spec, buf)

	mag := make([]float64, len(spec))
	for k := range spec {
		mag[k] = cmplx.Abs(spec[k])
	}

	binHz := float64(sampleRate) / float64(fftSize)
	lo := int(math.Ceil(minHz / binHz))
	hi := int(maxHz / binHz)
	if lo < 1 {
		lo = 1
	}
	top := hi * subharmonicChecks
	if top > len(mag)-2 {
		top = len(mag) - 2
	}
	if hi > top {
		hi = top
	}
	if hi <= lo {
		return 0, fmt.Errorf("search range outside the spectrum")
	}

	peak := argMax(mag, lo, top)
	if mag[peak] <= 1e-9 {
		return 0, fmt.Errorf("no pitched content")
	}

	// The strongest partial may be a harmonic; prefer the lowest
	// subharmonic that still carries energy.
	best := peak
	for h := subharmonicChecks; h >= 2; h-- {
		c := peak / h
		if c < lo {
			continue
		}
		k := argMax(mag, c-peakRadius, c+peakRadius)
		if k >= lo && mag[k] >= subharmonicRatio*mag[peak] {
			best = k
			break
		}
	}
	if best > hi {
		return 0, fmt.Errorf("strongest partial %.1f Hz above search range", float64(best)*binHz)
	}

	return (float64(best) + parabolicOffset(mag, best)) * binHz, nil
}

func argMax(x []float64, lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi > len(x)-1 {
		hi = len(x) - 1
	}
	best := lo
	for k := lo + 1; k <= hi; k++ {
		if x[k] > x[best] {
			best = k
		}
	}
	return best
}

// parabolicOffset refines a spectral peak at k to a fractional bin.
func parabolicOffset(mag []float64, k int) float64 {
	if k <= 0 || k >= len(mag)-1 {
		return 0
	}
	a, b, c := mag[k-1], mag[k], mag[k+1]
	den := a - 2*b + c
	if math.Abs(den) < 1e-18 {
		return 0
	}
	d := 0.5 * (a - c) / den
	if d < -0.5 || d > 0.5 {
		return 0
	}
	return d
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
