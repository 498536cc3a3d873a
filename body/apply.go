package body

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	algofft "github.com/cwbudde/algo-fft"
)

// Apply convolves a whole signal with ir. The result keeps the length of x;
// the ringing tail past the end is dropped.
func Apply(x []float32, ir []float32) ([]float32, error) {
	if len(x) == 0 {
		return nil, nil
	}
	if len(ir) == 0 {
		return append([]float32(nil), x...), nil
	}
	full := make([]float32, len(x)+len(ir)-1)
	if err := algofft.ConvolveReal(full, x, ir); err != nil {
		return nil, fmt.Errorf("convolve: %w", err)
	}
	return full[:len(x)], nil
}

// ApplyInterleaved applies ir to every channel of an interleaved buffer.
func ApplyInterleaved(x []float32, channels int, ir []float32) ([]float32, error) {
	if channels < 1 {
		return nil, fmt.Errorf("channels must be >= 1")
	}
	frames := len(x) / channels
	out := make([]float32, frames*channels)
	ch := make([]float32, frames)
	for c := 0; c < channels; c++ {
		for i := range ch {
			ch[i] = x[i*channels+c]
		}
		y, err := Apply(ch, ir)
		if err != nil {
			return nil, err
		}
		for i := range y {
			out[i*channels+c] = y[i]
		}
	}
	return out, nil
}

// Filter is a streaming body filter for one channel. Blocks of any length
// are accepted; output has the same length as the input block.
type Filter struct {
	ola   *dspconv.OverlapAdd
	irLen int
	tail  []float64
	in    []float64
}

// NewFilter creates a streaming filter with the given partition size.
func NewFilter(ir []float32, partSize int) (*Filter, error) {
	if len(ir) == 0 {
		ir = []float32{1}
	}
	ir64 := make([]float64, len(ir))
	for i, v := range ir {
		ir64[i] = float64(v)
	}
	ola, err := dspconv.NewOverlapAdd(ir64, partSize)
	if err != nil {
		return nil, fmt.Errorf("overlap-add: %w", err)
	}
	return &Filter{ola: ola, irLen: len(ir), tail: make([]float64, len(ir)-1)}, nil
}

// Process filters one block.
func (f *Filter) Process(block []float32) ([]float32, error) {
	out := make([]float32, len(block))
	if len(block) == 0 {
		return out, nil
	}
	if cap(f.in) < len(block) {
		f.in = make([]float64, len(block))
	}
	in := f.in[:len(block)]
	for i, v := range block {
		in[i] = float64(v)
	}
	full, err := f.ola.Process(in)
	if err != nil {
		return nil, err
	}

	// full holds len(block)+irLen-1 samples; the previous tail overlaps its head.
	for i := 0; i < len(f.tail) && i < len(full); i++ {
		full[i] += f.tail[i]
	}
	for i := range out {
		if i < len(full) {
			out[i] = float32(full[i])
		}
	}
	next := make([]float64, f.irLen-1)
	for i := range next {
		if j := len(block) + i; j < len(full) {
			next[i] = full[j]
		}
	}
	f.tail = next
	return out, nil
}

// Reset clears the filter history.
func (f *Filter) Reset() {
	f.ola.Reset()
	for i := range f.tail {
		f.tail[i] = 0
	}
}
