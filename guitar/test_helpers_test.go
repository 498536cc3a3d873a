package guitar

// recordingOutput is a device whose readiness follows a repeating pattern.
type recordingOutput struct {
	pattern []bool
	polls   int
	data    []int16
}

func newReadyOutput() *recordingOutput {
	return &recordingOutput{pattern: []bool{true}}
}

func (o *recordingOutput) Poll() Readiness {
	ready := o.pattern[o.polls%len(o.pattern)]
	o.polls++
	if ready {
		return Ready
	}
	return NotReady
}

func (o *recordingOutput) SendSample(v int16) { o.data = append(o.data, v) }

type fakeInputs [NumAnalogChannels]uint16

func (f *fakeInputs) Reading(channel int) uint16 { return f[channel] }

// fixedSource returns its values in order, then repeats the last one.
type fixedSource struct {
	values []uint32
	i      int
}

func (f *fixedSource) Uint32() uint32 {
	v := f.values[f.i]
	if f.i < len(f.values)-1 {
		f.i++
	}
	return v
}

// fullIntensity resolves to the unity amplitude ceiling.
const fullIntensity = 5946

func smallParams() *Params {
	p := NewDefaultParams()
	p.Duration = 300
	p.SynthesisChunk = 64
	return p
}

func expectedFrame(excitation []uint8, decay float64, length, n int) []uint8 {
	exc := append([]uint8(nil), excitation...)
	ks := NewKarplusStrong(exc, decay)
	ks.Start(length)
	out := make([]uint8, n)
	ks.Render(out)
	return out
}
