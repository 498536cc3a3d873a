package guitar

// Readiness is the result of a non-blocking device poll.
type Readiness int

const (
	NotReady Readiness = iota
	Ready
)

func (r Readiness) String() string {
	if r == Ready {
		return "ready"
	}
	return "not-ready"
}

// AudioOutput is the sample-paced stereo device. Every Ready poll accepts
// exactly one 16-bit slot; slots alternate left and right.
type AudioOutput interface {
	Poll() Readiness
	SendSample(v int16)
}
