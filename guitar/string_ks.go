package guitar

// StringState is the synthesizer state.
type StringState int

const (
	// Resting means the delay line holds excitation noise.
	Resting StringState = iota
	// Ringing means the recurrence is being stepped.
	Ringing
)

func (s StringState) String() string {
	if s == Ringing {
		return "ringing"
	}
	return "resting"
}

// KarplusStrong is the 8-bit plucked-string synthesizer. The delay line and
// its scratch line are allocated once at the excitation size; a note uses the
// first L entries of each.
type KarplusStrong struct {
	excitation []uint8
	delay      []uint8
	scratch    []uint8
	decay      float64

	length  int
	j       int
	commits int
	state   StringState

	// refresh, when set, redraws the excitation on every reseed.
	refresh RandomSource
}

// NewKarplusStrong creates a synthesizer over the given excitation buffer.
// The excitation is not copied; callers refreshing it in place change what the
// next reseed loads.
func NewKarplusStrong(excitation []uint8, decay float64) *KarplusStrong {
	k := &KarplusStrong{
		excitation: excitation,
		delay:      make([]uint8, len(excitation)),
		scratch:    make([]uint8, len(excitation)),
		decay:      decay,
		length:     evenFloor(len(excitation)),
	}
	k.Reseed()
	return k
}

// Reseed loads the excitation into the delay line, clears the scratch line and
// returns to Resting.
func (k *KarplusStrong) Reseed() {
	if k.refresh != nil {
		FillExcitation(k.excitation, k.refresh)
	}
	copy(k.delay, k.excitation)
	clear(k.scratch)
	k.j = 0
	k.commits = 0
	k.state = Resting
}

// SetRefresh makes every reseed draw new noise from rnd; nil keeps the
// excitation fixed.
func (k *KarplusStrong) SetRefresh(rnd RandomSource) { k.refresh = rnd }

// Start reseeds and begins ringing with a delay line of length l. l is
// clamped to [2, len(excitation)] and made even.
func (k *KarplusStrong) Start(l int) {
	k.Reseed()
	l = clampInt(evenFloor(l), 2, evenFloor(len(k.excitation)))
	k.length = l
	k.state = Ringing
}

// Step produces the next sample of the recurrence. Each sample is the 8-bit
// truncation of the decayed mean of two neighbours; the last index of a
// period pairs with the first freshly computed sample of that period.
func (k *KarplusStrong) Step() uint8 {
	j := k.j
	var next uint8
	if j != k.length-1 {
		next = k.delay[j+1]
	} else {
		next = k.scratch[0]
	}
	v := uint8((float64(k.delay[j]) + float64(next)) / 2.0 * k.decay)
	k.scratch[j] = v

	k.j++
	if k.j == k.length {
		copy(k.delay[:k.length], k.scratch[:k.length])
		k.j = 0
		k.commits++
	}
	return v
}

// Render fills out with successive samples.
func (k *KarplusStrong) Render(out []uint8) {
	for i := range out {
		out[i] = k.Step()
	}
}

// Length returns the active delay line length.
func (k *KarplusStrong) Length() int { return k.length }

// Commits returns how many full periods were committed since the last reseed.
func (k *KarplusStrong) Commits() int { return k.commits }

// Position returns the running pointer into the delay line.
func (k *KarplusStrong) Position() int { return k.j }

// State returns Resting or Ringing.
func (k *KarplusStrong) State() StringState { return k.state }

// Delay returns the active part of the delay line. The slice aliases internal
// state and is only valid until the next Step.
func (k *KarplusStrong) Delay() []uint8 { return k.delay[:k.length] }
