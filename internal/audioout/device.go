package audioout

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-guitar/dsp"
	"github.com/cwbudde/algo-guitar/guitar"
)

// Device is a guitar.AudioOutput backed by a Ring. The scheduler sees Ready
// while the ring has room, so the consumer's pull rate paces emission. Read
// drains the ring as interleaved stereo float32 little-endian, the format
// host audio APIs take.
type Device struct {
	ring *Ring
	cond *dsp.Conditioner

	raw   []int16
	out   []float32
	last  [2]int16
	under atomic.Uint64
}

// NewDevice creates a device with a ring of capacity samples feeding cond.
// A nil conditioner uses dsp.DefaultConditionerConfig(sampleRate).
func NewDevice(sampleRate, capacity int, cond *dsp.Conditioner) *Device {
	if cond == nil {
		cond = dsp.NewConditioner(dsp.DefaultConditionerConfig(sampleRate))
	}
	return &Device{ring: NewRing(capacity), cond: cond}
}

func (d *Device) Poll() guitar.Readiness {
	if d.ring.Free() > 0 {
		return guitar.Ready
	}
	return guitar.NotReady
}

func (d *Device) SendSample(v int16) {
	d.ring.Push(v)
}

// Underruns counts frames Read had to pad.
func (d *Device) Underruns() uint64 { return d.under.Load() }

// Buffered is the number of samples waiting in the ring.
func (d *Device) Buffered() int { return d.ring.Len() }

// Read fills p with whole stereo frames. Missing frames repeat the last
// frame so an underrun holds the level instead of stepping to zero.
func (d *Device) Read(p []byte) (int, error) {
	frames := len(p) / 8
	n := frames * 2
	if cap(d.raw) < n {
		d.raw = make([]int16, n)
	}
	raw := d.raw[:n]

	avail := d.ring.Len() &^ 1
	if avail > n {
		avail = n
	}
	got := d.ring.Pop(raw[:avail])
	if got >= 2 {
		d.last[0], d.last[1] = raw[got-2], raw[got-1]
	}
	if got < n {
		d.under.Add(uint64((n - got) / 2))
		for i := got; i < n; i += 2 {
			raw[i], raw[i+1] = d.last[0], d.last[1]
		}
	}

	d.out = d.cond.Process(d.out, raw)
	for i, v := range d.out {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return frames * 8, nil
}
