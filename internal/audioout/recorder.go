package audioout

import (
	"sync"

	"github.com/cwbudde/algo-guitar/guitar"
)

// Recorder keeps a copy of the emitted samples. With a next device it
// forwards polls and samples; without one it is always ready, which makes
// the scheduler run unpaced.
type Recorder struct {
	next  guitar.AudioOutput
	limit int

	mu      sync.Mutex
	data    []int16
	dropped int
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecordLimit caps the recording at n samples; later samples are still
// forwarded but not kept. n <= 0 means no cap.
func WithRecordLimit(n int) RecorderOption {
	return func(r *Recorder) { r.limit = n }
}

// NewRecorder creates a recorder in front of next (may be nil).
func NewRecorder(next guitar.AudioOutput, opts ...RecorderOption) *Recorder {
	r := &Recorder{next: next}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) Poll() guitar.Readiness {
	if r.next == nil {
		return guitar.Ready
	}
	return r.next.Poll()
}

func (r *Recorder) SendSample(v int16) {
	r.mu.Lock()
	if r.limit > 0 && len(r.data) >= r.limit {
		r.dropped++
	} else {
		r.data = append(r.data, v)
	}
	r.mu.Unlock()
	if r.next != nil {
		r.next.SendSample(v)
	}
}

// Samples returns a copy of the interleaved recording.
func (r *Recorder) Samples() []int16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int16(nil), r.data...)
}

// Len is the number of recorded samples.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// Dropped is the number of samples forwarded past the record limit.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
