// Package audioout provides the sample-paced audio devices the scheduler
// emits into.
package audioout

import "sync/atomic"

// Ring is a single-producer single-consumer queue of samples. The scheduler
// goroutine pushes and the audio callback pops; neither side locks.
type Ring struct {
	buf  []int16
	mask uint64
	head atomic.Uint64 // next write
	tail atomic.Uint64 // next read
}

// NewRing creates a ring holding at least capacity samples, rounded up to a
// power of two.
func NewRing(capacity int) *Ring {
	n := 2
	for n < capacity {
		n <<= 1
	}
	return &Ring{buf: make([]int16, n), mask: uint64(n - 1)}
}

// Cap is the number of samples the ring holds when full.
func (r *Ring) Cap() int { return len(r.buf) }

// Len is the number of queued samples.
func (r *Ring) Len() int { return int(r.head.Load() - r.tail.Load()) }

// Free is the number of samples that can be pushed without overwriting.
func (r *Ring) Free() int { return len(r.buf) - r.Len() }

// Push appends one sample and reports false when the ring is full.
func (r *Ring) Push(v int16) bool {
	h := r.head.Load()
	if h-r.tail.Load() >= uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = v
	r.head.Store(h + 1)
	return true
}

// Pop moves up to len(dst) samples into dst and returns the count.
func (r *Ring) Pop(dst []int16) int {
	t := r.tail.Load()
	n := int(r.head.Load() - t)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(t+uint64(i))&r.mask]
	}
	r.tail.Store(t + uint64(n))
	return n
}

// Reset drops all queued samples. Only the consumer may call it.
func (r *Ring) Reset() { r.tail.Store(r.head.Load()) }
