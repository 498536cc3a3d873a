package guitar

import "math/rand"

// RandomSource supplies uniform 32-bit values for the excitation noise.
type RandomSource interface {
	Uint32() uint32
}

// NewRandomSource returns a deterministic source for the given seed.
func NewRandomSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// NewExcitation fills size bytes of white noise, scaling each 32-bit draw
// down to its top byte.
func NewExcitation(size int, rnd RandomSource) []uint8 {
	if size < 0 {
		size = 0
	}
	buf := make([]uint8, size)
	FillExcitation(buf, rnd)
	return buf
}

// FillExcitation overwrites buf with fresh noise.
func FillExcitation(buf []uint8, rnd RandomSource) {
	for i := range buf {
		buf[i] = uint8(uint64(rnd.Uint32()) * 256 >> 32)
	}
}
