package game

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// Randomness is the only source of chance the engine consumes.
// Next returns an integer in [minInclusive, maxExclusive).
type Randomness interface {
	Next(minInclusive, maxExclusive int) int
}

// RandomSource adapts a *rand.Rand to Randomness.
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomness returns a source seeded deterministically from seed, so the
// same seed always produces the same shuffle.
func NewRandomness(seed int64) *RandomSource {
	u := uint64(seed)
	return &RandomSource{rng: rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))}
}

// NewClockSeededRandomness seeds from the wall clock.
func NewClockSeededRandomness() *RandomSource {
	return NewRandomness(time.Now().UnixNano())
}

// Next returns an integer in [minInclusive, maxExclusive), or
// minInclusive when the range is empty.
func (r *RandomSource) Next(minInclusive, maxExclusive int) int {
	if maxExclusive <= minInclusive {
		return minInclusive
	}
	return minInclusive + r.rng.IntN(maxExclusive-minInclusive)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
