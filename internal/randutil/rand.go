// Package randutil derives reproducible math/rand/v2 generators for the
// simulators. Every Monte Carlo path takes an injected *rand.Rand so tests can
// pin the sequence.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG generator seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// FromOptional seeds from *seed when set, otherwise from the wall clock.
func FromOptional(seed *int64) *rand.Rand {
	if seed != nil {
		return New(*seed)
	}
	return New(time.Now().UnixNano())
}

// OrNew returns rng, or a clock-seeded generator when rng is nil.
func OrNew(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return New(time.Now().UnixNano())
}

// Split draws n child generators from parent. The children are independent
// of each other and fully determined by the parent's state, so a seeded
// parent gives reproducible parallel work.
func Split(parent *rand.Rand, n int) []*rand.Rand {
	children := make([]*rand.Rand, n)
	for i := range children {
		a, b := parent.Uint64(), parent.Uint64()
		children[i] = rand.New(rand.NewPCG(mix(a), mix(b^goldenRatio64)))
	}
	return children
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
