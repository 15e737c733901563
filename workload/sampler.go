package workload

import mrand "math/rand"

// Sampler draws insertion positions from a seeded stream. Two samplers
// built from the same seed produce the same positions for the same
// sequence of calls.
type Sampler struct {
	rng *mrand.Rand
}

// NewSampler creates a Sampler seeded with seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: mrand.New(mrand.NewSource(seed))}
}

// SamplerFrom wraps an existing stream.
func SamplerFrom(rng *mrand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Position returns a position in [0, size+offset]. offset counts the
// elements already inserted by the current strategy call.
func (s *Sampler) Position(size, offset int) int {
	return int(s.rng.Uint64() % uint64(size+offset+1))
}
