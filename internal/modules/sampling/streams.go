package sampling

import "math/rand/v2"

// Streams hands out independent random generators derived from one seed.
// Stream(i) always yields the same sequence for the same seed and i, which
// makes parallel runs reproducible regardless of how work is scheduled.
type Streams struct {
	seed uint64
}

// NewStreams returns reproducible streams for a fixed seed.
func NewStreams(seed uint64) Streams {
	return Streams{seed: seed}
}

// EntropyStreams returns streams seeded from the runtime's entropy source.
func EntropyStreams() Streams {
	return Streams{seed: rand.Uint64()}
}

// Seed reports the seed, so a non-reproducible run can be replayed later.
func (s Streams) Seed() uint64 {
	return s.seed
}

// Stream returns the generator for stream id.
func (s Streams) Stream(id uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, id))
}
