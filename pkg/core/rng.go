package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float64 returns a random value in [0, 1).
func (r *RNG) Float64() float64 {
	return r.r.Float64()
}

// IntN returns a random int in [0, n).
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Int64 returns a random non-negative int64, useful for deriving child seeds.
func (r *RNG) Int64() int64 {
	return r.r.Int64()
}

// Sign returns +1 or -1 with equal probability.
func (r *RNG) Sign() int {
	if r.r.IntN(2) == 1 {
		return 1
	}
	return -1
}
