package coverage

import "math/rand/v2"

// Source yields pseudo-random floats in [0,1).
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type Source interface {
	Float64() float64
}

// NewSeededSource returns a deterministic source for the given seed
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
}

// FixedSource always returns the same value. FixedSource(0) disables
// perturbation entirely.
type FixedSource float64

// Float64 implements Source
func (f FixedSource) Float64() float64 {
	return float64(f)
}
