// Package random provides the chance source for spin rewards.
// The Source interface keeps the draws seedable for deterministic tests.
package random

import "math/rand/v2"

// Source produces the random draws the spin engine needs.
type Source interface {
	// IntN returns a uniformly random int in [0, n).
	IntN(n int) int
	// Float64 returns a uniformly random float64 in [0.0, 1.0).
	Float64() float64
}

// mathSource is backed by math/rand/v2's shared generator.
type mathSource struct{}

func (mathSource) IntN(n int) int   { return rand.IntN(n) }
func (mathSource) Float64() float64 { return rand.Float64() }

// New returns a Source backed by the default generator.
func New() Source {
	return mathSource{}
}

// NewSeeded returns a Source with a fixed seed, for tests.
func NewSeeded(seed uint64) Source {
	return seededSource{r: rand.New(rand.NewPCG(seed, seed))}
}

type seededSource struct {
	r *rand.Rand
}

func (s seededSource) IntN(n int) int   { return s.r.IntN(n) }
func (s seededSource) Float64() float64 { return s.r.Float64() }
