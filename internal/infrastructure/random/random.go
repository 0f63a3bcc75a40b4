// Package random provides the production randomness source. Everything
// non-deterministic in the engine (typing delay jitter, fallback
// suggestion pick) flows through this single adapter so the core stays
// testable with a fixed fake.
package random

import "math/rand"

type Source struct{}

func New() Source {
	return Source{}
}

func (Source) IntN(n int) int {
	return rand.Intn(n)
}
