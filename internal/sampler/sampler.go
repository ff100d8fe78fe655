// Package sampler provides uniform random sampling without replacement.
package sampler

import "math/rand/v2"

// Indices draws n distinct indices uniformly at random from [0, population).
// The order of the returned indices is unspecified.
// If r is nil, the shared global random generator is used.
// It panics if n is negative or greater than population.
func Indices(r *rand.Rand, population, n int) []int {
	if n < 0 || n > population {
		panic("sampler: sample size must be in [0, population]")
	}
	if n == 0 {
		return nil
	}

	indices := make([]int, population)
	for i := range indices {
		indices[i] = i
	}

	// partial Fisher-Yates: after i swaps, indices[:i] is a uniform sample
	for i := 0; i < n; i++ {
		j := i + intN(r, population-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices[:n:n]
}

func intN(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}
