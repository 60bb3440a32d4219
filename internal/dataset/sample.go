package dataset

import "math/rand"

// DefaultSeed fixes the sampling PRNG so repeated runs over the same dataset
// evaluate the same test cases.
const DefaultSeed int64 = 42

// Sample returns a pseudo-random subset of n rows in drawn order. The same
// rows, n, and seed always yield the same ordered sample. When n is zero,
// negative, or at least len(rows), all rows are returned unchanged.
func Sample(rows []Row, n int, seed int64) []Row {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]Row, n)
	for i, j := range rng.Perm(len(rows))[:n] {
		out[i] = rows[j]
	}
	return out
}
