package sampling

import (
	"fmt"
	"math/rand"
)

const tol = 1e-3

// SampleOne draws one index from the probability vector pv using the given
// source of randomness.
func SampleOne(rng *rand.Rand, pv []float64) int {
	x := rng.Float64()
	var cumProb float64
	for i, p := range pv {
		cumProb += p
		if cumProb > x {
			return i
		}
	}

	if cumProb < 1.0-tol { // Leave room for floating point error.
		panic(fmt.Errorf("probability distribution sums to %v != 1: %v", cumProb, pv))
	}

	return len(pv) - 1
}
