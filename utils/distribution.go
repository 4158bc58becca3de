package utils

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// ProbabilityTolerance bounds how far a distribution may sum from one.
const ProbabilityTolerance = 1e-6

// Normalize returns weights scaled to sum to one.
func Normalize(weights []float64) []float64 {
	total := floats.Sum(weights)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		panic(fmt.Sprintf("cannot normalize weights %v with total %v", weights, total))
	}
	p := slices.Clone(weights)
	floats.Scale(1/total, p)
	return p
}

// Sample draws an index from the distribution p.
func Sample(r *rand.Rand, p []float64) int {
	checkDistribution(p)
	return draw(r.Float64(), p)
}

// DrawCorrelated draws one index from p and one from q under a maximal
// coupling: each index follows its own distribution and both are equal with
// probability sum(min(p, q)).
func DrawCorrelated(r *rand.Rand, p, q []float64) (int, int) {
	checkDistribution(p)
	checkDistribution(q)
	if len(p) != len(q) {
		panic(fmt.Sprintf("distributions over %d and %d outcomes cannot be coupled", len(p), len(q)))
	}

	common := make([]float64, len(p))
	for i := range p {
		common[i] = math.Min(p[i], q[i])
	}
	overlap := floats.Sum(common)

	// Residuals have disjoint support, so the two draws never coincide there.
	restP := make([]float64, len(p))
	restQ := make([]float64, len(q))
	floats.SubTo(restP, p, common)
	floats.SubTo(restQ, q, common)
	massP, massQ := floats.Sum(restP), floats.Sum(restQ)

	// Masses only need to sum to one within tolerance, so a residual that
	// small is rounding and the draw falls back to the common part.
	if massP <= ProbabilityTolerance || massQ <= ProbabilityTolerance || r.Float64()*(overlap+massP) < overlap {
		x := draw(r.Float64()*overlap, common)
		return x, x
	}
	return draw(r.Float64()*massP, restP), draw(r.Float64()*massQ, restQ)
}

// Overlap is the probability that a maximal coupling of p and q agrees.
func Overlap(p, q []float64) float64 {
	overlap := 0.0
	for i := range p {
		overlap += math.Min(p[i], q[i])
	}
	return overlap
}

// Subsample picks k distinct indices out of n uniformly at random and returns
// them in ascending order. All n indices are returned when k >= n.
func Subsample(r *rand.Rand, n, k int) []int {
	if k >= n {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	if k < 0 {
		panic(fmt.Sprintf("cannot subsample %d of %d", k, n))
	}
	indices := r.Perm(n)[:k]
	slices.Sort(indices)
	return indices
}

func checkDistribution(p []float64) {
	if len(p) == 0 {
		panic("cannot sample from an empty distribution")
	}
	for i, x := range p {
		if x < 0 {
			panic(fmt.Sprintf("negative probability %v at index %d", x, i))
		}
	}
	if total := floats.Sum(p); math.Abs(total-1) > ProbabilityTolerance {
		panic(fmt.Sprintf("probabilities %v sum to %v", p, total))
	}
}

// draw walks the cumulative mass of weights until it passes u. The last index
// with positive weight absorbs rounding error.
func draw(u float64, weights []float64) int {
	last := -1
	cumulative := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cumulative += w
		if u < cumulative {
			return i
		}
	}
	if last < 0 {
		panic(fmt.Sprintf("no positive weight in %v", weights))
	}
	return last
}
