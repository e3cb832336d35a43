package ranking

import (
	"math"

	"github.com/poiesic/bioorbit/core"
)

// diversify re-orders ranked (already sorted by score) with maximal marginal
// relevance. At each step it takes the candidate maximizing
//
//	lambda*score - (1-lambda)*max similarity to anything already taken
//
// Ties go to the candidate ranked higher in the input, so the output is
// deterministic. Non-finite values rank last. The result holds exactly the
// input matches.
func diversify(ranked []*core.Match, lambda float64, sim Similarity) []*core.Match {
	n := len(ranked)
	if n < 2 {
		return append([]*core.Match(nil), ranked...)
	}

	out := make([]*core.Match, 0, n)
	taken := make([]bool, n)
	// maxSim[i] is the largest similarity of ranked[i] to any taken match
	maxSim := make([]float64, n)
	for i := range maxSim {
		maxSim[i] = math.Inf(-1)
	}

	for len(out) < n {
		best := -1
		bestValue := math.Inf(-1)
		for i, m := range ranked {
			if taken[i] {
				continue
			}
			penalty := 0.0
			if len(out) > 0 {
				penalty = maxSim[i]
			}
			value := lambda*float64(m.Score) - (1-lambda)*penalty
			if math.IsNaN(value) {
				value = math.Inf(-1)
			}
			if best == -1 || value > bestValue {
				best, bestValue = i, value
			}
		}

		taken[best] = true
		out = append(out, ranked[best])
		for i, m := range ranked {
			if taken[i] {
				continue
			}
			if s := sim.Similarity(ranked[best].Candidate, m.Candidate); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}
	return out
}
