package kmeans

import (
	"fmt"
	"math/rand"
)

// DefaultMaxK is the largest candidate k tried when deriving k.
const DefaultMaxK = 10

// RunDerivedK clusters the samples for every k from 1 to MaxK and returns the
// run chosen by the knee policy.
//
// Candidates above the number of distinct samples are not run: their WCSS is
// taken from the largest feasible k, so the curve flattens instead of failing.
// When only one k is feasible its run is returned directly.
func RunDerivedK(samples []WeightedSample, method InitMethod, rng *rand.Rand, opts Options) (RunResult, error) {
	maxK := opts.MaxK
	if maxK == 0 {
		maxK = DefaultMaxK
	}
	if maxK < 1 {
		return RunResult{}, fmt.Errorf("%w: maximum k must be at least 1, got %d", ErrInvalidInput, maxK)
	}
	if len(samples) == 0 {
		return RunResult{}, fmt.Errorf("%w: no samples to cluster", ErrInvalidInput)
	}

	policy := opts.Knee
	if policy == nil {
		policy = PerpendicularKnee{}
	}
	logger := opts.logger()

	feasible := min(maxK, len(samples))
	runs := make([]RunResult, 0, feasible)
	curve := make([]Candidate, 0, maxK)
	for k := 1; k <= maxK; k++ {
		var c Candidate
		if k <= feasible {
			run, err := RunFixedK(samples, k, method, rng, opts)
			if err != nil {
				return RunResult{}, fmt.Errorf("failed to run candidate k=%d: %w", k, err)
			}
			runs = append(runs, run)
			c = Candidate{K: k, WCSS: run.WCSS}
		} else {
			c = Candidate{K: k, WCSS: runs[len(runs)-1].WCSS}
		}
		curve = append(curve, c)
		if opts.OnCandidate != nil {
			opts.OnCandidate(c)
		}
	}

	if len(runs) == 1 {
		logger.Debug("single feasible candidate", "k", runs[0].K)
		return runs[0], nil
	}

	idx := min(policy.Select(curve), len(runs)-1)
	idx = max(idx, 0)
	logger.Debug("selected k", "k", runs[idx].K, "wcss", runs[idx].WCSS, "candidates", len(curve))
	return runs[idx], nil
}
