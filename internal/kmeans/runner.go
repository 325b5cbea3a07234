package kmeans

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/imagekmeans/internal/colour"
)

// Options configures clustering runs.
type Options struct {
	// MaxIterations caps Lloyd iterations per run. Zero uses DefaultMaxIterations.
	MaxIterations int

	// Tolerance is the centroid movement below which a run is considered
	// converged. Zero disables the check.
	Tolerance float64

	// MaxK is the largest candidate k tried by RunDerivedK. Zero uses DefaultMaxK.
	MaxK int

	// Knee selects the best candidate for RunDerivedK. Nil uses PerpendicularKnee.
	Knee KneePolicy

	// OnCandidate, if set, is called by RunDerivedK for every point on the WCSS curve.
	OnCandidate func(Candidate)

	// Logger receives debug and trace output. Nil disables logging.
	Logger hclog.Logger
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

// RunResult is the outcome of one clustering run.
type RunResult struct {
	K        int
	Clusters []colour.RGB
	WCSS     float64
}

// RunFixedK initialises, refines and scores one clustering with k clusters.
func RunFixedK(samples []WeightedSample, k int, method InitMethod, rng *rand.Rand, opts Options) (RunResult, error) {
	logger := opts.logger()

	initial, err := InitCentroids(samples, k, method, rng)
	if err != nil {
		return RunResult{}, err
	}

	refiner := Refiner{
		MaxIterations: opts.MaxIterations,
		Tolerance:     opts.Tolerance,
	}
	if logger.IsTrace() {
		refiner.OnIteration = func(iteration int, wcss float64) {
			logger.Trace("lloyd iteration", "k", k, "iteration", iteration, "wcss", wcss)
		}
	}

	clustering, err := refiner.Refine(samples, initial)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to refine %d clusters: %w", k, err)
	}
	if !clustering.Converged {
		logger.Debug("iteration cap reached before convergence", "k", k, "iterations", clustering.Iterations)
	}

	wcss := WCSS(samples, clustering.Centroids, clustering.Assignment)
	logger.Debug("run complete", "k", k, "method", method, "iterations", clustering.Iterations, "wcss", wcss)

	return RunResult{
		K:        k,
		Clusters: distinctColours(samples, clustering),
		WCSS:     wcss,
	}, nil
}

// distinctColours rounds centroids to 8-bit colours. When rounding makes a
// centroid collide with an earlier one, it snaps to the closest sample colour
// not yet used, preferring the cluster's own members.
func distinctColours(samples []WeightedSample, cl Clustering) []colour.RGB {
	out := make([]colour.RGB, len(cl.Centroids))
	used := make(map[colour.RGB]bool, len(cl.Centroids))

	for j, c := range cl.Centroids {
		rgb := c.RGB()
		if used[rgb] {
			rgb = closestUnused(samples, cl.Assignment, j, c, used)
		}
		out[j] = rgb
		used[rgb] = true
	}
	return out
}

func closestUnused(samples []WeightedSample, assignment []int, cluster int, c Point, used map[colour.RGB]bool) colour.RGB {
	best, bestMember := -1, false
	bestDist := math.Inf(1)
	for i, s := range samples {
		if used[s.Colour] {
			continue
		}
		member := assignment[i] == cluster
		d := PointOf(s.Colour).SqDist(c)
		if (member && !bestMember) || (member == bestMember && d < bestDist) {
			best, bestMember, bestDist = i, member, d
		}
	}
	if best < 0 {
		// Unreachable while k <= len(samples).
		return c.RGB()
	}
	return samples[best].Colour
}
