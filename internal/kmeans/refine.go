package kmeans

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultMaxIterations caps Lloyd iterations per run.
	DefaultMaxIterations = 50
)

// Refiner runs Lloyd's algorithm over weighted samples.
type Refiner struct {
	// MaxIterations caps the number of assignment steps. Zero uses DefaultMaxIterations.
	MaxIterations int

	// Tolerance stops refinement once no centroid moves by more than this
	// Euclidean distance in a single update. Zero disables the check, leaving
	// assignment stability as the only convergence test.
	Tolerance float64

	// OnIteration, if set, is called after every assignment step with the
	// WCSS of that assignment.
	OnIteration func(iteration int, wcss float64)
}

// Clustering is the state of one refinement run.
type Clustering struct {
	Centroids  []Point
	Assignment []int
	Iterations int

	// Converged is false when the iteration cap was reached first.
	Converged bool
}

// Refine iterates assignment and update steps from the initial centroids.
// The returned assignment always refers to the returned centroids.
func (r Refiner) Refine(samples []WeightedSample, initial []Point) (Clustering, error) {
	if len(samples) == 0 {
		return Clustering{}, fmt.Errorf("%w: no samples to cluster", ErrInvalidInput)
	}
	if len(initial) == 0 {
		return Clustering{}, fmt.Errorf("%w: no initial centroids", ErrInvalidInput)
	}

	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	centroids := slices.Clone(initial)
	assignment := make([]int, len(samples))
	for i := range assignment {
		assignment[i] = -1
	}

	result := Clustering{}
	current := false // assignment matches centroids
	for result.Iterations < maxIter {
		changed := assign(samples, centroids, assignment)
		current = true
		result.Iterations++
		if r.OnIteration != nil {
			r.OnIteration(result.Iterations, WCSS(samples, centroids, assignment))
		}
		if changed == 0 {
			result.Converged = true
			break
		}

		next, err := Reseed(samples, assignment, updateCentroids(samples, assignment, centroids))
		if err != nil {
			return Clustering{}, err
		}
		shift := maxShift(centroids, next)
		centroids = next
		current = false

		if r.Tolerance > 0 && shift < r.Tolerance {
			result.Converged = true
			break
		}
	}

	if !current {
		assign(samples, centroids, assignment)
	}

	result.Centroids = centroids
	result.Assignment = assignment
	return result, nil
}

// assign moves every sample to its nearest centroid and returns how many
// assignments changed.
func assign(samples []WeightedSample, centroids []Point, assignment []int) int {
	changed := 0
	for i, s := range samples {
		idx, _ := nearest(PointOf(s.Colour), centroids)
		if assignment[i] != idx {
			assignment[i] = idx
			changed++
		}
	}
	return changed
}

// updateCentroids returns the weighted mean of each cluster. Clusters with no
// members keep their previous position for Reseed to replace.
func updateCentroids(samples []WeightedSample, assignment []int, previous []Point) []Point {
	k := len(previous)
	rs := make([][]float64, k)
	gs := make([][]float64, k)
	bs := make([][]float64, k)
	ws := make([][]float64, k)
	for i, s := range samples {
		a := assignment[i]
		rs[a] = append(rs[a], float64(s.Colour.R))
		gs[a] = append(gs[a], float64(s.Colour.G))
		bs[a] = append(bs[a], float64(s.Colour.B))
		ws[a] = append(ws[a], float64(s.Weight))
	}

	next := make([]Point, k)
	for j := range k {
		if len(ws[j]) == 0 {
			next[j] = previous[j]
			continue
		}
		next[j] = Point{
			R: stat.Mean(rs[j], ws[j]),
			G: stat.Mean(gs[j], ws[j]),
			B: stat.Mean(bs[j], ws[j]),
		}
	}
	return next
}

func maxShift(a, b []Point) float64 {
	shift := 0.0
	for i := range a {
		shift = math.Max(shift, math.Sqrt(a[i].SqDist(b[i])))
	}
	return shift
}
