package kmeans

import (
	"fmt"
	"math/rand"
)

// InitMethod selects how the initial centroids are chosen.
type InitMethod string

const (
	// InitRandom picks k distinct sample colours uniformly at random.
	InitRandom InitMethod = "random"
	// InitKMeansPlusPlus picks centroids with probability proportional to
	// weight times squared distance from the centroids chosen so far.
	InitKMeansPlusPlus InitMethod = "kmeans++"
)

// ValidInitMethods returns the supported initialisation methods.
func ValidInitMethods() []InitMethod {
	return []InitMethod{InitRandom, InitKMeansPlusPlus}
}

// InitCentroids returns k distinct initial centroids drawn from the samples.
// Samples are expected to hold distinct colours, as ExtractSamples produces.
func InitCentroids(samples []WeightedSample, k int, method InitMethod, rng *rand.Rand) ([]Point, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: cluster count must be at least 1, got %d", ErrInvalidInput, k)
	}
	if k > len(samples) {
		return nil, fmt.Errorf("%w: cluster count %d exceeds %d distinct colours", ErrInvalidInput, k, len(samples))
	}

	switch method {
	case InitRandom:
		return initRandom(samples, k, rng), nil
	case InitKMeansPlusPlus:
		return initKMeansPlusPlus(samples, k, rng), nil
	default:
		return nil, fmt.Errorf("%w: unknown init method: %s (valid: %v)", ErrInvalidInput, method, ValidInitMethods())
	}
}

// initRandom draws k samples without replacement using a partial Fisher-Yates shuffle.
func initRandom(samples []WeightedSample, k int, rng *rand.Rand) []Point {
	idx := make([]int, len(samples))
	for i := range idx {
		idx[i] = i
	}

	centroids := make([]Point, k)
	for i := range k {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		centroids[i] = PointOf(samples[idx[i]].Colour)
	}
	return centroids
}

func initKMeansPlusPlus(samples []WeightedSample, k int, rng *rand.Rand) []Point {
	centroids := make([]Point, 0, k)
	centroids = append(centroids, PointOf(samples[rng.Intn(len(samples))].Colour))

	// minDist tracks each sample's squared distance to its nearest chosen centroid.
	minDist := make([]float64, len(samples))
	for i, s := range samples {
		minDist[i] = PointOf(s.Colour).SqDist(centroids[0])
	}

	scores := make([]float64, len(samples))
	for len(centroids) < k {
		total := 0.0
		for i, s := range samples {
			scores[i] = float64(s.Weight) * minDist[i]
			total += scores[i]
		}

		next := pickWeighted(scores, total, rng)
		if next < 0 {
			// Every remaining sample coincides with a chosen centroid. Samples
			// are distinct, so fall back to any sample not yet chosen.
			next = pickUnchosen(minDist, rng)
		}

		c := PointOf(samples[next].Colour)
		centroids = append(centroids, c)
		for i, s := range samples {
			if d := PointOf(s.Colour).SqDist(c); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	return centroids
}

// pickWeighted returns an index drawn with probability scores[i]/total, or -1
// when total is zero. Zero-score entries are never returned.
func pickWeighted(scores []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return -1
	}

	target := rng.Float64() * total
	cumulative := 0.0
	last := -1
	for i, s := range scores {
		if s <= 0 {
			continue
		}
		cumulative += s
		last = i
		if cumulative > target {
			return i
		}
	}
	// Floating point rounding can leave target just above the final sum.
	return last
}

func pickUnchosen(minDist []float64, rng *rand.Rand) int {
	candidates := make([]int, 0, len(minDist))
	for i, d := range minDist {
		if d > 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return rng.Intn(len(minDist))
	}
	return candidates[rng.Intn(len(candidates))]
}
