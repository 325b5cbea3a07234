package kmeans

import (
	"fmt"
	"slices"
)

// Reseed returns a copy of centroids in which every centroid that received no
// samples under assignment is moved onto the sample that is farthest, by
// weight times squared distance, from the populated centroids. Reseeded
// centroids count as populated for the next empty cluster, so two empty
// clusters never land on the same sample.
func Reseed(samples []WeightedSample, assignment []int, centroids []Point) ([]Point, error) {
	out := slices.Clone(centroids)

	active := make([]bool, len(centroids))
	for i, a := range assignment {
		if a >= 0 && a < len(active) && samples[i].Weight > 0 {
			active[a] = true
		}
	}

	for j := range out {
		if active[j] {
			continue
		}

		best := -1
		bestScore := 0.0
		for i, s := range samples {
			p := PointOf(s.Colour)
			d, ok := nearestActive(p, out, active)
			if !ok {
				continue
			}
			if score := float64(s.Weight) * d; score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("%w: no sample available to reseed empty cluster %d", ErrInternalInvariant, j)
		}

		out[j] = PointOf(samples[best].Colour)
		active[j] = true
	}

	return out, nil
}

func nearestActive(p Point, centroids []Point, active []bool) (float64, bool) {
	found := false
	bestDist := 0.0
	for i, c := range centroids {
		if !active[i] {
			continue
		}
		if d := p.SqDist(c); !found || d < bestDist {
			bestDist = d
			found = true
		}
	}
	return bestDist, found
}
