package kmeans

// WCSS returns the within-cluster sum of squares: the sum over samples of
// weight times squared distance to the assigned centroid.
func WCSS(samples []WeightedSample, centroids []Point, assignment []int) float64 {
	total := 0.0
	for i, s := range samples {
		a := assignment[i]
		if a < 0 || a >= len(centroids) {
			continue
		}
		total += float64(s.Weight) * PointOf(s.Colour).SqDist(centroids[a])
	}
	return total
}
