package kmeans

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Candidate is one point on the k versus WCSS curve.
type Candidate struct {
	K    int
	WCSS float64
}

// KneePolicy picks the index of the best candidate on a WCSS curve ordered
// by increasing k.
type KneePolicy interface {
	Select(curve []Candidate) int
}

// PerpendicularKnee selects the candidate farthest from the chord joining the
// first and last points of the curve. Both axes are scaled to [0,1] first so
// the WCSS magnitude does not dominate. Ties resolve to the smallest k, and a
// flat curve selects the first candidate. Curves with fewer than three
// points have no interior and select the last candidate.
type PerpendicularKnee struct{}

// Select implements KneePolicy.
func (PerpendicularKnee) Select(curve []Candidate) int {
	n := len(curve)
	if n < 3 {
		return n - 1
	}

	wcss := make([]float64, n)
	for i, c := range curve {
		wcss[i] = c.WCSS
	}
	lo, hi := floats.Min(wcss), floats.Max(wcss)
	kSpan := float64(curve[n-1].K - curve[0].K)
	if hi == lo || kSpan == 0 {
		return 0
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, c := range curve {
		xs[i] = float64(c.K-curve[0].K) / kSpan
		ys[i] = (c.WCSS - lo) / (hi - lo)
	}

	x1, y1 := xs[0], ys[0]
	x2, y2 := xs[n-1], ys[n-1]
	chord := math.Hypot(x2-x1, y2-y1)

	distances := make([]float64, n)
	for i := 1; i < n-1; i++ {
		distances[i] = math.Abs((y2-y1)*xs[i]-(x2-x1)*ys[i]+x2*y1-y2*x1) / chord
	}
	return floats.MaxIdx(distances)
}
