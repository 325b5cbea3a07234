package kmeans

import (
	"math"

	"github.com/jmylchreest/imagekmeans/internal/colour"
	"github.com/jmylchreest/imagekmeans/internal/security"
)

// Point is a centroid position in RGB space.
type Point struct {
	R, G, B float64
}

// PointOf returns the point for a colour.
func PointOf(c colour.RGB) Point {
	return Point{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// SqDist returns the squared Euclidean distance between two points.
func (p Point) SqDist(other Point) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return dr*dr + dg*dg + db*db
}

// RGB rounds the point to the nearest 8-bit colour.
func (p Point) RGB() colour.RGB {
	return colour.RGB{
		R: security.SafeUint8(int(math.Round(p.R))),
		G: security.SafeUint8(int(math.Round(p.G))),
		B: security.SafeUint8(int(math.Round(p.B))),
	}
}

// nearest returns the index of the closest centroid and its squared distance.
// Ties go to the lowest index.
func nearest(p Point, centroids []Point) (int, float64) {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := p.SqDist(c); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}
