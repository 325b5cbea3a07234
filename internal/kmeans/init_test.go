package kmeans

import (
	"errors"
	"slices"
	"testing"

	"github.com/jmylchreest/imagekmeans/internal/colour"
)

func gradient(n int) []colour.RGB {
	out := make([]colour.RGB, n)
	for i := range out {
		out[i] = colour.RGB{R: uint8(i * 8), G: uint8(255 - i*8), B: uint8(i * 3)} // #nosec G115 -- n stays small in tests
	}
	return out
}

func TestInitCentroidsDistinct(t *testing.T) {
	samples := mustSamples(t, gradient(20)...)

	for _, method := range ValidInitMethods() {
		for _, k := range []int{1, 5, 20} {
			for seed := int64(0); seed < 10; seed++ {
				centroids, err := InitCentroids(samples, k, method, newRand(seed))
				if err != nil {
					t.Fatalf("InitCentroids(%s, k=%d) unexpected error: %v", method, k, err)
				}
				if len(centroids) != k {
					t.Fatalf("InitCentroids(%s, k=%d) returned %d centroids", method, k, len(centroids))
				}
				seen := make(map[Point]bool, k)
				for _, c := range centroids {
					if seen[c] {
						t.Fatalf("InitCentroids(%s, k=%d, seed=%d) repeated centroid %v", method, k, seed, c)
					}
					seen[c] = true
				}
			}
		}
	}
}

func TestInitCentroidsDeterministic(t *testing.T) {
	samples := mustSamples(t, gradient(25)...)

	for _, method := range ValidInitMethods() {
		a, err := InitCentroids(samples, 6, method, newRand(7))
		if err != nil {
			t.Fatal(err)
		}
		b, err := InitCentroids(samples, 6, method, newRand(7))
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(a, b) {
			t.Errorf("InitCentroids(%s) not deterministic for equal seeds: %v vs %v", method, a, b)
		}
	}
}

func TestInitCentroidsInvalid(t *testing.T) {
	samples := mustSamples(t, red, green, blue)

	tests := []struct {
		name   string
		k      int
		method InitMethod
	}{
		{name: "zero k", k: 0, method: InitRandom},
		{name: "negative k", k: -1, method: InitKMeansPlusPlus},
		{name: "k above distinct colours", k: 4, method: InitKMeansPlusPlus},
		{name: "unknown method", k: 2, method: "forgy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitCentroids(samples, tt.k, tt.method, newRand(1))
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("InitCentroids() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestKMeansPlusPlusPrefersHeavyDistantSamples(t *testing.T) {
	// After the first pick, a zero-distance sample can never be chosen, so
	// with two samples the second centroid is always the other colour.
	samples := []WeightedSample{
		{Colour: red, Weight: 1},
		{Colour: blue, Weight: 100},
	}
	for seed := int64(0); seed < 20; seed++ {
		centroids, err := InitCentroids(samples, 2, InitKMeansPlusPlus, newRand(seed))
		if err != nil {
			t.Fatal(err)
		}
		if centroids[0] == centroids[1] {
			t.Fatalf("seed %d: duplicate centroids %v", seed, centroids)
		}
	}
}

func TestPickWeighted(t *testing.T) {
	if got := pickWeighted([]float64{0, 0}, 0, newRand(1)); got != -1 {
		t.Errorf("pickWeighted() with zero total = %d, want -1", got)
	}

	scores := []float64{0, 5, 0, 3, 0}
	for seed := int64(0); seed < 50; seed++ {
		got := pickWeighted(scores, 8, newRand(seed))
		if got != 1 && got != 3 {
			t.Fatalf("pickWeighted() = %d, want a positive-score index", got)
		}
	}
}
