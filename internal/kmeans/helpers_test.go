package kmeans

import (
	"math/rand"
	"testing"

	"github.com/jmylchreest/imagekmeans/internal/colour"
)

var (
	red   = colour.RGB{R: 255}
	green = colour.RGB{G: 255}
	blue  = colour.RGB{B: 255}
)

// rgbBuffer lays the colours out as a single row of RGB pixels.
func rgbBuffer(colours ...colour.RGB) PixelBuffer {
	pix := make([]byte, 0, len(colours)*3)
	for _, c := range colours {
		pix = append(pix, c.R, c.G, c.B)
	}
	return PixelBuffer{Width: len(colours), Height: 1, Channels: 3, Pix: pix}
}

func repeat(c colour.RGB, n int) []colour.RGB {
	out := make([]colour.RGB, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func mustSamples(t testing.TB, colours ...colour.RGB) []WeightedSample {
	t.Helper()
	samples, err := ExtractSamples(rgbBuffer(colours...), SampleOptions{})
	if err != nil {
		t.Fatalf("ExtractSamples() unexpected error: %v", err)
	}
	return samples
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) // #nosec G404 -- deterministic test rng
}
