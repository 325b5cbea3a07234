// Package kmeans implements weighted k-means clustering of image colours.
//
// Pixels are first reduced to weighted samples (one per distinct colour),
// optionally quantised and filtered to the most frequent colours. Samples are
// then clustered for a fixed k, or for a range of k with the best k chosen by
// knee analysis of the WCSS curve.
package kmeans

import (
	"fmt"
	"math"
	"slices"

	"github.com/jmylchreest/imagekmeans/internal/colour"
	"github.com/jmylchreest/imagekmeans/internal/security"
)

// AlphaPolicy controls how the alpha channel of 4-channel pixel data is used.
type AlphaPolicy string

const (
	// AlphaIgnore drops the alpha channel; every pixel contributes.
	AlphaIgnore AlphaPolicy = "ignore"
	// AlphaSkipTransparent excludes pixels whose alpha is zero.
	AlphaSkipTransparent AlphaPolicy = "skip-transparent"
)

// PixelBuffer is row-major pixel data with 3 (RGB) or 4 (RGBA) bytes per pixel.
type PixelBuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Validate checks the buffer dimensions against its data.
func (b PixelBuffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 || len(b.Pix) == 0 {
		return fmt.Errorf("%w: pixel buffer is empty", ErrInvalidInput)
	}
	if b.Channels != 3 && b.Channels != 4 {
		return fmt.Errorf("%w: unsupported channel count %d (expected 3 or 4)", ErrInvalidInput, b.Channels)
	}
	if want := b.Width * b.Height * b.Channels; len(b.Pix) != want {
		return fmt.Errorf("%w: pixel buffer has %d bytes, expected %d for %dx%d", ErrInvalidInput, len(b.Pix), want, b.Width, b.Height)
	}
	return nil
}

// WeightedSample is a distinct colour and the number of pixels that carry it.
type WeightedSample struct {
	Colour colour.RGB
	Weight int
}

// SampleOptions configures sample extraction.
// Zero values for QuantizeFact and TopNum mean "not set".
type SampleOptions struct {
	QuantizeFact int
	TopNum       int
	Alpha        AlphaPolicy
}

// Validate validates the sample options.
func (o SampleOptions) Validate() error {
	if o.QuantizeFact < 0 {
		return fmt.Errorf("%w: quantize factor must be positive, got %d", ErrInvalidInput, o.QuantizeFact)
	}
	if o.TopNum < 0 {
		return fmt.Errorf("%w: top number must be positive, got %d", ErrInvalidInput, o.TopNum)
	}
	switch o.Alpha {
	case "", AlphaIgnore, AlphaSkipTransparent:
	default:
		return fmt.Errorf("%w: unknown alpha policy: %s", ErrInvalidInput, o.Alpha)
	}
	return nil
}

// ExtractSamples converts a pixel buffer into weighted colour samples,
// applying quantisation and then top-N filtering when configured.
func ExtractSamples(buf PixelBuffer, opts SampleOptions) ([]WeightedSample, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	samples := groupPixels(buf, opts.Alpha)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no pixels remain after alpha filtering", ErrInvalidInput)
	}

	if opts.QuantizeFact > 1 {
		samples = Quantize(samples, opts.QuantizeFact)
	}
	if opts.TopNum > 0 {
		samples = TopN(samples, opts.TopNum)
	}

	return samples, nil
}

// groupPixels aggregates pixels by exact colour in first-encountered order.
func groupPixels(buf PixelBuffer, alpha AlphaPolicy) []WeightedSample {
	index := make(map[colour.RGB]int)
	samples := make([]WeightedSample, 0, 256)

	for i := 0; i+buf.Channels <= len(buf.Pix); i += buf.Channels {
		if buf.Channels == 4 && alpha == AlphaSkipTransparent && buf.Pix[i+3] == 0 {
			continue
		}
		c := colour.RGB{R: buf.Pix[i], G: buf.Pix[i+1], B: buf.Pix[i+2]}
		if idx, ok := index[c]; ok {
			samples[idx].Weight++
			continue
		}
		index[c] = len(samples)
		samples = append(samples, WeightedSample{Colour: c, Weight: 1})
	}

	return samples
}

// Quantize maps every channel to round(v/factor)*factor, clamped to [0,255],
// and merges samples that become equal. Order follows the first sample that
// produced each quantised colour. A factor of 1 or less returns a copy.
func Quantize(samples []WeightedSample, factor int) []WeightedSample {
	if factor <= 1 {
		return slices.Clone(samples)
	}

	index := make(map[colour.RGB]int, len(samples))
	out := make([]WeightedSample, 0, len(samples))
	for _, s := range samples {
		q := colour.RGB{
			R: quantizeChannel(s.Colour.R, factor),
			G: quantizeChannel(s.Colour.G, factor),
			B: quantizeChannel(s.Colour.B, factor),
		}
		if idx, ok := index[q]; ok {
			out[idx].Weight += s.Weight
			continue
		}
		index[q] = len(out)
		out = append(out, WeightedSample{Colour: q, Weight: s.Weight})
	}
	return out
}

func quantizeChannel(v uint8, factor int) uint8 {
	q := math.Round(float64(v)/float64(factor)) * float64(factor)
	return security.SafeUint8(int(q))
}

// TopN keeps the n heaviest samples. Ties keep their original order. The
// weight of discarded samples is dropped, not redistributed.
func TopN(samples []WeightedSample, n int) []WeightedSample {
	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b WeightedSample) int {
		return b.Weight - a.Weight
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TotalWeight returns the sum of sample weights.
func TotalWeight(samples []WeightedSample) int {
	total := 0
	for _, s := range samples {
		total += s.Weight
	}
	return total
}
