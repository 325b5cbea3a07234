package imagekmeans

import (
	"fmt"

	"github.com/jmylchreest/imagekmeans/internal/colour"
	"github.com/jmylchreest/imagekmeans/internal/kmeans"
)

var (
	// ErrInvalidInput reports malformed pixel data, configuration or k.
	ErrInvalidInput = kmeans.ErrInvalidInput

	// ErrInternalInvariant reports a state the engine should never reach.
	ErrInternalInvariant = kmeans.ErrInternalInvariant
)

// Color is an 8-bit RGB colour.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return colour.RGB{R: c.R, G: c.G, B: c.B}.Hex()
}

// RunResult is the outcome of a clustering operation.
type RunResult struct {
	// Ks is the number of clusters.
	Ks       int     `json:"ks"`
	Clusters []Color `json:"clusters"`
	WCSS     float64 `json:"wcss"`
}

func toRunResult(r kmeans.RunResult) RunResult {
	clusters := make([]Color, len(r.Clusters))
	for i, c := range r.Clusters {
		clusters[i] = Color{R: c.R, G: c.G, B: c.B}
	}
	return RunResult{Ks: r.K, Clusters: clusters, WCSS: r.WCSS}
}

// InitMethod selects how initial centroids are chosen.
type InitMethod string

const (
	// InitRandom picks distinct sample colours uniformly at random.
	InitRandom InitMethod = InitMethod(kmeans.InitRandom)
	// InitKMeansPlusPlus spreads initial centroids with k-means++ weighting.
	InitKMeansPlusPlus InitMethod = InitMethod(kmeans.InitKMeansPlusPlus)
)

// ParseInitMethod converts a string to an InitMethod.
func ParseInitMethod(s string) (InitMethod, error) {
	for _, m := range kmeans.ValidInitMethods() {
		if string(m) == s {
			return InitMethod(m), nil
		}
	}
	return "", fmt.Errorf("%w: invalid init method: %s (valid: random, kmeans++)", ErrInvalidInput, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m InitMethod) MarshalText() ([]byte, error) {
	if _, err := ParseInitMethod(string(m)); err != nil {
		return nil, err
	}
	return []byte(m), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *InitMethod) UnmarshalText(text []byte) error {
	return m.Set(string(text))
}

// String implements pflag.Value.
func (m InitMethod) String() string { return string(m) }

// Set implements pflag.Value.
func (m *InitMethod) Set(s string) error {
	parsed, err := ParseInitMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value.
func (m *InitMethod) Type() string { return "method" }

// AlphaPolicy controls how transparent pixels are treated.
type AlphaPolicy = kmeans.AlphaPolicy

const (
	// AlphaIgnore counts every pixel regardless of alpha.
	AlphaIgnore = kmeans.AlphaIgnore
	// AlphaSkipTransparent drops pixels with zero alpha.
	AlphaSkipTransparent = kmeans.AlphaSkipTransparent
)

// Config holds per-call options. Nil fields are unset.
type Config struct {
	// QuantizeFact snaps each channel to the nearest multiple of this value.
	QuantizeFact *int `json:"quantize_fact,omitempty"`

	// TopNum keeps only the most frequent colours after quantisation.
	TopNum *int `json:"top_num,omitempty"`

	// Seed overrides the engine seed for this call.
	Seed *int64 `json:"seed,omitempty"`

	Alpha AlphaPolicy `json:"alpha,omitempty"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.QuantizeFact != nil && *c.QuantizeFact < 1 {
		return fmt.Errorf("%w: quantize_fact must be a positive integer, got %d", ErrInvalidInput, *c.QuantizeFact)
	}
	if c.TopNum != nil && *c.TopNum < 1 {
		return fmt.Errorf("%w: top_num must be a positive integer, got %d", ErrInvalidInput, *c.TopNum)
	}
	return c.sampleOptions().Validate()
}

func (c Config) sampleOptions() kmeans.SampleOptions {
	opts := kmeans.SampleOptions{Alpha: c.Alpha}
	if c.QuantizeFact != nil {
		opts.QuantizeFact = *c.QuantizeFact
	}
	if c.TopNum != nil {
		opts.TopNum = *c.TopNum
	}
	return opts
}

// Candidate is one (k, WCSS) point observed while deriving k.
type Candidate = kmeans.Candidate

// KneePolicy chooses k from the WCSS curve.
type KneePolicy = kmeans.KneePolicy

// PerpendicularKnee is the default KneePolicy.
type PerpendicularKnee = kmeans.PerpendicularKnee
