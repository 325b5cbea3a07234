// Package imagekmeans extracts representative colour palettes from images
// using weighted k-means clustering.
//
// An Engine captures a copy of the pixel data once. Each FixedK or DerivedK
// call builds its own samples and random source, so calls may run
// concurrently on the same engine.
package imagekmeans

import (
	"fmt"
	"image"
	"math/rand"
	"slices"

	"github.com/hashicorp/go-hclog"

	imgutil "github.com/jmylchreest/imagekmeans/internal/image"
	"github.com/jmylchreest/imagekmeans/internal/kmeans"
	"github.com/jmylchreest/imagekmeans/internal/seed"
)

// Engine clusters the colours of one image.
type Engine struct {
	buf  kmeans.PixelBuffer
	opts options
}

type options struct {
	channels      int
	seed          *int64
	logger        hclog.Logger
	maxIterations int
	tolerance     float64
	maxK          int
	knee          KneePolicy
	onCandidate   func(Candidate)
	maxSize       int
}

// Option configures an Engine.
type Option func(*options)

// WithChannels sets the bytes per pixel of the input: 4 (RGBA, default) or 3 (RGB).
func WithChannels(n int) Option {
	return func(o *options) { o.channels = n }
}

// WithSeed sets the default seed for calls whose Config has none.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = &seed }
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxIterations caps refinement iterations per run.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithTolerance stops refinement once no centroid moves further than tol.
func WithTolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

// WithMaxK sets the largest k tried by DerivedK.
func WithMaxK(n int) Option {
	return func(o *options) { o.maxK = n }
}

// WithKneePolicy replaces the policy DerivedK uses to choose k.
func WithKneePolicy(p KneePolicy) Option {
	return func(o *options) { o.knee = p }
}

// WithCandidateObserver is called with every point of the WCSS curve during DerivedK.
func WithCandidateObserver(fn func(Candidate)) Option {
	return func(o *options) { o.onCandidate = fn }
}

// WithMaxSize downscales images passed to FromImage so neither side exceeds n pixels.
func WithMaxSize(n int) Option {
	return func(o *options) { o.maxSize = n }
}

func buildOptions(opts []Option) options {
	o := options{channels: 4}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = hclog.NewNullLogger()
	}
	return o
}

// New creates an engine over row-major pixel data. The pixels are copied.
func New(pixels []byte, width, height int, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)

	if o.maxIterations < 0 {
		return nil, fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidInput, o.maxIterations)
	}
	if o.tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must not be negative, got %v", ErrInvalidInput, o.tolerance)
	}
	if o.maxK < 0 {
		return nil, fmt.Errorf("%w: max k must not be negative, got %d", ErrInvalidInput, o.maxK)
	}

	buf := kmeans.PixelBuffer{
		Width:    width,
		Height:   height,
		Channels: o.channels,
		Pix:      append([]byte(nil), pixels...),
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	return &Engine{buf: buf, opts: o}, nil
}

// FromImage creates an engine from a decoded image.
func FromImage(img image.Image, opts ...Option) (*Engine, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", ErrInvalidInput)
	}
	o := buildOptions(opts)
	nrgba := imgutil.ToNRGBA(img, o.maxSize)
	b := nrgba.Bounds()

	return New(nrgba.Pix, b.Dx(), b.Dy(), append(slices.Clip(opts), WithChannels(4))...)
}

// FixedK clusters the image into exactly k colours asynchronously.
func (e *Engine) FixedK(k int, method InitMethod, cfg Config) *Future {
	return goFuture(func() (RunResult, error) {
		return e.RunFixedK(k, method, cfg)
	})
}

// DerivedK clusters the image with k chosen by knee analysis, asynchronously.
func (e *Engine) DerivedK(method InitMethod, cfg Config) *Future {
	return goFuture(func() (RunResult, error) {
		return e.RunDerivedK(method, cfg)
	})
}

// RunFixedK is the synchronous form of FixedK.
func (e *Engine) RunFixedK(k int, method InitMethod, cfg Config) (RunResult, error) {
	logger := e.opts.logger.Named("fixed")

	samples, rng, err := e.prepare(cfg, logger)
	if err != nil {
		return RunResult{}, err
	}

	res, err := kmeans.RunFixedK(samples, k, kmeans.InitMethod(method), rng, e.kmeansOptions(logger))
	if err != nil {
		return RunResult{}, fmt.Errorf("fixed-k clustering failed: %w", err)
	}
	return toRunResult(res), nil
}

// RunDerivedK is the synchronous form of DerivedK.
func (e *Engine) RunDerivedK(method InitMethod, cfg Config) (RunResult, error) {
	logger := e.opts.logger.Named("derived")

	samples, rng, err := e.prepare(cfg, logger)
	if err != nil {
		return RunResult{}, err
	}

	res, err := kmeans.RunDerivedK(samples, kmeans.InitMethod(method), rng, e.kmeansOptions(logger))
	if err != nil {
		return RunResult{}, fmt.Errorf("derived-k clustering failed: %w", err)
	}
	return toRunResult(res), nil
}

// prepare builds the samples and random source for one call.
func (e *Engine) prepare(cfg Config, logger hclog.Logger) ([]kmeans.WeightedSample, *rand.Rand, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	samples, err := kmeans.ExtractSamples(e.buf, cfg.sampleOptions())
	if err != nil {
		return nil, nil, err
	}

	s := e.resolveSeed(cfg)
	logger.Debug("samples extracted", "distinct", len(samples), "weight", kmeans.TotalWeight(samples), "seed", s)

	return samples, rand.New(rand.NewSource(s)), nil // #nosec G404 -- clustering needs a reproducible, seedable source
}

func (e *Engine) resolveSeed(cfg Config) int64 {
	switch {
	case cfg.Seed != nil:
		return *cfg.Seed
	case e.opts.seed != nil:
		return *e.opts.seed
	default:
		return seed.RandomSeed()
	}
}

func (e *Engine) kmeansOptions(logger hclog.Logger) kmeans.Options {
	return kmeans.Options{
		MaxIterations: e.opts.maxIterations,
		Tolerance:     e.opts.tolerance,
		MaxK:          e.opts.maxK,
		Knee:          e.opts.knee,
		OnCandidate:   e.opts.onCandidate,
		Logger:        logger,
	}
}
