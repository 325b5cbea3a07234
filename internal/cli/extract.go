package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/imagekmeans/internal/colour"
	"github.com/jmylchreest/imagekmeans/internal/image"
	"github.com/jmylchreest/imagekmeans/internal/kmeans"
	"github.com/jmylchreest/imagekmeans/internal/seed"
	"github.com/jmylchreest/imagekmeans/internal/util/imagecache"
	"github.com/jmylchreest/imagekmeans/pkg/imagekmeans"
)

// seedEnvVar supplies the manual seed when --seed-value is not given.
const seedEnvVar = "IMAGEKMEANS_SEED"

// extractOptions holds the extract command flags.
type extractOptions struct {
	colours         int
	auto            bool
	method          imagekmeans.InitMethod
	quantize        int
	top             int
	maxK            int
	maxIterations   int
	tolerance       float64
	skipTransparent bool
	seedMode        seed.Mode
	seedValue       int64
	maxSize         int
	order           orderValue
	format          outputFormat
	preview         bool
	curve           bool
	output          string
	jobs            int
	allowPrivate    bool
	cache           bool
	cacheDir        string
}

// extractResult is the palette computed for one image.
type extractResult struct {
	path   string
	result imagekmeans.RunResult
	curve  []imagekmeans.Candidate
}

func newExtractCmd(globals *globalOptions) *cobra.Command {
	opts := &extractOptions{
		method:   imagekmeans.InitKMeansPlusPlus,
		seedMode: seed.ModeContent,
		order:    orderValue(colour.OrderNone),
		format:   formatHex,
	}

	cmd := &cobra.Command{
		Use:   "extract [flags] <image>...",
		Short: "Extract a colour palette from one or more images",
		Long: `Extract a colour palette from images using weighted k-means clustering.

Each distinct colour becomes a sample weighted by its pixel count. Samples can
be quantised and reduced to the most frequent colours before clustering.

With -k the palette has exactly that many colours. Otherwise every k from 1 to
--max-k is tried and the knee of the WCSS curve picks the palette size.

Images may be local files, directories (every image inside is processed),
or HTTP(S) URLs. Files compressed with gzip, xz or bzip2 are unpacked.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Let imagekmeans choose the number of colours
  imagekmeans extract wallpaper.jpg

  # Extract exactly 8 colours with terminal previews
  imagekmeans extract -k 8 --preview wallpaper.png

  # Quantise, keep the 64 most frequent colours and print JSON
  imagekmeans extract --quantize 8 --top 64 -f json wallpaper.jpg

  # Process a directory four images at a time, showing the WCSS curve
  imagekmeans extract -j 4 --curve ~/Pictures/wallpapers

  # Reproducible output across machines
  imagekmeans extract --seed-mode manual --seed-value 42 wallpaper.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, globals, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.colours, "colours", "k", 0, "number of colours to extract (0 derives k automatically)")
	flags.BoolVar(&opts.auto, "auto", false, "derive the number of colours from the WCSS curve")
	flags.Var(&opts.method, "init", "centroid initialisation (random, kmeans++)")
	flags.IntVar(&opts.quantize, "quantize", 0, "snap channels to multiples of this value before clustering")
	flags.IntVar(&opts.top, "top", 0, "keep only the N most frequent colours")
	flags.IntVar(&opts.maxK, "max-k", kmeans.DefaultMaxK, "largest k tried when deriving k")
	flags.IntVar(&opts.maxIterations, "max-iterations", kmeans.DefaultMaxIterations, "iteration cap per clustering run")
	flags.Float64Var(&opts.tolerance, "tolerance", 0, "stop refining once centroids move less than this (0 disables)")
	flags.BoolVar(&opts.skipTransparent, "skip-transparent", false, "ignore fully transparent pixels")
	flags.Var(&opts.seedMode, "seed-mode", "seed mode (content, filepath, manual, random)")
	flags.Int64Var(&opts.seedValue, "seed-value", 0, "seed for manual mode (default $"+seedEnvVar+")")
	flags.IntVar(&opts.maxSize, "max-size", 0, "downscale images so neither side exceeds this many pixels (0 keeps full size)")
	flags.Var(&opts.order, "sort", "palette order (none, lightness, hue)")
	flags.VarP(&opts.format, "format", "f", "output format (hex, rgb, json, table)")
	flags.BoolVar(&opts.preview, "preview", false, "show colour previews in terminal")
	flags.BoolVar(&opts.curve, "curve", false, "print the WCSS curve of derived runs to stderr")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	flags.IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "images processed concurrently")
	flags.BoolVar(&opts.allowPrivate, "allow-private-hosts", false, "allow image URLs on local or private networks")
	flags.BoolVar(&opts.cache, "cache", false, "keep downloaded images in the cache directory")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "directory for cached downloads (default: user cache dir)")

	cmd.MarkFlagsMutuallyExclusive("colours", "auto")

	return cmd
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, globals *globalOptions, opts *extractOptions, args []string) error {
	stderr := cmd.ErrOrStderr()
	logger := newLogger(globals, stderr)
	verbose := globals.verbose > 0

	if opts.colours < 0 {
		return fmt.Errorf("invalid number of colours: %d", opts.colours)
	}
	if opts.jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", opts.jobs)
	}
	if opts.maxSize < 0 {
		return fmt.Errorf("max size must not be negative, got %d", opts.maxSize)
	}

	seedCfg, err := opts.seedConfig(cmd)
	if err != nil {
		return err
	}

	for _, arg := range args {
		if err := image.ValidateImagePath(arg); err != nil {
			return fmt.Errorf("invalid image path: %w", err)
		}
	}
	paths, err := image.ExpandPaths(args)
	if err != nil {
		return err
	}

	loader := image.NewSmartLoader()
	loader.AllowPrivateHosts = opts.allowPrivate
	if opts.cache || opts.cacheDir != "" {
		loader.Cache = &imagecache.Cache{Dir: opts.cacheDir}
	}

	results := make([]extractResult, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.jobs)
	for i, path := range paths {
		g.Go(func() error {
			if verbose {
				fmt.Fprintf(stderr, "Loading image: %s\n", path)
			}
			res, err := extractImage(ctx, loader, path, opts, seedCfg, logger.With("image", path))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if verbose {
				fmt.Fprintf(stderr, "Extracted %d colours from %s (wcss %.2f)\n", res.result.Ks, path, res.result.WCSS)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	showPreview := opts.preview && opts.output == "" && colour.SupportsANSIColours()
	if opts.preview && !showPreview {
		logger.Debug("colour previews disabled for non-terminal output")
	}

	output, err := renderResults(results, opts.format, colour.Order(opts.order), showPreview)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.curve && !globals.quiet {
		for _, r := range results {
			if len(r.curve) > 0 {
				fmt.Fprint(stderr, renderCurve(r))
			}
		}
	}

	if opts.output != "" {
		if verbose {
			fmt.Fprintf(stderr, "Writing output to: %s\n", opts.output)
		}
		if err := os.WriteFile(opts.output, []byte(output), 0o644); err != nil { // #nosec G306 -- palette output is not sensitive
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}

	_, err = io.WriteString(cmd.OutOrStdout(), output)
	return err
}

// seedConfig resolves the seed flags, reading the environment for manual
// mode when no value was given.
func (o *extractOptions) seedConfig(cmd *cobra.Command) (seed.Config, error) {
	cfg := seed.Config{Mode: o.seedMode}
	if cmd.Flags().Changed("seed-value") {
		if o.seedMode != seed.ModeManual {
			return cfg, fmt.Errorf("--seed-value requires --seed-mode manual")
		}
		cfg.Value = &o.seedValue
		return cfg, nil
	}

	if o.seedMode == seed.ModeManual {
		env, ok := os.LookupEnv(seedEnvVar)
		if !ok {
			return cfg, fmt.Errorf("manual seed mode requires --seed-value or $%s", seedEnvVar)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(env), 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid $%s: %w", seedEnvVar, err)
		}
		cfg.Value = &v
	}
	return cfg, nil
}

func (o *extractOptions) config() imagekmeans.Config {
	cfg := imagekmeans.Config{Alpha: imagekmeans.AlphaIgnore}
	if o.skipTransparent {
		cfg.Alpha = imagekmeans.AlphaSkipTransparent
	}
	if o.quantize != 0 {
		cfg.QuantizeFact = &o.quantize
	}
	if o.top != 0 {
		cfg.TopNum = &o.top
	}
	return cfg
}

// extractImage loads one image and clusters its colours.
func extractImage(ctx context.Context, loader image.Loader, path string, opts *extractOptions, seedCfg seed.Config, logger hclog.Logger) (extractResult, error) {
	img, err := loader.Load(ctx, path)
	if err != nil {
		return extractResult{}, fmt.Errorf("failed to load image: %w", err)
	}

	pixels := image.ToNRGBA(img, opts.maxSize)
	bounds := pixels.Bounds()
	logger.Debug("image loaded", "width", img.Bounds().Dx(), "height", img.Bounds().Dy(), "sampled_width", bounds.Dx(), "sampled_height", bounds.Dy())

	s, err := seed.Calculate(pixels, path, seedCfg)
	if err != nil {
		return extractResult{}, fmt.Errorf("failed to calculate seed: %w", err)
	}

	res := extractResult{path: path}
	engine, err := imagekmeans.New(pixels.Pix, bounds.Dx(), bounds.Dy(),
		imagekmeans.WithSeed(s),
		imagekmeans.WithLogger(logger),
		imagekmeans.WithMaxK(opts.maxK),
		imagekmeans.WithMaxIterations(opts.maxIterations),
		imagekmeans.WithTolerance(opts.tolerance),
		imagekmeans.WithCandidateObserver(func(c imagekmeans.Candidate) {
			res.curve = append(res.curve, c)
		}),
	)
	if err != nil {
		return extractResult{}, err
	}

	var future *imagekmeans.Future
	if opts.colours > 0 {
		future = engine.FixedK(opts.colours, opts.method, opts.config())
	} else {
		future = engine.DerivedK(opts.method, opts.config())
	}

	res.result, err = future.Await(ctx)
	if err != nil {
		if errors.Is(err, imagekmeans.ErrInternalInvariant) {
			logger.Error("clustering failed unexpectedly", "error", err)
		}
		return extractResult{}, err
	}
	return res, nil
}

// imageReport is the JSON shape of one image's palette.
type imageReport struct {
	Image string `json:"image"`
	K     int    `json:"k"`
	colour.PaletteJSON
}

func paletteOf(r imagekmeans.RunResult, order colour.Order) *colour.Palette {
	colours := make([]colour.RGB, len(r.Clusters))
	for i, c := range r.Clusters {
		colours[i] = colour.RGB{R: c.R, G: c.G, B: c.B}
	}
	return colour.NewPalette(colour.Sorted(colours, order), r.WCSS)
}

// renderResults formats every palette. Text formats get a "# path" heading
// per image when more than one image was processed.
func renderResults(results []extractResult, format outputFormat, order colour.Order, showPreview bool) (string, error) {
	if format == formatJSON {
		reports := make([]imageReport, len(results))
		for i, r := range results {
			reports[i] = imageReport{
				Image:       r.path,
				K:           r.result.Ks,
				PaletteJSON: paletteOf(r.result, order).JSON(),
			}
		}

		var (
			data []byte
			err  error
		)
		if len(reports) == 1 {
			data, err = json.MarshalIndent(reports[0], "", "  ")
		} else {
			data, err = json.MarshalIndent(reports, "", "  ")
		}
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	}

	var b strings.Builder
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "# %s\n", r.path)
		}

		palette := paletteOf(r.result, order)
		switch format {
		case formatHex:
			b.WriteString(formatHexLines(palette, showPreview))
		case formatRGB:
			b.WriteString(formatRGBLines(palette, showPreview))
		case formatTable:
			b.WriteString(formatTableLines(palette, showPreview))
		default:
			return "", fmt.Errorf("unsupported format: %s (supported: hex, rgb, json, table)", format)
		}
	}
	return b.String(), nil
}

// formatHexLines formats the palette as hex colour codes.
func formatHexLines(palette *colour.Palette, showPreview bool) string {
	if !showPreview {
		return strings.Join(palette.ToHex(), "\n") + "\n"
	}

	var b strings.Builder
	for _, c := range palette.Colours {
		b.WriteString(colour.FormatColourWithPreview(c, 8))
		b.WriteString("\n")
	}
	return b.String()
}

// formatRGBLines formats the palette as RGB values.
func formatRGBLines(palette *colour.Palette, showPreview bool) string {
	var b strings.Builder
	for _, c := range palette.Colours {
		if showPreview {
			b.WriteString(colour.ColourPreview(c, 8) + "  ")
		}
		b.WriteString(c.String())
		b.WriteString("\n")
	}
	return b.String()
}

// formatTableLines formats the palette as a table with a summary line.
func formatTableLines(palette *colour.Palette, showPreview bool) string {
	headers := []string{"#", "Hex", "RGB", "Lightness"}
	if showPreview {
		headers = append(headers, "Preview")
	}

	table := NewTable(headers)
	table.AlignRight(0)
	table.AlignRight(3)
	for i, c := range palette.Colours {
		row := []string{
			strconv.Itoa(i + 1),
			c.Hex(),
			c.String(),
			fmt.Sprintf("%.3f", colour.Lightness(c)),
		}
		if showPreview {
			row = append(row, colour.ColourPreviewWithText(c, c.Hex(), 9))
		}
		table.AddRow(row)
	}

	return table.Render() + fmt.Sprintf("k=%d wcss=%.2f\n", palette.Len(), palette.WCSS)
}

// renderCurve formats the derived-k WCSS curve, marking the selected k.
func renderCurve(r extractResult) string {
	table := NewTable([]string{"k", "wcss", ""})
	table.AlignRight(0)
	table.AlignRight(1)
	for _, c := range r.curve {
		marker := ""
		if c.K == r.result.Ks {
			marker = "<"
		}
		table.AddRow([]string{strconv.Itoa(c.K), strconv.FormatFloat(c.WCSS, 'f', 2, 64), marker})
	}
	return fmt.Sprintf("WCSS curve for %s:\n%s", r.path, table.Render())
}
