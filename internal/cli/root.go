// Package cli provides the command-line interface for imagekmeans.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/imagekmeans/internal/version"
)

// globalOptions holds flags shared by every command.
type globalOptions struct {
	verbose int
	quiet   bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	globals := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "imagekmeans",
		Short: "Extract colour palettes from images with k-means clustering",
		Long: `imagekmeans groups the colours of an image with weighted k-means and prints
the cluster colours as a palette.

Use a fixed number of colours with -k, or let imagekmeans pick the number of
colours from the knee of the within-cluster sum of squares curve.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().CountVarP(&globals.verbose, "verbose", "v", "enable verbose output (repeat for trace logging)")
	rootCmd.PersistentFlags().BoolVarP(&globals.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExtractCmd(globals))

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the diagnostic logger for the verbosity level.
func newLogger(globals *globalOptions, w io.Writer) hclog.Logger {
	level := hclog.Off
	switch {
	case globals.quiet:
	case globals.verbose >= 2:
		level = hclog.Trace
	case globals.verbose == 1:
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "imagekmeans",
		Output: w,
		Level:  level,
	})
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				data, err := version.JSON()
				if err != nil {
					return fmt.Errorf("failed to encode version: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")

	return cmd
}
