package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/imagekmeans/internal/colour"
	"github.com/jmylchreest/imagekmeans/internal/seed"
	"github.com/jmylchreest/imagekmeans/pkg/imagekmeans"
)

var (
	_ pflag.Value = (*outputFormat)(nil)
	_ pflag.Value = (*orderValue)(nil)
	_ pflag.Value = (*seed.Mode)(nil)
	_ pflag.Value = (*imagekmeans.InitMethod)(nil)
)

// outputFormat is the palette output format.
type outputFormat string

const (
	formatHex   outputFormat = "hex"
	formatRGB   outputFormat = "rgb"
	formatJSON  outputFormat = "json"
	formatTable outputFormat = "table"
)

func validFormats() []outputFormat {
	return []outputFormat{formatHex, formatRGB, formatJSON, formatTable}
}

// String implements pflag.Value.
func (f *outputFormat) String() string { return string(*f) }

// Set implements pflag.Value.
func (f *outputFormat) Set(s string) error {
	v := outputFormat(strings.ToLower(s))
	if !slices.Contains(validFormats(), v) {
		return fmt.Errorf("unsupported format: %s (supported: hex, rgb, json, table)", s)
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *outputFormat) Type() string { return "format" }

// orderValue adapts colour.Order to pflag.Value.
type orderValue colour.Order

// String implements pflag.Value.
func (o *orderValue) String() string { return string(*o) }

// Set implements pflag.Value.
func (o *orderValue) Set(s string) error {
	order, err := colour.ParseOrder(s)
	if err != nil {
		return err
	}
	*o = orderValue(order)
	return nil
}

// Type implements pflag.Value.
func (o *orderValue) Type() string { return "order" }
