// Package compression unwraps images stored inside single-file compression
// formats (.gz, .xz, .bz2).
package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/imagekmeans/internal/security"
)

// DefaultMaxDecompressedSize caps how many bytes a compressed image may expand to.
const DefaultMaxDecompressedSize = 256 * 1024 * 1024

// Format is a single-file compression format.
type Format string

const (
	FormatNone  Format = ""
	FormatGzip  Format = "gzip"
	FormatXz    Format = "xz"
	FormatBzip2 Format = "bzip2"
)

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicXz    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicBzip2 = []byte("BZh")
)

// Detect identifies the compression format from the file extension, falling
// back to the leading magic bytes.
func Detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return FormatGzip
	case ".xz":
		return FormatXz
	case ".bz2":
		return FormatBzip2
	}

	switch {
	case bytes.HasPrefix(data, magicGzip):
		return FormatGzip
	case bytes.HasPrefix(data, magicXz):
		return FormatXz
	case bytes.HasPrefix(data, magicBzip2):
		return FormatBzip2
	}
	return FormatNone
}

// Decompress expands data in the given format, refusing to produce more than
// maxBytes. FormatNone returns data unchanged.
func Decompress(data []byte, format Format, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDecompressedSize
	}

	var r io.Reader
	switch format {
	case FormatNone:
		return data, nil
	case FormatGzip:
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	case FormatXz:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	case FormatBzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported compression format: %s", format)
	}

	out, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s data: %w", format, err)
	}
	return out, nil
}

// Unwrap detects and removes a compression layer. It returns the name with
// the compression extension stripped, so "photo.png.xz" becomes "photo.png".
func Unwrap(name string, data []byte, maxBytes int64) (string, []byte, error) {
	format := Detect(name, data)
	if format == FormatNone {
		return name, data, nil
	}

	out, err := Decompress(data, format, maxBytes)
	if err != nil {
		return "", nil, err
	}

	inner := name
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip", ".xz", ".bz2":
		inner = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return inner, out, nil
}
