// Package imagecache stores downloaded images on disk so repeated runs over
// the same URL skip the network.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FetchFunc downloads the content at url.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Cache is a directory of downloaded images keyed by URL.
type Cache struct {
	// Dir is the cache directory. If empty, DefaultDir is used.
	Dir string

	// Refresh re-downloads images even when a cached copy exists.
	Refresh bool
}

// DefaultDir returns the default cache directory path.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory if cache dir not available.
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "imagekmeans", "images"), nil
	}
	return filepath.Join(cacheDir, "imagekmeans", "images"), nil
}

// Filename returns the cache file name for a URL: a hash of the URL plus the
// final extension of its path, so compressed images stay recognisable.
func Filename(url string) string {
	hash := sha256.Sum256([]byte(url))

	name := url
	if idx := strings.IndexAny(name, "?#"); idx != -1 {
		name = name[:idx]
	}
	ext := filepath.Ext(name)
	if len(ext) > 6 || strings.ContainsRune(ext, '/') {
		ext = ""
	}

	return fmt.Sprintf("%x%s", hash[:16], ext)
}

// Path returns where the image for url is cached.
func (c *Cache) Path(url string) (string, error) {
	dir := c.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, Filename(url)), nil
}

// Get returns the cached bytes for url, calling fetch and storing the result
// on a miss.
func (c *Cache) Get(ctx context.Context, url string, fetch FetchFunc) ([]byte, error) {
	path, err := c.Path(url)
	if err != nil {
		return nil, err
	}

	if !c.Refresh {
		if data, err := os.ReadFile(path); err == nil { // #nosec G304 -- path is derived from a hash inside the cache directory
			return data, nil
		}
	}

	data, err := fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := store(path, data); err != nil {
		return nil, err
	}
	return data, nil
}

// store writes data through a temporary file so concurrent readers never see
// a partial image.
func store(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store cached image: %w", err)
	}
	return nil
}
