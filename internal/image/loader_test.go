package image

import (
	"bytes"
	"compress/gzip"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/imagekmeans/internal/util/imagecache"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if (x+y)%2 == 1 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	raw := encodePNG(t, checker(4, 3))

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(raw)
	zw.Close()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "png", path: writeFile(t, dir, "plain.png", raw)},
		{name: "gzipped png", path: writeFile(t, dir, "packed.png.gz", gz.Bytes())},
		{name: "not an image", path: writeFile(t, dir, "notes.png", []byte("hello")), wantErr: true},
		{name: "missing", path: filepath.Join(dir, "missing.png"), wantErr: true},
		{name: "directory", path: dir, wantErr: true},
		{name: "empty path", path: "", wantErr: true},
	}

	loader := NewFileLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := loader.Load(context.Background(), tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
				t.Errorf("Load() bounds = %v, want 4x3", b)
			}
		})
	}
}

func TestScanAndExpand(t *testing.T) {
	dir := t.TempDir()
	raw := encodePNG(t, checker(2, 2))
	b := writeFile(t, dir, "b.png", raw)
	a := writeFile(t, dir, "a.jpg", raw)
	c := writeFile(t, dir, "c.png.xz", raw)
	writeFile(t, dir, "readme.txt", []byte("x"))
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}

	files, err := ScanDirectoryForImages(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryForImages() unexpected error: %v", err)
	}
	want := []string{a, b, c}
	if len(files) != len(want) {
		t.Fatalf("ScanDirectoryForImages() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}

	expanded, err := ExpandPaths([]string{"https://example.com/x.png", dir, b})
	if err != nil {
		t.Fatalf("ExpandPaths() unexpected error: %v", err)
	}
	if len(expanded) != 5 || expanded[0] != "https://example.com/x.png" || expanded[4] != b {
		t.Errorf("ExpandPaths() = %v", expanded)
	}

	if _, err := ScanDirectoryForImages(t.TempDir()); err == nil {
		t.Error("ScanDirectoryForImages() expected error for empty directory")
	}
}

func TestValidateImagePath(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.png", encodePNG(t, checker(2, 2)))
	bad := writeFile(t, dir, "bad.png", []byte("nope"))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "valid png", path: good},
		{name: "directory", path: dir},
		{name: "url", path: "https://example.com/a.png"},
		{name: "invalid content", path: bad, wantErr: true},
		{name: "missing", path: filepath.Join(dir, "none.png"), wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateImagePath(tt.path); (err != nil) != tt.wantErr {
				t.Errorf("ValidateImagePath() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSmartLoaderURL(t *testing.T) {
	raw := encodePNG(t, checker(3, 3))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(raw)
	}))
	defer server.Close()

	loader := NewSmartLoader()
	if _, err := loader.Load(context.Background(), server.URL+"/img.png"); err == nil {
		t.Error("Load() expected error for loopback URL without AllowPrivateHosts")
	}

	loader.AllowPrivateHosts = true
	img, err := loader.Load(context.Background(), server.URL+"/img.png?v=1")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Errorf("Load() width = %d, want 3", img.Bounds().Dx())
	}
}

func TestToNRGBA(t *testing.T) {
	src := checker(8, 4)

	same := ToNRGBA(src, 0)
	if same.Bounds() != image.Rect(0, 0, 8, 4) || same.Stride != 32 {
		t.Errorf("ToNRGBA() bounds = %v stride %d", same.Bounds(), same.Stride)
	}
	if same.NRGBAAt(1, 0) != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("ToNRGBA() pixel = %v", same.NRGBAAt(1, 0))
	}

	small := ToNRGBA(src, 4)
	if small.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Errorf("ToNRGBA() downscaled bounds = %v, want 4x2", small.Bounds())
	}
	for i := 0; i < len(small.Pix); i += 4 {
		p := small.Pix[i : i+4]
		red := p[0] == 255 && p[2] == 0
		blue := p[0] == 0 && p[2] == 255
		if !red && !blue {
			t.Fatalf("ToNRGBA() introduced blended colour %v", p)
		}
	}

	offset := src.SubImage(image.Rect(2, 1, 6, 3))
	sub := ToNRGBA(offset, 0)
	if sub.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Errorf("ToNRGBA() sub-image bounds = %v", sub.Bounds())
	}
	if sub.NRGBAAt(0, 0) != src.NRGBAAt(2, 1) {
		t.Errorf("ToNRGBA() sub-image origin pixel = %v, want %v", sub.NRGBAAt(0, 0), src.NRGBAAt(2, 1))
	}
}

func TestSmartLoaderCache(t *testing.T) {
	raw := encodePNG(t, checker(2, 2))
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(raw)
	}))

	loader := NewSmartLoader()
	loader.AllowPrivateHosts = true
	loader.Cache = &imagecache.Cache{Dir: t.TempDir()}

	url := server.URL + "/cached.png"
	if _, err := loader.Load(context.Background(), url); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	server.Close()

	if _, err := loader.Load(context.Background(), url); err != nil {
		t.Fatalf("Load() from cache unexpected error: %v", err)
	}
	if requests != 1 {
		t.Errorf("server received %d requests, want 1", requests)
	}
}
