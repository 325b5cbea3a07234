// Test image generator for trying palette extraction by hand.
//
//	go run testdata/generate_test_image.go
//	imagekmeans extract --curve testdata/sample.png
//	imagekmeans extract --skip-transparent -k 3 testdata/sample.png
package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

func main() {
	const (
		size   = 300
		border = 20
	)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	// Three equally sized, well separated bands inside a transparent border.
	bands := []color.NRGBA{
		{R: 220, G: 40, B: 40, A: 255},
		{R: 40, G: 200, B: 60, A: 255},
		{R: 40, G: 60, B: 220, A: 255},
	}
	bandHeight := (size - 2*border) / len(bands)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x < border || y < border || x >= size-border || y >= size-border {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			i := min((y-border)/bandHeight, len(bands)-1)
			img.SetNRGBA(x, y, bands[i])
		}
	}

	file, err := os.Create("testdata/sample.png")
	if err != nil {
		panic(err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		panic(err)
	}

	println("Test image created: testdata/sample.png")
}
