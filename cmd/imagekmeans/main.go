// imagekmeans extracts colour palettes from images using weighted k-means
// clustering, with the number of colours fixed or derived from the WCSS curve.
package main

import (
	"github.com/jmylchreest/imagekmeans/internal/cli"
)

func main() {
	cli.Execute()
}
