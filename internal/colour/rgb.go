// Package colour provides the 8-bit RGB colour type and helpers for
// presenting cluster colours.
package colour

import (
	"encoding/json"
	"fmt"
)

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Palette is an ordered set of cluster colours and the WCSS of the run that
// produced them.
type Palette struct {
	Colours []RGB
	WCSS    float64
}

// NewPalette creates a new Palette with the given colours.
func NewPalette(colours []RGB, wcss float64) *Palette {
	return &Palette{
		Colours: colours,
		WCSS:    wcss,
	}
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.Colours)
}

// ToHex converts the palette colors to hex strings.
// Returns a slice of hex color codes (e.g., ["#1a2b3c", "#4d5e6f"]).
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Colours))
	for i, c := range p.Colours {
		hexColors[i] = c.Hex()
	}
	return hexColors
}

// ColorJSON represents a color in JSON output format.
type ColorJSON struct {
	Hex string `json:"hex"`
	RGB RGB    `json:"rgb"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count  int         `json:"count"`
	WCSS   float64     `json:"wcss"`
	Colors []ColorJSON `json:"colors"`
}

// JSON returns the JSON output shape of the palette.
func (p *Palette) JSON() PaletteJSON {
	colors := make([]ColorJSON, len(p.Colours))
	for i, c := range p.Colours {
		colors[i] = ColorJSON{
			Hex: c.Hex(),
			RGB: c,
		}
	}

	return PaletteJSON{
		Count:  len(p.Colours),
		WCSS:   p.WCSS,
		Colors: colors,
	}
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p.JSON(), "", "  ")
}
