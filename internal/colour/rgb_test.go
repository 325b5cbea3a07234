package colour

import (
	"strings"
	"testing"
)

func TestNewPalette(t *testing.T) {
	palette := NewPalette([]RGB{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
		{R: 0, G: 0, B: 255},
	}, 12.5)

	if palette == nil {
		t.Fatal("NewPalette returned nil")
	}

	if palette.Len() != 3 {
		t.Errorf("Expected palette length 3, got %d", palette.Len())
	}

	if palette.WCSS != 12.5 {
		t.Errorf("Expected WCSS 12.5, got %f", palette.WCSS)
	}
}

func TestRGBHex(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want string
	}{
		{name: "red", rgb: RGB{R: 255, G: 0, B: 0}, want: "#ff0000"},
		{name: "blue", rgb: RGB{R: 0, G: 0, B: 255}, want: "#0000ff"},
		{name: "grey", rgb: RGB{R: 128, G: 128, B: 128}, want: "#808080"},
		{name: "low values", rgb: RGB{R: 1, G: 2, B: 3}, want: "#010203"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rgb.Hex(); got != tt.want {
				t.Errorf("Hex() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRGBString(t *testing.T) {
	rgb := RGB{R: 10, G: 10, B: 10}
	if got, want := rgb.String(), "rgb(10, 10, 10)"; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestPaletteToHex(t *testing.T) {
	palette := NewPalette([]RGB{{R: 255}, {G: 255}, {B: 255}}, 0)
	hexColors := palette.ToHex()

	want := []string{"#ff0000", "#00ff00", "#0000ff"}
	if len(hexColors) != len(want) {
		t.Fatalf("ToHex() returned %d colors, want %d", len(hexColors), len(want))
	}
	for i, got := range hexColors {
		if got != want[i] {
			t.Errorf("ToHex()[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestPaletteToJSON(t *testing.T) {
	palette := NewPalette([]RGB{{R: 255}, {G: 255}}, 42)
	jsonBytes, err := palette.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	jsonStr := string(jsonBytes)
	for _, expected := range []string{
		`"count": 2`,
		`"wcss": 42`,
		`"hex": "#ff0000"`,
		`"hex": "#00ff00"`,
		`"r": 255`,
		`"g": 255`,
	} {
		if !strings.Contains(jsonStr, expected) {
			t.Errorf("ToJSON() output missing expected string: %s", expected)
		}
	}
}

