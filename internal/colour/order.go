package colour

import (
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Order determines how palette colours are arranged for display.
type Order string

const (
	// OrderNone keeps the order clusters were produced in.
	OrderNone Order = "none"
	// OrderLightness sorts from dark to light by CIE L*.
	OrderLightness Order = "lightness"
	// OrderHue sorts by HCL hue, greys first.
	OrderHue Order = "hue"
)

// ValidOrders returns the supported orderings.
func ValidOrders() []Order {
	return []Order{OrderNone, OrderLightness, OrderHue}
}

// ParseOrder converts a string to an Order.
func ParseOrder(s string) (Order, error) {
	o := Order(s)
	if slices.Contains(ValidOrders(), o) {
		return o, nil
	}
	return "", fmt.Errorf("invalid order: %s (valid: none, lightness, hue)", s)
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Lightness returns the CIE L* of the colour scaled to [0,1].
func Lightness(c RGB) float64 {
	l, _, _ := toColorful(c).Lab()
	return l
}

// chromaFloor is the HCL chroma below which a colour is treated as grey.
const chromaFloor = 0.05

// Sorted returns a copy of colours arranged by the given order.
func Sorted(colours []RGB, order Order) []RGB {
	out := slices.Clone(colours)
	switch order {
	case OrderLightness:
		slices.SortStableFunc(out, func(a, b RGB) int {
			return compareFloat(Lightness(a), Lightness(b))
		})
	case OrderHue:
		slices.SortStableFunc(out, func(a, b RGB) int {
			ha, ca, la := toColorful(a).Hcl()
			hb, cb, lb := toColorful(b).Hcl()
			greyA, greyB := ca < chromaFloor, cb < chromaFloor
			switch {
			case greyA && greyB:
				return compareFloat(la, lb)
			case greyA:
				return -1
			case greyB:
				return 1
			}
			return compareFloat(ha, hb)
		})
	}
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
