package pdfannotate

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Point is a position in either page space or pixel space. Which one is
// always stated by the function that accepts or returns it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect represents an axis-aligned box with a top-left origin.
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// RectFromXYWH builds a Rect from an origin and a size.
func RectFromXYWH(x, y, w, h float64) Rect {
	return Rect{X0: x, Y0: y, X1: x + w, Y1: y + h}
}

// RectFromCorners builds the normalized rectangle spanned by two corner
// points, whichever direction the user dragged.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		X0: min(a.X, b.X),
		Y0: min(a.Y, b.Y),
		X1: max(a.X, b.X),
		Y1: max(a.Y, b.Y),
	}
}

// Color is an RGB colour serialized as "#rrggbb".
type Color string

// Common colours used as tool defaults.
const (
	ColorBlack     Color = "#000000"
	ColorWhite     Color = "#ffffff"
	ColorYellow    Color = "#FFFF00"
	ColorSelection Color = "#3b82f6"
)

// ParseColor parses "#rgb" or "#rrggbb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return "", errors.Errorf("invalid colour %q", s)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", errors.Wrapf(err, "invalid colour %q", s)
	}
	return Color("#" + strings.ToLower(hex)), nil
}

// NRGBA converts the colour to an opaque color.NRGBA. Malformed values
// fall back to black.
func (c Color) NRGBA() color.NRGBA {
	return c.WithAlpha(0xff)
}

// WithAlpha converts the colour to a color.NRGBA with the given alpha.
func (c Color) WithAlpha(a uint8) color.NRGBA {
	parsed, err := ParseColor(string(c))
	if err != nil {
		return color.NRGBA{A: a}
	}
	v, _ := strconv.ParseUint(string(parsed[1:]), 16, 32)
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: a,
	}
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return string(c)
}

// Hex formats an RGB triple as a Color.
func Hex(r, g, b uint8) Color {
	return Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}
