package pdfannotate

import (
	"math"

	"github.com/pkg/errors"
)

// Viewport maps between page space (PDF points, top-left origin) and
// pixel space for a single scale factor. All annotation geometry is stored
// in page space; only rendering and pointer input use pixels.
type Viewport struct {
	Scale float64
}

// ToPixels converts a page-space length to pixels.
func (v Viewport) ToPixels(value float64) float64 {
	return value * v.Scale
}

// ToPage converts a pixel length to page space.
func (v Viewport) ToPage(value float64) float64 {
	return value / v.Scale
}

// PointToPixels converts a page-space point to pixels.
func (v Viewport) PointToPixels(p Point) Point {
	return Point{X: v.ToPixels(p.X), Y: v.ToPixels(p.Y)}
}

// PointToPage converts a pixel point to page space.
func (v Viewport) PointToPage(p Point) Point {
	return Point{X: v.ToPage(p.X), Y: v.ToPage(p.Y)}
}

// RectToPixels converts a page-space rectangle to pixels.
func (v Viewport) RectToPixels(r Rect) Rect {
	return scaleRect(r, v.Scale)
}

// RectToPage converts a pixel rectangle to page space.
func (v Viewport) RectToPage(r Rect) Rect {
	return scaleRect(r, 1/v.Scale)
}

// ZoomConfig bounds the scale factors a viewer may pick.
type ZoomConfig struct {
	// Default is the initial scale (default: 1.5)
	Default float64 `yaml:"default"`

	// Step is the increment applied by ZoomIn/ZoomOut (default: 0.25)
	Step float64 `yaml:"step"`

	// Min is the smallest allowed scale (default: 0.5)
	Min float64 `yaml:"min"`

	// Max is the largest allowed scale (default: 3.0)
	Max float64 `yaml:"max"`
}

// DefaultZoomConfig returns the zoom limits used by the editor.
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{
		Default: 1.5,
		Step:    0.25,
		Min:     0.5,
		Max:     3.0,
	}
}

// Clamp restricts scale to [Min, Max]. Non-positive or NaN input yields
// the default scale. The result is always a positive, finite scale.
func (z ZoomConfig) Clamp(scale float64) float64 {
	if math.IsNaN(scale) || scale <= 0 {
		scale = z.Default
	}
	scale = clamp(scale, z.Min, z.Max)
	if !finite(scale) || scale <= 0 {
		return 1
	}
	return scale
}

// Validate checks that the range is positive and finite and contains the
// default scale.
func (z ZoomConfig) Validate() error {
	if !finite(z.Min, z.Max) || z.Min <= 0 || z.Max < z.Min {
		return errors.Errorf("invalid zoom range [%g, %g]", z.Min, z.Max)
	}
	if !(z.Default >= z.Min && z.Default <= z.Max) {
		return errors.Errorf("zoom default %g outside [%g, %g]", z.Default, z.Min, z.Max)
	}
	if !finite(z.Step) || z.Step <= 0 {
		return errors.Errorf("invalid zoom step %g", z.Step)
	}
	return nil
}

// ZoomIn returns the next larger scale.
func (z ZoomConfig) ZoomIn(scale float64) float64 {
	return z.Clamp(scale + z.Step)
}

// ZoomOut returns the next smaller scale.
func (z ZoomConfig) ZoomOut(scale float64) float64 {
	return z.Clamp(scale - z.Step)
}
