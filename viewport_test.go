package pdfannotate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_RoundTrip(t *testing.T) {
	points := []Point{{X: 0, Y: 0}, {X: 10.25, Y: 790}, {X: 611.9, Y: 0.1}}
	for _, scale := range []float64{0.5, 1, 1.25, 1.5, 3} {
		vp := Viewport{Scale: scale}
		for _, p := range points {
			got := vp.PointToPage(vp.PointToPixels(p))
			assert.InDelta(t, p.X, got.X, 1e-9)
			assert.InDelta(t, p.Y, got.Y, 1e-9)
		}
	}
}

func TestViewport_RectToPixels(t *testing.T) {
	r := RectFromXYWH(10, 10, 40, 20)

	assert.Equal(t, Rect{X0: 15, Y0: 15, X1: 75, Y1: 45}, Viewport{Scale: 1.5}.RectToPixels(r))
	assert.Equal(t, Rect{X0: 10, Y0: 10, X1: 50, Y1: 30}, Viewport{Scale: 1}.RectToPixels(r))
}

func TestZoomConfig(t *testing.T) {
	z := DefaultZoomConfig()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 1.25, 1.25},
		{"above max", 10, 3},
		{"below min", 0.1, 0.5},
		{"zero", 0, 1.5},
		{"negative", -2, 1.5},
		{"nan", math.NaN(), 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, z.Clamp(tt.in))
		})
	}

	broken := ZoomConfig{Default: 0, Min: 0, Max: 0}
	assert.Equal(t, 1.0, broken.Clamp(-1))

	assert.Equal(t, 1.75, z.ZoomIn(1.5))
	assert.Equal(t, 1.25, z.ZoomOut(1.5))
	assert.Equal(t, 3.0, z.ZoomIn(3))
	assert.Equal(t, 0.5, z.ZoomOut(0.5))
}
