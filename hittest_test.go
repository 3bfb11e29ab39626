package pdfannotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHitTester() *HitTester {
	return NewHitTester(fixedMeasurer{}, DefaultHitTestConfig(), DefaultConfig().Text)
}

func TestHitTester_PickTopmost(t *testing.T) {
	h := newTestHitTester()
	annotations := []Annotation{
		rect("bottom", 1, 0, 0, 100, 100),
		rect("top", 1, 50, 50, 100, 100),
		rect("other-page", 2, 0, 0, 200, 200),
	}

	a, ok := h.Pick(annotations, 1, Point{X: 75, Y: 75}, 1)
	require.True(t, ok)
	assert.Equal(t, "top", a.ID)

	a, ok = h.Pick(annotations, 1, Point{X: 25, Y: 25}, 1)
	require.True(t, ok)
	assert.Equal(t, "bottom", a.ID)

	_, ok = h.Pick(annotations, 1, Point{X: 180, Y: 180}, 1)
	assert.False(t, ok)
}

func TestHitTester_PickFiltersKinds(t *testing.T) {
	h := newTestHitTester()
	annotations := []Annotation{
		{ID: "img", Type: KindImage, Page: 1, X: 0, Y: 0, Width: 100, Height: 100},
		rect("shape", 1, 0, 0, 100, 100),
	}

	a, ok := h.Pick(annotations, 1, Point{X: 10, Y: 10}, 1, KindImage, KindSignature, KindText)
	require.True(t, ok)
	assert.Equal(t, "img", a.ID)
}

func TestHitTester_ScaledBox(t *testing.T) {
	h := newTestHitTester()
	a := rect("r", 1, 10, 10, 40, 20)

	assert.True(t, h.Hit(a, Point{X: 74, Y: 44}, 1.5))
	assert.False(t, h.Hit(a, Point{X: 74, Y: 44}, 1))
}

func TestHitTester_Text(t *testing.T) {
	h := newTestHitTester()
	a := Annotation{ID: "t", Type: KindText, Page: 1, X: 100, Y: 100, Text: "Hello", FontSize: 12}

	box := h.TextBox(a, 1)
	assert.Equal(t, Rect{X0: 100, Y0: 88, X1: 130, Y1: 100}, box)

	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{"inside", Point{X: 110, Y: 95}, true},
		{"left padding", Point{X: 96, Y: 95}, true},
		{"right padding", Point{X: 134, Y: 95}, true},
		{"above padding", Point{X: 110, Y: 84}, true},
		{"descent", Point{X: 110, Y: 106}, true},
		{"below descent", Point{X: 110, Y: 107}, false},
		{"too far left", Point{X: 95, Y: 95}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Hit(a, tt.pt, 1))
		})
	}
}

func TestHitTester_TextDefaults(t *testing.T) {
	h := newTestHitTester()
	a := Annotation{ID: "t", Type: KindText, Page: 1, X: 10, Y: 50, Text: "ab"}

	// Unset font size falls back to 12; at scale 2 the box is 24px tall.
	assert.Equal(t, Rect{X0: 20, Y0: 76, X1: 44, Y1: 100}, h.TextBox(a, 2))
}

func TestHitTester_StrokeVerticesOnly(t *testing.T) {
	h := newTestHitTester()
	a := Annotation{ID: "s", Type: KindStroke, Page: 1, Points: []Point{{X: 10, Y: 10}, {X: 100, Y: 10}}}

	assert.True(t, h.Hit(a, Point{X: 15, Y: 10}, 1))
	assert.True(t, h.Hit(a, Point{X: 100, Y: 20}, 1))
	assert.False(t, h.Hit(a, Point{X: 55, Y: 10}, 1))
	assert.True(t, h.Hit(a, Point{X: 28, Y: 20}, 2))
}

func TestHitTester_HandleAt(t *testing.T) {
	h := newTestHitTester()
	img := Annotation{ID: "i", Type: KindImage, Page: 1, X: 10, Y: 10, Width: 100, Height: 50}

	assert.Equal(t, HandleNW, h.HandleAt(img, Point{X: 10, Y: 10}, 1))
	assert.Equal(t, HandleNE, h.HandleAt(img, Point{X: 115, Y: 5}, 1))
	assert.Equal(t, HandleSW, h.HandleAt(img, Point{X: 3, Y: 66}, 1))
	assert.Equal(t, HandleSE, h.HandleAt(img, Point{X: 110, Y: 60}, 1))
	assert.Equal(t, HandleNone, h.HandleAt(img, Point{X: 60, Y: 35}, 1))
	assert.Equal(t, HandleSE, h.HandleAt(img, Point{X: 220, Y: 120}, 2))

	shape := rect("r", 1, 10, 10, 100, 50)
	assert.Equal(t, HandleNone, h.HandleAt(shape, Point{X: 10, Y: 10}, 1))
}

func TestResizeBox(t *testing.T) {
	box := Rect{X0: 10, Y0: 10, X1: 110, Y1: 60}

	assert.Equal(t, Rect{X0: 10, Y0: 10, X1: 150, Y1: 90}, resizeBox(box, HandleSE, Point{X: 150, Y: 90}))
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 110, Y1: 60}, resizeBox(box, HandleNW, Point{X: 0, Y: 0}))
	assert.Equal(t, Rect{X0: 10, Y0: 5, X1: 120, Y1: 60}, resizeBox(box, HandleNE, Point{X: 120, Y: 5}))
	assert.Equal(t, Rect{X0: 5, Y0: 10, X1: 110, Y1: 70}, resizeBox(box, HandleSW, Point{X: 5, Y: 70}))
}
