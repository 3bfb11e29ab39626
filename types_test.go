package pdfannotate

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#000000", "#000000", false},
		{"#FFFF00", "#ffff00", false},
		{"#3b82f6", "#3b82f6", false},
		{"#f0a", "#ff00aa", false},
		{" #ABC ", "#aabbcc", false},
		{"red", "", true},
		{"#12345", "", true},
		{"#gggggg", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColor_NRGBA(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}, ColorSelection.NRGBA())
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, A: 0x40}, ColorYellow.WithAlpha(0x40))
	assert.Equal(t, color.NRGBA{A: 0xff}, Color("bogus").NRGBA())
	assert.Equal(t, Color("#0a0b0c"), Hex(10, 11, 12))
}

func TestRectFromCorners(t *testing.T) {
	want := Rect{X0: 15, Y0: 15, X1: 75, Y1: 45}
	assert.Equal(t, want, RectFromCorners(Point{X: 75, Y: 45}, Point{X: 15, Y: 15}))
	assert.Equal(t, want, RectFromCorners(Point{X: 15, Y: 45}, Point{X: 75, Y: 15}))
	assert.True(t, RectFromCorners(Point{X: 1, Y: 1}, Point{X: 1, Y: 9}).Empty())
}

func TestAnnotation_JSON(t *testing.T) {
	a := Annotation{
		ID: "t1", Type: KindText, Page: 2, X: 72, Y: 92, Text: "Hello", Color: ColorBlack,
		IsReplacement: true, FontSize: 12, FontFamily: "Arial", OriginalWidth: 30, OriginalHeight: 12,
	}
	data, err := json.Marshal(a)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "text", fields["type"])
	assert.Equal(t, true, fields["isReplacement"])
	assert.Equal(t, 30.0, fields["originalWidth"])
	assert.NotContains(t, fields, "points")
	assert.NotContains(t, fields, "imageData")

	stroke, err := json.Marshal(Annotation{ID: "s", Type: KindStroke, Page: 1, Points: []Point{{X: 1, Y: 2}}})
	require.NoError(t, err)
	assert.Contains(t, string(stroke), `"type":"draw"`)
	assert.Contains(t, string(stroke), `"points":[{"x":1,"y":2}]`)
}

func TestPatch_Apply(t *testing.T) {
	a := Annotation{ID: "a", Type: KindImage, X: 1, Y: 2, Width: 3, Height: 4, Text: "keep"}

	moved := MovePatch(10, 20).Apply(a)
	assert.Equal(t, Rect{X0: 10, Y0: 20, X1: 13, Y1: 24}, moved.Box())
	assert.Equal(t, "keep", moved.Text)
	assert.Equal(t, 1.0, a.X, "the original is not modified")

	resized := GeometryPatch(Rect{X0: 0, Y0: 0, X1: 50, Y1: 60}).Apply(a)
	assert.Equal(t, 50.0, resized.Width)
	assert.Equal(t, 60.0, resized.Height)

	assert.Equal(t, "new", TextPatch("new").Apply(a).Text)
}
