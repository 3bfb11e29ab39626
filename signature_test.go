package pdfannotate

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureComposer_Typed(t *testing.T) {
	fonts, err := NewFontBook()
	require.NoError(t, err)
	c := NewSignatureComposer(fonts)

	tests := []struct {
		name string
		text string
		minW int
		maxW int
	}{
		{"short name padded to minimum", "Al", 200, 200},
		{"long name clamped to maximum", "Bartholomew Maximilian Fitzgerald-Worthington III", 800, 800},
		{"typical name", "Jane Doe", 200, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, err := c.Typed(tt.text, "")
			require.NoError(t, err)
			_, data, err := DecodeDataURL(url)
			require.NoError(t, err)
			w, h, format, err := imageSize(data)
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, 80, h)
			assert.GreaterOrEqual(t, w, tt.minW)
			assert.LessOrEqual(t, w, tt.maxW)
		})
	}

	_, err = c.Typed("", "")
	assert.True(t, errors.Is(err, ErrEmptySignature))
}

func TestSignatureComposer_Drawn(t *testing.T) {
	fonts, err := NewFontBook()
	require.NoError(t, err)
	c := NewSignatureComposer(fonts)

	url, err := c.Drawn([][]Point{{{X: 10, Y: 10}, {X: 100, Y: 150}, {X: 200, Y: 20}}})
	require.NoError(t, err)
	img, err := decodeImagePayload(url)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	_, _, _, a := img.At(10, 10).RGBA()
	assert.NotZero(t, a)
	_, _, _, a = img.At(700, 150).RGBA()
	assert.Zero(t, a)

	_, err = c.Drawn([][]Point{{{X: 1, Y: 1}}})
	assert.True(t, errors.Is(err, ErrEmptySignature))
	_, err = c.Drawn(nil)
	assert.True(t, errors.Is(err, ErrEmptySignature))
}
