package pdfannotate

import (
	"bytes"
	"image"
	"image/png"

	"github.com/pkg/errors"
)

// Signature canvas geometry, in pixels.
const (
	signatureFontSize   = 48
	typedSignatureH     = 80
	typedSignatureMinW  = 200
	typedSignatureMaxW  = 800
	typedSignatureInset = 10
	drawnSignatureW     = 800
	drawnSignatureH     = 200
)

// DefaultSignatureFamily is the font family of typed signatures.
const DefaultSignatureFamily = `Pacifico, Georgia, "Times New Roman", serif`

// ErrEmptySignature is returned when a signature has no content.
var ErrEmptySignature = errors.New("signature is empty")

// SignatureSource tells how a signature payload was produced.
type SignatureSource int

const (
	// SignatureDrawn is a free-hand signature replayed onto a canvas.
	SignatureDrawn SignatureSource = iota
	// SignatureTyped is a name rendered in a signature font.
	SignatureTyped
)

// SignatureComposer renders signatures to PNG data URLs suitable for
// Editor.InsertSignature.
type SignatureComposer struct {
	fonts *FontBook
}

// NewSignatureComposer creates a composer drawing text with fonts.
func NewSignatureComposer(fonts *FontBook) *SignatureComposer {
	return &SignatureComposer{fonts: fonts}
}

// Typed renders name in family on a transparent canvas 80px high and
// between 200 and 800px wide, vertically centred with a 10px left inset.
func (c *SignatureComposer) Typed(name, family string) (string, error) {
	if name == "" {
		return "", ErrEmptySignature
	}
	if family == "" {
		family = DefaultSignatureFamily
	}
	width := clamp(c.fonts.MeasureText(name, family, signatureFontSize)+20, typedSignatureMinW, typedSignatureMaxW)
	canvas := image.NewRGBA(image.Rect(0, 0, round(width), typedSignatureH))

	ascent, descent := c.fonts.Metrics(family, signatureFontSize)
	baseline := typedSignatureH/2 + (ascent-descent)/2
	c.fonts.DrawText(canvas, name, family, signatureFontSize, typedSignatureInset, baseline, ColorBlack.NRGBA())
	return encodePNG(canvas)
}

// Drawn replays free-hand strokes (pixels on an 800x200 canvas) with a
// 2px round black pen.
func (c *SignatureComposer) Drawn(strokes [][]Point) (string, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, drawnSignatureW, drawnSignatureH))
	drawn := false
	for _, stroke := range strokes {
		if len(stroke) < 2 {
			continue
		}
		drawPolyline(canvas, stroke, ColorBlack.NRGBA(), 2)
		drawn = true
	}
	if !drawn {
		return "", ErrEmptySignature
	}
	return encodePNG(canvas)
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(err, "failed to encode PNG")
	}
	return EncodeDataURL("image/png", buf.Bytes()), nil
}
