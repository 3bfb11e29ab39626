package pdfannotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextMeasurer measures the advance width in pixels of a string drawn in
// a font family at a pixel size. Hit-testing, text extraction and
// rendering must share one measurer so that their boxes agree.
type TextMeasurer interface {
	MeasureText(text, family string, size float64) float64
}

type faceKey struct {
	font string
	size fixed.Int26_6
}

// FontBook maps CSS-style family names onto the bundled Go fonts and
// caches faces per size. It is safe for concurrent use.
type FontBook struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

var bundledFonts = map[string][]byte{
	"regular": goregular.TTF,
	"bold":    gobold.TTF,
	"italic":  goitalic.TTF,
	"mono":    gomono.TTF,
}

// NewFontBook parses the bundled fonts.
func NewFontBook() (*FontBook, error) {
	fonts := make(map[string]*opentype.Font, len(bundledFonts))
	for name, data := range bundledFonts {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse bundled font %s", name)
		}
		fonts[name] = f
	}
	return &FontBook{
		fonts: fonts,
		faces: make(map[faceKey]font.Face),
	}, nil
}

// resolveFamily picks a bundled font for a family name.
func resolveFamily(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"), strings.Contains(f, "consol"):
		return "mono"
	case strings.Contains(f, "bold"):
		return "bold"
	case strings.Contains(f, "cursive"), strings.Contains(f, "script"),
		strings.Contains(f, "italic"), strings.Contains(f, "hand"), strings.Contains(f, "pacifico"):
		return "italic"
	default:
		return "regular"
	}
}

// face returns a cached face. Callers must hold b.mu.
func (b *FontBook) face(family string, size float64) (font.Face, error) {
	key := faceKey{font: resolveFamily(family), size: fixed.Int26_6(math.Round(size * 64))}
	if f, ok := b.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(b.fonts[key.font], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create face %s@%g", key.font, size)
	}
	b.faces[key] = f
	return f, nil
}

// MeasureText implements TextMeasurer.
func (b *FontBook) MeasureText(text, family string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.face(family, size)
	if err != nil {
		return 0
	}
	return fixedToFloat(font.MeasureString(f, text))
}

// Metrics returns the ascent and descent of a face in pixels.
func (b *FontBook) Metrics(family string, size float64) (ascent, descent float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.face(family, size)
	if err != nil {
		return size * 0.8, size * 0.2
	}
	m := f.Metrics()
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

// DrawText draws text with its baseline-left corner at (x, y) pixels.
func (b *FontBook) DrawText(dst draw.Image, text, family string, size, x, y float64, c color.Color) {
	if text == "" || size <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.face(family, size)
	if err != nil {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)},
	}
	d.DrawString(text)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
