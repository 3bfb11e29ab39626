package pdfannotate

import (
	"context"
	"image"
	"math"
	"sync"

	"github.com/felixgeelhaar/bolt/v3"
	xdraw "golang.org/x/image/draw"
)

// selectionDash is the on/off length in pixels of the selection outline.
const selectionDash = 5

// Painter draws annotations onto a transparent overlay.
type Painter struct {
	fonts  *FontBook
	text   TextDefaults
	shapes ShapeDefaults
	logger *bolt.Logger

	mu     sync.Mutex
	images map[string]decodedImage
}

// decodedImage is a cached raster of an annotation's payload.
type decodedImage struct {
	payload string
	img     image.Image
}

// NewPainter creates a painter using fonts for text.
func NewPainter(fonts *FontBook, config Config, logger *bolt.Logger) *Painter {
	if logger == nil {
		logger = discardLogger()
	}
	return &Painter{
		fonts:  fonts,
		text:   config.Text,
		shapes: config.Shapes,
		logger: logger,
		images: make(map[string]decodedImage),
	}
}

// Paint draws state onto a new overlay covering bounds: every annotation
// in creation order, then the gesture preview, then the selection outline.
// Decoded rasters of annotations absent from state are dropped.
func (p *Painter) Paint(ctx context.Context, state RenderState, bounds image.Rectangle) (*image.RGBA, error) {
	overlay := image.NewRGBA(bounds)
	var selected *Annotation
	for i := range state.Annotations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a := state.Annotations[i]
		if a.Page != state.Page {
			continue
		}
		p.paintAnnotation(overlay, a, state.Scale)
		if a.ID == state.Selected && state.Selected != "" {
			selected = &state.Annotations[i]
		}
	}
	if state.Preview != nil {
		p.paintAnnotation(overlay, *state.Preview, state.Scale)
	}
	if selected != nil {
		dashedRect(overlay, p.selectionBox(*selected, state.Scale), selectionDash, ColorSelection.NRGBA(), 2)
	}
	p.prune(state.Annotations)
	return overlay, nil
}

func (p *Painter) paintAnnotation(dst *image.RGBA, a Annotation, scale float64) {
	width := p.shapes.StrokeWidth
	switch a.Type {
	case KindText:
		p.paintText(dst, a, scale)
	case KindRectangle:
		if a.Width != 0 && a.Height != 0 {
			strokeRect(dst, scaleRect(a.Box(), scale), p.color(a, p.shapes.Color).NRGBA(), width)
		}
	case KindCircle:
		radius := math.Hypot(a.Width, a.Height) / 2 * scale
		cx := (a.X + a.Width/2) * scale
		cy := (a.Y + a.Height/2) * scale
		strokeCircle(dst, cx, cy, radius, p.color(a, p.shapes.Color).NRGBA(), width)
	case KindHighlight:
		c := p.color(a, p.shapes.HighlightFallback).WithAlpha(p.shapes.HighlightAlpha)
		fillRect(dst, scaleRect(a.Box(), scale), c)
	case KindStroke:
		if len(a.Points) < 2 {
			return
		}
		points := make([]Point, len(a.Points))
		for i, pt := range a.Points {
			points[i] = Point{X: pt.X * scale, Y: pt.Y * scale}
		}
		drawPolyline(dst, points, p.color(a, p.shapes.Color).NRGBA(), width)
	case KindImage, KindSignature:
		p.paintRaster(dst, a, scale)
	}
}

// paintText draws a text annotation at its baseline. Replacement text
// first covers the native glyphs it replaces with an opaque white box.
func (p *Painter) paintText(dst *image.RGBA, a Annotation, scale float64) {
	size := p.text.fontSize(a) * scale
	if a.IsReplacement && a.OriginalWidth > 0 && a.OriginalHeight > 0 {
		mask := RectFromXYWH(a.X-1, a.Y-a.OriginalHeight-2, a.OriginalWidth+4, a.OriginalHeight+6)
		fillRect(dst, scaleRect(mask, scale), ColorWhite.NRGBA())
	}
	p.fonts.DrawText(dst, a.Text, p.text.fontFamily(a), size, a.X*scale, a.Y*scale, p.color(a, p.text.Color).NRGBA())
}

func (p *Painter) paintRaster(dst *image.RGBA, a Annotation, scale float64) {
	if a.ImageData == "" || a.Width <= 0 || a.Height <= 0 {
		return
	}
	src, err := p.decode(a.ID, a.ImageData)
	if err != nil {
		p.logger.Warn().Str("id", a.ID).Err(err).Msg("failed to decode image payload")
		return
	}
	box := scaleRect(a.Box(), scale)
	target := image.Rect(round(box.X0), round(box.Y0), round(box.X1), round(box.Y1))
	xdraw.ApproxBiLinear.Scale(dst, target, src, src.Bounds(), xdraw.Over, nil)
}

// decode returns the decoded raster of an annotation's payload, cached by
// annotation id until the payload changes.
func (p *Painter) decode(id, payload string) (image.Image, error) {
	p.mu.Lock()
	cached, ok := p.images[id]
	p.mu.Unlock()
	if ok && cached.payload == payload {
		return cached.img, nil
	}
	img, err := decodeImagePayload(payload)
	if err != nil {
		return nil, err
	}
	if id != "" {
		p.mu.Lock()
		p.images[id] = decodedImage{payload: payload, img: img}
		p.mu.Unlock()
	}
	return img, nil
}

// prune drops cached rasters of annotations not in annotations.
func (p *Painter) prune(annotations []Annotation) {
	live := make(map[string]bool, len(annotations))
	for _, a := range annotations {
		live[a.ID] = true
	}
	p.mu.Lock()
	for id := range p.images {
		if !live[id] {
			delete(p.images, id)
		}
	}
	p.mu.Unlock()
}

// selectionBox returns the pixel outline drawn around a selected
// annotation.
func (p *Painter) selectionBox(a Annotation, scale float64) Rect {
	switch {
	case a.Type == KindText:
		size := p.text.fontSize(a) * scale
		x, y := a.X*scale, a.Y*scale
		w := p.fonts.MeasureText(a.Text, p.text.fontFamily(a), size)
		return RectFromXYWH(x-2, y-size, w, size+6)
	case a.Type == KindStroke:
		return expandRect(scaleRect(boundingBox(a.Points), scale), 2)
	default:
		return expandRect(scaleRect(a.Box(), scale), 2)
	}
}

func (p *Painter) color(a Annotation, fallback Color) Color {
	if a.Color != "" {
		return a.Color
	}
	return fallback
}
