package pdfannotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Overlay outlines are filled paths on a vector.Rasterizer: every segment
// becomes a quad offset by half the pen width, joined by round caps.
// Fills compose with source-over so translucent highlights blend.

// arcStep is the maximum chord length in pixels when flattening arcs.
const arcStep = 2.0

// pen accumulates outlines for one colour and draws them onto the area
// of dst they can touch.
type pen struct {
	dst    *image.RGBA
	clip   image.Rectangle
	raster *vector.Rasterizer
	origin Point
}

// newPen creates a pen for outlines within extent (pixels).
func newPen(dst *image.RGBA, extent Rect) *pen {
	clip := image.Rect(
		int(math.Floor(extent.X0))-1, int(math.Floor(extent.Y0))-1,
		int(math.Ceil(extent.X1))+1, int(math.Ceil(extent.Y1))+1,
	).Intersect(dst.Bounds())
	return &pen{
		dst:    dst,
		clip:   clip,
		raster: vector.NewRasterizer(clip.Dx(), clip.Dy()),
		origin: Point{X: float64(clip.Min.X), Y: float64(clip.Min.Y)},
	}
}

// polygon adds a closed outline. Outlines are wound clockwise, holes
// counter-clockwise, so overlapping outlines accumulate and holes cut out.
func (p *pen) polygon(points []Point, hole bool) {
	if len(points) < 3 {
		return
	}
	if (signedArea(points) < 0) != hole {
		points = reversed(points)
	}
	p.raster.MoveTo(float32(points[0].X-p.origin.X), float32(points[0].Y-p.origin.Y))
	for _, pt := range points[1:] {
		p.raster.LineTo(float32(pt.X-p.origin.X), float32(pt.Y-p.origin.Y))
	}
	p.raster.ClosePath()
}

// segment adds the quad covering a to b at half width w.
func (p *pen) segment(a, b Point, w float64) {
	vx, vy := b.X-a.X, b.Y-a.Y
	vl := math.Hypot(vx, vy)
	if vl == 0 {
		return
	}
	nx, ny := -vy/vl*w, vx/vl*w
	p.polygon([]Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, false)
}

// disc adds a filled circle.
func (p *pen) disc(c Point, r float64) {
	p.polygon(arc(c, r), false)
}

// fill draws everything added so far in c and clears the path.
func (p *pen) fill(c color.Color) {
	if p.clip.Empty() {
		return
	}
	p.raster.Draw(p.dst, p.clip, image.NewUniform(c), image.Point{})
	p.raster.Reset(p.clip.Dx(), p.clip.Dy())
}

// arc flattens a full circle into chords no longer than arcStep.
func arc(c Point, r float64) []Point {
	n := max(12, int(math.Ceil(2*math.Pi*r/arcStep)))
	points := make([]Point, n)
	for i := range points {
		theta := 2 * math.Pi * float64(i) / float64(n)
		points[i] = Point{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
	}
	return points
}

// signedArea is the shoelace area; positive for clockwise outlines in a
// y-down surface.
func signedArea(points []Point) float64 {
	var sum float64
	for i, a := range points {
		b := points[(i+1)%len(points)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func reversed(points []Point) []Point {
	out := make([]Point, len(points))
	for i, pt := range points {
		out[len(points)-1-i] = pt
	}
	return out
}

// drawPolyline strokes connected segments through points (pixels) with
// round caps and joins. A single point, or repeated points, leave a dot.
func drawPolyline(img *image.RGBA, points []Point, c color.Color, width float64) {
	if len(points) == 0 {
		return
	}
	w := math.Max(width, 1) / 2
	p := newPen(img, expandRect(boundingBox(points), w))
	p.disc(points[0], w)
	for i := 1; i < len(points); i++ {
		p.segment(points[i-1], points[i], w)
		p.disc(points[i], w)
	}
	p.fill(c)
}

// strokeRect outlines r (pixels).
func strokeRect(img *image.RGBA, r Rect, c color.Color, width float64) {
	drawPolyline(img, rectOutline(r), c, width)
}

// fillRect composes c over r (pixels).
func fillRect(img *image.RGBA, r Rect, c color.Color) {
	rect := image.Rect(round(r.X0), round(r.Y0), round(r.X1), round(r.Y1)).Canon()
	draw.Draw(img, rect.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// strokeCircle outlines a circle as a ring between radius ± width/2.
func strokeCircle(img *image.RGBA, cx, cy, radius float64, c color.Color, width float64) {
	w := math.Max(width, 1) / 2
	centre := Point{X: cx, Y: cy}
	p := newPen(img, RectFromXYWH(cx-radius-w, cy-radius-w, 2*(radius+w), 2*(radius+w)))
	p.polygon(arc(centre, radius+w), false)
	if inner := radius - w; inner > 0 {
		p.polygon(arc(centre, inner), true)
	}
	p.fill(c)
}

// dashedRect outlines r (pixels) with alternating dash and gap runs of
// equal length. The dash pattern continues around corners.
func dashedRect(img *image.RGBA, r Rect, dash float64, c color.Color, width float64) {
	if dash <= 0 {
		strokeRect(img, r, c, width)
		return
	}
	w := math.Max(width, 1) / 2
	corners := rectOutline(r)
	p := newPen(img, expandRect(r, w))
	phase := 0.0
	for i := 1; i < len(corners); i++ {
		a, b := corners[i-1], corners[i]
		length := distance(a, b)
		for s := 0.0; s < length; {
			pos := math.Mod(phase+s, 2*dash)
			step := math.Min(dash-math.Mod(pos, dash), length-s)
			if pos < dash {
				p.segment(lerp(a, b, s/length), lerp(a, b, (s+step)/length), w)
			}
			s += step
		}
		phase += length
	}
	p.fill(c)
}

func rectOutline(r Rect) []Point {
	return []Point{
		{X: r.X0, Y: r.Y0},
		{X: r.X1, Y: r.Y0},
		{X: r.X1, Y: r.Y1},
		{X: r.X0, Y: r.Y1},
		{X: r.X0, Y: r.Y0},
	}
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

func round(v float64) int {
	return int(math.Round(v))
}
