package pdfannotate

import "slices"

// Handle names a resize corner of an image or signature annotation.
type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleNE   Handle = "ne"
	HandleSW   Handle = "sw"
	HandleSE   Handle = "se"
)

// HitTestConfig holds the pixel tolerances used when resolving pointer
// positions to annotations.
type HitTestConfig struct {
	// TextPadding is added around measured text boxes (default: 4)
	TextPadding float64 `yaml:"text_padding"`

	// TextDescent extends text boxes below the baseline (default: 6)
	TextDescent float64 `yaml:"text_descent"`

	// StrokeRadius is the max distance from a stroke vertex that still
	// counts as a hit (default: 10)
	StrokeRadius float64 `yaml:"stroke_radius"`

	// HandleSize is the half-size of the square resize zones centred on
	// each corner (default: 8)
	HandleSize float64 `yaml:"handle_size"`
}

// DefaultHitTestConfig returns the default tolerances.
func DefaultHitTestConfig() HitTestConfig {
	return HitTestConfig{
		TextPadding:  4,
		TextDescent:  6,
		StrokeRadius: 10,
		HandleSize:   8,
	}
}

// HitTester resolves pixel positions to annotations at a given scale.
type HitTester struct {
	measurer TextMeasurer
	config   HitTestConfig
	defaults TextDefaults
}

// NewHitTester creates a hit tester that measures text with m.
func NewHitTester(m TextMeasurer, config HitTestConfig, defaults TextDefaults) *HitTester {
	return &HitTester{measurer: m, config: config, defaults: defaults}
}

// TextBox returns the pixel box of a text annotation: from the baseline
// up by one display font size, across the measured advance width.
func (h *HitTester) TextBox(a Annotation, scale float64) Rect {
	size := h.defaults.fontSize(a) * scale
	x, y := a.X*scale, a.Y*scale
	w := h.measurer.MeasureText(a.Text, h.defaults.fontFamily(a), size)
	return Rect{X0: x, Y0: y - size, X1: x + w, Y1: y}
}

// Hit reports whether pt (pixels) falls on a.
func (h *HitTester) Hit(a Annotation, pt Point, scale float64) bool {
	switch {
	case a.Type == KindText:
		box := h.TextBox(a, scale)
		p := h.config.TextPadding
		return pt.X >= box.X0-p && pt.X <= box.X1+p &&
			pt.Y >= box.Y0-p && pt.Y <= box.Y1+h.config.TextDescent
	case a.Type.IsBox():
		return scaleRect(a.Box(), scale).Contains(pt)
	case a.Type == KindStroke:
		// Only vertices are tested; a click midway along a long segment
		// misses.
		for _, v := range a.Points {
			if distance(pt, Point{X: v.X * scale, Y: v.Y * scale}) <= h.config.StrokeRadius {
				return true
			}
		}
	}
	return false
}

// Pick returns the topmost annotation on page under pt (pixels). When
// kinds is non-empty only those kinds are considered.
func (h *HitTester) Pick(annotations []Annotation, page int, pt Point, scale float64, kinds ...Kind) (Annotation, bool) {
	for i := len(annotations) - 1; i >= 0; i-- {
		a := annotations[i]
		if a.Page != page {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, a.Type) {
			continue
		}
		if h.Hit(a, pt, scale) {
			return a, true
		}
	}
	return Annotation{}, false
}

// HandleAt returns the resize corner of an image or signature annotation
// under pt (pixels), or HandleNone.
func (h *HitTester) HandleAt(a Annotation, pt Point, scale float64) Handle {
	if !a.Type.IsRaster() || a.Width <= 0 || a.Height <= 0 {
		return HandleNone
	}
	box := scaleRect(a.Box(), scale)
	corners := []struct {
		handle Handle
		at     Point
	}{
		{HandleNW, Point{X: box.X0, Y: box.Y0}},
		{HandleNE, Point{X: box.X1, Y: box.Y0}},
		{HandleSW, Point{X: box.X0, Y: box.Y1}},
		{HandleSE, Point{X: box.X1, Y: box.Y1}},
	}
	for _, c := range corners {
		zone := expandRect(Rect{X0: c.at.X, Y0: c.at.Y, X1: c.at.X, Y1: c.at.Y}, h.config.HandleSize)
		if zone.Contains(pt) {
			return c.handle
		}
	}
	return HandleNone
}

// resizeBox moves the given corner of box (page space) to pt (page space)
// and keeps the opposite corner fixed.
func resizeBox(box Rect, handle Handle, pt Point) Rect {
	out := box
	switch handle {
	case HandleSE:
		out.X1, out.Y1 = pt.X, pt.Y
	case HandleSW:
		out.X0, out.Y1 = pt.X, pt.Y
	case HandleNE:
		out.X1, out.Y0 = pt.X, pt.Y
	case HandleNW:
		out.X0, out.Y0 = pt.X, pt.Y
	}
	return out
}
