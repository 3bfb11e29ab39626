package pdfannotate

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
)

// TextRun is one native text run as reported by the document renderer.
// Transform is the run's text matrix [a b c d e f] in PDF user space with
// a bottom-left origin; (e, f) is the baseline origin.
type TextRun struct {
	Text      string
	Transform [6]float64
	Width     float64
}

// TextSource supplies the native text of a document.
type TextSource interface {
	PageSize(page int) (width, height float64, err error)
	TextRuns(ctx context.Context, page int) ([]TextRun, error)
}

// ExtractedText is a native text run mapped into page space. X, Y is the
// baseline-left corner; the box extends Height above the baseline.
type ExtractedText struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	FontSize float64
}

// TextIndexConfig controls how native runs are mapped and matched.
type TextIndexConfig struct {
	// MinDisplayFont is the smallest pixel font size used for measuring
	// (default: 8)
	MinDisplayFont float64 `yaml:"min_display_font"`

	// Tolerance widens every item box in page units (default: 0.5)
	Tolerance float64 `yaml:"tolerance"`

	// MeasureFamily is the family used to measure native runs
	// (default: Arial)
	MeasureFamily string `yaml:"measure_family"`
}

// DefaultTextIndexConfig returns the default text index settings.
func DefaultTextIndexConfig() TextIndexConfig {
	return TextIndexConfig{
		MinDisplayFont: 8,
		Tolerance:      0.5,
		MeasureFamily:  "Arial",
	}
}

type indexKey struct {
	page  int
	scale float64
}

// TextIndex caches the extracted text of each (page, scale) pair for the
// current document. Items are never modified after a build.
type TextIndex struct {
	source   TextSource
	measurer TextMeasurer
	config   TextIndexConfig

	mu    sync.RWMutex
	items map[indexKey][]ExtractedText
}

// NewTextIndex creates an index over source.
func NewTextIndex(source TextSource, m TextMeasurer, config TextIndexConfig) *TextIndex {
	return &TextIndex{
		source:   source,
		measurer: m,
		config:   config,
		items:    make(map[indexKey][]ExtractedText),
	}
}

// Build extracts and maps the text of page at scale, reusing a cached
// result when one exists.
func (x *TextIndex) Build(ctx context.Context, page int, scale float64) ([]ExtractedText, error) {
	key := indexKey{page: page, scale: scale}
	x.mu.RLock()
	cached, ok := x.items[key]
	x.mu.RUnlock()
	if ok {
		return cached, nil
	}

	_, pageHeight, err := x.source.PageSize(page)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get size of page %d", page)
	}
	runs, err := x.source.TextRuns(ctx, page)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get text of page %d", page)
	}

	items := make([]ExtractedText, 0, len(runs))
	for _, run := range runs {
		if run.Text == "" {
			continue
		}
		items = append(items, x.mapRun(run, pageHeight, scale))
	}

	x.mu.Lock()
	x.items[key] = items
	x.mu.Unlock()
	return items, nil
}

// mapRun converts a native run to page space. The run is measured in
// pixels at the display font size and divided back by scale, so the
// stored width matches what the renderer draws at this scale.
func (x *TextIndex) mapRun(run TextRun, pageHeight, scale float64) ExtractedText {
	t := run.Transform
	pixelX := t[4] * scale
	pixelY := (pageHeight - t[5]) * scale
	fontHeight := math.Hypot(t[2], t[3]) * scale
	displayFont := math.Max(x.config.MinDisplayFont, fontHeight)
	width := x.measurer.MeasureText(run.Text, x.config.MeasureFamily, displayFont)

	return ExtractedText{
		Text:     run.Text,
		X:        pixelX / scale,
		Y:        pixelY / scale,
		Width:    width / scale,
		Height:   displayFont / scale,
		FontSize: displayFont / scale,
	}
}

// Items returns the cached items for page at scale.
func (x *TextIndex) Items(page int, scale float64) ([]ExtractedText, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	items, ok := x.items[indexKey{page: page, scale: scale}]
	return items, ok
}

// Lookup returns the topmost cached item whose box contains pt (pixels).
// Pages that have not been built never match.
func (x *TextIndex) Lookup(page int, scale float64, pt Point) (ExtractedText, bool) {
	items, ok := x.Items(page, scale)
	if !ok {
		return ExtractedText{}, false
	}
	px, py := pt.X/scale, pt.Y/scale
	tol := x.config.Tolerance
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if px >= it.X-tol && px <= it.X+it.Width+tol &&
			py >= it.Y-it.Height-tol && py <= it.Y+tol {
			return it, true
		}
	}
	return ExtractedText{}, false
}

// Invalidate drops every cached page, e.g. after loading a new document.
func (x *TextIndex) Invalidate() {
	x.mu.Lock()
	x.items = make(map[indexKey][]ExtractedText)
	x.mu.Unlock()
}
