package pdfannotate

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fixedMeasurer gives every rune an advance of half the font size.
type fixedMeasurer struct{}

func (fixedMeasurer) MeasureText(text, _ string, size float64) float64 {
	return float64(len([]rune(text))) * size * 0.5
}

// fakeDocument is an in-memory Document with letter-sized pages.
type fakeDocument struct {
	mu    sync.Mutex
	pages int
	runs  map[int][]TextRun
	err   error
	calls int
}

func newFakeDocument(pages int) *fakeDocument {
	return &fakeDocument{pages: pages, runs: make(map[int][]TextRun)}
}

func (d *fakeDocument) PageCount() int {
	return d.pages
}

func (d *fakeDocument) PageSize(page int) (float64, float64, error) {
	if page < 1 || page > d.pages {
		return 0, 0, ErrPageOutOfRange
	}
	return 612, 792, nil
}

func (d *fakeDocument) TextRuns(_ context.Context, page int) ([]TextRun, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.runs[page], nil
}

// fakeRasterizer returns blank pages sized 612x792 points at scale.
// Pages listed in block wait for release; pages listed in fail error.
type fakeRasterizer struct {
	block   map[int]bool
	fail    map[int]bool
	release chan struct{}
}

func newFakeRasterizer() *fakeRasterizer {
	return &fakeRasterizer{
		block:   make(map[int]bool),
		fail:    make(map[int]bool),
		release: make(chan struct{}),
	}
}

func (r *fakeRasterizer) RasterizePage(_ context.Context, page int, scale float64) (*image.RGBA, error) {
	if r.block[page] {
		<-r.release
	}
	if r.fail[page] {
		return nil, errors.New("raster failed")
	}
	return image.NewRGBA(image.Rect(0, 0, round(612*scale), round(792*scale))), nil
}

// newTestEditor returns an editor at scale 1 over a two-page document.
func newTestEditor(t *testing.T, doc *fakeDocument) *Editor {
	t.Helper()
	if doc == nil {
		doc = newFakeDocument(2)
	}
	e, err := NewEditor(DefaultConfig(), fixedMeasurer{}, nil)
	require.NoError(t, err)
	require.NoError(t, e.Load(context.Background(), doc))
	e.SetScale(context.Background(), 1)
	return e
}

// testPNG encodes a solid w x h image.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// drag performs a full press, move, release sequence.
func drag(e *Editor, from, to Point) {
	e.PointerDown(from)
	e.PointerMove(to)
	e.PointerUp(to)
}
