package pdfannotate

import (
	"context"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/pkg/errors"
)

// Rasterizer renders a page of the source document at a scale. The
// returned image is sized page dimensions x scale. Implementations should
// return promptly once ctx is cancelled.
type Rasterizer interface {
	RasterizePage(ctx context.Context, page int, scale float64) (*image.RGBA, error)
}

// RenderState is everything the pipeline needs to paint one page.
type RenderState struct {
	Page        int
	Scale       float64
	Annotations []Annotation
	Selected    string
	Preview     *Annotation
}

// Frame is a completed render: the page raster and the annotation overlay
// painted over it.
type Frame struct {
	Generation uint64
	Page       int
	Scale      float64
	Base       *image.RGBA
	Overlay    *image.RGBA
}

// Composite returns the overlay drawn over the page raster.
func (f *Frame) Composite() *image.RGBA {
	out := image.NewRGBA(f.Base.Bounds())
	draw.Draw(out, out.Bounds(), f.Base, f.Base.Bounds().Min, draw.Src)
	if f.Overlay != nil {
		draw.Draw(out, out.Bounds(), f.Overlay, f.Overlay.Bounds().Min, draw.Over)
	}
	return out
}

// Pipeline renders frames in the background. Each request carries a
// generation number; starting a request cancels the previous one, and a
// result whose generation is no longer the latest is discarded, so the
// published frame never pairs a raster with annotations of another
// request. A failed request leaves the previous frame in place.
type Pipeline struct {
	rasterizer Rasterizer
	painter    *Painter
	logger     *bolt.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	frame      *Frame
	onFrame    func(*Frame)
	wg         sync.WaitGroup
}

// NewPipeline creates a render pipeline.
func NewPipeline(r Rasterizer, painter *Painter, logger *bolt.Logger) *Pipeline {
	if logger == nil {
		logger = discardLogger()
	}
	return &Pipeline{
		rasterizer: r,
		painter:    painter,
		logger:     logger,
	}
}

// OnFrame registers a callback invoked from the render goroutine each
// time a frame is published.
func (p *Pipeline) OnFrame(fn func(*Frame)) {
	p.mu.Lock()
	p.onFrame = fn
	p.mu.Unlock()
}

// Request starts rendering state and returns its generation.
func (p *Pipeline) Request(ctx context.Context, state RenderState) uint64 {
	jobCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(jobCtx, gen, state)
	return gen
}

func (p *Pipeline) run(ctx context.Context, gen uint64, state RenderState) {
	defer p.wg.Done()
	start := time.Now()

	base, err := p.rasterizer.RasterizePage(ctx, state.Page, state.Scale)
	if err != nil {
		if ctx.Err() != nil || p.stale(gen) {
			p.logger.Debug().Int64("generation", int64(gen)).Msg("raster cancelled")
			return
		}
		p.logger.Error().
			Int("page", state.Page).
			Int64("generation", int64(gen)).
			Err(err).
			Msg("page rasterization failed")
		return
	}
	if base == nil {
		p.logger.Error().Int("page", state.Page).Msg("rasterizer returned no image")
		return
	}
	if p.stale(gen) {
		p.logger.Debug().Int64("generation", int64(gen)).Msg("stale raster discarded")
		return
	}

	overlay, err := p.painter.Paint(ctx, state, base.Bounds())
	if err != nil {
		p.logger.Debug().Int64("generation", int64(gen)).Err(err).Msg("overlay paint cancelled")
		return
	}

	frame := &Frame{
		Generation: gen,
		Page:       state.Page,
		Scale:      state.Scale,
		Base:       base,
		Overlay:    overlay,
	}
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Debug().Int64("generation", int64(gen)).Msg("stale frame discarded")
		return
	}
	p.frame = frame
	onFrame := p.onFrame
	p.mu.Unlock()

	p.logger.Debug().
		Int("page", state.Page).
		Int64("generation", int64(gen)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("frame rendered")
	if onFrame != nil {
		onFrame(frame)
	}
}

func (p *Pipeline) stale(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen != p.generation
}

// Repaint redraws the overlay of the current frame synchronously, for
// live gesture previews that do not need a new raster. It fails when no
// frame of the same page and scale exists.
func (p *Pipeline) Repaint(ctx context.Context, state RenderState) (*Frame, error) {
	p.mu.Lock()
	current := p.frame
	p.mu.Unlock()
	if current == nil || current.Page != state.Page || current.Scale != state.Scale {
		return nil, errors.New("no frame to repaint")
	}

	overlay, err := p.painter.Paint(ctx, state, current.Base.Bounds())
	if err != nil {
		return nil, errors.Wrap(err, "failed to repaint overlay")
	}
	frame := &Frame{
		Generation: current.Generation,
		Page:       current.Page,
		Scale:      current.Scale,
		Base:       current.Base,
		Overlay:    overlay,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frame != current {
		return nil, errors.New("frame replaced during repaint")
	}
	p.frame = frame
	return frame, nil
}

// Frame returns the latest published frame, or nil.
func (p *Pipeline) Frame() *Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Generation returns the generation of the latest request.
func (p *Pipeline) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Wait blocks until every started request has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Close cancels the request in flight and waits for it to finish.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}
