package pdfannotate

import (
	"context"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/pkg/errors"
)

// Document is the editor's view of a loaded source document.
type Document interface {
	TextSource
	PageCount() int
}

// Effect tells the host what to do after an editor call.
type Effect uint8

const (
	// EffectRedraw means the preview must be repainted.
	EffectRedraw Effect = 1 << iota
	// EffectOpenImagePicker asks the host to let the user pick an image
	// and pass it to InsertImage.
	EffectOpenImagePicker
	// EffectOpenSignatureComposer asks the host to show the signature
	// composer and pass its result to InsertSignature.
	EffectOpenSignatureComposer
	// EffectBeginTextEdit means an inline text editor should be shown for
	// the annotation returned by Editing.
	EffectBeginTextEdit
)

// Has reports whether e includes flag.
func (e Effect) Has(flag Effect) bool {
	return e&flag != 0
}

// TextEdit is an open inline text edit. Anchor is the top-left corner of
// the edit box in pixels and FontSize is in pixels.
type TextEdit struct {
	ID       string
	Text     string
	Original string
	Anchor   Point
	FontSize float64
}

// RedrawKey enumerates the state a rendered frame depends on. A frame is
// current when its key equals the editor's key.
type RedrawKey struct {
	Page     int
	Scale    float64
	Version  uint64
	Selected string
}

// Editor is one annotation editing session over a document. Its methods
// are not safe for concurrent use; a single UI owner drives it.
type Editor struct {
	config  Config
	logger  *bolt.Logger
	store   *Store
	history *History
	hits    *HitTester
	measure TextMeasurer

	doc   Document
	index *TextIndex

	page     int
	scale    float64
	tool     Tool
	selected string
	edit     *TextEdit
	gestures *gestures

	textColor Color
	drawColor Color
}

// NewEditor creates an editor with no document loaded.
func NewEditor(config Config, measurer TextMeasurer, logger *bolt.Logger) (*Editor, error) {
	if logger == nil {
		logger = discardLogger()
	}
	g, err := newGestures()
	if err != nil {
		return nil, err
	}
	return &Editor{
		config:    config,
		logger:    logger,
		store:     NewStore(),
		history:   NewHistory(config.HistoryLimit),
		hits:      NewHitTester(measurer, config.HitTest, config.Text),
		measure:   measurer,
		page:      1,
		scale:     config.Zoom.Clamp(config.Zoom.Default),
		tool:      ToolSelect,
		gestures:  g,
		textColor: config.Text.Color,
		drawColor: config.Shapes.Color,
	}, nil
}

// Load starts a new session over doc. The store, history and text index
// are reset and the first page is shown.
func (e *Editor) Load(ctx context.Context, doc Document) error {
	if doc == nil || doc.PageCount() < 1 {
		return errors.Wrap(ErrInvalidDocument, "document has no pages")
	}
	e.doc = doc
	e.index = NewTextIndex(doc, e.measure, e.config.TextIndex)
	e.store.Clear()
	e.history.Reset()
	e.resetInteraction()
	e.page = 1

	e.logger.Info().Int("pages", doc.PageCount()).Msg("document loaded")
	e.buildTextIndex(ctx)
	return nil
}

// Loaded reports whether a document is loaded.
func (e *Editor) Loaded() bool {
	return e.doc != nil
}

// PageCount returns the number of pages of the loaded document.
func (e *Editor) PageCount() int {
	if e.doc == nil {
		return 0
	}
	return e.doc.PageCount()
}

// Page returns the current 1-based page number.
func (e *Editor) Page() int {
	return e.page
}

// Scale returns the current scale factor.
func (e *Editor) Scale() float64 {
	return e.scale
}

// Viewport returns the coordinate mapping at the current scale.
func (e *Editor) Viewport() Viewport {
	return Viewport{Scale: e.scale}
}

// Store exposes the live annotation store for reading.
func (e *Editor) Store() *Store {
	return e.store
}

// History exposes the undo history for reading.
func (e *Editor) History() *History {
	return e.history
}

// TextIndex returns the text index of the loaded document, or nil.
func (e *Editor) TextIndex() *TextIndex {
	return e.index
}

// SetPage navigates to page. Selection and any pending edit or gesture
// are discarded.
func (e *Editor) SetPage(ctx context.Context, page int) (Effect, error) {
	if e.doc == nil {
		return 0, ErrNoDocument
	}
	if page < 1 || page > e.doc.PageCount() {
		return 0, errors.Wrapf(ErrPageOutOfRange, "page %d of %d", page, e.doc.PageCount())
	}
	e.resetInteraction()
	e.page = page
	e.buildTextIndex(ctx)
	return EffectRedraw, nil
}

// SetScale changes the zoom factor, clamped to the configured range.
// Selection and any pending edit or gesture are discarded.
func (e *Editor) SetScale(ctx context.Context, scale float64) Effect {
	e.resetInteraction()
	e.scale = e.config.Zoom.Clamp(scale)
	if e.doc != nil {
		e.buildTextIndex(ctx)
	}
	return EffectRedraw
}

// ZoomIn increases the scale by one step.
func (e *Editor) ZoomIn(ctx context.Context) Effect {
	return e.SetScale(ctx, e.config.Zoom.ZoomIn(e.scale))
}

// ZoomOut decreases the scale by one step.
func (e *Editor) ZoomOut(ctx context.Context) Effect {
	return e.SetScale(ctx, e.config.Zoom.ZoomOut(e.scale))
}

// SetTextColor sets the colour of new text annotations.
func (e *Editor) SetTextColor(c Color) error {
	parsed, err := ParseColor(string(c))
	if err != nil {
		return err
	}
	e.textColor = parsed
	return nil
}

// SetDrawColor sets the colour of new strokes, shapes and highlights.
func (e *Editor) SetDrawColor(c Color) error {
	parsed, err := ParseColor(string(c))
	if err != nil {
		return err
	}
	e.drawColor = parsed
	return nil
}

// Selected returns the selected annotation id, or "".
func (e *Editor) Selected() string {
	return e.selected
}

// Select selects the annotation with id on the current page. A pending
// text edit on another annotation is committed first.
func (e *Editor) Select(id string) (Effect, error) {
	a, ok := e.store.Get(id)
	if !ok || a.Page != e.page {
		return 0, errors.Wrapf(ErrNotFound, "id %s on page %d", id, e.page)
	}
	e.selectAnnotation(id)
	return EffectRedraw, nil
}

// ClearSelection deselects and commits any pending text edit.
func (e *Editor) ClearSelection() Effect {
	e.CommitEdit()
	e.selected = ""
	return EffectRedraw
}

func (e *Editor) selectAnnotation(id string) {
	if e.edit != nil && e.edit.ID != id {
		e.CommitEdit()
	}
	e.selected = id
}

// Editing returns the open text edit, if any.
func (e *Editor) Editing() (TextEdit, bool) {
	if e.edit == nil {
		return TextEdit{}, false
	}
	return *e.edit, true
}

// EditText replaces the text of the open edit buffer. The annotation is
// not changed until CommitEdit.
func (e *Editor) EditText(text string) bool {
	if e.edit == nil {
		return false
	}
	e.edit.Text = text
	return true
}

// CommitEdit writes the edit buffer to its annotation and closes the
// edit. A history entry is recorded only if the text changed.
func (e *Editor) CommitEdit() Effect {
	if e.edit == nil {
		return 0
	}
	edit := *e.edit
	e.edit = nil
	if edit.Text == edit.Original {
		return EffectRedraw
	}
	if _, err := e.store.Update(edit.ID, TextPatch(edit.Text)); err != nil {
		e.logger.Warn().Str("id", edit.ID).Err(err).Msg("text edit target vanished")
		return EffectRedraw
	}
	e.commit()
	return EffectRedraw
}

// CancelEdit closes the edit without changing the annotation.
func (e *Editor) CancelEdit() Effect {
	if e.edit == nil {
		return 0
	}
	e.edit = nil
	return EffectRedraw
}

func (e *Editor) openEdit(a Annotation) {
	size := e.hits.defaults.fontSize(a) * e.scale
	e.edit = &TextEdit{
		ID:       a.ID,
		Text:     a.Text,
		Original: a.Text,
		Anchor:   Point{X: a.X * e.scale, Y: a.Y*e.scale - size},
		FontSize: size,
	}
}

// Undo restores the previous history entry.
func (e *Editor) Undo() Effect {
	e.abortInteraction()
	snap, ok := e.history.Undo()
	if !ok {
		return 0
	}
	e.publish(snap)
	return EffectRedraw
}

// Redo re-applies the next history entry.
func (e *Editor) Redo() Effect {
	e.abortInteraction()
	snap, ok := e.history.Redo()
	if !ok {
		return 0
	}
	e.publish(snap)
	return EffectRedraw
}

// ClearAll removes every annotation on every page as one history entry.
func (e *Editor) ClearAll() Effect {
	e.abortInteraction()
	if e.store.Len() == 0 {
		return 0
	}
	e.store.Clear()
	e.selected = ""
	e.commit()
	return EffectRedraw
}

// Annotations returns every annotation on every page.
func (e *Editor) Annotations() Snapshot {
	return e.store.All()
}

// RedrawKey returns the current redraw dependencies.
func (e *Editor) RedrawKey() RedrawKey {
	return RedrawKey{
		Page:     e.page,
		Scale:    e.scale,
		Version:  e.store.Version(),
		Selected: e.selected,
	}
}

// RenderState returns what the render pipeline needs to paint the
// current page, including the live preview of a stroke or shape gesture.
func (e *Editor) RenderState() RenderState {
	return RenderState{
		Page:        e.page,
		Scale:       e.scale,
		Annotations: e.store.List(e.page),
		Selected:    e.selected,
		Preview:     e.preview(),
	}
}

func (e *Editor) publish(snap Snapshot) {
	e.store.Replace(snap)
	if _, ok := e.store.Get(e.selected); !ok {
		e.selected = ""
	}
	e.logger.Debug().Int("cursor", e.history.Cursor()).Int("entries", e.history.Len()).Msg("history moved")
}

func (e *Editor) commit() {
	e.history.Commit(e.store.All())
	e.logger.Debug().Int("cursor", e.history.Cursor()).Int64("version", int64(e.store.Version())).Msg("history commit")
}

// resetInteraction discards selection, edit and gesture. Used when the
// page or scale changes.
func (e *Editor) resetInteraction() {
	e.cancelGesture()
	e.edit = nil
	e.selected = ""
}

// abortInteraction cancels a gesture and a pending edit but keeps the
// selection.
func (e *Editor) abortInteraction() {
	e.cancelGesture()
	e.edit = nil
}

func (e *Editor) buildTextIndex(ctx context.Context) {
	if e.index == nil {
		return
	}
	items, err := e.index.Build(ctx, e.page, e.scale)
	if err != nil {
		e.logger.Warn().Int("page", e.page).Err(err).Msg("text extraction failed")
		return
	}
	e.logger.Debug().Int("page", e.page).Int("items", len(items)).Msg("text index built")
}
