package pdfannotate

import (
	"github.com/pkg/errors"
)

// Tool is the active editing tool.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolText      Tool = "text"
	ToolDraw      Tool = "draw"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolHighlight Tool = "highlight"
	ToolImage     Tool = "image"
	ToolSignature Tool = "signature"
	ToolEraser    Tool = "eraser"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{
	ToolSelect, ToolText, ToolDraw, ToolRectangle, ToolCircle,
	ToolHighlight, ToolImage, ToolSignature, ToolEraser,
}

// ParseTool converts a tool name.
func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.Errorf("unknown tool %q", s)
}

// shapeKind maps a shape tool to the annotation kind it creates.
func (t Tool) shapeKind() (Kind, bool) {
	switch t {
	case ToolRectangle:
		return KindRectangle, true
	case ToolCircle:
		return KindCircle, true
	case ToolHighlight:
		return KindHighlight, true
	}
	return "", false
}

// Tool returns the active tool.
func (e *Editor) Tool() Tool {
	return e.tool
}

// SetTool switches tools. A pending text edit is committed; selection and
// any gesture in progress are discarded.
func (e *Editor) SetTool(t Tool) Effect {
	e.CommitEdit()
	e.cancelGesture()
	e.selected = ""
	e.tool = t
	return EffectRedraw
}

// Gesture returns the name of the gesture in progress ("idle" when none).
func (e *Editor) Gesture() string {
	return string(e.gestures.State())
}

// PointerDown handles a pointer press at pt, in pixels relative to the
// page surface.
func (e *Editor) PointerDown(pt Point) Effect {
	if e.doc == nil || e.gestures.Active() {
		return 0
	}
	if e.tool == ToolSelect {
		return e.selectDown(pt)
	}

	e.CommitEdit()
	e.selected = ""

	switch e.tool {
	case ToolEraser:
		return e.erase(pt) | EffectRedraw
	case ToolImage:
		return EffectOpenImagePicker | EffectRedraw
	case ToolSignature:
		return EffectOpenSignatureComposer | EffectRedraw
	case ToolDraw:
		e.gestures.stroke(pt)
		return EffectRedraw
	case ToolText:
		return e.placeText(pt)
	}
	if kind, ok := e.tool.shapeKind(); ok {
		e.gestures.shape(kind, pt)
	}
	return EffectRedraw
}

// selectDown resolves a press with the select tool: resize or drag the
// selected raster, then pick a raster or text annotation, then native
// text, else clear the selection. Shapes and strokes are not selectable.
func (e *Editor) selectDown(pt Point) Effect {
	if sel, ok := e.store.Get(e.selected); ok && sel.Page == e.page && sel.Type.IsRaster() {
		if h := e.hits.HandleAt(sel, pt, e.scale); h != HandleNone {
			e.gestures.resize(sel, h)
			return EffectRedraw
		}
		if scaleRect(sel.Box(), e.scale).Contains(pt) {
			e.beginDrag(sel, pt)
			return EffectRedraw
		}
	}

	if a, ok := e.hits.Pick(e.store.List(e.page), e.page, pt, e.scale, KindImage, KindSignature, KindText); ok {
		e.selectAnnotation(a.ID)
		if a.Type.IsRaster() {
			e.beginDrag(a, pt)
			return EffectRedraw
		}
		if e.edit == nil || e.edit.ID != a.ID {
			e.openEdit(a)
		}
		return EffectRedraw | EffectBeginTextEdit
	}

	if e.index != nil {
		if item, ok := e.index.Lookup(e.page, e.scale, pt); ok {
			e.CommitEdit()
			return e.spawnReplacement(item)
		}
	}

	e.ClearSelection()
	return EffectRedraw
}

func (e *Editor) beginDrag(a Annotation, pt Point) {
	e.gestures.drag(a, Point{X: pt.X - a.X*e.scale, Y: pt.Y - a.Y*e.scale})
}

// spawnReplacement creates a text annotation over a native text run and
// opens it for editing.
func (e *Editor) spawnReplacement(item ExtractedText) Effect {
	a := Annotation{
		ID:             NewID(),
		Type:           KindText,
		Page:           e.page,
		X:              item.X,
		Y:              item.Y,
		Text:           item.Text,
		Color:          e.config.Text.Color,
		IsReplacement:  true,
		FontSize:       item.FontSize,
		FontFamily:     e.config.Text.FontFamily,
		OriginalWidth:  item.Width,
		OriginalHeight: item.Height,
	}
	if err := e.store.Add(a); err != nil {
		e.logger.Error().Err(err).Msg("failed to add replacement text")
		return EffectRedraw
	}
	e.commit()
	e.selected = a.ID
	e.openEdit(a)
	e.logger.Debug().Str("id", a.ID).Str("text", a.Text).Msg("replacement text created")
	return EffectRedraw | EffectBeginTextEdit
}

// placeText creates an empty text annotation at pt and opens it for
// editing.
func (e *Editor) placeText(pt Point) Effect {
	page := e.Viewport().PointToPage(pt)
	a := Annotation{
		ID:         NewID(),
		Type:       KindText,
		Page:       e.page,
		X:          page.X,
		Y:          page.Y,
		Color:      e.textColor,
		FontSize:   e.config.Text.FontSize,
		FontFamily: e.config.Text.FontFamily,
	}
	if err := e.store.Add(a); err != nil {
		e.logger.Error().Err(err).Msg("failed to add text")
		return EffectRedraw
	}
	e.commit()
	e.selected = a.ID
	e.openEdit(a)
	return EffectRedraw | EffectBeginTextEdit
}

// erase removes the topmost annotation of any kind under pt.
func (e *Editor) erase(pt Point) Effect {
	a, ok := e.hits.Pick(e.store.List(e.page), e.page, pt, e.scale)
	if !ok {
		return 0
	}
	if err := e.store.Remove(a.ID); err != nil {
		return 0
	}
	e.commit()
	e.logger.Debug().Str("id", a.ID).Str("type", string(a.Type)).Msg("annotation erased")
	return EffectRedraw
}

// PointerMove handles pointer motion during a gesture.
func (e *Editor) PointerMove(pt Point) Effect {
	g := e.gestures.data()
	switch e.gestures.State() {
	case gestureStroking:
		g.points = append(g.points, pt)
		g.current = pt
	case gestureShaping:
		g.current = pt
	case gestureDragging:
		x := (pt.X - g.offset.X) / e.scale
		y := (pt.Y - g.offset.Y) / e.scale
		if _, err := e.store.Update(g.targetID, MovePatch(x, y)); err != nil {
			e.cancelGesture()
		}
	case gestureResizing:
		e.resizeTo(g, pt)
	default:
		return 0
	}
	return EffectRedraw
}

// resizeTo moves the gesture's corner to pt. Results narrower or shorter
// than the minimum are ignored and the last valid geometry stays.
func (e *Editor) resizeTo(g *gesture, pt Point) {
	current, ok := e.store.Get(g.targetID)
	if !ok {
		e.cancelGesture()
		return
	}
	box := resizeBox(current.Box(), g.handle, e.Viewport().PointToPage(pt))
	minSize := e.config.Insert.MinResize / e.scale
	if box.Width() <= minSize || box.Height() <= minSize {
		return
	}
	if _, err := e.store.Update(g.targetID, GeometryPatch(box)); err != nil {
		e.logger.Warn().Str("id", g.targetID).Err(err).Msg("resize rejected")
	}
}

// PointerUp finishes the gesture in progress.
func (e *Editor) PointerUp(pt Point) Effect {
	g := e.gestures.data()
	switch e.gestures.State() {
	case gestureStroking:
		// The release point always closes the stroke, so a click leaves
		// a two-point dot.
		e.finishStroke(append(g.points, pt))
	case gestureShaping:
		e.finishShape(g.kind, g.start, pt)
	case gestureDragging, gestureResizing:
		if a, ok := e.store.Get(g.targetID); ok && a.Box() != g.origin {
			e.commit()
		}
	default:
		return 0
	}
	e.gestures.release()
	return EffectRedraw
}

func (e *Editor) finishStroke(points []Point) {
	if len(points) < 2 {
		return
	}
	vp := e.Viewport()
	pagePoints := make([]Point, len(points))
	for i, p := range points {
		pagePoints[i] = vp.PointToPage(p)
	}
	a := Annotation{
		ID:     NewID(),
		Type:   KindStroke,
		Page:   e.page,
		X:      pagePoints[0].X,
		Y:      pagePoints[0].Y,
		Points: pagePoints,
		Color:  e.drawColor,
	}
	if err := e.store.Add(a); err != nil {
		e.logger.Warn().Err(err).Msg("stroke discarded")
		return
	}
	e.commit()
}

// finishShape commits the normalized box between start and end. Zero-area
// boxes are discarded.
func (e *Editor) finishShape(kind Kind, start, end Point) {
	box := e.Viewport().RectToPage(RectFromCorners(start, end))
	if box.Empty() {
		return
	}
	a := Annotation{
		ID:     NewID(),
		Type:   kind,
		Page:   e.page,
		X:      box.X0,
		Y:      box.Y0,
		Width:  box.Width(),
		Height: box.Height(),
		Color:  e.drawColor,
	}
	if err := e.store.Add(a); err != nil {
		e.logger.Warn().Err(err).Msg("shape discarded")
		return
	}
	e.commit()
}

// PointerCancel abandons the gesture in progress without recording
// history. A dragged or resized annotation returns to where it started.
func (e *Editor) PointerCancel() Effect {
	if !e.gestures.Active() {
		return 0
	}
	e.cancelGesture()
	return EffectRedraw
}

func (e *Editor) cancelGesture() {
	if !e.gestures.Active() {
		return
	}
	g := e.gestures.data()
	if g.targetID != "" {
		if _, err := e.store.Update(g.targetID, GeometryPatch(g.origin)); err != nil && !errors.Is(err, ErrNotFound) {
			e.logger.Warn().Str("id", g.targetID).Err(err).Msg("failed to restore geometry")
		}
	}
	e.gestures.cancel()
}

// preview returns the unsaved annotation drawn by a stroke or shape
// gesture, in page space.
func (e *Editor) preview() *Annotation {
	g := e.gestures.data()
	vp := e.Viewport()
	switch e.gestures.State() {
	case gestureStroking:
		points := make([]Point, len(g.points))
		for i, p := range g.points {
			points[i] = vp.PointToPage(p)
		}
		return &Annotation{Type: KindStroke, Page: e.page, Points: points, Color: e.drawColor}
	case gestureShaping:
		box := vp.RectToPage(RectFromCorners(g.start, g.current))
		return &Annotation{
			Type:   g.kind,
			Page:   e.page,
			X:      box.X0,
			Y:      box.Y0,
			Width:  box.Width(),
			Height: box.Height(),
			Color:  e.drawColor,
		}
	}
	return nil
}
