package pdfannotate

import (
	"slices"

	"github.com/felixgeelhaar/statekit"
	"github.com/pkg/errors"
)

// Gesture sub-states of the active tool. Only one gesture can be in
// progress at a time.
const (
	gestureIdle     statekit.StateID = "idle"
	gestureStroking statekit.StateID = "stroking"
	gestureShaping  statekit.StateID = "shaping"
	gestureDragging statekit.StateID = "dragging"
	gestureResizing statekit.StateID = "resizing"
)

const (
	eventStroke  statekit.EventType = "STROKE"
	eventShape   statekit.EventType = "SHAPE"
	eventDrag    statekit.EventType = "DRAG"
	eventResize  statekit.EventType = "RESIZE"
	eventRelease statekit.EventType = "RELEASE"
	eventCancel  statekit.EventType = "CANCEL"
)

// gesture carries the data of the gesture in progress. Points are pixels;
// origin is the page-space geometry of the target when the gesture began.
type gesture struct {
	kind     Kind
	start    Point
	current  Point
	points   []Point
	targetID string
	origin   Rect
	offset   Point
	handle   Handle
}

// beginGesture copies the event payload into the machine context.
func beginGesture(ctx **gesture, event statekit.Event) {
	if g, ok := event.Payload.(gesture); ok {
		**ctx = g
	}
}

// clearGesture resets the context when returning to idle.
func clearGesture(ctx **gesture, _ statekit.Event) {
	**ctx = gesture{}
}

// newGestureChart builds the gesture statechart.
func newGestureChart() (*statekit.MachineConfig[*gesture], error) {
	return statekit.NewMachine[*gesture]("gesture").
		WithInitial(gestureIdle).
		WithContext(&gesture{}).
		WithAction("begin", beginGesture).
		WithAction("clear", clearGesture).
		State(gestureIdle).
			OnEntry("clear").
			On(eventStroke).Target(gestureStroking).Do("begin").
			On(eventShape).Target(gestureShaping).Do("begin").
			On(eventDrag).Target(gestureDragging).Do("begin").
			On(eventResize).Target(gestureResizing).Do("begin").
			Done().
		State(gestureStroking).
			On(eventRelease).Target(gestureIdle).
			On(eventCancel).Target(gestureIdle).
			Done().
		State(gestureShaping).
			On(eventRelease).Target(gestureIdle).
			On(eventCancel).Target(gestureIdle).
			Done().
		State(gestureDragging).
			On(eventRelease).Target(gestureIdle).
			On(eventCancel).Target(gestureIdle).
			Done().
		State(gestureResizing).
			On(eventRelease).Target(gestureIdle).
			On(eventCancel).Target(gestureIdle).
			Done().
		Build()
}

// gestureEvents lists the events each state accepts. The interpreter is
// only sent events from this table.
var gestureEvents = map[statekit.StateID][]statekit.EventType{
	gestureIdle:     {eventStroke, eventShape, eventDrag, eventResize},
	gestureStroking: {eventRelease, eventCancel},
	gestureShaping:  {eventRelease, eventCancel},
	gestureDragging: {eventRelease, eventCancel},
	gestureResizing: {eventRelease, eventCancel},
}

// gestures drives the gesture statechart for one editor.
type gestures struct {
	interp *statekit.Interpreter[*gesture]
	ctx    *gesture
}

func newGestures() (*gestures, error) {
	chart, err := newGestureChart()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build gesture statechart")
	}
	ctx := &gesture{}
	interp := statekit.NewInterpreter(chart)
	interp.UpdateContext(func(c **gesture) {
		*c = ctx
	})
	interp.Start()
	return &gestures{interp: interp, ctx: ctx}, nil
}

// State returns the current gesture sub-state.
func (g *gestures) State() statekit.StateID {
	return statekit.StateID(g.interp.State().Value)
}

// Active reports whether a gesture is in progress.
func (g *gestures) Active() bool {
	return !g.interp.Matches(gestureIdle)
}

// data returns the context of the gesture in progress.
func (g *gestures) data() *gesture {
	return g.ctx
}

// send delivers event if the current state accepts it.
func (g *gestures) send(event statekit.EventType, payload any) bool {
	if !slices.Contains(gestureEvents[g.State()], event) {
		return false
	}
	g.interp.Send(statekit.Event{Type: event, Payload: payload})
	return true
}

func (g *gestures) stroke(start Point) bool {
	return g.send(eventStroke, gesture{kind: KindStroke, start: start, current: start, points: []Point{start}})
}

func (g *gestures) shape(kind Kind, start Point) bool {
	return g.send(eventShape, gesture{kind: kind, start: start, current: start})
}

func (g *gestures) drag(target Annotation, offset Point) bool {
	return g.send(eventDrag, gesture{kind: target.Type, targetID: target.ID, origin: target.Box(), offset: offset})
}

func (g *gestures) resize(target Annotation, handle Handle) bool {
	return g.send(eventResize, gesture{kind: target.Type, targetID: target.ID, origin: target.Box(), handle: handle})
}

func (g *gestures) release() bool {
	return g.send(eventRelease, nil)
}

func (g *gestures) cancel() bool {
	return g.send(eventCancel, nil)
}
