// Package texttool is the host for text-box drag gestures. It owns the
// selection and the active drag handler, forwards pointer events to it, and
// turns handler callbacks into updates for whoever is rendering the canvas.
package texttool

import (
	"log/slog"

	"github.com/inamate/textbox/internal/document"
	"github.com/inamate/textbox/internal/drag"
	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/shape"
)

// DefaultControlWidth is the on-screen size of the resize and width handles.
const DefaultControlWidth = 24.0

type UpdateKind string

const (
	// UpdateTextView is a live preview of an in-progress gesture.
	UpdateTextView UpdateKind = "textView"
	// UpdateFrame follows a relayout of the shape.
	UpdateFrame UpdateKind = "frame"
	// UpdateHistory follows an apply, undo or redo on the stack.
	UpdateHistory UpdateKind = "history"
)

// Update tells listeners what to redraw.
type Update struct {
	Kind   UpdateKind
	Shape  shape.Snapshot
	Event  *opstack.Event
	Buffer bool // persistent buffer must be redrawn
}

// Tool is the text tool for one canvas. It is not safe for concurrent use;
// callers serialise pointer events the way a UI thread would.
type Tool struct {
	canvas       *document.Canvas
	stack        *opstack.Stack
	measurer     shape.Measurer
	settings     *drag.ToolSettings
	controlWidth float64

	selected *shape.TextShape
	handler  drag.Handler
	hostRef  *drag.HostRef
	lastDrag geom.Point

	listeners []func(Update)
}

// Options configure a Tool. Zero values fall back to defaults.
type Options struct {
	ControlWidth float64
	Measurer     shape.Measurer
}

func New(canvas *document.Canvas, stack *opstack.Stack, opts Options) *Tool {
	if opts.ControlWidth <= 0 {
		opts.ControlWidth = DefaultControlWidth
	}
	if opts.Measurer == nil {
		opts.Measurer = shape.NewBasicMeasurer()
	}

	t := &Tool{
		canvas:       canvas,
		stack:        stack,
		measurer:     opts.Measurer,
		settings:     &drag.ToolSettings{},
		controlWidth: opts.ControlWidth,
	}
	t.hostRef = drag.NewHostRef(t)
	stack.OnChange(t.onStackChange)
	return t
}

// OnUpdate registers fn to be called after every redraw request.
func (t *Tool) OnUpdate(fn func(Update)) {
	t.listeners = append(t.listeners, fn)
}

func (t *Tool) Canvas() *document.Canvas     { return t.canvas }
func (t *Tool) Stack() *opstack.Stack        { return t.stack }
func (t *Tool) Settings() *drag.ToolSettings { return t.settings }
func (t *Tool) Dragging() bool               { return t.handler != nil }

// Selected returns the selected shape, or nil.
func (t *Tool) Selected() *shape.TextShape { return t.selected }

// Select changes the selection. An empty id clears it. A gesture in progress
// is cancelled first.
func (t *Tool) Select(id string) bool {
	if t.handler != nil {
		t.CancelDrag(t.lastDrag)
	}
	if id == "" {
		t.selected = nil
		return true
	}
	s, ok := t.canvas.Shape(id)
	if !ok {
		return false
	}
	t.selected = s
	return true
}

// --- drag.Host ---

func (t *Tool) UpdateTextView() {
	if t.selected == nil {
		return
	}
	t.emit(Update{Kind: UpdateTextView, Shape: t.selected.Snapshot(), Buffer: t.takeBufferDirty()})
}

func (t *Tool) UpdateShapeFrame() {
	if t.selected == nil {
		return
	}
	t.selected.Relayout(t.measurer)
	t.emit(Update{Kind: UpdateFrame, Shape: t.selected.Snapshot(), Buffer: t.takeBufferDirty()})
}

func (t *Tool) ChangeWidthControlWidth() float64 { return t.controlWidth }

// --- Gestures ---

// BeginDrag hit-tests p, selects the shape under it and starts the matching
// handler. It reports false when nothing draggable is under p.
func (t *Tool) BeginDrag(p geom.Point) (drag.Kind, bool) {
	if t.handler != nil {
		slog.Warn("drag started while another is active, cancelling it")
		t.CancelDrag(t.lastDrag)
	}

	hit := t.HitTest(p)
	if hit.Region == RegionNone {
		return 0, false
	}
	t.selected = hit.Shape

	switch hit.Region {
	case RegionCornerHandle:
		t.handler = drag.NewResizeAndRotate(hit.Shape, t.hostRef)
	case RegionSideHandle:
		t.handler = drag.NewChangeWidth(hit.Shape, t.hostRef, t.measurer)
	default:
		t.handler = drag.NewMove(hit.Shape, t.hostRef)
	}

	t.lastDrag = p
	t.handler.DragStart(t.context(), p)
	slog.Debug("drag started", "kind", t.handler.Kind().String(), "shape", hit.Shape.ID)
	return t.handler.Kind(), true
}

func (t *Tool) ContinueDrag(p, velocity geom.Point) {
	if t.handler == nil {
		return
	}
	t.lastDrag = p
	t.handler.DragContinue(t.context(), p, velocity)
}

func (t *Tool) EndDrag(p geom.Point) {
	if t.handler == nil {
		return
	}
	h := t.handler
	t.handler = nil
	h.DragEnd(t.context(), p)
}

func (t *Tool) CancelDrag(p geom.Point) {
	if t.handler == nil {
		return
	}
	h := t.handler
	t.handler = nil
	h.DragCancel(t.context(), p)
}

// Undo reverts the last committed gesture. It is refused mid-gesture.
func (t *Tool) Undo() bool {
	if t.handler != nil {
		return false
	}
	return t.stack.Undo()
}

func (t *Tool) Redo() bool {
	if t.handler != nil {
		return false
	}
	return t.stack.Redo()
}

// Deactivate cancels any gesture and releases the tool from every handler
// still holding it. The tool must not be used afterwards.
func (t *Tool) Deactivate() {
	t.CancelDrag(t.lastDrag)
	t.hostRef.Release()
	t.selected = nil
}

func (t *Tool) context() *drag.Context {
	return &drag.Context{Stack: t.stack, Settings: t.settings}
}

func (t *Tool) takeBufferDirty() bool {
	dirty := t.settings.PersistentBufferDirty
	t.settings.PersistentBufferDirty = false
	return dirty
}

func (t *Tool) onStackChange(ev opstack.Event) {
	s, ok := t.canvas.Shape(ev.Record.ShapeID)
	if !ok {
		return
	}
	t.emit(Update{Kind: UpdateHistory, Shape: s.Snapshot(), Event: &ev, Buffer: true})
}

func (t *Tool) emit(u Update) {
	for _, fn := range t.listeners {
		fn(u)
	}
}
