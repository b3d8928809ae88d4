// Package drag turns pointer samples from a single gesture into live changes
// to a text shape and, when the gesture ends, into one undoable operation.
//
// A handler is created when a gesture begins on a particular region of a
// shape and is driven through DragStart, any number of DragContinue calls and
// then exactly one of DragEnd or DragCancel. It is discarded afterwards.
// While it is alive the handler has exclusive write access to the shape.
package drag

import (
	"fmt"
	"log/slog"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/shape"
)

// Kind identifies the drag behaviour.
type Kind int

const (
	KindMove Kind = iota
	KindResizeAndRotate
	KindChangeWidth
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindResizeAndRotate:
		return "resizeAndRotate"
	case KindChangeWidth:
		return "changeWidth"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// State is the lifecycle position of a handler.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateCommitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Handler is the lifecycle every drag behaviour implements.
type Handler interface {
	Kind() Kind
	State() State
	DragStart(ctx *Context, p geom.Point)
	DragContinue(ctx *Context, p, velocity geom.Point)
	DragEnd(ctx *Context, p geom.Point)
	DragCancel(ctx *Context, p geom.Point)
}

var (
	_ Handler = (*Move)(nil)
	_ Handler = (*ResizeAndRotate)(nil)
	_ Handler = (*ChangeWidth)(nil)
)

// OperationStack receives the single committed operation of a gesture.
type OperationStack interface {
	Apply(op opstack.Operation)
}

// ToolSettings is shared state between the tool and the renderer.
type ToolSettings struct {
	// PersistentBufferDirty forces the renderer to redraw its cached raster.
	PersistentBufferDirty bool
}

// Context carries the collaborators a handler needs for one callback.
type Context struct {
	Stack    OperationStack
	Settings *ToolSettings
}

func (c *Context) apply(op opstack.Operation) {
	if c == nil || c.Stack == nil {
		slog.Warn("drag: no operation stack, dropping operation", "type", op.Record().Type)
		return
	}
	c.Stack.Apply(op)
}

func (c *Context) markBufferDirty() {
	if c == nil || c.Settings == nil {
		return
	}
	c.Settings.PersistentBufferDirty = true
}

// base is the state shared by every handler: the shape, the host and the
// point the gesture started from.
type base struct {
	shape *shape.TextShape
	host  *HostRef
	start geom.Point
	state State
}

func (b *base) State() State { return b.state }

// StartPoint is the point recorded by DragStart.
func (b *base) StartPoint() geom.Point { return b.start }

func (b *base) DragStart(ctx *Context, p geom.Point) {
	if b.state != StateIdle {
		b.violation("DragStart")
		return
	}
	b.start = p
	b.state = StateDragging
}

// live reports whether the handler may act on a continue/end/cancel call.
// Calls before DragStart proceed with a zero start point; calls after the
// gesture finished are dropped.
func (b *base) live(call string) bool {
	switch b.state {
	case StateDragging:
		return true
	case StateIdle:
		b.violation(call)
		return true
	default:
		b.violation(call)
		return false
	}
}

func (b *base) finish(s State) {
	b.state = s
}

func (b *base) violation(call string) {
	if debugAssertions {
		panic(fmt.Sprintf("drag: %s called on %s handler for shape %s", call, b.state, b.shape.ID))
	}
	slog.Warn("drag handler called out of order", "call", call, "state", b.state.String(), "shape", b.shape.ID)
}
