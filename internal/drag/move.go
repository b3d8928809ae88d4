package drag

import (
	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/shape"
)

// Move drags the whole text box to a new location.
type Move struct {
	base
	originalTransform geom.Transform
}

func NewMove(s *shape.TextShape, host *HostRef) *Move {
	return &Move{
		base:              base{shape: s, host: host},
		originalTransform: s.Transform(),
	}
}

func (h *Move) Kind() Kind { return KindMove }

func (h *Move) moved(p geom.Point) geom.Transform {
	return h.originalTransform.Translated(p.Sub(h.start))
}

func (h *Move) DragContinue(ctx *Context, p, velocity geom.Point) {
	if !h.live("DragContinue") {
		return
	}
	h.shape.SetTransform(h.moved(p))
	h.host.UpdateTextView()
}

func (h *Move) DragEnd(ctx *Context, p geom.Point) {
	if !h.live("DragEnd") {
		return
	}
	h.finish(StateCommitted)
	ctx.apply(opstack.NewChangeTransform(h.shape, h.moved(p), h.originalTransform))
}

func (h *Move) DragCancel(ctx *Context, p geom.Point) {
	if !h.live("DragCancel") {
		return
	}
	h.finish(StateCancelled)
	h.shape.SetTransform(h.originalTransform)
	ctx.markBufferDirty()
	h.host.UpdateShapeFrame()
}
