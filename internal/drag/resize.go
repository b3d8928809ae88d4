package drag

import (
	"log/slog"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/shape"
)

// ResizeAndRotate drags the corner handle. The distance from the shape's
// position to the pointer sets the scale; the direction sets the rotation.
type ResizeAndRotate struct {
	base
	originalTransform geom.Transform
}

func NewResizeAndRotate(s *shape.TextShape, host *HostRef) *ResizeAndRotate {
	return &ResizeAndRotate{
		base:              base{shape: s, host: host},
		originalTransform: s.Transform(),
	}
}

func (h *ResizeAndRotate) Kind() Kind { return KindResizeAndRotate }

// ScaleAndRotation splits the drag from start to p, seen from pivot, into a
// scale ratio and a rotation delta. ok is false when start or p lies within
// geom.Epsilon of the pivot, where neither quantity is defined.
func ScaleAndRotation(pivot, start, p geom.Point) (scale, rotation float64, ok bool) {
	originalDelta := start.Sub(pivot)
	newDelta := p.Sub(pivot)

	originalDistance := originalDelta.Len()
	newDistance := newDelta.Len()
	if originalDistance < geom.Epsilon || newDistance < geom.Epsilon {
		return 0, 0, false
	}

	return newDistance / originalDistance, newDelta.Angle() - originalDelta.Angle(), true
}

// transformFor computes the candidate transform for p. The pivot is the
// shape's current translation, which this handler never changes.
func (h *ResizeAndRotate) transformFor(p geom.Point) (geom.Transform, bool) {
	pivot := h.shape.Transform().Translation
	scale, rotation, ok := ScaleAndRotation(pivot, h.start, p)
	if !ok {
		return geom.Transform{}, false
	}
	return h.originalTransform.Scaled(scale).Rotated(rotation), true
}

func (h *ResizeAndRotate) DragContinue(ctx *Context, p, velocity geom.Point) {
	if !h.live("DragContinue") {
		return
	}
	t, ok := h.transformFor(p)
	if !ok {
		slog.Debug("resize sample at pivot rejected", "shape", h.shape.ID, "x", p.X, "y", p.Y)
		return
	}
	h.shape.SetTransform(t)
	h.host.UpdateTextView()
}

// DragEnd commits the transform for p. A degenerate end sample commits the
// last accepted preview instead, so a gesture always produces one operation.
func (h *ResizeAndRotate) DragEnd(ctx *Context, p geom.Point) {
	if !h.live("DragEnd") {
		return
	}
	h.finish(StateCommitted)

	t, ok := h.transformFor(p)
	if !ok {
		t = h.shape.Transform()
	}
	ctx.apply(opstack.NewChangeTransform(h.shape, t, h.originalTransform))
}

func (h *ResizeAndRotate) DragCancel(ctx *Context, p geom.Point) {
	if !h.live("DragCancel") {
		return
	}
	h.finish(StateCancelled)
	h.shape.SetTransform(h.originalTransform)
	ctx.markBufferDirty()
	h.host.UpdateShapeFrame()
}
