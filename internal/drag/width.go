package drag

import (
	"log/slog"
	"math"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/shape"
)

// MinWidth is the narrowest explicit width a gesture can commit.
const MinWidth = 1.0

// ChangeWidth drags the side handle to change only the box width. It does
// not resize live; the width is computed once, from the end point.
type ChangeWidth struct {
	base
	measurer shape.Measurer

	// Re-snapshotted on every DragContinue; DragCancel restores these.
	originalWidth        shape.Width
	originalBoundingRect geom.Rect

	// Captured once at construction; the committed operation reverts to these.
	preGestureWidth shape.Width
	preGestureRect  geom.Rect
}

// NewChangeWidth snapshots the shape and, if its width is intrinsic, pins it
// to the current bounding rect width.
func NewChangeWidth(s *shape.TextShape, host *HostRef, m shape.Measurer) *ChangeWidth {
	h := &ChangeWidth{
		base:                 base{shape: s, host: host},
		measurer:             m,
		originalWidth:        s.ExplicitWidth(),
		originalBoundingRect: s.BoundingRect(),
	}
	h.preGestureWidth = h.originalWidth
	h.preGestureRect = h.originalBoundingRect
	s.SeedExplicitWidth()
	return h
}

func (h *ChangeWidth) Kind() Kind { return KindChangeWidth }

// TargetWidth converts a pointer distance from the box centre into a
// shape-space width: the handle sits half its own width outside the edge,
// the box is symmetric about its centre, and the transform scale is divided
// out.
func TargetWidth(p, center geom.Point, controlWidth, scale float64) float64 {
	distance := p.Sub(center).Len()
	screenWidth := (distance - controlWidth/2) * 2
	return screenWidth / scale
}

func (h *ChangeWidth) DragContinue(ctx *Context, p, velocity geom.Point) {
	if !h.live("DragContinue") {
		return
	}
	h.originalWidth = h.shape.ExplicitWidth()
	h.originalBoundingRect = h.shape.BoundingRect()
	h.shape.SeedExplicitWidth()
}

// DragEnd commits the new width. If the host has gone away the gesture is
// dropped without an operation.
func (h *ChangeWidth) DragEnd(ctx *Context, p geom.Point) {
	if !h.live("DragEnd") {
		return
	}
	h.finish(StateCommitted)

	host, ok := h.host.Get()
	if !ok {
		slog.Debug("change width ended after host release", "shape", h.shape.ID)
		return
	}

	center := h.shape.TranslatedBoundingRect().Center()
	width := TargetWidth(p, center, host.ChangeWidthControlWidth(), h.shape.Transform().Scale)
	if math.IsNaN(width) || math.IsInf(width, 0) || width < MinWidth {
		width = MinWidth
	}

	ctx.apply(opstack.NewChangeWidth(h.shape, h.measurer, shape.Explicit(width), h.preGestureWidth, h.preGestureRect))
	host.UpdateShapeFrame()
}

func (h *ChangeWidth) DragCancel(ctx *Context, p geom.Point) {
	if !h.live("DragCancel") {
		return
	}
	h.finish(StateCancelled)
	h.shape.SetExplicitWidth(h.originalWidth)
	h.shape.SetBoundingRect(h.originalBoundingRect)
	ctx.markBufferDirty()
	h.host.UpdateTextView()
}
