package document

import (
	"fmt"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/shape"
	"github.com/inamate/textbox/internal/typeid"
)

// NewSampleCanvas returns a canvas with a few text boxes to drag around.
// Shape ids derive from the canvas id, so loading the same canvas twice gives
// the same shapes.
func NewSampleCanvas(canvasID string, m shape.Measurer) *Canvas {
	c := NewCanvas(canvasID, "Untitled")
	n := 0
	nextID := func() string {
		n++
		return typeid.Derive(typeid.PrefixShape, fmt.Sprintf("%s/%d", canvasID, n))
	}

	c.Add(NewTextShape(nextID(), "Drag me", 32, geom.Pt(320, 200), m))

	rotated := NewTextShape(nextID(), "Resize and rotate\nfrom the corner", 20, geom.Pt(760, 260), m)
	rotated.SetTransform(rotated.Transform().Rotated(-0.2))
	c.Add(rotated)

	wrapped := NewTextShape(nextID(), "Pull the side handle to rewrap this paragraph of text", 16, geom.Pt(640, 520), m)
	wrapped.SetExplicitWidth(shape.Explicit(240))
	wrapped.Relayout(m)
	c.Add(wrapped)

	return c
}
