package texttool

import (
	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/shape"
)

// Region is the part of a shape a pointer landed on.
type Region int

const (
	RegionNone Region = iota
	RegionBody
	RegionCornerHandle
	RegionSideHandle
)

func (r Region) String() string {
	switch r {
	case RegionBody:
		return "body"
	case RegionCornerHandle:
		return "corner"
	case RegionSideHandle:
		return "side"
	default:
		return "none"
	}
}

// Hit is the result of a hit test.
type Hit struct {
	Shape  *shape.TextShape
	Region Region
}

// Handles are the canvas-space centres of a shape's controls.
type Handles struct {
	Corner geom.Point `json:"corner"`
	Side   geom.Point `json:"side"`
}

// HandlesFor places the controls half a control width outside the box: the
// resize/rotate control off the lower-right corner and the width control off
// the middle of the right edge. The offset is in screen units, so it is
// divided by the scale before the transform is applied.
func HandlesFor(s *shape.TextShape, controlWidth float64) Handles {
	t := s.Transform()
	r := s.BoundingRect()

	offset := controlWidth / 2
	if t.Scale != 0 {
		offset /= t.Scale
	}
	right := r.X + r.Width + offset

	return Handles{
		Corner: t.Apply(geom.Pt(right, r.Y+r.Height+offset)),
		Side:   t.Apply(geom.Pt(right, r.Y+r.Height/2)),
	}
}

// HitTest finds what is under p. The selected shape's handles win over any
// body; bodies are tested front to back.
func (t *Tool) HitTest(p geom.Point) Hit {
	if t.selected != nil {
		h := HandlesFor(t.selected, t.controlWidth)
		radius := t.controlWidth / 2
		if p.Sub(h.Corner).Len() <= radius {
			return Hit{Shape: t.selected, Region: RegionCornerHandle}
		}
		if p.Sub(h.Side).Len() <= radius {
			return Hit{Shape: t.selected, Region: RegionSideHandle}
		}
	}

	shapes := t.canvas.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if containsPoint(shapes[i], p) {
			return Hit{Shape: shapes[i], Region: RegionBody}
		}
	}
	return Hit{}
}

// containsPoint maps p into shape space and tests the bounding rect, so
// rotated boxes hit-test exactly rather than by their axis-aligned frame.
func containsPoint(s *shape.TextShape, p geom.Point) bool {
	t := s.Transform()
	if t.Scale == 0 {
		return false
	}
	local := t.Matrix().Invert().TransformPoint(p)
	return s.BoundingRect().Contains(local)
}
