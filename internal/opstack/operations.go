package opstack

import (
	"time"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/shape"
	"github.com/inamate/textbox/internal/typeid"
)

const (
	TypeChangeTransform = "shape.transform"
	TypeChangeWidth     = "shape.width"
)

// Operation is a finished, reversible change to the canvas.
type Operation interface {
	Apply()
	Revert()
	Record() Record
}

// Record is the serialisable description of an operation, used for the
// journal and for broadcasting to collaborators.
type Record struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ShapeID   string `json:"shapeId"`

	// For shape.transform
	Transform *geom.Transform `json:"transform,omitempty"`
	Previous  *geom.Transform `json:"previous,omitempty"`

	// For shape.width; nil means intrinsic
	Width         *float64 `json:"width,omitempty"`
	PreviousWidth *float64 `json:"previousWidth,omitempty"`
}

// ChangeTransform replaces a shape's transform.
type ChangeTransform struct {
	id       string
	at       time.Time
	shape    *shape.TextShape
	newValue geom.Transform
	original geom.Transform
}

// NewChangeTransform records a transform change from original to t.
func NewChangeTransform(s *shape.TextShape, t, original geom.Transform) *ChangeTransform {
	return &ChangeTransform{
		id:       typeid.NewOpID(),
		at:       time.Now(),
		shape:    s,
		newValue: t,
		original: original,
	}
}

func (op *ChangeTransform) Transform() geom.Transform { return op.newValue }
func (op *ChangeTransform) Original() geom.Transform  { return op.original }
func (op *ChangeTransform) Shape() *shape.TextShape   { return op.shape }

func (op *ChangeTransform) Apply()  { op.shape.SetTransform(op.newValue) }
func (op *ChangeTransform) Revert() { op.shape.SetTransform(op.original) }

func (op *ChangeTransform) Record() Record {
	newValue, original := op.newValue, op.original
	return Record{
		ID:        op.id,
		Type:      TypeChangeTransform,
		Timestamp: op.at.UnixMilli(),
		ShapeID:   op.shape.ID,
		Transform: &newValue,
		Previous:  &original,
	}
}

// ChangeWidth replaces a shape's explicit width and relays it out.
type ChangeWidth struct {
	id           string
	at           time.Time
	shape        *shape.TextShape
	measurer     shape.Measurer
	newValue     shape.Width
	original     shape.Width
	originalRect geom.Rect
}

// NewChangeWidth records a width change. Reverting restores both the
// original width and the original bounding rect exactly.
func NewChangeWidth(s *shape.TextShape, m shape.Measurer, w, original shape.Width, originalRect geom.Rect) *ChangeWidth {
	return &ChangeWidth{
		id:           typeid.NewOpID(),
		at:           time.Now(),
		shape:        s,
		measurer:     m,
		newValue:     w,
		original:     original,
		originalRect: originalRect,
	}
}

func (op *ChangeWidth) Width() shape.Width      { return op.newValue }
func (op *ChangeWidth) Original() shape.Width   { return op.original }
func (op *ChangeWidth) OriginalRect() geom.Rect { return op.originalRect }
func (op *ChangeWidth) Shape() *shape.TextShape { return op.shape }

func (op *ChangeWidth) Apply() {
	op.shape.SetExplicitWidth(op.newValue)
	if op.measurer != nil {
		op.shape.Relayout(op.measurer)
	}
}

func (op *ChangeWidth) Revert() {
	op.shape.SetExplicitWidth(op.original)
	op.shape.SetBoundingRect(op.originalRect)
}

func (op *ChangeWidth) Record() Record {
	return Record{
		ID:            op.id,
		Type:          TypeChangeWidth,
		Timestamp:     op.at.UnixMilli(),
		ShapeID:       op.shape.ID,
		Width:         op.newValue.Ptr(),
		PreviousWidth: op.original.Ptr(),
	}
}
