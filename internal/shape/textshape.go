// Package shape holds the mutable text box that drag handlers operate on.
package shape

import (
	"sync"

	"github.com/inamate/textbox/internal/geom"
)

// Width is an optional explicit width. The zero value is unset, meaning the
// box takes its width from its content.
type Width struct {
	Value float64
	Set   bool
}

// Unset is the intrinsic-width marker.
var Unset = Width{}

// Explicit returns a set Width of v.
func Explicit(v float64) Width { return Width{Value: v, Set: true} }

// Ptr returns the width as a JSON-friendly pointer, nil when unset.
func (w Width) Ptr() *float64 {
	if !w.Set {
		return nil
	}
	v := w.Value
	return &v
}

// TextShape is a text box on the canvas.
//
// The bounding rect is in shape space (before the transform), centred on the
// origin. A drag handler gets exclusive write access for the duration of a
// gesture; the renderer may read concurrently, so every field is behind mu and
// readers always see a whole transform.
type TextShape struct {
	ID string

	mu            sync.RWMutex
	text          string
	fontSize      float64
	transform     geom.Transform
	explicitWidth Width
	boundingRect  geom.Rect
}

// New creates a text shape at the given transform and lays it out with m.
func New(id, text string, fontSize float64, t geom.Transform, m Measurer) *TextShape {
	s := &TextShape{
		ID:        id,
		text:      text,
		fontSize:  fontSize,
		transform: t,
	}
	s.Relayout(m)
	return s
}

func (s *TextShape) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

func (s *TextShape) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

func (s *TextShape) FontSize() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fontSize
}

func (s *TextShape) Transform() geom.Transform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transform
}

func (s *TextShape) SetTransform(t geom.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transform = t
}

func (s *TextShape) ExplicitWidth() Width {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.explicitWidth
}

func (s *TextShape) SetExplicitWidth(w Width) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explicitWidth = w
}

// SeedExplicitWidth pins an unset width to the current bounding rect width so
// width math always has a concrete number. It returns the resulting width.
func (s *TextShape) SeedExplicitWidth() Width {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.explicitWidth.Set {
		s.explicitWidth = Explicit(s.boundingRect.Width)
	}
	return s.explicitWidth
}

func (s *TextShape) BoundingRect() geom.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundingRect
}

func (s *TextShape) SetBoundingRect(r geom.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boundingRect = r
}

// TranslatedBoundingRect returns the bounding rect moved by the transform's
// translation only; rotation and scale are ignored.
func (s *TextShape) TranslatedBoundingRect() geom.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundingRect.Translated(s.transform.Translation)
}

// Frame returns the axis-aligned canvas-space bounds of the box.
func (s *TextShape) Frame() geom.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transform.Matrix().TransformRect(s.boundingRect)
}

// Relayout recomputes the bounding rect from the text, font size and
// explicit width.
func (s *TextShape) Relayout(m Measurer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var l Layout
	if s.explicitWidth.Set {
		l = LayoutWrapped(m, s.text, s.fontSize, s.explicitWidth.Value)
	} else {
		l = LayoutIntrinsic(m, s.text, s.fontSize)
	}
	s.boundingRect = geom.CenteredAt(geom.Point{}, l.Width, l.Height)
}

// Snapshot is a consistent, serialisable copy of a shape.
type Snapshot struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	FontSize      float64        `json:"fontSize"`
	Transform     geom.Transform `json:"transform"`
	ExplicitWidth *float64       `json:"explicitWidth"`
	BoundingRect  geom.Rect      `json:"boundingRect"`
}

func (s *TextShape) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:            s.ID,
		Text:          s.text,
		FontSize:      s.fontSize,
		Transform:     s.transform,
		ExplicitWidth: s.explicitWidth.Ptr(),
		BoundingRect:  s.boundingRect,
	}
}
