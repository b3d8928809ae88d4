package document

import (
	"sync"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/shape"
)

// Canvas is the live set of text shapes being edited, in painter's order
// (back to front).
type Canvas struct {
	ID         string
	Name       string
	Width      int
	Height     int
	Background string

	mu     sync.RWMutex
	shapes []*shape.TextShape
	byID   map[string]*shape.TextShape
}

func NewCanvas(id, name string) *Canvas {
	return &Canvas{
		ID:         id,
		Name:       name,
		Width:      1280,
		Height:     720,
		Background: "#1a1a2e",
		byID:       make(map[string]*shape.TextShape),
	}
}

// Add appends s on top of the existing shapes.
func (c *Canvas) Add(s *shape.TextShape) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shapes = append(c.shapes, s)
	c.byID[s.ID] = s
}

func (c *Canvas) Shape(id string) (*shape.TextShape, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byID[id]
	return s, ok
}

// Shapes returns the shapes back to front.
func (c *Canvas) Shapes() []*shape.TextShape {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*shape.TextShape, len(c.shapes))
	copy(out, c.shapes)
	return out
}

// Document is the wire form of a canvas sent to clients on join.
type Document struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Background string           `json:"background"`
	Shapes     []shape.Snapshot `json:"shapes"`
}

func (c *Canvas) Document() Document {
	shapes := c.Shapes()
	doc := Document{
		ID:         c.ID,
		Name:       c.Name,
		Width:      c.Width,
		Height:     c.Height,
		Background: c.Background,
		Shapes:     make([]shape.Snapshot, len(shapes)),
	}
	for i, s := range shapes {
		doc.Shapes[i] = s.Snapshot()
	}
	return doc
}

// FromDocument rebuilds a canvas from its wire form and lays every shape out
// with m.
func FromDocument(doc Document, m shape.Measurer) *Canvas {
	c := NewCanvas(doc.ID, doc.Name)
	if doc.Width > 0 {
		c.Width = doc.Width
	}
	if doc.Height > 0 {
		c.Height = doc.Height
	}
	if doc.Background != "" {
		c.Background = doc.Background
	}

	for _, snap := range doc.Shapes {
		t := snap.Transform
		if t.Scale == 0 {
			t.Scale = 1
		}
		s := shape.New(snap.ID, snap.Text, snap.FontSize, t, m)
		if snap.ExplicitWidth != nil {
			s.SetExplicitWidth(shape.Explicit(*snap.ExplicitWidth))
		}
		s.Relayout(m)
		c.Add(s)
	}
	return c
}

// NewTextShape creates a shape and lays it out. Positions are canvas-space
// centres.
func NewTextShape(id, text string, fontSize float64, at geom.Point, m shape.Measurer) *shape.TextShape {
	return shape.New(id, text, fontSize, geom.At(at), m)
}
