package document

import (
	"encoding/json"
	"testing"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/shape"
)

func TestDocumentRoundTripKeepsWidthAndTransform(t *testing.T) {
	m := shape.NewBasicMeasurer()
	c := NewSampleCanvas("canvas_test", m)

	data, err := json.Marshal(c.Document())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	loaded := FromDocument(doc, m)

	orig := c.Shapes()
	got := loaded.Shapes()
	if len(got) != len(orig) {
		t.Fatalf("loaded %d shapes, want %d", len(got), len(orig))
	}
	for i := range orig {
		if got[i].ID != orig[i].ID {
			t.Errorf("shape %d id = %q, want %q", i, got[i].ID, orig[i].ID)
		}
		if got[i].Transform() != orig[i].Transform() {
			t.Errorf("shape %d transform = %+v, want %+v", i, got[i].Transform(), orig[i].Transform())
		}
		if got[i].ExplicitWidth() != orig[i].ExplicitWidth() {
			t.Errorf("shape %d width = %+v, want %+v", i, got[i].ExplicitWidth(), orig[i].ExplicitWidth())
		}
		if got[i].BoundingRect() != orig[i].BoundingRect() {
			t.Errorf("shape %d rect = %+v, want %+v", i, got[i].BoundingRect(), orig[i].BoundingRect())
		}
	}
}

func TestFromDocumentDefaultsZeroScale(t *testing.T) {
	doc := Document{
		ID:     "canvas_test",
		Shapes: []shape.Snapshot{{ID: "s1", Text: "hi", FontSize: 13, Transform: geom.Transform{Translation: geom.Pt(1, 2)}}},
	}
	c := FromDocument(doc, shape.NewBasicMeasurer())

	s, ok := c.Shape("s1")
	if !ok {
		t.Fatal("shape s1 not found")
	}
	if s.Transform().Scale != 1 {
		t.Errorf("scale = %v, want 1", s.Transform().Scale)
	}
	if c.Width != 1280 || c.Height != 720 {
		t.Errorf("size = %dx%d, want defaults", c.Width, c.Height)
	}
}
