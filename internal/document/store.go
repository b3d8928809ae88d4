package document

import (
	"sync"

	"github.com/inamate/textbox/internal/shape"
)

// MemoryStore keeps canvases that were edited and then closed. Canvases it
// has never seen load as the sample canvas.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]Document
	measurer shape.Measurer
}

func NewMemoryStore(m shape.Measurer) *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]Document),
		measurer: m,
	}
}

func (s *MemoryStore) Load(canvasID string) (*Canvas, error) {
	s.mu.RLock()
	doc, ok := s.docs[canvasID]
	s.mu.RUnlock()

	if !ok {
		return NewSampleCanvas(canvasID, s.measurer), nil
	}
	return FromDocument(doc, s.measurer), nil
}

func (s *MemoryStore) Save(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}
