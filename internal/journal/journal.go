// Package journal keeps an append-only log of committed canvas operations.
package journal

import (
	"context"
	"sync"

	"github.com/inamate/textbox/internal/opstack"
)

// Entry is one journaled stack event.
type Entry struct {
	Seq      int64             `json:"seq"`
	CanvasID string            `json:"canvasId"`
	Kind     opstack.EventKind `json:"kind"`
	Record   opstack.Record    `json:"record"`
}

// Journal stores stack events per canvas.
type Journal interface {
	Append(ctx context.Context, canvasID string, ev opstack.Event) (int64, error)
	// List returns up to limit entries, newest first.
	List(ctx context.Context, canvasID string, limit int) ([]Entry, error)
}

// Memory is an in-process Journal used when no database is configured.
type Memory struct {
	mu      sync.RWMutex
	seq     int64
	entries map[string][]Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]Entry)}
}

func (m *Memory) Append(ctx context.Context, canvasID string, ev opstack.Event) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	m.entries[canvasID] = append(m.entries[canvasID], Entry{
		Seq:      m.seq,
		CanvasID: canvasID,
		Kind:     ev.Kind,
		Record:   ev.Record,
	})
	return m.seq, nil
}

func (m *Memory) List(ctx context.Context, canvasID string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.entries[canvasID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}

	out := make([]Entry, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
