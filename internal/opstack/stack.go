// Package opstack keeps the undo/redo history of committed operations.
package opstack

import (
	"log/slog"
	"sync"
)

// DefaultLimit is the number of operations kept for undo when none is configured.
const DefaultLimit = 40

type EventKind string

const (
	EventApplied EventKind = "applied"
	EventUndone  EventKind = "undone"
	EventRedone  EventKind = "redone"
)

// Event is delivered to listeners after the stack changes the canvas.
type Event struct {
	Kind   EventKind
	Record Record
}

// Listener observes stack events. Listeners run synchronously on the caller's
// goroutine, after the stack lock has been released.
type Listener func(Event)

// Stack applies operations and tracks them for undo and redo.
type Stack struct {
	mu        sync.Mutex
	undo      []Operation
	redo      []Operation
	limit     int
	listeners []Listener
}

// New creates a stack keeping at most limit operations for undo.
func New(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{limit: limit}
}

// OnChange registers a listener.
func (s *Stack) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Apply performs op, pushes it onto the undo history and clears redo.
func (s *Stack) Apply(op Operation) {
	op.Apply()

	s.mu.Lock()
	s.undo = append(s.undo, op)
	if len(s.undo) > s.limit {
		dropped := len(s.undo) - s.limit
		s.undo = append(s.undo[:0:0], s.undo[dropped:]...)
		slog.Debug("undo history pruned", "dropped", dropped)
	}
	s.redo = nil
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Event{Kind: EventApplied, Record: op.Record()})
}

// Undo reverts the most recent operation. It reports false when there is
// nothing to undo.
func (s *Stack) Undo() bool {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return false
	}
	op := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, op)
	listeners := s.listeners
	s.mu.Unlock()

	op.Revert()
	notify(listeners, Event{Kind: EventUndone, Record: op.Record()})
	return true
}

// Redo re-applies the most recently undone operation.
func (s *Stack) Redo() bool {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return false
	}
	op := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, op)
	listeners := s.listeners
	s.mu.Unlock()

	op.Apply()
	notify(listeners, Event{Kind: EventRedone, Record: op.Record()})
	return true
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// History returns the records of the undoable operations, oldest first.
func (s *Stack) History() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]Record, len(s.undo))
	for i, op := range s.undo {
		records[i] = op.Record()
	}
	return records
}

func notify(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l(ev)
	}
}
