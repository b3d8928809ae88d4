package collab

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/textbox/internal/journal"
	"github.com/inamate/textbox/internal/opstack"
)

const journalTimeout = 5 * time.Second

type pendingEvent struct {
	canvasID string
	ev       opstack.Event
}

// journalWriter appends stack events in order on its own goroutine so a slow
// journal never stalls a room. The queue is unbounded.
type journalWriter struct {
	journal journal.Journal

	mu      sync.Mutex
	pending []pendingEvent
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newJournalWriter(j journal.Journal) *journalWriter {
	w := &journalWriter{
		journal: j,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *journalWriter) enqueue(canvasID string, ev opstack.Event) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		slog.Warn("journal closed, dropping event", "canvas", canvasID, "op", ev.Record.ID)
		return
	}
	w.pending = append(w.pending, pendingEvent{canvasID: canvasID, ev: ev})
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *journalWriter) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		batch := w.pending
		w.pending = nil
		closed := w.closed
		w.mu.Unlock()

		for _, p := range batch {
			w.append(p)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-w.wake
	}
}

func (w *journalWriter) append(p pendingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if _, err := w.journal.Append(ctx, p.canvasID, p.ev); err != nil {
		slog.Error("journal append failed", "error", err, "canvas", p.canvasID, "op", p.ev.Record.ID)
	}
}

// close flushes everything queued so far and waits for the writer to exit.
func (w *journalWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	<-w.done
}
