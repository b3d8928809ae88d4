package collab

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/textbox/internal/document"
	"github.com/inamate/textbox/internal/journal"
	"github.com/inamate/textbox/internal/shape"
	"github.com/inamate/textbox/internal/typeid"
)

var ErrHubStopped = errors.New("hub stopped")

// Loader returns the canvas a new room starts from.
type Loader func(canvasID string) (*document.Canvas, error)

// Saver keeps an edited canvas when its room closes.
type Saver func(doc document.Document) error

type Options struct {
	Journal      journal.Journal
	Loader       Loader
	Saver        Saver
	Measurer     shape.Measurer
	ControlWidth float64
	UndoLimit    int
}

type Hub struct {
	opts    Options
	journal *journalWriter

	mu      sync.Mutex
	rooms   map[string]*Room // canvasID -> room
	stopped bool
}

func NewHub(opts Options) *Hub {
	if opts.Measurer == nil {
		opts.Measurer = shape.NewBasicMeasurer()
	}
	if opts.Journal == nil {
		opts.Journal = journal.NewMemory()
	}
	if opts.Loader == nil || opts.Saver == nil {
		store := document.NewMemoryStore(opts.Measurer)
		if opts.Loader == nil {
			opts.Loader = store.Load
		}
		if opts.Saver == nil {
			opts.Saver = store.Save
		}
	}
	return &Hub{
		opts:    opts,
		journal: newJournalWriter(opts.Journal),
		rooms:   make(map[string]*Room),
	}
}

func ValidateCanvasID(canvasID string) error {
	if err := typeid.Validate(canvasID, typeid.PrefixCanvas); err != nil {
		return fmt.Errorf("invalid canvas id: %w", err)
	}
	return nil
}

// openRoom returns the running room for canvasID, loading the canvas if no
// room is open. Rooms close once their last client leaves.
func (h *Hub) openRoom(canvasID string) (*Room, error) {
	if err := ValidateCanvasID(canvasID); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil, ErrHubStopped
	}
	if room, ok := h.rooms[canvasID]; ok {
		return room, nil
	}

	canvas, err := h.opts.Loader(canvasID)
	if err != nil {
		return nil, fmt.Errorf("load canvas %s: %w", canvasID, err)
	}

	room := newRoom(canvas, h)
	h.rooms[canvasID] = room
	go room.run()

	slog.Info("room opened", "canvas", canvasID, "shapes", len(canvas.Shapes()))
	return room, nil
}

// Register joins client to the room for its canvas.
func (h *Hub) Register(client *Client) error {
	for {
		room, err := h.openRoom(client.CanvasID)
		if err != nil {
			return err
		}
		client.room = room
		if room.do(func() { room.join(client) }) {
			return nil
		}
		// The room closed between lookup and join; open a fresh one.
	}
}

// Document returns the current state of a canvas without opening a room.
func (h *Hub) Document(canvasID string) (document.Document, error) {
	if err := ValidateCanvasID(canvasID); err != nil {
		return document.Document{}, err
	}

	for {
		h.mu.Lock()
		if h.stopped {
			h.mu.Unlock()
			return document.Document{}, ErrHubStopped
		}
		room, ok := h.rooms[canvasID]
		h.mu.Unlock()

		if !ok {
			canvas, err := h.opts.Loader(canvasID)
			if err != nil {
				return document.Document{}, fmt.Errorf("load canvas %s: %w", canvasID, err)
			}
			return canvas.Document(), nil
		}
		if doc, ok := room.Document(); ok {
			return doc, nil
		}
	}
}

// release forgets a room that has closed itself.
func (h *Hub) release(room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room.canvasID] == room {
		delete(h.rooms, room.canvasID)
	}
}

// Stop cancels every gesture in flight, disconnects all clients, waits for
// the rooms to exit and flushes the journal.
func (h *Hub) Stop() {
	h.mu.Lock()
	h.stopped = true
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	for _, r := range rooms {
		r.close()
	}
	h.journal.close()
}
