package collab

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/inamate/textbox/internal/document"
	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/texttool"
)

// Room is one shared canvas. Everything that touches the canvas, the text
// tool or the client set runs on the room goroutine. A room closes itself
// when its last client leaves.
type Room struct {
	canvasID string
	hub      *Hub
	tool     *texttool.Tool
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager

	// owner is the client whose gesture is in progress; actor is the client
	// whose message is being handled.
	owner     *Client
	actor     *Client
	serverSeq int64
	idle      bool

	events    chan func()
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newRoom(canvas *document.Canvas, hub *Hub) *Room {
	stack := opstack.New(hub.opts.UndoLimit)
	r := &Room{
		canvasID: canvas.ID,
		hub:      hub,
		tool: texttool.New(canvas, stack, texttool.Options{
			ControlWidth: hub.opts.ControlWidth,
			Measurer:     hub.opts.Measurer,
		}),
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		events:   make(chan func()),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	r.tool.OnUpdate(r.onToolUpdate)
	return r
}

func (r *Room) run() {
	defer close(r.done)
	for {
		select {
		case fn := <-r.events:
			fn()
			if r.idle {
				r.closeIdle()
				return
			}
		case <-r.stop:
			r.shutdown()
			return
		}
	}
}

// do queues fn on the room goroutine. It reports false once the room is gone.
func (r *Room) do(fn func()) bool {
	select {
	case r.events <- fn:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) close() {
	r.closeOnce.Do(func() { close(r.stop) })
	<-r.done
}

// Document returns the current canvas as seen from the room goroutine.
func (r *Room) Document() (document.Document, bool) {
	reply := make(chan document.Document, 1)
	if !r.do(func() { reply <- r.tool.Canvas().Document() }) {
		return document.Document{}, false
	}
	return <-reply, true
}

func (r *Room) shutdown() {
	r.tool.Deactivate()
	r.owner = nil
	for id, c := range r.clients {
		close(c.send)
		delete(r.clients, id)
	}
	r.save()
	slog.Info("room closed", "canvas", r.canvasID)
}

// closeIdle saves the canvas and removes the room from the hub before the
// goroutine exits, so a racing join reopens it from the saved state.
func (r *Room) closeIdle() {
	r.tool.Deactivate()
	r.save()
	r.hub.release(r)
	slog.Info("room closed", "canvas", r.canvasID, "reason", "idle")
}

// save hands an edited canvas to the hub's saver. Untouched canvases reload
// from their loader unchanged.
func (r *Room) save() {
	if len(r.tool.Stack().History()) == 0 {
		return
	}
	if err := r.hub.opts.Saver(r.tool.Canvas().Document()); err != nil {
		slog.Error("save canvas failed", "error", err, "canvas", r.canvasID)
	}
}

func (r *Room) join(client *Client) {
	r.clients[client.ClientID] = client

	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, UserID: client.UserID}))
	client.Send(r.docSyncMessage())

	// Send current presence state to new client
	if stateMsg := r.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg.UserID = client.UserID
	r.broadcast(joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "canvas", r.canvasID)
}

func (r *Room) leave(client *Client) {
	if _, ok := r.clients[client.ClientID]; !ok {
		return
	}

	if r.owner == client {
		r.actor = client
		r.tool.CancelDrag(geom.Point{})
		r.owner = nil
		r.actor = nil
	}

	delete(r.clients, client.ClientID)
	close(client.send)
	slog.Info("client left", "user", client.UserID, "canvas", r.canvasID)

	if len(r.clients) == 0 && r.owner == nil {
		r.idle = true
		return
	}

	// Presence is per user; keep it while the user has another connection.
	for _, c := range r.clients {
		if c.UserID == client.UserID {
			return
		}
	}
	r.presence.Remove(client.UserID)

	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	leaveMsg.UserID = client.UserID
	r.broadcast(leaveMsg, "")
}

func (r *Room) handleMessage(sender *Client, msg *Message) {
	if _, ok := r.clients[sender.ClientID]; !ok {
		return
	}

	r.actor = sender
	defer func() { r.actor = nil }()

	switch msg.Type {
	case TypeDragStart:
		r.handleDragStart(sender, msg)
	case TypeDragContinue, TypeDragEnd, TypeDragCancel:
		r.handleDragSample(sender, msg)
	case TypeSelect:
		r.handleSelect(sender, msg)
	case TypeUndo:
		if !r.tool.Undo() {
			sender.SendError("nothing to undo")
		}
	case TypeRedo:
		if !r.tool.Redo() {
			sender.SendError("nothing to redo")
		}
	case TypePresenceUpdate:
		r.handlePresenceUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (r *Room) handleDragStart(sender *Client, msg *Message) {
	var p PointerPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		sender.SendError("invalid drag payload")
		return
	}

	if r.owner != nil {
		sender.SendError("another gesture is in progress")
		return
	}

	kind, ok := r.tool.BeginDrag(geom.Pt(p.X, p.Y))
	if !ok {
		sender.SendError("nothing to drag")
		return
	}
	r.owner = sender
	shapeID := r.tool.Selected().ID

	sender.Send(newMessage(TypeDragStarted, DragStartedPayload{
		Kind:    kind.String(),
		ShapeID: shapeID,
	}))
	r.announceSelection(sender, shapeID)
}

func (r *Room) handleDragSample(sender *Client, msg *Message) {
	if r.owner != sender {
		sender.SendError("no gesture in progress")
		return
	}

	var p PointerPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		sender.SendError("invalid drag payload")
		return
	}
	at := geom.Pt(p.X, p.Y)

	switch msg.Type {
	case TypeDragContinue:
		r.tool.ContinueDrag(at, geom.Pt(p.VX, p.VY))
	case TypeDragEnd:
		r.owner = nil
		r.tool.EndDrag(at)
	case TypeDragCancel:
		r.owner = nil
		r.tool.CancelDrag(at)
	}
}

func (r *Room) handleSelect(sender *Client, msg *Message) {
	if r.owner != nil {
		sender.SendError("another gesture is in progress")
		return
	}

	var p SelectPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		sender.SendError("invalid select payload")
		return
	}
	if !r.tool.Select(p.ShapeID) {
		sender.SendError("unknown shape")
		return
	}
	r.announceSelection(sender, p.ShapeID)
}

func (r *Room) announceSelection(sender *Client, shapeID string) {
	presence := r.presence.Select(sender.UserID, sender.DisplayName, shapeID)
	msg := newMessage(TypePresenceUpdate, presence)
	msg.UserID = sender.UserID
	r.broadcast(msg, sender.ClientID)
}

func (r *Room) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName
	r.presence.Update(sender.UserID, &presence)

	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.UserID = sender.UserID
	r.broadcast(outMsg, sender.ClientID)
}

func (r *Room) onToolUpdate(u texttool.Update) {
	userID := ""
	if r.actor != nil {
		userID = r.actor.UserID
	}

	if u.Kind != texttool.UpdateHistory {
		msg := newMessage(TypeShapePreview, ShapePreviewPayload{Kind: u.Kind, Shape: u.Shape, Buffer: u.Buffer})
		msg.UserID = userID
		r.broadcast(msg, "")
		return
	}

	ev := *u.Event
	r.hub.journal.enqueue(r.canvasID, ev)

	r.serverSeq++
	stack := r.tool.Stack()
	msg := newMessage(TypeOpBroadcast, OpBroadcastPayload{
		Kind:      ev.Kind,
		Record:    ev.Record,
		Shape:     u.Shape,
		UserID:    userID,
		ServerSeq: r.serverSeq,
		CanUndo:   stack.CanUndo(),
		CanRedo:   stack.CanRedo(),
	})
	msg.UserID = userID
	msg.Seq = r.serverSeq
	r.broadcast(msg, "")

	slog.Debug("operation committed", "kind", ev.Kind, "type", ev.Record.Type, "shape", ev.Record.ShapeID, "seq", r.serverSeq)
}

func (r *Room) docSyncMessage() *Message {
	stack := r.tool.Stack()
	msg := newMessage(TypeDocSync, DocSyncPayload{
		Document: r.tool.Canvas().Document(),
		CanUndo:  stack.CanUndo(),
		CanRedo:  stack.CanRedo(),
	})
	msg.Seq = r.serverSeq
	return msg
}

func (r *Room) broadcast(msg *Message, excludeClientID string) {
	msg.CanvasID = r.canvasID
	for _, c := range r.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
