package collab

import (
	"encoding/json"

	"github.com/inamate/textbox/internal/document"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/shape"
	"github.com/inamate/textbox/internal/texttool"
)

type Message struct {
	Type     string          `json:"type"`
	CanvasID string          `json:"canvasId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Gestures, client to server
	TypeDragStart    = "drag.start"
	TypeDragContinue = "drag.continue"
	TypeDragEnd      = "drag.end"
	TypeDragCancel   = "drag.cancel"
	TypeSelect       = "select"
	TypeUndo         = "history.undo"
	TypeRedo         = "history.redo"

	// Gestures, server to client
	TypeDragStarted  = "drag.started"
	TypeShapePreview = "shape.preview"
	TypeOpBroadcast  = "op.broadcast"
)

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

type DocSyncPayload struct {
	Document document.Document `json:"document"`
	CanUndo  bool              `json:"canUndo"`
	CanRedo  bool              `json:"canRedo"`
}

// PointerPayload carries a pointer sample in canvas coordinates. Velocity is
// only meaningful for drag.continue.
type PointerPayload struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx,omitempty"`
	VY float64 `json:"vy,omitempty"`
}

type DragStartedPayload struct {
	Kind    string `json:"kind"`
	ShapeID string `json:"shapeId"`
}

type SelectPayload struct {
	ShapeID string `json:"shapeId"`
}

// ShapePreviewPayload is an uncommitted shape state from a gesture in
// progress, or a relayout after one ends.
type ShapePreviewPayload struct {
	Kind   texttool.UpdateKind `json:"kind"`
	Shape  shape.Snapshot      `json:"shape"`
	Buffer bool                `json:"buffer,omitempty"`
}

type OpBroadcastPayload struct {
	Kind      opstack.EventKind `json:"kind"`
	Record    opstack.Record    `json:"record"`
	Shape     shape.Snapshot    `json:"shape"`
	UserID    string            `json:"userId"`
	ServerSeq int64             `json:"serverSeq"`
	CanUndo   bool              `json:"canUndo"`
	CanRedo   bool              `json:"canRedo"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(msgType string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: msgType, Payload: data}
}
