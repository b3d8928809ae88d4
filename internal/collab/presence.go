package collab

import (
	"log/slog"
	"maps"
)

// PresenceManager tracks cursors and selections per user. It is owned by the
// room goroutine and needs no locking.
type PresenceManager struct {
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.presences[userID] = p
}

// Select records the shape a user is manipulating, keeping their cursor.
func (pm *PresenceManager) Select(userID, displayName, shapeID string) *PresencePayload {
	p, ok := pm.presences[userID]
	if !ok {
		p = &PresencePayload{DisplayName: displayName}
		pm.presences[userID] = p
	}
	p.Selection = nil
	if shapeID != "" {
		p.Selection = []string{shapeID}
	}
	return p
}

func (pm *PresenceManager) Remove(userID string) {
	delete(pm.presences, userID)
}

func (pm *PresenceManager) StateMessage() *Message {
	msg := newMessage(TypePresenceState, PresenceStatePayload{Presences: maps.Clone(pm.presences)})
	if msg.Payload == nil {
		slog.Error("marshal presence state")
		return nil
	}
	return msg
}
