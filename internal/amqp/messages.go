package amqp

import (
	"encoding/json"
	"time"
)

// Message types carried on the sync queue.
const (
	TypeSync   = "sync"
	TypeDelete = "delete"
)

// EventMessage is a lightweight mutation notice. It carries only the
// entity kind and identifier; the worker fetches the current record from
// storage, so a stale message never overwrites newer data.
type EventMessage struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSyncMessage builds a message announcing a create or update.
func NewSyncMessage(entity, id string) *EventMessage {
	return &EventMessage{
		Type:      TypeSync,
		Entity:    entity,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage builds a message announcing a removal.
func NewDeleteMessage(entity, id string) *EventMessage {
	return &EventMessage{
		Type:      TypeDelete,
		Entity:    entity,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON creates a message from JSON bytes.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
