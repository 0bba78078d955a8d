package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of event in the queue
type EventType string

const (
	// EventTypeStoryletResolved is published after a choice has been applied to a world
	EventTypeStoryletResolved EventType = "storylet_resolved"
)

// Event is the envelope pushed onto a world's resolved-event list
type Event struct {
	EventID    string          `json:"event_id"`
	Type       EventType       `json:"type"`
	WorldID    uuid.UUID       `json:"world_id"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewEvent wraps payload in an envelope with a fresh event ID
func NewEvent(t EventType, worldID uuid.UUID, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &Event{
		EventID:    uuid.New().String(),
		Type:       t,
		WorldID:    worldID,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// ToJSON converts the event to JSON bytes for Redis
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event from JSON bytes
func FromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
