// Package events publishes lead lifecycle events to Redis Streams for
// downstream consumers.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the lifecycle event.
type EventType string

const (
	EventSearchCompleted     EventType = "search.completed"
	EventLeadSaved           EventType = "lead.saved"
	EventLeadContacted       EventType = "lead.contacted"
	EventSubscriptionChanged EventType = "subscription.changed"
)

// Event is the envelope published to the stream.
type Event struct {
	EventID   uuid.UUID      `json:"event_id"`
	EventType EventType      `json:"event_type"`
	UserID    string         `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}
