package stream

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Category classifies an event and drives the default visibility rules of the
// topic filter.
type Category string

const (
	// CategoryData marks regular payload-carrying events.
	CategoryData Category = "data"
	// CategoryHeartbeat marks liveness events emitted on a fixed interval.
	CategoryHeartbeat Category = "heartbeat"
	// CategorySystem marks operational events such as shutdown notices.
	CategorySystem Category = "system"
)

// TopicKey is the payload field consulted when deriving an event's effective
// topic for filtering.
const TopicKey = "type"

// Event is a single unit of streamed data. Events are immutable once
// constructed; their order is defined solely by the order they are passed to
// Hub.Broadcast. The Timestamp is informational and never used for ordering.
//
// The ID doubles as the resume token: reconnecting clients present the ID of
// the last event they processed and receive the retained suffix after it.
// IDs must be unique within the history retention window.
type Event struct {
	ID        string         `json:"id"`
	Category  Category       `json:"category"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent builds an event with a generated unique ID and the current time.
// The payload is cloned so later mutations by the caller cannot leak into the
// history buffer or session queues.
func NewEvent(category Category, payload map[string]any) Event {
	return Event{
		ID:        uuid.New().String(),
		Category:  category,
		Payload:   maps.Clone(payload),
		Timestamp: time.Now(),
	}
}

// Topic returns the effective topic the filter matches against: heartbeat
// events always map to "heartbeat"; other events use the payload's "type"
// discriminator when it is a non-empty string, falling back to the category
// name.
func (e Event) Topic() string {
	if e.Category == CategoryHeartbeat {
		return string(CategoryHeartbeat)
	}
	if t, ok := e.Payload[TopicKey].(string); ok && t != "" {
		return t
	}
	return string(e.Category)
}
