package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType categorizes side-channel events published during a turn.
type EventType string

// Side-channel event types. Subscribers (e.g. a live WebSocket connection)
// receive these as tool activity happens, ahead of the final turn result.
const (
	EventToolCall     EventType = "tool_call"
	EventToolResponse EventType = "tool_response"
)

// Event is a best-effort notification mirroring a tool-call record to live
// subscribers. Delivery is never allowed to block or fail a turn.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Record    ToolCallRecord `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent wraps a record snapshot in a typed event.
func NewEvent(typ EventType, rec ToolCallRecord) Event {
	return Event{
		ID:        NewID(),
		Type:      typ,
		Record:    rec,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a unique identifier for events and tool calls.
func NewID() string { return uuid.NewString() }
