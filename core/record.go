package core

import "time"

// ToolCallRecord tracks one tool invocation from request to response for
// user-facing reporting. Records are created when an assistant message
// carries a tool-call request and completed when a matching tool-node message
// arrives; matching is most-recent-unanswered-first by content order.
type ToolCallRecord struct {
	Node              string         `json:"node"`
	Toolkit           string         `json:"toolkit"`
	ToolName          string         `json:"tool_name"`
	CallID            string         `json:"call_id"`
	Args              map[string]any `json:"args"`
	Timestamp         time.Time      `json:"timestamp"`
	Response          string         `json:"response,omitempty"`
	ResponseTimestamp *time.Time     `json:"response_timestamp,omitempty"`
}

// Answered reports whether a response has been recorded for this call.
func (r *ToolCallRecord) Answered() bool { return r.ResponseTimestamp != nil }
