package core

import "context"

// StepFunc is the bound step function of a single agent: it consumes the
// current conversation state and produces the new messages to append (usually
// exactly one assistant message). Bound at agent-creation time with the
// agent's system prompt, model handle and tool schemas.
type StepFunc func(ctx context.Context, st *ConversationState) ([]Message, error)

// ConversationState is the unit of data threaded through every step of a
// graph execution. One instance exists per incoming request; it is mutated
// only by appending messages and is never shared across requests.
type ConversationState struct {
	// Messages is the ordered message sequence for this request, starting
	// with the user's message.
	Messages []Message

	// Transcript holds prior turns as "User: ..."/"Assistant: ..." lines.
	// Used only during initial construction; nodes never read it.
	Transcript []string

	// CompletedSupervisors tracks supervisors that have finished their work.
	// Reserved; always empty in current behavior.
	CompletedSupervisors map[string]string

	// PendingAuthURL is set when a tool interrupt surfaced an authorization
	// URL, suspending the turn.
	PendingAuthURL string
}

// NewConversationState builds the initial state for one request: a single
// user message plus the (already trimmed) prior transcript.
func NewConversationState(userText string, transcript []string) *ConversationState {
	return &ConversationState{
		Messages:             []Message{NewUserMessage(userText)},
		Transcript:           transcript,
		CompletedSupervisors: map[string]string{},
	}
}

// Append adds messages produced by a node step.
func (s *ConversationState) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// LastMessage returns the most recent message, if any.
func (s *ConversationState) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// TrimTranscript bounds a transcript to max lines by keeping the first line
// (the original request context) plus the most recent max-1 lines. Inputs at
// or under the bound are returned unchanged.
func TrimTranscript(lines []string, max int) []string {
	if max <= 0 || len(lines) <= max {
		return lines
	}
	trimmed := make([]string, 0, max)
	trimmed = append(trimmed, lines[0])
	trimmed = append(trimmed, lines[len(lines)-(max-1):]...)
	return trimmed
}
