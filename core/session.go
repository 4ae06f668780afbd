package core

import (
	"fmt"
	"sync"
	"time"
)

// ChatMessage is one committed entry in a session's conversation log.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PendingAuthorization records a turn suspended on external authorization.
// UserText is replayed verbatim by Resume once authorization is believed
// complete.
type PendingAuthorization struct {
	UserText  string    `json:"user_text"`
	URL       string    `json:"url"`
	Requested time.Time `json:"requested"`
}

// Session is the per-identity conversation container: the committed chat log
// plus an optional pending-authorization marker. All methods are safe for
// concurrent use; whole turns additionally serialize through Lock/Unlock so
// no two graph executions interleave on the same session.
type Session struct {
	ID      string
	Created time.Time
	Updated time.Time

	mu       sync.RWMutex
	messages []ChatMessage
	pending  *PendingAuthorization

	turnMu sync.Mutex
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, Created: now, Updated: now}
}

// Lock acquires the session's exclusive turn section. Exactly one turn runs
// per session at a time; other sessions proceed in parallel.
func (s *Session) Lock() { s.turnMu.Lock() }

// Unlock releases the exclusive turn section.
func (s *Session) Unlock() { s.turnMu.Unlock() }

// Append commits a message to the conversation log.
func (s *Session) Append(role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, ChatMessage{Role: role, Content: content, Timestamp: time.Now().UTC()})
	s.Updated = time.Now().UTC()
}

// Messages returns a defensive copy of the committed log.
func (s *Session) Messages() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear discards the conversation log and any pending authorization.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.pending = nil
	s.Updated = time.Now().UTC()
}

// TranscriptLines renders the committed log as "User: ..."/"Assistant: ..."
// lines, the form consumed during initial state construction.
func (s *Session) TranscriptLines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]string, 0, len(s.messages))
	for _, m := range s.messages {
		switch m.Role {
		case RoleUser:
			lines = append(lines, fmt.Sprintf("User: %s", m.Content))
		case RoleAssistant:
			lines = append(lines, fmt.Sprintf("Assistant: %s", m.Content))
		}
	}
	return lines
}

// SetPending marks the session as suspended on authorization.
func (s *Session) SetPending(userText, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &PendingAuthorization{UserText: userText, URL: url, Requested: time.Now().UTC()}
	s.Updated = time.Now().UTC()
}

// Pending returns the pending authorization, if any.
func (s *Session) Pending() *PendingAuthorization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending == nil {
		return nil
	}
	p := *s.pending
	return &p
}

// ClearPending removes the pending-authorization marker and returns the
// previous value, if any.
func (s *Session) ClearPending() *PendingAuthorization {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = nil
	return p
}
