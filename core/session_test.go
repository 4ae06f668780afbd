package core

import "testing"

func TestSession_AppendAndMessagesCopy(t *testing.T) {
	s := NewSession("s1")
	s.Append(RoleUser, "hi")
	s.Append(RoleAssistant, "hello")

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	msgs[0].Content = "changed"
	if s.Messages()[0].Content != "hi" {
		t.Error("Messages should return a copy")
	}
}

func TestSession_TranscriptLines(t *testing.T) {
	s := NewSession("s2")
	s.Append(RoleUser, "what is my balance")
	s.Append(RoleAssistant, "your balance is 42")
	s.Append(RoleTool, "should not appear")

	lines := s.TranscriptLines()
	if len(lines) != 2 {
		t.Fatalf("tool messages must not render, got %v", lines)
	}
	if lines[0] != "User: what is my balance" {
		t.Errorf("unexpected user line %q", lines[0])
	}
	if lines[1] != "Assistant: your balance is 42" {
		t.Errorf("unexpected assistant line %q", lines[1])
	}
}

func TestSession_PendingLifecycle(t *testing.T) {
	s := NewSession("s3")
	if s.Pending() != nil {
		t.Fatal("new session should have nothing pending")
	}
	s.SetPending("send the email", "https://auth.example.com/x")

	p := s.Pending()
	if p == nil || p.UserText != "send the email" {
		t.Fatalf("pending not recorded: %+v", p)
	}

	cleared := s.ClearPending()
	if cleared == nil || cleared.URL != "https://auth.example.com/x" {
		t.Fatalf("ClearPending should return previous value, got %+v", cleared)
	}
	if s.Pending() != nil {
		t.Error("pending should be gone after ClearPending")
	}
	if s.ClearPending() != nil {
		t.Error("second ClearPending should return nil")
	}
}

func TestSession_ClearDropsPending(t *testing.T) {
	s := NewSession("s4")
	s.Append(RoleUser, "hi")
	s.SetPending("hi", "https://auth.example.com/y")
	s.Clear()
	if len(s.Messages()) != 0 || s.Pending() != nil {
		t.Error("Clear should drop messages and pending authorization")
	}
}
