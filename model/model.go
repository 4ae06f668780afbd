// Package model defines the language-model collaborator contract: given a
// system prompt, an ordered message history and an optional tool schema set,
// a Model returns one assistant message that may carry tool-call requests.
// Provider adapters live in the openai and anthropic subpackages.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/ArcadeAI/agentgraph/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Temperature  float64          `json:"temperature,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the single assistant reply to a Request.
type Response struct {
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"`
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Replies are
// keyed by a substring of the latest message content; unmatched input yields
// the fallback reply.
type MockModel struct {
	info     Info
	replies  []mockReply
	fallback core.Message
	calls    int
}

type mockReply struct {
	match string
	msg   core.Message
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:     Info{Name: name, Provider: provider, SupportsTools: true},
		fallback: core.NewAssistantMessage(""),
	}
}

// AddReply registers a canned assistant message returned when the latest
// request message contains match.
func (m *MockModel) AddReply(match string, msg core.Message) {
	m.replies = append(m.replies, mockReply{match: match, msg: msg})
}

// SetFallback sets the reply for unmatched input.
func (m *MockModel) SetFallback(msg core.Message) { m.fallback = msg }

// Calls reports how many times Generate ran.
func (m *MockModel) Calls() int { return m.calls }

// Generate implements Model.
func (m *MockModel) Generate(_ context.Context, req Request) (*Response, error) {
	m.calls++
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1]
	for _, r := range m.replies {
		if strings.Contains(last.Content, r.match) {
			return &Response{Message: r.msg, FinishReason: "stop"}, nil
		}
	}
	return &Response{Message: m.fallback, FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
