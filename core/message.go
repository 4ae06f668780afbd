package core

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author class of a Message.
type Role string

// Message roles. RoleSystem never appears in ConversationState; instructions
// travel separately in model requests.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Message is one entry in the ordered conversation threaded through a graph
// execution. Assistant messages may carry tool-call requests; tool messages
// carry the result of a single call identified by ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// HasToolCalls reports whether this message carries at least one tool-call
// request.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// NewUserMessage constructs a user-authored text message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage constructs an assistant text message without tool calls.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// NewToolMessage constructs a tool-result message answering the call with the
// given id.
func NewToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// ToolCall is a single tool-invocation request attached to an assistant
// message. Arguments are the decoded key/value mapping regardless of which
// wire shape the provider used.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"args,omitempty"`
}

// toolCallWire mirrors the two request shapes providers emit: the flattened
// form {id, name, args} and the nested form {id, function: {name, arguments}}
// where arguments may be a JSON object or a JSON-encoded string.
type toolCallWire struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Args     map[string]any  `json:"args"`
	Function *toolCallWireFn `json:"function"`
}

type toolCallWireFn struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// UnmarshalJSON accepts both tool-call wire shapes.
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var w toolCallWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode tool call: %w", err)
	}
	tc.ID = w.ID
	if w.Function != nil {
		tc.Name = w.Function.Name
		tc.Arguments = decodeArguments(w.Function.Arguments)
		return nil
	}
	tc.Name = w.Name
	tc.Arguments = w.Args
	return nil
}

// decodeArguments tolerates both a JSON object and a JSON string holding an
// encoded object. Undecodable payloads yield an empty mapping rather than an
// error; a malformed argument blob must not sink the whole message.
func decodeArguments(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			return obj
		}
	}
	return map[string]any{}
}

// ParseToolCallArguments decodes a provider argument payload (JSON object
// text) into a key/value mapping. Used by model adapters whose SDKs surface
// arguments as raw strings.
func ParseToolCallArguments(raw string) map[string]any {
	return decodeArguments(json.RawMessage(raw))
}
