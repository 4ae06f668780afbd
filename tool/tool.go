// Package tool implements the tool-invocation subsystem: the Tool interface,
// a registry of the globally initialized tool set, substring-based selection
// of an agent's allowed tools, toolkit label resolution and the invoker
// collaborator the graph's tool node calls. Tools that need external
// authorization signal it with AuthorizationRequiredError, which suspends the
// turn instead of failing it.
package tool

import (
	"context"
	"fmt"
)

// Tool defines a structured capability an agent can invoke. Implementations
// should be safe for concurrent use; one registry serves all sessions.
type Tool interface {
	// Name returns the unique identifier for this tool, conventionally
	// toolkit-prefixed snake_case (e.g. "jira_create_issue").
	Name() string

	// Description is provided to the model to guide tool selection.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. userID is the caller identity on whose behalf
	// the invocation runs; tools requiring authorization for that identity
	// return *AuthorizationRequiredError.
	Call(ctx context.Context, args map[string]any, userID string) (string, error)
}

// ToolError represents a generic failure during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// Func adapts a plain function into a Tool.
type Func struct {
	FnName        string
	FnDescription string
	FnParameters  map[string]any
	Fn            func(ctx context.Context, args map[string]any, userID string) (string, error)
}

// Name implements Tool.
func (f *Func) Name() string { return f.FnName }

// Description implements Tool.
func (f *Func) Description() string { return f.FnDescription }

// Parameters implements Tool.
func (f *Func) Parameters() map[string]any {
	if f.FnParameters == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return f.FnParameters
}

// Call implements Tool.
func (f *Func) Call(ctx context.Context, args map[string]any, userID string) (string, error) {
	return f.Fn(ctx, args, userID)
}
