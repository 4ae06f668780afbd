package tool

import (
	"context"
	"time"

	"github.com/ArcadeAI/agentgraph/logging"
)

// Invoker is the tool-invocation collaborator contract consumed by the graph
// tool node: given a tool identifier, an argument mapping and the caller
// identity, it returns a result message, raises authorization-required, or
// fails.
type Invoker interface {
	Invoke(ctx context.Context, name string, args map[string]any, userID string) (string, error)
}

// RegistryInvoker dispatches invocations against a Registry.
type RegistryInvoker struct {
	registry *Registry
	logger   logging.Logger
}

// NewRegistryInvoker constructs an Invoker over the given registry.
func NewRegistryInvoker(registry *Registry, logger logging.Logger) *RegistryInvoker {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &RegistryInvoker{registry: registry, logger: logger}
}

// Invoke implements Invoker. AuthorizationRequiredError passes through
// untouched so the engine can suspend the turn; other failures are wrapped as
// ToolError.
func (ri *RegistryInvoker) Invoke(ctx context.Context, name string, args map[string]any, userID string) (string, error) {
	t, ok := ri.registry.Get(name)
	if !ok {
		return "", NewToolError(name, "tool not found", "not_found")
	}
	start := time.Now()
	result, err := t.Call(ctx, args, userID)
	if err != nil {
		if _, isAuth := err.(*AuthorizationRequiredError); isAuth {
			ri.logger.Info("tool requires authorization", "tool", name, "user_id", userID)
			return "", err
		}
		ri.logger.Error("tool execution failed", "tool", name, "error", err)
		if _, isToolErr := err.(*ToolError); isToolErr {
			return "", err
		}
		return "", NewToolError(name, err.Error(), "execution_failed")
	}
	ri.logger.Debug("tool execution completed", "tool", name, "duration", time.Since(start))
	return result, nil
}
