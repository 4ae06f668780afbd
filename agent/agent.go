// Package agent turns configuration into executable agents: each agent binds
// a system prompt (with {{date}} resolved at creation time), a model handle
// and the subset of the global tool set its selectors allow, exposing a
// single step function the graph invokes. The package also classifies which
// configured agents act as routing supervisors.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ArcadeAI/agentgraph/config"
	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/logging"
	"github.com/ArcadeAI/agentgraph/model"
	"github.com/ArcadeAI/agentgraph/tool"
)

// datePlaceholder in instruction templates is replaced with the current date
// when the agent is created.
const datePlaceholder = "{{date}}"

// Agent is one configured agent bound and ready for graph execution.
// Immutable after creation.
type Agent struct {
	ID          string
	Config      config.AgentConfig
	Tools       []tool.Tool
	Definitions []model.ToolDefinition
	Step        core.StepFunc
}

// HasTools reports whether any tools were selected for this agent.
func (a *Agent) HasTools() bool { return len(a.Tools) > 0 }

// ModelResolver creates a model handle for an agent definition. Injected so
// this package stays independent of concrete provider adapters.
type ModelResolver func(id string, cfg config.AgentConfig) (model.Model, error)

// Factory creates agents from configuration.
type Factory struct {
	registry *tool.Registry
	resolve  ModelResolver
	logger   logging.Logger
	now      func() time.Time
}

// FactoryOptions configures a Factory.
type FactoryOptions struct {
	// Registry is the globally initialized tool set. Nil means no tools.
	Registry *tool.Registry

	// Logger defaults to NoOpLogger.
	Logger logging.Logger

	// Now overrides the clock used for {{date}} resolution. Tests only.
	Now func() time.Time
}

// NewFactory constructs a Factory with the given model resolver.
func NewFactory(resolve ModelResolver, optFns ...func(o *FactoryOptions)) *Factory {
	opts := FactoryOptions{
		Registry: tool.NewRegistry(),
		Logger:   logging.NoOpLogger{},
		Now:      time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Factory{
		registry: opts.Registry,
		resolve:  resolve,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// Create binds one agent: resolves the instruction template, selects tools
// and wraps the model call in a step function.
func (f *Factory) Create(id string, cfg config.AgentConfig) (*Agent, error) {
	mdl, err := f.resolve(id, cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent %q: %w", id, err)
	}

	instructions := strings.ReplaceAll(cfg.Instructions, datePlaceholder, f.now().Format("2006-01-02"))
	tools := f.selectTools(cfg.Tools)
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}

	agent := &Agent{ID: id, Config: cfg, Tools: tools, Definitions: defs}
	agent.Step = func(ctx context.Context, st *core.ConversationState) ([]core.Message, error) {
		resp, err := mdl.Generate(ctx, model.Request{
			Instructions: instructions,
			Messages:     st.Messages,
			Tools:        defs,
			Temperature:  cfg.TemperatureOrDefault(),
		})
		if err != nil {
			return nil, fmt.Errorf("agent %q model call: %w", id, err)
		}
		return []core.Message{resp.Message}, nil
	}

	f.logger.Debug("agent created", "agent", id, "provider", cfg.Provider, "tools", len(tools))
	return agent, nil
}

// selectTools filters the global tool set down to the agent's allowed tools.
// A bare toolkit selector matches any tool containing the toolkit substring;
// a (toolkit, tools) selector requires both substrings. Duplicates across
// selectors collapse, first match position wins.
func (f *Factory) selectTools(selectors []config.ToolSelector) []tool.Tool {
	if f.registry == nil || f.registry.Len() == 0 || len(selectors) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []tool.Tool
	add := func(tools []tool.Tool) {
		for _, t := range tools {
			if !seen[t.Name()] {
				seen[t.Name()] = true
				out = append(out, t)
			}
		}
	}
	for _, sel := range selectors {
		if len(sel.Tools) == 0 {
			add(f.registry.MatchToolkit(sel.Toolkit))
			continue
		}
		for _, name := range sel.Tools {
			add(f.registry.MatchTool(sel.Toolkit, name))
		}
	}
	return out
}
