// Package agentgraph provides a high-level façade over configuration loading,
// agent construction, graph compilation and turn execution. Most applications
// interact with this package by:
//  1. Loading a config.Config describing the agents and routing
//  2. Creating a System via New() (optionally supplying tools and a logger)
//  3. Running conversational turns with Run, resuming interrupted turns with
//     Resume, and subscribing to tool-call events via Events
//
// The topology of the compiled graph (single agent, flat supervisor or
// hierarchical departments) is derived entirely from the configuration.
package agentgraph

import (
	"context"
	"fmt"

	"github.com/ArcadeAI/agentgraph/agent"
	"github.com/ArcadeAI/agentgraph/config"
	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/engine"
	"github.com/ArcadeAI/agentgraph/graph"
	"github.com/ArcadeAI/agentgraph/logging"
	"github.com/ArcadeAI/agentgraph/model"
	"github.com/ArcadeAI/agentgraph/model/anthropic"
	"github.com/ArcadeAI/agentgraph/model/openai"
	"github.com/ArcadeAI/agentgraph/tool"
)

// TurnResult re-exports the engine result type for convenience.
type TurnResult = engine.TurnResult

// Options configures the System instance.
type Options struct {
	// Logger defaults to a no-op logger if nil.
	Logger logging.Logger

	// ModelResolver maps an agent configuration to a model client. Defaults
	// to DefaultModelResolver, which selects a provider adapter by name.
	ModelResolver agent.ModelResolver

	// ToolRegistry holds the tools agents may select. Nil means no tools.
	ToolRegistry *tool.Registry

	// Invoker executes tool calls. Defaults to a registry-backed invoker
	// when a ToolRegistry is provided.
	Invoker tool.Invoker

	// UserID is forwarded to tool invocations for per-user authorization.
	// Defaults to the AGENTGRAPH_USER_ID environment variable.
	UserID string

	// EventBufferSize sets the per-subscriber event channel buffer.
	EventBufferSize int
}

// System aggregates the compiled graph and its execution machinery.
type System struct {
	cfg     *config.Config
	agents  *agent.Registry
	graph   *graph.Graph
	runner  *engine.Runner
	emitter *engine.Emitter
	logger  logging.Logger
}

// New compiles a System from the given configuration. Defaults are applied
// to the configuration before agents are built.
func New(cfg *config.Config, optFns ...func(o *Options)) (*System, error) {
	opts := Options{
		ModelResolver:   DefaultModelResolver,
		UserID:          config.UserID(),
		EventBufferSize: engine.DefaultEventBuffer,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if opts.Invoker == nil && opts.ToolRegistry != nil {
		opts.Invoker = tool.NewRegistryInvoker(opts.ToolRegistry, logger)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	factory := agent.NewFactory(opts.ModelResolver, func(o *agent.FactoryOptions) {
		o.Registry = opts.ToolRegistry
		o.Logger = logger
	})
	agents := agent.NewRegistry()
	for _, id := range cfg.AgentIDs() {
		a, err := factory.Create(id, cfg.Agents[id])
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", id, err)
		}
		agents.Add(a)
	}

	builder := graph.NewBuilder(cfg, agents, func(o *graph.BuilderOptions) {
		o.Invoker = opts.Invoker
		o.UserID = opts.UserID
		o.Logger = logger
	})
	g, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	emitter := engine.NewEmitter(opts.EventBufferSize, logger)
	runner := engine.NewRunner(g, func(o *engine.RunnerOptions) {
		o.MaxSteps = cfg.Routing.MaxIterations
		o.Emitter = emitter
		o.Logger = logger
	})

	return &System{
		cfg:     cfg,
		agents:  agents,
		graph:   g,
		runner:  runner,
		emitter: emitter,
		logger:  logger,
	}, nil
}

// AgentIDs returns the configured agent identifiers in configuration order.
func (s *System) AgentIDs() []string { return s.cfg.AgentIDs() }

// Graph exposes the compiled graph, primarily for inspection and tests.
func (s *System) Graph() *graph.Graph { return s.graph }

// Run executes one conversational turn. Execution failures are folded into
// the result as a single error response so callers always get something to
// display; the session history is untouched in that case.
func (s *System) Run(ctx context.Context, sess *core.Session, userText string) *engine.TurnResult {
	result, err := s.runner.Run(ctx, sess, userText)
	if err != nil {
		return &engine.TurnResult{Responses: []string{"Error: " + err.Error()}}
	}
	return result
}

// Resume replays the turn parked behind an authorization interrupt. It
// returns an error only when the session has nothing pending.
func (s *System) Resume(ctx context.Context, sess *core.Session) (*engine.TurnResult, error) {
	return s.runner.Resume(ctx, sess)
}

// Events returns a channel of tool-call events plus a cancel function. The
// channel delivery is best effort; slow consumers drop events rather than
// stalling turn execution.
func (s *System) Events() (<-chan core.Event, func()) {
	return s.emitter.Subscribe()
}

// DefaultModelResolver builds a model client from the agent configuration.
// "openai" and "anthropic" map to their native adapters; any other provider
// is treated as an OpenAI-compatible endpoint reached via BaseURL.
func DefaultModelResolver(id string, cfg config.AgentConfig) (model.Model, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.TemperatureOrDefault()
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
		}), nil
	case "openai", "":
		return newOpenAIModel(cfg), nil
	default:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("provider %q requires a base_url", cfg.Provider)
		}
		return newOpenAIModel(cfg), nil
	}
}

func newOpenAIModel(cfg config.AgentConfig) model.Model {
	return openai.NewModel(func(o *openai.Options) {
		if cfg.Model != "" {
			o.Model = cfg.Model
		}
		o.Temperature = cfg.TemperatureOrDefault()
		o.BaseURL = cfg.BaseURL
		if cfg.APIKey != "" {
			o.APIKey = cfg.APIKey
		}
	})
}
