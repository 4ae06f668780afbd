package graph

import (
	"fmt"
	"strings"

	"github.com/ArcadeAI/agentgraph/agent"
	"github.com/ArcadeAI/agentgraph/config"
	"github.com/ArcadeAI/agentgraph/logging"
	"github.com/ArcadeAI/agentgraph/tool"
)

// SingleAgentNodeID names the sole worker node in single-agent topology.
const SingleAgentNodeID = "agent"

// Builder compiles an agent registry plus routing configuration into one of
// three topologies: single-agent, flat supervisor/workers, or hierarchical
// supervisor/department-supervisors/workers.
type Builder struct {
	cfg     *config.Config
	agents  *agent.Registry
	invoker tool.Invoker
	userID  string
	logger  logging.Logger
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// Invoker is the tool-invocation collaborator bound into tool nodes.
	Invoker tool.Invoker

	// UserID is the caller identity forwarded to tool invocations.
	UserID string

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// NewBuilder constructs a Builder over a config and its bound agents.
func NewBuilder(cfg *config.Config, agents *agent.Registry, optFns ...func(o *BuilderOptions)) *Builder {
	opts := BuilderOptions{
		UserID: config.DefaultUserID,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{
		cfg:     cfg,
		agents:  agents,
		invoker: opts.Invoker,
		userID:  opts.UserID,
		logger:  opts.Logger,
	}
}

// Build selects the topology and compiles the graph. A missing or unknown
// routing supervisor degrades to single-agent topology; it is not fatal.
func (b *Builder) Build() (*Graph, error) {
	if b.agents.Len() == 0 {
		return nil, fmt.Errorf("no agents to build a graph from")
	}

	supervisorID := b.cfg.Routing.Supervisor
	if _, ok := b.agents.Get(supervisorID); supervisorID == "" || !ok {
		if supervisorID != "" {
			b.logger.Warn("routing supervisor not found, using single-agent topology", "supervisor", supervisorID)
		}
		return b.buildSingleAgent()
	}

	supervisors := agent.Supervisors(b.cfg)
	if len(supervisors) > 1 {
		return b.buildHierarchical(supervisorID, supervisors)
	}
	return b.buildFlat(supervisorID, b.workerIDs(supervisorID), b.agents.HasAnyTools())
}

// hasToolNode decides whether a graph needs a tool node.
func (b *Builder) hasToolNode() bool { return b.agents.HasAnyTools() && b.invoker != nil }

// buildSingleAgent compiles the degenerate topology: one worker node,
// optionally a tool node looping back to it.
func (b *Builder) buildSingleAgent() (*Graph, error) {
	first := b.cfg.AgentIDs()[0]
	a, ok := b.agents.Get(first)
	if !ok {
		return nil, fmt.Errorf("agent %q not bound", first)
	}

	g := New()
	g.AddNode(&AgentNode{ID: SingleAgentNodeID, Step: a.Step})
	g.SetEntry(SingleAgentNodeID)

	if b.hasToolNode() {
		g.AddNode(&ToolNode{ID: ToolNodeID, Invoker: b.invoker, UserID: b.userID})
		g.AddBranch(SingleAgentNodeID, SingleAgentContinue(), map[string]string{
			ToolNodeID: ToolNodeID,
			End:        End,
		})
		g.AddEdge(ToolNodeID, SingleAgentNodeID)
	} else {
		g.AddEdge(SingleAgentNodeID, End)
	}
	return g, g.Validate()
}

// buildFlat compiles the flat supervisor/workers topology for the given
// scope. Also used per department when building hierarchically.
func (b *Builder) buildFlat(supervisorID string, workerIDs []string, withTools bool) (*Graph, error) {
	g := New()
	sup, ok := b.agents.Get(supervisorID)
	if !ok {
		return nil, fmt.Errorf("supervisor %q not bound", supervisorID)
	}
	g.AddNode(&AgentNode{ID: supervisorID, Step: sup.Step})
	for _, id := range workerIDs {
		a, ok := b.agents.Get(id)
		if !ok {
			return nil, fmt.Errorf("agent %q not bound", id)
		}
		g.AddNode(&AgentNode{ID: id, Step: a.Step})
	}
	withTools = withTools && b.invoker != nil
	if withTools {
		g.AddNode(&ToolNode{ID: ToolNodeID, Invoker: b.invoker, UserID: b.userID})
	}
	g.SetEntry(supervisorID)

	targets := map[string]string{End: End}
	for _, id := range workerIDs {
		targets[id] = id
	}
	g.AddBranch(supervisorID, RouteByContent(workerIDs), targets)

	for _, id := range workerIDs {
		if withTools {
			g.AddBranch(id, WorkerContinue(supervisorID), map[string]string{
				ToolNodeID:   ToolNodeID,
				supervisorID: supervisorID,
			})
		} else {
			g.AddEdge(id, supervisorID)
		}
	}
	if withTools {
		g.AddEdge(ToolNodeID, supervisorID)
	}
	return g, g.Validate()
}

// buildHierarchical compiles the two-level topology: the configured
// supervisor is the root; every other supervisor becomes a department. A
// department owning at least one worker compiles to an opaque subgraph, one
// owning none degrades to a plain agent node.
func (b *Builder) buildHierarchical(rootID string, supervisors map[string]bool) (*Graph, error) {
	g := New()
	root, _ := b.agents.Get(rootID)
	g.AddNode(&AgentNode{ID: rootID, Step: root.Step})

	var departments []string
	for _, id := range b.cfg.AgentIDs() {
		if id != rootID && supervisors[id] {
			departments = append(departments, id)
		}
	}

	for _, deptID := range departments {
		workers := b.departmentWorkers(deptID, supervisors)
		if len(workers) > 0 {
			sub, err := b.buildFlat(deptID, workers, b.agents.HasAnyTools())
			if err != nil {
				return nil, fmt.Errorf("department %q: %w", deptID, err)
			}
			g.AddNode(&SubgraphNode{ID: deptID, Graph: sub})
		} else {
			a, _ := b.agents.Get(deptID)
			g.AddNode(&AgentNode{ID: deptID, Step: a.Step})
		}
	}

	g.SetEntry(rootID)
	targets := map[string]string{End: End}
	for _, id := range departments {
		targets[id] = id
	}
	g.AddBranch(rootID, RouteByContent(departments), targets)
	for _, id := range departments {
		g.AddEdge(id, rootID)
	}
	return g, g.Validate()
}

// departmentWorkers finds the non-supervisor agents a department supervisor
// owns: those whose id appears as a substring of the department supervisor's
// instruction text, in configuration order.
func (b *Builder) departmentWorkers(deptID string, supervisors map[string]bool) []string {
	instructions := strings.ToLower(b.cfg.Agents[deptID].Instructions)
	var workers []string
	for _, id := range b.cfg.AgentIDs() {
		if id == deptID || supervisors[id] {
			continue
		}
		if strings.Contains(instructions, strings.ToLower(id)) {
			workers = append(workers, id)
		}
	}
	return workers
}

// workerIDs lists every agent except the supervisor, in configuration order.
func (b *Builder) workerIDs(supervisorID string) []string {
	var out []string
	for _, id := range b.cfg.AgentIDs() {
		if id != supervisorID {
			out = append(out, id)
		}
	}
	return out
}
