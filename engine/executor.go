package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/graph"
	"github.com/ArcadeAI/agentgraph/logging"
	"github.com/ArcadeAI/agentgraph/tool"
)

// DefaultMaxSteps bounds graph execution when no ceiling is configured.
const DefaultMaxSteps = 10

// errInterrupted terminates the step loop (including enclosing subgraph
// frames) after an authorization interrupt has been sunk. Never escapes
// Execute.
var errInterrupted = errors.New("execution interrupted")

// Interrupt is the payload of a tool-node authorization condition. AuthURL is
// set when the payload carries a URL the caller can visit to authorize.
type Interrupt struct {
	Value   string
	AuthURL string
}

// StepEvent describes the outcome of one executed node: the messages it
// appended, or the interrupt it raised.
type StepEvent struct {
	Node       string
	IsToolNode bool
	Messages   []core.Message
	Interrupt  *Interrupt
}

// Executor interprets a compiled graph step by step. Exactly one node runs
// per step; no two nodes of the same execution ever run concurrently,
// because each routing decision depends on the previous node's output.
type Executor struct {
	maxSteps int
	logger   logging.Logger
}

// NewExecutor constructs an Executor. maxSteps <= 0 uses DefaultMaxSteps.
func NewExecutor(maxSteps int, logger logging.Logger) *Executor {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Executor{maxSteps: maxSteps, logger: logger}
}

// Execute drives the graph from its entry until the END label, the step
// ceiling, an interrupt or a failure. Every executed step is reported to
// sink in order. Returns core.ErrRoutingExhausted when the ceiling is hit;
// an interrupt ends the turn without error (the sink has already seen it).
func (ex *Executor) Execute(ctx context.Context, g *graph.Graph, st *core.ConversationState, sink func(StepEvent)) error {
	steps := 0
	err := ex.run(ctx, g, st, sink, &steps)
	if errors.Is(err, errInterrupted) {
		return nil
	}
	return err
}

// run executes one graph frame. Subgraphs share the step counter with their
// parent so the ceiling bounds total node invocations across nesting.
func (ex *Executor) run(ctx context.Context, g *graph.Graph, st *core.ConversationState, sink func(StepEvent), steps *int) error {
	current := g.Entry()
	for current != graph.End {
		if err := ctx.Err(); err != nil {
			return err
		}
		*steps++
		if *steps > ex.maxSteps {
			return core.ErrRoutingExhausted
		}

		node, ok := g.Node(current)
		if !ok {
			return fmt.Errorf("graph references unknown node %q", current)
		}

		switch n := node.(type) {
		case *graph.AgentNode:
			msgs, err := n.Step(ctx, st)
			if err != nil {
				return fmt.Errorf("node %q: %w", current, err)
			}
			st.Append(msgs...)
			sink(StepEvent{Node: current, Messages: msgs})
			ex.logger.Debug("agent step completed", "node", current, "messages", len(msgs))

		case *graph.ToolNode:
			msgs, err := n.Run(ctx, st)
			st.Append(msgs...)
			if len(msgs) > 0 {
				sink(StepEvent{Node: current, IsToolNode: true, Messages: msgs})
			}
			if err != nil {
				var authErr *tool.AuthorizationRequiredError
				if errors.As(err, &authErr) {
					sink(StepEvent{Node: current, Interrupt: newInterrupt(authErr)})
					return errInterrupted
				}
				return fmt.Errorf("node %q: %w", current, err)
			}

		case *graph.SubgraphNode:
			ex.logger.Debug("entering department subgraph", "node", current)
			if err := ex.run(ctx, n.Graph, st, sink, steps); err != nil {
				return err
			}

		default:
			return fmt.Errorf("node %q has unsupported type %T", current, node)
		}

		current = g.Next(current, st)
	}
	return nil
}

// newInterrupt classifies the interrupt payload: anything containing "http"
// is treated as an authorization URL.
func newInterrupt(err *tool.AuthorizationRequiredError) *Interrupt {
	value := err.Interrupt()
	intr := &Interrupt{Value: value}
	if strings.Contains(value, "http") {
		intr.AuthURL = value
	}
	return intr
}
