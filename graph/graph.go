// Package graph models an agent workflow as an explicit directed graph:
// agent nodes bound to step functions, a shared tool-invocation node,
// opaque subgraph nodes wrapping compiled department graphs, and edges that
// are either unconditional or conditional on a pure routing function over
// the latest message. Graphs are built once per configuration change and
// interpreted step-by-step by the engine package.
package graph

import (
	"context"
	"fmt"

	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/tool"
)

// End is the reserved routing label and edge target for termination.
const End = "END"

// ToolNodeID names the shared tool-invocation node within a graph.
const ToolNodeID = "tools"

// Node is a tagged variant: AgentNode, ToolNode or SubgraphNode. The closed
// set lets the engine interpret nodes by type switch.
type Node interface {
	NodeID() string
	isNode()
}

// AgentNode invokes one agent's bound step function.
type AgentNode struct {
	ID   string
	Step core.StepFunc
}

// NodeID implements Node.
func (n *AgentNode) NodeID() string { return n.ID }

func (*AgentNode) isNode() {}

// ToolNode executes the tool-call requests carried by the latest assistant
// message through the tool-invocation collaborator, on behalf of UserID.
type ToolNode struct {
	ID      string
	Invoker tool.Invoker
	UserID  string
}

// NodeID implements Node.
func (n *ToolNode) NodeID() string { return n.ID }

func (*ToolNode) isNode() {}

// Run invokes every tool call of the latest message in order, producing one
// tool message per call. Messages for calls completed before a failing or
// interrupting call are returned alongside the error.
func (n *ToolNode) Run(ctx context.Context, st *core.ConversationState) ([]core.Message, error) {
	last, ok := st.LastMessage()
	if !ok || !last.HasToolCalls() {
		return nil, nil
	}
	var msgs []core.Message
	for _, tc := range last.ToolCalls {
		result, err := n.Invoker.Invoke(ctx, tc.Name, tc.Arguments, n.UserID)
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, core.NewToolMessage(tc.ID, result))
	}
	return msgs, nil
}

// SubgraphNode wraps a fully compiled department graph. The parent graph
// invokes it exactly like an agent node; its internal routing is invisible
// to, and never collides with, the parent's node identifiers.
type SubgraphNode struct {
	ID    string
	Graph *Graph
}

// NodeID implements Node.
func (n *SubgraphNode) NodeID() string { return n.ID }

func (*SubgraphNode) isNode() {}

// RouteFunc is a pure, deterministic routing function over the current
// conversation state's last message. It returns a label from the node's
// route table, or End.
type RouteFunc func(st *core.ConversationState) string

// Branch is a conditional edge: a routing function plus an exhaustive label
// to target table.
type Branch struct {
	Route   RouteFunc
	Targets map[string]string
}

// Graph is a compiled workflow: nodes plus, per node, exactly one
// unconditional edge or exactly one conditional branch.
type Graph struct {
	entry    string
	nodes    map[string]Node
	order    []string
	edges    map[string]string
	branches map[string]*Branch
}

// New constructs an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    map[string]Node{},
		edges:    map[string]string{},
		branches: map[string]*Branch{},
	}
}

// AddNode registers a node.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.nodes[n.NodeID()]; !ok {
		g.order = append(g.order, n.NodeID())
	}
	g.nodes[n.NodeID()] = n
}

// SetEntry names the node execution starts from.
func (g *Graph) SetEntry(id string) { g.entry = id }

// Entry returns the entry node id.
func (g *Graph) Entry() string { return g.entry }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// AddEdge sets the unconditional successor of a node.
func (g *Graph) AddEdge(from, to string) { g.edges[from] = to }

// AddBranch sets the conditional successor table of a node.
func (g *Graph) AddBranch(from string, route RouteFunc, targets map[string]string) {
	g.branches[from] = &Branch{Route: route, Targets: targets}
}

// Next resolves the successor of a node against the current state. A routing
// label absent from the branch's target table forces termination rather than
// looping (fail-open).
func (g *Graph) Next(from string, st *core.ConversationState) string {
	if b, ok := g.branches[from]; ok {
		label := b.Route(st)
		if label == End {
			return End
		}
		if target, ok := b.Targets[label]; ok {
			return target
		}
		return End
	}
	if to, ok := g.edges[from]; ok {
		return to
	}
	return End
}

// Validate checks structural invariants: the entry exists, every node has
// exactly one outgoing edge or branch, and all targets name known nodes or
// End.
func (g *Graph) Validate() error {
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("graph entry %q is not a node", g.entry)
	}
	for id := range g.nodes {
		_, hasEdge := g.edges[id]
		_, hasBranch := g.branches[id]
		if hasEdge == hasBranch {
			return fmt.Errorf("node %q must have exactly one unconditional edge or one branch", id)
		}
	}
	check := func(target string) error {
		if target == End {
			return nil
		}
		if _, ok := g.nodes[target]; !ok {
			return fmt.Errorf("edge target %q is not a node", target)
		}
		return nil
	}
	for _, to := range g.edges {
		if err := check(to); err != nil {
			return err
		}
	}
	for _, b := range g.branches {
		for _, to := range b.Targets {
			if err := check(to); err != nil {
				return err
			}
		}
	}
	return nil
}
