package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/graph"
	"github.com/ArcadeAI/agentgraph/tool"
)

func replyStep(text string) core.StepFunc {
	return func(_ context.Context, _ *core.ConversationState) ([]core.Message, error) {
		return []core.Message{core.NewAssistantMessage(text)}, nil
	}
}

type stubInvoker struct {
	results map[string]string
	err     error
}

func (s *stubInvoker) Invoke(_ context.Context, name string, _ map[string]any, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.results[name], nil
}

func collectEvents(t *testing.T) (func(StepEvent), *[]StepEvent) {
	t.Helper()
	var events []StepEvent
	return func(ev StepEvent) { events = append(events, ev) }, &events
}

func TestExecute_SingleAgentRunsToEnd(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "agent", Step: replyStep("hello there, how can I help?")})
	g.SetEntry("agent")
	g.AddEdge("agent", graph.End)
	require.NoError(t, g.Validate())

	sink, events := collectEvents(t)
	st := core.NewConversationState("hi", nil)
	ex := NewExecutor(10, nil)
	require.NoError(t, ex.Execute(context.Background(), g, st, sink))

	require.Len(t, *events, 1)
	assert.Equal(t, "agent", (*events)[0].Node)
	require.Len(t, st.Messages, 2)
	assert.Equal(t, core.RoleAssistant, st.Messages[1].Role)
}

func TestExecute_StepCeilingReturnsRoutingExhausted(t *testing.T) {
	// Two nodes that bounce forever.
	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "a", Step: replyStep("ping")})
	g.AddNode(&graph.AgentNode{ID: "b", Step: replyStep("pong")})
	g.SetEntry("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	require.NoError(t, g.Validate())

	sink, events := collectEvents(t)
	st := core.NewConversationState("hi", nil)
	ex := NewExecutor(5, nil)
	err := ex.Execute(context.Background(), g, st, sink)
	require.ErrorIs(t, err, core.ErrRoutingExhausted)
	assert.Len(t, *events, 5, "exactly maxSteps nodes run before the ceiling binds")
}

func TestExecute_ToolNodeAppendsToolMessages(t *testing.T) {
	inv := &stubInvoker{results: map[string]string{"jira_search": "3 issues"}}

	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "agent", Step: func(_ context.Context, st *core.ConversationState) ([]core.Message, error) {
		if last, _ := st.LastMessage(); last.Role == core.RoleTool {
			return []core.Message{core.NewAssistantMessage("there are 3 open issues right now")}, nil
		}
		return []core.Message{{
			Role:      core.RoleAssistant,
			ToolCalls: []core.ToolCall{{ID: "c1", Name: "jira_search"}},
		}}, nil
	}})
	g.AddNode(&graph.ToolNode{ID: graph.ToolNodeID, Invoker: inv, UserID: "u"})
	g.SetEntry("agent")
	g.AddBranch("agent", graph.SingleAgentContinue(), map[string]string{
		graph.ToolNodeID: graph.ToolNodeID,
		graph.End:        graph.End,
	})
	g.AddEdge(graph.ToolNodeID, "agent")
	require.NoError(t, g.Validate())

	sink, events := collectEvents(t)
	st := core.NewConversationState("any open issues?", nil)
	ex := NewExecutor(10, nil)
	require.NoError(t, ex.Execute(context.Background(), g, st, sink))

	// agent -> tools -> agent -> END
	require.Len(t, *events, 3)
	assert.True(t, (*events)[1].IsToolNode)
	require.Len(t, (*events)[1].Messages, 1)
	assert.Equal(t, "3 issues", (*events)[1].Messages[0].Content)
}

func TestExecute_AuthorizationInterruptEndsTurnCleanly(t *testing.T) {
	inv := &stubInvoker{err: &tool.AuthorizationRequiredError{URL: "https://auth.example.com/go"}}

	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "agent", Step: func(_ context.Context, _ *core.ConversationState) ([]core.Message, error) {
		return []core.Message{{
			Role:      core.RoleAssistant,
			ToolCalls: []core.ToolCall{{ID: "c1", Name: "gmail_send"}},
		}}, nil
	}})
	g.AddNode(&graph.ToolNode{ID: graph.ToolNodeID, Invoker: inv, UserID: "u"})
	g.SetEntry("agent")
	g.AddBranch("agent", graph.SingleAgentContinue(), map[string]string{
		graph.ToolNodeID: graph.ToolNodeID,
		graph.End:        graph.End,
	})
	g.AddEdge(graph.ToolNodeID, "agent")

	sink, events := collectEvents(t)
	st := core.NewConversationState("send it", nil)
	ex := NewExecutor(10, nil)
	require.NoError(t, ex.Execute(context.Background(), g, st, sink), "interrupt is not an error")

	last := (*events)[len(*events)-1]
	require.NotNil(t, last.Interrupt)
	assert.Equal(t, "https://auth.example.com/go", last.Interrupt.Value)
	assert.Equal(t, "https://auth.example.com/go", last.Interrupt.AuthURL)
}

func TestExecute_InterruptWithoutURL(t *testing.T) {
	inv := &stubInvoker{err: &tool.AuthorizationRequiredError{Message: "manager approval needed"}}

	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "agent", Step: func(_ context.Context, _ *core.ConversationState) ([]core.Message, error) {
		return []core.Message{{
			Role:      core.RoleAssistant,
			ToolCalls: []core.ToolCall{{ID: "c1", Name: "pay_invoice"}},
		}}, nil
	}})
	g.AddNode(&graph.ToolNode{ID: graph.ToolNodeID, Invoker: inv, UserID: "u"})
	g.SetEntry("agent")
	g.AddBranch("agent", graph.SingleAgentContinue(), map[string]string{
		graph.ToolNodeID: graph.ToolNodeID,
		graph.End:        graph.End,
	})
	g.AddEdge(graph.ToolNodeID, "agent")

	sink, events := collectEvents(t)
	st := core.NewConversationState("pay it", nil)
	require.NoError(t, NewExecutor(10, nil).Execute(context.Background(), g, st, sink))

	last := (*events)[len(*events)-1]
	require.NotNil(t, last.Interrupt)
	assert.Equal(t, "manager approval needed", last.Interrupt.Value)
	assert.Empty(t, last.Interrupt.AuthURL)
}

func TestExecute_ToolFailurePropagates(t *testing.T) {
	inv := &stubInvoker{err: errors.New("boom")}

	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "agent", Step: func(_ context.Context, _ *core.ConversationState) ([]core.Message, error) {
		return []core.Message{{
			Role:      core.RoleAssistant,
			ToolCalls: []core.ToolCall{{Name: "x"}},
		}}, nil
	}})
	g.AddNode(&graph.ToolNode{ID: graph.ToolNodeID, Invoker: inv, UserID: "u"})
	g.SetEntry("agent")
	g.AddBranch("agent", graph.SingleAgentContinue(), map[string]string{
		graph.ToolNodeID: graph.ToolNodeID,
		graph.End:        graph.End,
	})
	g.AddEdge(graph.ToolNodeID, "agent")

	sink, _ := collectEvents(t)
	st := core.NewConversationState("go", nil)
	err := NewExecutor(10, nil).Execute(context.Background(), g, st, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecute_SubgraphSharesStepCeiling(t *testing.T) {
	// Inner graph loops between two nodes and never terminates on its own.
	inner := graph.New()
	inner.AddNode(&graph.AgentNode{ID: "w1", Step: replyStep("w1")})
	inner.AddNode(&graph.AgentNode{ID: "w2", Step: replyStep("w2")})
	inner.SetEntry("w1")
	inner.AddEdge("w1", "w2")
	inner.AddEdge("w2", "w1")

	outer := graph.New()
	outer.AddNode(&graph.AgentNode{ID: "root", Step: replyStep("dept")})
	outer.AddNode(&graph.SubgraphNode{ID: "dept", Graph: inner})
	outer.SetEntry("root")
	outer.AddBranch("root", graph.RouteByContent([]string{"dept"}), map[string]string{"dept": "dept"})
	outer.AddEdge("dept", "root")

	sink, events := collectEvents(t)
	st := core.NewConversationState("hi", nil)
	err := NewExecutor(6, nil).Execute(context.Background(), outer, st, sink)
	require.ErrorIs(t, err, core.ErrRoutingExhausted)
	// The subgraph node itself consumes a step, so with a ceiling of 6 the
	// root, the subgraph entry and 4 inner nodes run before exhaustion.
	assert.Len(t, *events, 5)
}

func TestExecute_ContextCancellation(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "a", Step: replyStep("x")})
	g.AddNode(&graph.AgentNode{ID: "b", Step: replyStep("y")})
	g.SetEntry("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink, _ := collectEvents(t)
	st := core.NewConversationState("hi", nil)
	err := NewExecutor(100, nil).Execute(ctx, g, st, sink)
	require.ErrorIs(t, err, context.Canceled)
}
