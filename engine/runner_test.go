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

func singleAgentGraph(t *testing.T, step core.StepFunc) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "agent", Step: step})
	g.SetEntry("agent")
	g.AddEdge("agent", graph.End)
	require.NoError(t, g.Validate())
	return g
}

func TestRunner_CommitsOnSuccess(t *testing.T) {
	g := singleAgentGraph(t, replyStep("Happy to help with that request."))
	r := NewRunner(g)
	sess := core.NewSession("s1")

	result, err := r.Run(context.Background(), sess, "can you help me?")
	require.NoError(t, err)
	require.Len(t, result.Responses, 1)

	msgs := sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "can you help me?", msgs[0].Content)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Happy to help with that request.", msgs[1].Content)
}

func TestRunner_LeavesSessionUntouchedOnFailure(t *testing.T) {
	g := singleAgentGraph(t, func(_ context.Context, _ *core.ConversationState) ([]core.Message, error) {
		return nil, errors.New("model unavailable")
	})
	r := NewRunner(g)
	sess := core.NewSession("s2")
	sess.Append(core.RoleUser, "earlier")

	_, err := r.Run(context.Background(), sess, "hello")
	require.Error(t, err)
	assert.Len(t, sess.Messages(), 1, "failed turns must not touch the session")
}

func TestRunner_TranscriptIncludesCurrentUserLine(t *testing.T) {
	var seen []string
	g := singleAgentGraph(t, func(_ context.Context, st *core.ConversationState) ([]core.Message, error) {
		seen = append([]string{}, st.Transcript...)
		return []core.Message{core.NewAssistantMessage("noted, thanks for telling me")}, nil
	})
	r := NewRunner(g)
	sess := core.NewSession("s3")
	sess.Append(core.RoleUser, "first thing")
	sess.Append(core.RoleAssistant, "first answer")

	_, err := r.Run(context.Background(), sess, "second thing")
	require.NoError(t, err)
	require.Len(t, seen, 3)
	assert.Equal(t, "User: first thing", seen[0])
	assert.Equal(t, "User: second thing", seen[2])
}

func TestRunner_AuthorizationParksPendingAndResumeReplays(t *testing.T) {
	attempts := 0
	step := func(_ context.Context, st *core.ConversationState) ([]core.Message, error) {
		return []core.Message{{
			Role:      core.RoleAssistant,
			ToolCalls: []core.ToolCall{{ID: "c1", Name: "gmail_send"}},
		}}, nil
	}
	inv := &stubInvoker{}
	inv.err = &tool.AuthorizationRequiredError{URL: "https://auth.example.com/mail"}

	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "agent", Step: func(ctx context.Context, st *core.ConversationState) ([]core.Message, error) {
		attempts++
		if attempts > 1 {
			// Authorized now; answer without tools.
			return []core.Message{core.NewAssistantMessage("The email has been sent.")}, nil
		}
		return step(ctx, st)
	}})
	g.AddNode(&graph.ToolNode{ID: graph.ToolNodeID, Invoker: inv, UserID: "u"})
	g.SetEntry("agent")
	g.AddBranch("agent", graph.SingleAgentContinue(), map[string]string{
		graph.ToolNodeID: graph.ToolNodeID,
		graph.End:        graph.End,
	})
	g.AddEdge(graph.ToolNodeID, "agent")
	require.NoError(t, g.Validate())

	r := NewRunner(g)
	sess := core.NewSession("s4")

	result, err := r.Run(context.Background(), sess, "send the email please")
	require.NoError(t, err)
	assert.True(t, result.AuthRequired)
	assert.Equal(t, "https://auth.example.com/mail", result.AuthURL)
	require.Len(t, result.Responses, 1)
	assert.Contains(t, result.Responses[0], core.AuthRequiredMarker)

	p := sess.Pending()
	require.NotNil(t, p)
	assert.Equal(t, "send the email please", p.UserText)

	// Resume replays the same user text; the tool is now authorized.
	inv.err = nil
	resumed, err := r.Resume(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, resumed.AuthRequired)
	require.NotEmpty(t, resumed.Responses)
	assert.Equal(t, "The email has been sent.", resumed.Responses[0])
	assert.Nil(t, sess.Pending())
}

func TestRunner_ResumeWithoutPending(t *testing.T) {
	g := singleAgentGraph(t, replyStep("hi"))
	r := NewRunner(g)
	_, err := r.Resume(context.Background(), core.NewSession("s5"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pending authorization")
}

func TestRunner_RoutingExhaustionSurfacesAsError(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "a", Step: replyStep("ping")})
	g.AddNode(&graph.AgentNode{ID: "b", Step: replyStep("pong")})
	g.SetEntry("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	r := NewRunner(g, func(o *RunnerOptions) { o.MaxSteps = 3 })
	sess := core.NewSession("s6")
	_, err := r.Run(context.Background(), sess, "loop")
	require.ErrorIs(t, err, core.ErrRoutingExhausted)
	assert.Empty(t, sess.Messages())
}

func TestRunner_PublishesToolEvents(t *testing.T) {
	inv := &stubInvoker{results: map[string]string{"jira_search": "found"}}
	first := true
	g := graph.New()
	g.AddNode(&graph.AgentNode{ID: "agent", Step: func(_ context.Context, _ *core.ConversationState) ([]core.Message, error) {
		if first {
			first = false
			return []core.Message{{
				Role:      core.RoleAssistant,
				ToolCalls: []core.ToolCall{{ID: "c1", Name: "jira_search"}},
			}}, nil
		}
		return []core.Message{core.NewAssistantMessage("Found what you were looking for.")}, nil
	}})
	g.AddNode(&graph.ToolNode{ID: graph.ToolNodeID, Invoker: inv, UserID: "u"})
	g.SetEntry("agent")
	g.AddBranch("agent", graph.SingleAgentContinue(), map[string]string{
		graph.ToolNodeID: graph.ToolNodeID,
		graph.End:        graph.End,
	})
	g.AddEdge(graph.ToolNodeID, "agent")

	emitter := NewEmitter(8, nil)
	events, cancel := emitter.Subscribe()
	defer cancel()

	r := NewRunner(g, func(o *RunnerOptions) { o.Emitter = emitter })
	_, err := r.Run(context.Background(), core.NewSession("s7"), "search for it")
	require.NoError(t, err)

	ev1 := <-events
	ev2 := <-events
	assert.Equal(t, core.EventToolCall, ev1.Type)
	assert.Equal(t, core.EventToolResponse, ev2.Type)
	assert.Equal(t, "jira_search", ev1.Record.ToolName)
}

func TestEmitter_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	emitter := NewEmitter(1, nil)
	_, cancel := emitter.Subscribe()
	defer cancel()

	// Buffer of one: the second publish must not block.
	done := make(chan struct{})
	go func() {
		emitter.Publish(core.NewEvent(core.EventToolCall, core.ToolCallRecord{ToolName: "a"}))
		emitter.Publish(core.NewEvent(core.EventToolCall, core.ToolCallRecord{ToolName: "b"}))
		close(done)
	}()
	<-done
}

func TestEmitter_CancelIsIdempotent(t *testing.T) {
	emitter := NewEmitter(1, nil)
	ch, cancel := emitter.Subscribe()
	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open, "cancel must close the channel")
	// Publishing after cancel must not panic.
	emitter.Publish(core.NewEvent(core.EventToolCall, core.ToolCallRecord{}))
}
