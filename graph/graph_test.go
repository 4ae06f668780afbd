package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArcadeAI/agentgraph/core"
)

func noopStep(ctx context.Context, st *core.ConversationState) ([]core.Message, error) {
	return nil, nil
}

func TestGraph_NextEdgeAndBranch(t *testing.T) {
	g := New()
	g.AddNode(&AgentNode{ID: "a", Step: noopStep})
	g.AddNode(&AgentNode{ID: "b", Step: noopStep})
	g.SetEntry("a")
	g.AddBranch("a", func(st *core.ConversationState) string { return "b" },
		map[string]string{"b": "b"})
	g.AddEdge("b", End)
	require.NoError(t, g.Validate())

	st := core.NewConversationState("x", nil)
	assert.Equal(t, "b", g.Next("a", st))
	assert.Equal(t, End, g.Next("b", st))
}

func TestGraph_NextFailsOpenOnUnknownLabel(t *testing.T) {
	g := New()
	g.AddNode(&AgentNode{ID: "a", Step: noopStep})
	g.SetEntry("a")
	g.AddBranch("a", func(st *core.ConversationState) string { return "nowhere" },
		map[string]string{"somewhere": "a"})

	st := core.NewConversationState("x", nil)
	assert.Equal(t, End, g.Next("a", st), "unknown label must terminate, not loop")
}

func TestGraph_ValidateRejectsMissingEntry(t *testing.T) {
	g := New()
	g.AddNode(&AgentNode{ID: "a", Step: noopStep})
	g.AddEdge("a", End)
	g.SetEntry("ghost")
	assert.Error(t, g.Validate())
}

func TestGraph_ValidateRejectsNodeWithoutSuccessor(t *testing.T) {
	g := New()
	g.AddNode(&AgentNode{ID: "a", Step: noopStep})
	g.SetEntry("a")
	assert.Error(t, g.Validate())
}

func TestGraph_ValidateRejectsEdgeAndBranchTogether(t *testing.T) {
	g := New()
	g.AddNode(&AgentNode{ID: "a", Step: noopStep})
	g.SetEntry("a")
	g.AddEdge("a", End)
	g.AddBranch("a", func(st *core.ConversationState) string { return End }, map[string]string{})
	assert.Error(t, g.Validate())
}

func TestGraph_ValidateRejectsUnknownTarget(t *testing.T) {
	g := New()
	g.AddNode(&AgentNode{ID: "a", Step: noopStep})
	g.SetEntry("a")
	g.AddEdge("a", "ghost")
	assert.Error(t, g.Validate())
}

type recordingInvoker struct {
	calls []string
	out   map[string]string
	err   error
}

func (r *recordingInvoker) Invoke(_ context.Context, name string, _ map[string]any, _ string) (string, error) {
	r.calls = append(r.calls, name)
	if r.err != nil {
		return "", r.err
	}
	return r.out[name], nil
}

func TestToolNode_RunInvokesEachCallInOrder(t *testing.T) {
	inv := &recordingInvoker{out: map[string]string{
		"jira_search": "found 2 issues",
		"slack_send":  "sent",
	}}
	node := &ToolNode{ID: ToolNodeID, Invoker: inv, UserID: "alice"}

	st := core.NewConversationState("x", nil)
	st.Append(core.Message{
		Role: core.RoleAssistant,
		ToolCalls: []core.ToolCall{
			{ID: "c1", Name: "jira_search"},
			{ID: "c2", Name: "slack_send"},
		},
	})

	msgs, err := node.Run(context.Background(), st)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"jira_search", "slack_send"}, inv.calls)
	assert.Equal(t, "c1", msgs[0].ToolCallID)
	assert.Equal(t, "found 2 issues", msgs[0].Content)
	assert.Equal(t, core.RoleTool, msgs[1].Role)
}

func TestToolNode_RunNoToolCalls(t *testing.T) {
	node := &ToolNode{ID: ToolNodeID, Invoker: &recordingInvoker{}}
	st := core.NewConversationState("x", nil)
	st.Append(core.NewAssistantMessage("just text"))

	msgs, err := node.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
