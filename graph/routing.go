package graph

import (
	"strings"

	"github.com/ArcadeAI/agentgraph/core"
)

// CompleteToken anywhere in the latest message routes to termination, taking
// priority over any destination match.
const CompleteToken = "COMPLETE"

// RouteByContent builds the supervisor/department routing rule: upper-case
// the latest message content; CompleteToken terminates; otherwise the first
// candidate whose upper-cased id appears as a substring wins, candidates
// tested in configuration order; no match terminates (an unparseable routing
// decision ends the turn rather than looping).
func RouteByContent(candidates []string) RouteFunc {
	return func(st *core.ConversationState) string {
		last, ok := st.LastMessage()
		if !ok {
			return End
		}
		content := strings.ToUpper(strings.TrimSpace(last.Content))
		if strings.Contains(content, CompleteToken) {
			return End
		}
		for _, id := range candidates {
			if strings.Contains(content, strings.ToUpper(id)) {
				return id
			}
		}
		return End
	}
}

// WorkerContinue builds the flat-topology continuation rule: a latest
// message carrying tool-call requests goes to the tool node, anything else
// returns to the owning supervisor.
func WorkerContinue(supervisorID string) RouteFunc {
	return func(st *core.ConversationState) string {
		if last, ok := st.LastMessage(); ok && last.HasToolCalls() {
			return ToolNodeID
		}
		return supervisorID
	}
}

// SingleAgentContinue is the single-agent continuation rule. It differs
// observably from WorkerContinue: with no supervisor to return to, the
// non-tool label is the local End sentinel and the turn terminates.
func SingleAgentContinue() RouteFunc {
	return func(st *core.ConversationState) string {
		if last, ok := st.LastMessage(); ok && last.HasToolCalls() {
			return ToolNodeID
		}
		return End
	}
}
