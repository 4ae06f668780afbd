package engine

import (
	"strings"
	"time"

	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/tool"
)

// reservedKeywords are routing directives that must never surface to the
// user as assistant responses.
var reservedKeywords = map[string]bool{
	"TICKET":     true,
	"KNOWLEDGE":  true,
	"ESCALATION": true,
	"COMPLETE":   true,
}

// minResponseLength is the rune count a candidate response must exceed to be
// shown. Anything at or below it is assumed to be a routing token.
const minResponseLength = 10

// TurnResult is the outcome of a single conversational turn.
type TurnResult struct {
	Responses    []string              `json:"responses"`
	ToolCalls    []core.ToolCallRecord `json:"tool_calls"`
	AuthRequired bool                  `json:"auth_required"`
	AuthURL      string                `json:"auth_url,omitempty"`
}

// Collector folds the stream of step events into user-visible responses and
// a tool-call ledger. It inspects only the latest message of each step, so
// routing chatter between agents never leaks into the result.
type Collector struct {
	responses []string
	committed []string
	records   []core.ToolCallRecord
	seen      map[string]bool

	authRequired bool
	authURL      string

	emit func(core.Event)
	now  func() time.Time
}

// NewCollector constructs a Collector. emit receives a tool-call event for
// each record created and each record answered; nil disables emission.
func NewCollector(emit func(core.Event)) *Collector {
	if emit == nil {
		emit = func(core.Event) {}
	}
	return &Collector{
		seen: make(map[string]bool),
		emit: emit,
		now:  time.Now,
	}
}

// Observe processes one step event in execution order.
func (c *Collector) Observe(ev StepEvent) {
	if ev.Interrupt != nil {
		c.observeInterrupt(ev.Interrupt)
		return
	}
	if len(ev.Messages) == 0 {
		return
	}
	last := ev.Messages[len(ev.Messages)-1]

	if last.Role == core.RoleAssistant && last.HasToolCalls() {
		c.recordToolCalls(ev.Node, last)
		return
	}
	if ev.IsToolNode {
		c.resolveToolResponses(ev.Messages)
		return
	}
	if last.Role == core.RoleAssistant {
		c.collectResponse(last.Content)
	}
}

func (c *Collector) observeInterrupt(intr *Interrupt) {
	if intr.AuthURL != "" {
		c.authRequired = true
		c.authURL = intr.AuthURL
		c.responses = append(c.responses, core.AuthRequiredMarker+" "+intr.AuthURL)
		return
	}
	c.responses = append(c.responses, "Tool execution interrupted: "+intr.Value)
}

// recordToolCalls opens one ledger entry per call in the assistant message.
func (c *Collector) recordToolCalls(node string, msg core.Message) {
	for _, tc := range msg.ToolCalls {
		rec := core.ToolCallRecord{
			Node:      node,
			Toolkit:   tool.ResolveToolkit(tc.Name),
			ToolName:  tc.Name,
			CallID:    tc.ID,
			Args:      tc.Arguments,
			Timestamp: c.now(),
		}
		c.records = append(c.records, rec)
		c.emit(core.NewEvent(core.EventToolCall, rec))
	}
}

// resolveToolResponses pairs each tool message with the most recent record
// for that tool still awaiting a response.
func (c *Collector) resolveToolResponses(msgs []core.Message) {
	for _, msg := range msgs {
		if msg.Role != core.RoleTool {
			continue
		}
		c.answerRecord(msg)
	}
}

func (c *Collector) answerRecord(msg core.Message) {
	for i := len(c.records) - 1; i >= 0; i-- {
		rec := &c.records[i]
		if rec.Answered() {
			continue
		}
		if msg.ToolCallID != "" && rec.CallID != "" && msg.ToolCallID != rec.CallID {
			continue
		}
		ts := c.now()
		rec.Response = msg.Content
		rec.ResponseTimestamp = &ts
		c.emit(core.NewEvent(core.EventToolResponse, *rec))
		return
	}
}

// collectResponse filters routing tokens and duplicates before accepting an
// assistant message as a user-visible response.
func (c *Collector) collectResponse(content string) {
	text := strings.TrimSpace(content)
	if text == "" {
		return
	}
	upper := strings.ToUpper(text)
	if reservedKeywords[upper] || len([]rune(text)) <= minResponseLength {
		return
	}
	if strings.Contains(text, core.AuthRequiredMarker) {
		c.authRequired = true
		if idx := strings.Index(text, core.AuthRequiredMarker); idx >= 0 {
			url := strings.TrimSpace(text[idx+len(core.AuthRequiredMarker):])
			if url != "" {
				c.authURL = url
			}
		}
		c.responses = append(c.responses, text)
		return
	}
	if c.seen[text] {
		return
	}
	c.seen[text] = true
	c.responses = append(c.responses, text)
	c.committed = append(c.committed, text)
}

// Result assembles the turn outcome. An empty response set yields a single
// placeholder so callers always have something to show.
func (c *Collector) Result() TurnResult {
	responses := c.responses
	if len(responses) == 0 {
		responses = []string{"No response generated."}
	}
	return TurnResult{
		Responses:    responses,
		ToolCalls:    c.records,
		AuthRequired: c.authRequired,
		AuthURL:      c.authURL,
	}
}

// Committed returns the assistant responses eligible for session history,
// excluding interrupt notices and authorization prompts.
func (c *Collector) Committed() []string {
	return c.committed
}
