package engine

import (
	"context"
	"errors"

	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/graph"
	"github.com/ArcadeAI/agentgraph/logging"
)

// DefaultTranscriptMax caps the transcript lines handed to the graph.
const DefaultTranscriptMax = 10

// Runner ties a compiled graph to session lifecycles: it prepares the
// conversation state for a turn, executes the graph and commits the outcome
// back to the session. Sessions are only mutated on success.
type Runner struct {
	graph    *graph.Graph
	executor *Executor
	trimMax  int
	emitter  *Emitter
	logger   logging.Logger
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// MaxSteps bounds node invocations per turn. <= 0 uses DefaultMaxSteps.
	MaxSteps int
	// TranscriptMax bounds the transcript window. <= 0 uses DefaultTranscriptMax.
	TranscriptMax int
	// Emitter receives tool-call events. Nil disables event publication.
	Emitter *Emitter
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// NewRunner constructs a Runner for the given graph.
func NewRunner(g *graph.Graph, optFns ...func(o *RunnerOptions)) *Runner {
	opts := RunnerOptions{
		MaxSteps:      DefaultMaxSteps,
		TranscriptMax: DefaultTranscriptMax,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.TranscriptMax <= 0 {
		opts.TranscriptMax = DefaultTranscriptMax
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Runner{
		graph:    g,
		executor: NewExecutor(opts.MaxSteps, logger),
		trimMax:  opts.TranscriptMax,
		emitter:  opts.Emitter,
		logger:   logger,
	}
}

// Run executes one conversational turn against the session. On failure the
// session is left exactly as it was; on success the user message and the
// filtered assistant responses are appended to its history. When a tool
// raised an authorization interrupt the session records the pending request
// so Resume can replay the turn.
func (r *Runner) Run(ctx context.Context, sess *core.Session, userText string) (*TurnResult, error) {
	sess.Lock()
	defer sess.Unlock()

	transcript := core.TrimTranscript(
		append(sess.TranscriptLines(), "User: "+userText),
		r.trimMax,
	)
	st := core.NewConversationState(userText, transcript)

	collector := NewCollector(r.publish)
	err := r.executor.Execute(ctx, r.graph, st, collector.Observe)
	if err != nil {
		r.logger.Error("turn execution failed", "error", err)
		return nil, err
	}

	result := collector.Result()
	sess.Append(core.RoleUser, userText)
	for _, text := range collector.Committed() {
		sess.Append(core.RoleAssistant, text)
	}
	if result.AuthRequired && result.AuthURL != "" {
		sess.SetPending(userText, result.AuthURL)
		st.PendingAuthURL = result.AuthURL
		r.logger.Info("authorization pending", "url", result.AuthURL)
	}
	return &result, nil
}

// Resume replays the turn that was parked behind an authorization interrupt.
// The pending request is consumed even if the replay fails again, in which
// case a fresh interrupt re-parks it.
func (r *Runner) Resume(ctx context.Context, sess *core.Session) (*TurnResult, error) {
	pending := sess.ClearPending()
	if pending == nil {
		return nil, errors.New("no pending authorization for this conversation")
	}
	r.logger.Debug("resuming after authorization", "url", pending.URL)
	return r.Run(ctx, sess, pending.UserText)
}

func (r *Runner) publish(ev core.Event) {
	if r.emitter != nil {
		r.emitter.Publish(ev)
	}
}
