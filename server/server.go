package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ArcadeAI/agentgraph"
	"github.com/ArcadeAI/agentgraph/agent"
	"github.com/ArcadeAI/agentgraph/config"
	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/engine"
	"github.com/ArcadeAI/agentgraph/logging"
	"github.com/ArcadeAI/agentgraph/session"
	"github.com/ArcadeAI/agentgraph/tool"
)

// webPrompt frames instructions for agents served over the web UI. The
// {{date}} placeholder is resolved when the agent is created.
const webPrompt = "You are a helpful AI assistant. Today's date is {{date}}. " +
	"Answer the user directly and use your tools when they help.\n\n"

// Options configures the Server.
type Options struct {
	// ToolRegistry supplies the tools exposed to hosted agents. Nil means
	// agents run without tools.
	ToolRegistry *tool.Registry
	// ModelResolver overrides the default provider-based model resolution.
	ModelResolver agent.ModelResolver
	// UserID is forwarded to tool invocations.
	UserID string
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Server hosts agents behind a REST and WebSocket API. Each agent name maps
// to one stored definition; systems are compiled lazily and invalidated when
// the definition changes.
type Server struct {
	mu       sync.RWMutex
	agents   map[string]config.AgentConfig
	systems  map[string]*agentgraph.System
	sessions session.Store
	registry *tool.Registry
	resolver agent.ModelResolver
	userID   string
	logger   logging.Logger
}

// New constructs a Server. Agents from cfg are pre-registered.
func New(cfg *config.Config, optFns ...func(o *Options)) *Server {
	opts := Options{UserID: config.UserID()}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	s := &Server{
		agents:   make(map[string]config.AgentConfig),
		systems:  make(map[string]*agentgraph.System),
		sessions: session.NewInMemoryStore(),
		registry: opts.ToolRegistry,
		resolver: opts.ModelResolver,
		userID:   opts.UserID,
		logger:   logger,
	}
	if cfg != nil {
		for _, id := range cfg.AgentIDs() {
			s.agents[id] = cfg.Agents[id]
		}
	}
	return s
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/agents", s.handleListAgents)
		r.Post("/agents", s.handleCreateAgent)
		r.Get("/agents/{name}", s.handleGetAgent)
		r.Put("/agents/{name}", s.handleUpdateAgent)
		r.Delete("/agents/{name}", s.handleDeleteAgent)
		r.Get("/conversations/{name}", s.handleGetConversation)
		r.Delete("/conversations/{name}", s.handleClearConversation)
		r.Post("/chat", s.handleChat)
		r.Post("/chat/continue", s.handleChatContinue)
	})
	r.Get("/ws/chat/{agent}", s.handleChatSocket)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	count := len(s.agents)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"agents": count,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type agentPayload struct {
	Name string `json:"name"`
	config.AgentConfig
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]agentPayload, 0, len(s.agents))
	for name, ac := range s.agents {
		out = append(out, agentPayload{Name: name, AgentConfig: ac})
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"agents": out})
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var payload agentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" || payload.Instructions == "" {
		writeError(w, http.StatusBadRequest, "name and instructions are required")
		return
	}
	s.mu.Lock()
	if _, exists := s.agents[payload.Name]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, fmt.Sprintf("agent %q already exists", payload.Name))
		return
	}
	s.agents[payload.Name] = payload.AgentConfig
	s.mu.Unlock()
	s.logger.Info("agent created", "name", payload.Name)
	writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mu.RLock()
	ac, ok := s.agents[name]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, agentPayload{Name: name, AgentConfig: ac})
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var payload agentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Instructions == "" {
		writeError(w, http.StatusBadRequest, "instructions are required")
		return
	}
	s.mu.Lock()
	if _, ok := s.agents[name]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", name))
		return
	}
	s.agents[name] = payload.AgentConfig
	delete(s.systems, name)
	s.mu.Unlock()
	s.logger.Info("agent updated", "name", name)
	writeJSON(w, http.StatusOK, agentPayload{Name: name, AgentConfig: payload.AgentConfig})
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mu.Lock()
	if _, ok := s.agents[name]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", name))
		return
	}
	delete(s.agents, name)
	delete(s.systems, name)
	s.mu.Unlock()
	_ = s.sessions.Delete(name)
	s.logger.Info("agent deleted", "name", name)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": name})
}

func (s *Server) hasAgent(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.agents[name]
	return ok
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.hasAgent(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", name))
		return
	}
	sess, ok := s.sessions.Peek(name)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"messages": []core.ChatMessage{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": sess.Messages()})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.hasAgent(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", name))
		return
	}
	if sess, ok := s.sessions.Peek(name); ok {
		sess.Clear()
	}
	writeJSON(w, http.StatusOK, map[string]string{"cleared": name})
}

type chatRequest struct {
	Agent   string `json:"agent"`
	Message string `json:"message"`
}

type chatResponse struct {
	Responses    []string              `json:"responses"`
	Conversation []core.ChatMessage    `json:"conversation"`
	ToolCalls    []core.ToolCallRecord `json:"tool_calls"`
	AuthRequired bool                  `json:"auth_required"`
	AuthURL      string                `json:"auth_url,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Agent == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "agent and message are required")
		return
	}
	sys, sess, err := s.systemFor(req.Agent)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	result := sys.Run(r.Context(), sess, req.Message)
	writeJSON(w, http.StatusOK, toChatResponse(result, sess))
}

func (s *Server) handleChatContinue(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Agent == "" {
		writeError(w, http.StatusBadRequest, "agent is required")
		return
	}
	sys, sess, err := s.systemFor(req.Agent)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	result, err := sys.Resume(r.Context(), sess)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toChatResponse(result, sess))
}

// systemFor returns the compiled system and conversation session for an
// agent, compiling the system on first use.
func (s *Server) systemFor(name string) (*agentgraph.System, *core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ac, ok := s.agents[name]
	if !ok {
		return nil, nil, fmt.Errorf("agent %q not found", name)
	}
	sys, ok := s.systems[name]
	if !ok {
		ac.Instructions = webPrompt + ac.Instructions
		cfg := &config.Config{}
		cfg.SetAgent(name, ac)
		var err error
		sys, err = agentgraph.New(cfg, func(o *agentgraph.Options) {
			o.Logger = s.logger
			o.ToolRegistry = s.registry
			o.UserID = s.userID
			if s.resolver != nil {
				o.ModelResolver = s.resolver
			}
		})
		if err != nil {
			return nil, nil, fmt.Errorf("compile agent %q: %w", name, err)
		}
		s.systems[name] = sys
	}
	sess, err := s.sessions.Get(name)
	if err != nil {
		return nil, nil, err
	}
	return sys, sess, nil
}

func toChatResponse(result *engine.TurnResult, sess *core.Session) chatResponse {
	return chatResponse{
		Responses:    result.Responses,
		Conversation: sess.Messages(),
		ToolCalls:    result.ToolCalls,
		AuthRequired: result.AuthRequired,
		AuthURL:      result.AuthURL,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
