package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/ArcadeAI/agentgraph/core"
)

// wsFrame is the envelope for every message on the chat socket.
type wsFrame struct {
	Type    string               `json:"type"`
	Content string               `json:"content,omitempty"`
	Message string               `json:"message,omitempty"`
	Data    *core.ToolCallRecord `json:"data,omitempty"`
}

const (
	frameUserMessage      = "user_message"
	frameContinue         = "continue"
	frameTyping           = "typing"
	frameAssistantMessage = "assistant_message"
	frameError            = "error"
)

// StatusAgentNotFound closes sockets opened for an agent that does not
// exist.
const StatusAgentNotFound websocket.StatusCode = 4004

// handleChatSocket upgrades to a WebSocket and runs a chat loop for one
// agent. Each inbound user_message is echoed back as a receipt, then the
// turn runs; tool activity observed during the turn is streamed as
// tool_call and tool_response frames before the assistant_message frames.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "agent")
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "agent", name, "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	if !s.hasAgent(name) {
		conn.Close(StatusAgentNotFound, "agent not found")
		return
	}

	ctx := r.Context()
	for {
		var frame wsFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		switch frame.Type {
		case frameUserMessage:
			if frame.Content == "" {
				s.writeFrame(ctx, conn, wsFrame{Type: frameError, Message: "empty message"})
				continue
			}
			// Confirm receipt before processing.
			s.writeFrame(ctx, conn, wsFrame{Type: frameUserMessage, Content: frame.Content})
			s.runSocketTurn(ctx, conn, name, frame.Content, false)
		case frameContinue:
			s.runSocketTurn(ctx, conn, name, "", true)
		default:
			s.writeFrame(ctx, conn, wsFrame{Type: frameError, Message: "unknown frame type: " + frame.Type})
		}
	}
}

// runSocketTurn executes one turn and streams its events over the socket.
func (s *Server) runSocketTurn(ctx context.Context, conn *websocket.Conn, name, text string, resume bool) {
	sys, sess, err := s.systemFor(name)
	if err != nil {
		s.writeFrame(ctx, conn, wsFrame{Type: frameError, Message: err.Error()})
		return
	}
	s.writeFrame(ctx, conn, wsFrame{Type: frameTyping})

	events, cancel := sys.Events()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			rec := ev.Record
			s.writeFrame(ctx, conn, wsFrame{Type: string(ev.Type), Data: &rec})
		}
	}()

	var responses []string
	if resume {
		res, err := sys.Resume(ctx, sess)
		if err != nil {
			cancel()
			wg.Wait()
			s.writeFrame(ctx, conn, wsFrame{Type: frameError, Message: err.Error()})
			return
		}
		responses = res.Responses
	} else {
		responses = sys.Run(ctx, sess, text).Responses
	}

	// Events are published synchronously during the turn, so the buffered
	// subscription channel already holds everything; closing it lets the
	// forwarding goroutine drain and exit.
	cancel()
	wg.Wait()

	for _, text := range responses {
		s.writeFrame(ctx, conn, wsFrame{Type: frameAssistantMessage, Content: text})
	}
}

func (s *Server) writeFrame(ctx context.Context, conn *websocket.Conn, frame wsFrame) {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := wsjson.Write(writeCtx, conn, frame); err != nil {
		s.logger.Debug("websocket write failed", "error", err)
	}
}
