// Package server exposes the agent over a websocket endpoint. One
// connection binds one conversation; frames are JSON user messages in
// and JSON agent events out.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/protocol"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/session"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/core/errx"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
)

// Config holds the HTTP listener settings.
type Config struct {
	Addr  string `envconfig:"SERVER_ADDR" default:":8080"`
	Token string `envconfig:"AGENT_API_TOKEN"`
}

// SessionFactory builds a session for one authenticated conversation.
type SessionFactory func(userID, chatID, mintUserID string) *session.Session

// Server accepts websocket connections and pumps messages through
// sessions.
type Server struct {
	cfg      Config
	sessions SessionFactory
	upgrader websocket.Upgrader
}

func New(cfg Config, sessions SessionFactory) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the HTTP handler with the websocket route mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{user_id}/{chat_id}", s.handleConversation)
	return mux
}

// ListenAndServe blocks serving connections until the context is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logx.Info().Str("addr", s.cfg.Addr).Msg("agent server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	chatID := r.PathValue("chat_id")
	mintUserID := r.URL.Query().Get("mint_user_id")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if s.cfg.Token != "" && r.URL.Query().Get("token") != s.cfg.Token {
		logx.Warn().Str("user_id", userID).Msg("failed to authenticate connection")
		_ = conn.WriteJSON(protocol.AgentEvent{Type: protocol.Error, Content: "Authentication failed"})
		return
	}

	logx.Debug().
		Str("user_id", userID).
		Str("chat_id", chatID).
		Msg("connection established")

	sess := s.sessions(userID, chatID, mintUserID)
	s.pump(r.Context(), conn, sess, userID, chatID)
}

// pump reads user messages and runs one turn per message. A failed turn
// keeps the connection open; the next message retries from the last good
// checkpoint.
func (s *Server) pump(ctx context.Context, conn *websocket.Conn, sess *session.Session, userID, chatID string) {
	send := func(ev protocol.AgentEvent) error {
		return conn.WriteJSON(ev)
	}

	for {
		var msg protocol.UserMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logx.Warn().Err(err).Str("user_id", userID).Msg("connection closed unexpectedly")
			} else {
				logx.Debug().Str("user_id", userID).Msg("connection closed")
			}
			return
		}

		if err := sess.Handle(ctx, msg, send); err != nil {
			logx.Error().Err(err).
				Str("user_id", userID).
				Str("chat_id", chatID).
				Str("kind", string(errx.KindOf(err))).
				Msg("turn error")
			if errx.KindOf(err) == errx.KindBadRequest {
				_ = send(protocol.AgentEvent{Type: protocol.Error, Content: err.Error()})
			}
		}
	}
}
