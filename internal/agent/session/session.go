// Package session drives one user turn end to end: it loads the latest
// checkpoint, applies the inbound message to the state, enforces the
// usage limit, runs the conversation graph and translates execution
// events into the outward protocol, then checkpoints the result.
package session

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/checkpoint"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/graph"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/protocol"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/tools"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/usage"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/core/errx"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
)

// limitMessage is the user-visible outcome of a spend-limited turn.
const limitMessage = "You have reached your usage limit. Please try again later."

// Deps are the process-wide collaborators shared by all sessions.
type Deps struct {
	Engine      *graph.Engine
	Checkpoints checkpoint.Store
	Guard       *usage.Guard
	Registry    *tools.Registry
}

// Config carries the per-conversation policy knobs.
type Config struct {
	LLM        model.LLMConfig
	Gate       model.ToolGateConfig
	History    model.HistoryConfig
	UsageLimit *model.UsageLimit
}

// Session is one conversation binding. Safe for sequential use only;
// concurrent turns of the same conversation are not supported.
type Session struct {
	deps Deps
	cfg  Config

	userID     string
	chatID     string
	mintUserID string
}

// New builds a session for one (user, chat) pair.
func New(deps Deps, cfg Config, userID, chatID, mintUserID string) *Session {
	return &Session{
		deps:       deps,
		cfg:        cfg,
		userID:     userID,
		chatID:     chatID,
		mintUserID: mintUserID,
	}
}

// SendFunc forwards one outward event to the client.
type SendFunc func(protocol.AgentEvent) error

// Handle processes one inbound message as one turn. On success the
// updated state is checkpointed; on failure the last good checkpoint is
// left intact so the next message can retry.
func (s *Session) Handle(ctx context.Context, msg protocol.UserMessage, send SendFunc) error {
	if err := msg.Validate(); err != nil {
		return errx.New(errx.KindBadRequest, err.Error(), err)
	}

	state, parentRef, err := s.loadState(ctx)
	if err != nil {
		return s.surface(send, err, "failed to load conversation state")
	}

	logx.Info().
		Str("user_id", s.userID).
		Str("chat_id", s.chatID).
		Str("message_type", string(msg.Type)).
		Int("messages", len(state.Messages)).
		Msg("turn start")

	ok, err := s.deps.Guard.WithinLimit(ctx, s.userID, state.UsageLimit)
	if err != nil {
		return s.surface(send, err, "usage check failed")
	}
	if !ok {
		return s.sendLimitReached(send)
	}

	if err := s.applyMessage(state, msg); err != nil {
		return err
	}

	if err := send(protocol.AgentEvent{Type: protocol.AgentStart}); err != nil {
		return err
	}

	if err := s.runGraph(ctx, state, send); err != nil {
		logx.Error().Err(err).
			Str("user_id", s.userID).
			Str("chat_id", s.chatID).
			Int("messages", len(state.Messages)).
			Msg("turn failed")
		_ = send(protocol.AgentEvent{Type: protocol.Error, Content: "Agent error occurred."})
		return err
	}

	if err := send(protocol.AgentEvent{Type: protocol.AgentEnd}); err != nil {
		return err
	}

	ref, err := s.deps.Checkpoints.Put(ctx, s.userID, s.chatID, state, parentRef)
	if err != nil {
		return s.surface(send, err, "failed to write checkpoint")
	}

	logx.Info().
		Str("user_id", s.userID).
		Str("chat_id", s.chatID).
		Str("checkpoint", ref).
		Int("messages", len(state.Messages)).
		Msg("turn end")
	return nil
}

// loadState fetches the newest checkpoint or seeds a fresh state. Policy
// fields (safe tools, history config, usage limit) are refreshed from the
// current configuration on every load so config changes apply to existing
// conversations.
func (s *Session) loadState(ctx context.Context) (*model.ConversationState, string, error) {
	cp, err := s.deps.Checkpoints.GetLatest(ctx, s.userID, s.chatID)
	if err != nil {
		return nil, "", err
	}

	if cp == nil || cp.State == nil {
		state := &model.ConversationState{
			UserID:        s.userID,
			ChatID:        s.chatID,
			MintUserID:    s.mintUserID,
			Provider:      s.cfg.LLM.Provider,
			ModelName:     s.defaultModel(),
			SafeTools:     s.deps.Registry.SafeTools(),
			HistoryConfig: s.cfg.History,
			UsageLimit:    s.cfg.UsageLimit,
		}
		return state, "", nil
	}

	state := cp.State
	state.SafeTools = s.deps.Registry.SafeTools()
	state.HistoryConfig = s.cfg.History
	state.UsageLimit = s.cfg.UsageLimit
	state.MintUserID = s.mintUserID
	return state, cp.ID, nil
}

func (s *Session) defaultModel() string {
	if s.cfg.LLM.Model != "" {
		return s.cfg.LLM.Model
	}
	if name, ok := model.DefaultModel(s.cfg.LLM.Provider); ok {
		return name
	}
	return ""
}

// applyMessage rewrites the state according to the inbound message before
// the graph runs.
func (s *Session) applyMessage(state *model.ConversationState, msg protocol.UserMessage) error {
	switch msg.Type {
	case protocol.UserInput:
		state.Apply(model.Update{
			Append:     []*schema.Message{schema.UserMessage(msg.Content)},
			ToolAccept: model.BoolPtr(false),
		})
		return nil

	case protocol.UserToolConfirm:
		update := model.Update{
			ToolAccept:   model.BoolPtr(true),
			ToolDeclines: model.IntPtr(0),
		}
		// An escalated conversation reverts to the default model once the
		// user starts accepting again.
		if state.ModelName != s.defaultModel() {
			logx.Info().Str("chat_id", s.chatID).Msg("switching back to default model")
			update.ModelName = model.StringPtr(s.defaultModel())
		}
		state.Apply(update)
		return nil

	case protocol.UserToolReject:
		return s.applyRejection(state, msg.Content)

	default:
		return errx.New(errx.KindBadRequest, fmt.Sprintf("unknown message type: %s", msg.Type), nil)
	}
}

func (s *Session) applyRejection(state *model.ConversationState, reason string) error {
	call, ok := state.PendingToolCall()
	if !ok {
		return errx.New(errx.KindBadRequest, "tool_reject without a pending tool call", nil)
	}

	declines := state.ToolDeclines + 1
	update := model.Update{
		ToolAccept:   model.BoolPtr(false),
		ToolDeclines: model.IntPtr(declines),
	}

	if s.cfg.Gate.SwitchLLMModel && declines >= s.cfg.Gate.DeclineThreshold {
		if smarter, ok := model.SmarterModel(state.Provider, state.ModelName); ok {
			logx.Info().
				Str("chat_id", s.chatID).
				Str("model", smarter).
				Msg("switching to smarter model")
			update.ModelName = model.StringPtr(smarter)
			update.ToolDeclines = model.IntPtr(0)
		}
	}

	explanation := "and i don't want to provide a reason."
	if reason != "" {
		explanation = fmt.Sprintf("because: %s.", reason)
	}
	update.Append = []*schema.Message{
		{
			Role:       schema.Tool,
			Content:    "Tool call rejected by the user.",
			ToolCallID: call.ID,
		},
		schema.UserMessage(fmt.Sprintf("I rejected the use of the tool %s %s", call.Function.Name, explanation)),
	}

	state.Apply(update)
	return nil
}

// surface logs a state or store failure and notifies the client with a
// generic error frame. Malformed inbound messages skip this path: the
// transport reports those with their specific validation message.
func (s *Session) surface(send SendFunc, err error, msg string) error {
	logx.Error().Err(err).
		Str("user_id", s.userID).
		Str("chat_id", s.chatID).
		Msg(msg)
	_ = send(protocol.AgentEvent{Type: protocol.Error, Content: "Agent error occurred."})
	return err
}

// runGraph executes the turn and forwards execution events outward,
// preserving their order. A send failure surfaces after the turn rather
// than interrupting it mid-node.
func (s *Session) runGraph(ctx context.Context, state *model.ConversationState, send SendFunc) error {
	var sendErr error
	emit := func(ev graph.Event) {
		if sendErr != nil {
			return
		}
		sendErr = send(translate(ev))
	}

	if err := s.deps.Engine.Run(ctx, state, emit); err != nil {
		return err
	}
	return sendErr
}

func translate(ev graph.Event) protocol.AgentEvent {
	switch ev.Kind {
	case graph.EventLLMStart:
		return protocol.AgentEvent{Type: protocol.LLMStart}
	case graph.EventLLMDelta:
		return protocol.AgentEvent{Type: protocol.LLMText, Content: ev.Content}
	case graph.EventLLMEnd:
		return protocol.AgentEvent{Type: protocol.LLMEnd}
	case graph.EventToolStart:
		return protocol.AgentEvent{Type: protocol.ToolStart, ToolName: ev.ToolName, ToolInput: ev.ToolInput}
	case graph.EventToolEnd:
		return protocol.AgentEvent{Type: protocol.ToolEnd}
	case graph.EventAcceptRequest:
		return protocol.AgentEvent{Type: protocol.AcceptRequest, Content: ev.Content, ToolName: ev.ToolName, ToolInput: ev.ToolInput}
	case graph.EventLink:
		return protocol.AgentEvent{Type: protocol.Link, Content: ev.Content}
	default:
		return protocol.AgentEvent{Type: protocol.Error, Content: "unknown execution event"}
	}
}

// sendLimitReached emits the synthetic limit-reached turn. No model or
// tool work happens and no checkpoint is written.
func (s *Session) sendLimitReached(send SendFunc) error {
	events := []protocol.AgentEvent{
		{Type: protocol.AgentStart},
		{Type: protocol.LLMStart},
		{Type: protocol.LLMText, Content: limitMessage},
		{Type: protocol.LLMEnd},
		{Type: protocol.AgentEnd},
	}
	for _, ev := range events {
		if err := send(ev); err != nil {
			return err
		}
	}
	logx.Info().
		Str("user_id", s.userID).
		Str("chat_id", s.chatID).
		Msg("usage limit reached, turn short-circuited")
	return nil
}
