package model

import (
	"github.com/cloudwego/eino/schema"
)

// ConversationState is the unit of graph execution and persistence. One
// instance describes one conversation keyed by (UserID, ChatID); it is
// loaded from the latest checkpoint before a turn and written back as a new
// checkpoint when the turn reaches its terminal state or suspends at the
// tool gate.
//
// Nodes never mutate the state directly: they return an Update which the
// engine merges via Apply. Message history is append-only within a turn
// except for explicit prefix trims issued by the history manager.
type ConversationState struct {
	UserID     string `json:"user_id"`
	ChatID     string `json:"chat_id"`
	MintUserID string `json:"mint_user_id,omitempty"`

	Provider  string `json:"provider"`
	ModelName string `json:"model_name"`

	SystemPrompt        string            `json:"system_prompt,omitempty"`
	Messages            []*schema.Message `json:"messages"`
	ConversationSummary string            `json:"conversation_summary,omitempty"`
	HistoryTokenCount   int               `json:"history_token_count"`

	ToolAccept   bool     `json:"tool_accept"`
	ToolDeclines int      `json:"tool_declines"`
	SafeTools    []string `json:"safe_tools,omitempty"`

	HistoryConfig HistoryConfig `json:"history_config"`
	UsageLimit    *UsageLimit   `json:"usage_limit,omitempty"`
}

// UsageLimit is a trailing spend budget: Cost USD over the last Hours.
type UsageLimit struct {
	Hours int     `json:"hours"`
	Cost  float64 `json:"cost"`
}

// Update is the partial state change produced by a single node. Zero values
// mean "leave untouched"; pointer fields distinguish "unset" from an
// explicit zero.
type Update struct {
	Append     []*schema.Message
	TrimOldest int

	SystemPrompt *string
	Summary      *string
	ModelName    *string
	ToolAccept   *bool
	ToolDeclines *int

	HistoryTokenCount *int
}

// Apply merges an Update into the state. Trimming happens before appends so
// a node can atomically replace discarded history with its replacement
// messages.
func (s *ConversationState) Apply(u Update) {
	if u.TrimOldest > 0 {
		n := u.TrimOldest
		if n > len(s.Messages) {
			n = len(s.Messages)
		}
		s.Messages = append([]*schema.Message{}, s.Messages[n:]...)
	}
	if len(u.Append) > 0 {
		s.Messages = append(s.Messages, u.Append...)
	}
	if u.SystemPrompt != nil {
		s.SystemPrompt = *u.SystemPrompt
	}
	if u.Summary != nil {
		s.ConversationSummary = *u.Summary
	}
	if u.ModelName != nil {
		s.ModelName = *u.ModelName
	}
	if u.ToolAccept != nil {
		s.ToolAccept = *u.ToolAccept
	}
	if u.ToolDeclines != nil {
		s.ToolDeclines = *u.ToolDeclines
	}
	if u.HistoryTokenCount != nil {
		s.HistoryTokenCount = *u.HistoryTokenCount
	}
}

// PendingToolCall returns the first tool call of the newest message when
// that message is an assistant message still awaiting a tool result. The
// graph acts on at most one tool call per model response.
func (s *ConversationState) PendingToolCall() (schema.ToolCall, bool) {
	if len(s.Messages) == 0 {
		return schema.ToolCall{}, false
	}
	last := s.Messages[len(s.Messages)-1]
	if last == nil || last.Role != schema.Assistant || len(last.ToolCalls) == 0 {
		return schema.ToolCall{}, false
	}
	return last.ToolCalls[0], true
}

// LastMessage returns the newest message or nil for an empty history.
func (s *ConversationState) LastMessage() *schema.Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// IsSafeTool reports whether the named tool is exempt from confirmation.
func (s *ConversationState) IsSafeTool(name string) bool {
	for _, t := range s.SafeTools {
		if t == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares message pointers but owns its slices, so
// a checkpoint snapshot is not affected by later turns.
func (s *ConversationState) Clone() *ConversationState {
	out := *s
	out.Messages = append([]*schema.Message{}, s.Messages...)
	out.SafeTools = append([]string{}, s.SafeTools...)
	if s.UsageLimit != nil {
		limit := *s.UsageLimit
		out.UsageLimit = &limit
	}
	return &out
}

// Helpers for building pointer-typed Update fields.

func StringPtr(v string) *string { return &v }
func BoolPtr(v bool) *bool       { return &v }
func IntPtr(v int) *int          { return &v }
