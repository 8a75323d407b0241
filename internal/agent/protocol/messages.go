// Package protocol defines the JSON messages exchanged with clients over
// the persistent connection: inbound user messages and outbound agent
// events, one JSON object per frame.
package protocol

import "fmt"

// UserMessageType enumerates the inbound message variants.
type UserMessageType string

const (
	UserInput       UserMessageType = "input"
	UserToolConfirm UserMessageType = "tool_confirm"
	UserToolReject  UserMessageType = "tool_reject"
)

// UserMessage is one inbound frame. Content is required for input, holds
// the optional free-text reason for tool_reject and is absent for
// tool_confirm.
type UserMessage struct {
	Type    UserMessageType `json:"type"`
	Content string          `json:"content,omitempty"`
}

// Validate rejects frames the session cannot act on. An unknown type is a
// hard error for the turn.
func (m UserMessage) Validate() error {
	switch m.Type {
	case UserInput:
		if m.Content == "" {
			return fmt.Errorf("input message requires content")
		}
	case UserToolConfirm, UserToolReject:
	default:
		return fmt.Errorf("unknown message type: %q", m.Type)
	}
	return nil
}

// AgentEventType enumerates the outbound event kinds.
type AgentEventType string

const (
	AgentStart    AgentEventType = "agent_start"
	AgentEnd      AgentEventType = "agent_end"
	LLMStart      AgentEventType = "llm_start"
	LLMText       AgentEventType = "llm_text"
	LLMEnd        AgentEventType = "llm_end"
	ToolStart     AgentEventType = "tool_start"
	ToolEnd       AgentEventType = "tool_end"
	AcceptRequest AgentEventType = "accept_request"
	Link          AgentEventType = "link"
	Error         AgentEventType = "error"
)

// AgentEvent is one outbound frame. Optional fields are omitted when empty
// so clients only ever see the fields relevant to the event kind.
type AgentEvent struct {
	Type      AgentEventType `json:"type"`
	Content   string         `json:"content,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolInput map[string]any `json:"tool_input,omitempty"`
}
