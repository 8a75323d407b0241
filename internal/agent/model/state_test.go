package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTrimsBeforeAppending(t *testing.T) {
	state := &ConversationState{
		Messages: []*schema.Message{
			schema.UserMessage("a"),
			schema.AssistantMessage("b", nil),
			schema.UserMessage("c"),
		},
	}

	state.Apply(Update{
		TrimOldest: 2,
		Append:     []*schema.Message{schema.AssistantMessage("d", nil)},
	})

	require.Len(t, state.Messages, 2)
	assert.Equal(t, "c", state.Messages[0].Content)
	assert.Equal(t, "d", state.Messages[1].Content)
}

func TestApplyTrimBeyondLengthClears(t *testing.T) {
	state := &ConversationState{Messages: []*schema.Message{schema.UserMessage("a")}}
	state.Apply(Update{TrimOldest: 5})
	assert.Empty(t, state.Messages)
}

func TestApplyPointerFieldsDistinguishUnset(t *testing.T) {
	state := &ConversationState{ModelName: "m1", ToolDeclines: 3, ToolAccept: true}

	state.Apply(Update{ToolDeclines: IntPtr(0)})
	assert.Equal(t, 0, state.ToolDeclines)
	assert.True(t, state.ToolAccept)
	assert.Equal(t, "m1", state.ModelName)

	state.Apply(Update{ToolAccept: BoolPtr(false), ModelName: StringPtr("m2")})
	assert.False(t, state.ToolAccept)
	assert.Equal(t, "m2", state.ModelName)
}

func TestPendingToolCall(t *testing.T) {
	state := &ConversationState{}
	_, ok := state.PendingToolCall()
	assert.False(t, ok)

	state.Messages = []*schema.Message{schema.AssistantMessage("plain", nil)}
	_, ok = state.PendingToolCall()
	assert.False(t, ok)

	state.Messages = append(state.Messages, &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: "CalendarTool"}},
			{ID: "call_2", Function: schema.FunctionCall{Name: "MintSearchTool"}},
		},
	})
	call, ok := state.PendingToolCall()
	require.True(t, ok)
	assert.Equal(t, "call_1", call.ID)

	// A tool result after the assistant message clears the pending call.
	state.Messages = append(state.Messages, &schema.Message{Role: schema.Tool, ToolCallID: "call_1"})
	_, ok = state.PendingToolCall()
	assert.False(t, ok)
}

func TestCloneIsolatesSlices(t *testing.T) {
	state := &ConversationState{
		Messages:   []*schema.Message{schema.UserMessage("a")},
		SafeTools:  []string{"CalendarTool"},
		UsageLimit: &UsageLimit{Hours: 24, Cost: 1},
	}

	clone := state.Clone()
	clone.Messages = append(clone.Messages, schema.UserMessage("b"))
	clone.SafeTools[0] = "other"
	clone.UsageLimit.Cost = 99

	assert.Len(t, state.Messages, 1)
	assert.Equal(t, "CalendarTool", state.SafeTools[0])
	assert.Equal(t, 1.0, state.UsageLimit.Cost)
}
