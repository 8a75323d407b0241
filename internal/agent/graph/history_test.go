package graph

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
)

func human(content string) *schema.Message     { return schema.UserMessage(content) }
func assistant(content string) *schema.Message { return schema.AssistantMessage(content, nil) }

func toolMsg(id string) *schema.Message {
	return &schema.Message{Role: schema.Tool, Content: "ok", ToolCallID: id}
}

func TestKeepNMessagesTrimsToHumanBoundary(t *testing.T) {
	// Naive trimming would cut inside the tool exchange; the boundary
	// must walk back so the history replays from a human turn.
	messages := []*schema.Message{
		human("first"),
		assistant("asking a tool"),
		toolMsg("call_1"),
		assistant("answer"),
		human("second"),
		assistant("reply"),
	}

	state := &model.ConversationState{
		Messages:      messages,
		HistoryConfig: model.HistoryConfig{Strategy: model.HistoryKeepNMessages, NumberOfMessages: 3},
	}

	rig := newRig()
	update, err := rig.engine.manageHistory(context.Background(), state)
	require.NoError(t, err)

	state.Apply(update)
	require.NotEmpty(t, state.Messages)
	assert.Equal(t, schema.User, state.Messages[0].Role)
	assert.Equal(t, "second", state.Messages[0].Content)
}

func TestKeepNMessagesNoTrimUnderThreshold(t *testing.T) {
	state := &model.ConversationState{
		Messages:      []*schema.Message{human("a"), assistant("b")},
		HistoryConfig: model.HistoryConfig{Strategy: model.HistoryKeepNMessages, NumberOfMessages: 10},
	}

	rig := newRig()
	update, err := rig.engine.manageHistory(context.Background(), state)
	require.NoError(t, err)
	assert.Zero(t, update.TrimOldest)
}

func TestKeepNTokensExtendsThroughNonHuman(t *testing.T) {
	messages := []*schema.Message{
		human("first"),
		assistant("asking a tool"),
		toolMsg("call_1"),
		human("second"),
		assistant("reply"),
	}
	state := &model.ConversationState{
		Messages:          messages,
		HistoryTokenCount: 500,
		HistoryConfig:     model.HistoryConfig{Strategy: model.HistoryKeepNTokens, NumberOfTokens: 430},
	}

	rig := newRig()
	update, err := rig.engine.manageHistory(context.Background(), state)
	require.NoError(t, err)

	state.Apply(update)
	assert.Equal(t, schema.User, state.Messages[0].Role)
	assert.Equal(t, "second", state.Messages[0].Content)
}

func TestFirstMessageNeverToolTyped(t *testing.T) {
	sequences := [][]*schema.Message{
		{human("a"), assistant("b"), toolMsg("1"), assistant("c"), human("d")},
		{human("a"), assistant("b"), human("c"), assistant("d"), toolMsg("2"), assistant("e"), human("f"), assistant("g")},
		{human("a"), assistant("b"), toolMsg("1"), toolMsg("2"), assistant("c"), human("d"), assistant("e")},
	}

	rig := newRig()
	for _, messages := range sequences {
		for keep := 1; keep < len(messages); keep++ {
			state := &model.ConversationState{
				Messages:      append([]*schema.Message{}, messages...),
				HistoryConfig: model.HistoryConfig{Strategy: model.HistoryKeepNMessages, NumberOfMessages: keep},
			}
			update, err := rig.engine.manageHistory(context.Background(), state)
			require.NoError(t, err)
			state.Apply(update)
			require.NotEmpty(t, state.Messages)
			assert.NotEqual(t, schema.Tool, state.Messages[0].Role, "keep=%d", keep)
		}
	}
}

func TestSummarizeReplacesHistory(t *testing.T) {
	rig := newRig(assistantText("User asked about meetings and got an answer.", 30))

	state := &model.ConversationState{
		Provider:  model.ProviderAnthropic,
		ModelName: "claude-3-haiku-20240307",
		Messages: []*schema.Message{
			human("first"), assistant("reply one"),
			human("second"), assistant("reply two"),
			human("third"),
		},
		HistoryConfig: model.HistoryConfig{Strategy: model.HistorySummarizeNMessages, NumberOfMessages: 3},
	}

	update, err := rig.engine.manageHistory(context.Background(), state)
	require.NoError(t, err)

	state.Apply(update)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "third", state.Messages[0].Content)
	assert.Equal(t, "User asked about meetings and got an answer.", state.ConversationSummary)
}

func TestSummarizeFailurePropagates(t *testing.T) {
	// Empty script: the summarization call fails, history must survive.
	rig := newRig()

	state := &model.ConversationState{
		Provider:  model.ProviderAnthropic,
		ModelName: "claude-3-haiku-20240307",
		Messages: []*schema.Message{
			human("first"), assistant("reply"), human("second"),
		},
		HistoryConfig: model.HistoryConfig{Strategy: model.HistorySummarizeNMessages, NumberOfMessages: 2},
	}

	_, err := rig.engine.manageHistory(context.Background(), state)
	require.Error(t, err)
	assert.Len(t, state.Messages, 3)
}
