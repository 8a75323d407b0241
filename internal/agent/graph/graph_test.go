package graph

import (
	"context"
	"fmt"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/llm"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/record"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/tools"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/usage"
)

// fakeChatModel replays scripted assistant responses. Stream splits the
// content into two chunks so delta accumulation is exercised.
type fakeChatModel struct {
	script []*schema.Message
	calls  int
}

func (f *fakeChatModel) next() (*schema.Message, error) {
	if f.calls >= len(f.script) {
		return nil, fmt.Errorf("unexpected model call %d", f.calls+1)
	}
	msg := f.script[f.calls]
	f.calls++
	return msg, nil
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	return f.next()
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.next()
	if err != nil {
		return nil, err
	}

	var chunks []*schema.Message
	if len(msg.Content) > 1 {
		half := len(msg.Content) / 2
		chunks = append(chunks, &schema.Message{Role: schema.Assistant, Content: msg.Content[:half]})
		chunks = append(chunks, &schema.Message{Role: schema.Assistant, Content: msg.Content[half:]})
	} else if msg.Content != "" {
		chunks = append(chunks, &schema.Message{Role: schema.Assistant, Content: msg.Content})
	}
	chunks = append(chunks, &schema.Message{
		Role:         schema.Assistant,
		ToolCalls:    msg.ToolCalls,
		ResponseMeta: msg.ResponseMeta,
	})
	return schema.StreamReaderFromArray(chunks), nil
}

func (f *fakeChatModel) WithTools(infos []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type fakeSource struct {
	model *fakeChatModel
}

func (s *fakeSource) Model(ctx context.Context, provider, modelName string) (einomodel.ToolCallingChatModel, error) {
	return s.model, nil
}

func (s *fakeSource) SummaryModel(ctx context.Context, provider, modelName string) (einomodel.ToolCallingChatModel, error) {
	return s.model, nil
}

type testRig struct {
	engine  *Engine
	model   *fakeChatModel
	records *record.MemorySystem
	usage   *usage.MemoryStore
}

func newRig(script ...*schema.Message) *testRig {
	fake := &fakeChatModel{script: script}
	records := record.NewMemorySystem("https://mint.example.com")
	store := usage.NewMemoryStore()
	engine := NewEngine(
		llm.NewClient(&fakeSource{model: fake}),
		tools.NewDefaultRegistry(),
		records,
		store,
	)
	return &testRig{engine: engine, model: fake, records: records, usage: store}
}

func newState() *model.ConversationState {
	return &model.ConversationState{
		UserID:        "u1",
		ChatID:        "c1",
		Provider:      model.ProviderAnthropic,
		ModelName:     "claude-3-haiku-20240307",
		SafeTools:     tools.DefaultSafeTools,
		HistoryConfig: model.HistoryConfig{Strategy: model.HistoryNone},
		Messages:      []*schema.Message{schema.UserMessage("List my meetings today")},
	}
}

func assistantText(content string, inputTokens int) *schema.Message {
	return &schema.Message{
		Role:    schema.Assistant,
		Content: content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "stop",
			Usage: &schema.TokenUsage{
				PromptTokens:     inputTokens,
				CompletionTokens: 5,
				TotalTokens:      inputTokens + 5,
			},
		},
	}
}

func assistantToolCall(id, name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:       id,
			Function: schema.FunctionCall{Name: name, Arguments: args},
		}},
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "tool_use",
			Usage:        &schema.TokenUsage{PromptTokens: 42, CompletionTokens: 10, TotalTokens: 52},
		},
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func collect(events *[]Event) EmitFunc {
	return func(ev Event) { *events = append(*events, ev) }
}

func timeZero() time.Time { return time.Time{} }

func TestRunPlainResponse(t *testing.T) {
	rig := newRig(assistantText("Hello there", 42))
	state := newState()

	var events []Event
	err := rig.engine.Run(context.Background(), state, collect(&events))
	require.NoError(t, err)

	assert.Equal(t, []EventKind{EventLLMStart, EventLLMDelta, EventLLMDelta, EventLLMEnd}, kinds(events))
	assert.Equal(t, "Hello there", events[1].Content+events[2].Content)

	last := state.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, schema.Assistant, last.Role)
	assert.Equal(t, "Hello there", last.Content)
	assert.Equal(t, 42, state.HistoryTokenCount)

	totals, err := rig.usage.SumSince(context.Background(), "u1", timeZero())
	require.NoError(t, err)
	key := model.UsageKey{Provider: model.ProviderAnthropic, ModelName: "claude-3-haiku-20240307"}
	assert.Equal(t, 42, totals[key].InputTokens)
	assert.Equal(t, 5, totals[key].OutputTokens)
}

func TestSafeToolRunsWithoutConsent(t *testing.T) {
	rig := newRig(
		assistantToolCall("call_1", "CalendarTool", `{"format":"YYYY-MM-DD"}`),
		assistantText("Today is a fine day", 50),
	)
	state := newState()

	var events []Event
	err := rig.engine.Run(context.Background(), state, collect(&events))
	require.NoError(t, err)

	got := kinds(events)
	assert.Equal(t, []EventKind{
		EventLLMStart, EventLLMEnd,
		EventToolStart, EventToolEnd,
		EventLLMStart, EventLLMDelta, EventLLMDelta, EventLLMEnd,
	}, got)
	assert.NotContains(t, got, EventAcceptRequest)
	assert.Equal(t, 2, rig.model.calls)

	// The tool result sits between the two assistant messages.
	require.Len(t, state.Messages, 4)
	assert.Equal(t, schema.Tool, state.Messages[2].Role)
	assert.Equal(t, "call_1", state.Messages[2].ToolCallID)
}

func TestUnsafeToolSuspends(t *testing.T) {
	rig := newRig(assistantToolCall("call_1", "MintCreateRecordTool",
		`{"module_name":"Tasks","attributes":{"name":"Review CVs"}}`))
	state := newState()

	var events []Event
	err := rig.engine.Run(context.Background(), state, collect(&events))
	require.NoError(t, err)

	require.Equal(t, []EventKind{EventLLMStart, EventLLMEnd, EventAcceptRequest}, kinds(events))
	accept := events[2]
	assert.Equal(t, "MintCreateRecordTool", accept.ToolName)
	assert.Equal(t, "Tasks", accept.ToolInput["Module"])

	_, pending := state.PendingToolCall()
	assert.True(t, pending)
	assert.False(t, state.ToolAccept)
	assert.Equal(t, 1, rig.model.calls)
}

func TestResumedConfirmationExecutesExactlyOnce(t *testing.T) {
	rig := newRig(assistantText("Created the task for you", 60))
	state := newState()
	state.Messages = append(state.Messages,
		assistantToolCall("call_1", "MintCreateRecordTool",
			`{"module_name":"Tasks","attributes":{"name":"Review CVs"}}`))
	state.ToolAccept = true

	var events []Event
	err := rig.engine.Run(context.Background(), state, collect(&events))
	require.NoError(t, err)

	// Resume enters directly at tool execution: no extra model call
	// before the tool runs.
	assert.Equal(t, EventToolStart, events[0].Kind)
	assert.Equal(t, 1, rig.model.calls)
	assert.False(t, state.ToolAccept)

	rows, err := rig.records.Search(context.Background(), "Tasks", nil, "and", nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	var links []Event
	for _, ev := range events {
		if ev.Kind == EventLink {
			links = append(links, ev)
		}
	}
	require.Len(t, links, 1)
	assert.Contains(t, links[0].Content, "https://mint.example.com")
}

func TestMissingRequiredArgumentsShortCircuit(t *testing.T) {
	rig := newRig(
		assistantToolCall("call_1", "MintCreateRecordTool", `{"module_name":"Tasks"}`),
		assistantText("I need more details", 55),
	)
	state := newState()

	var events []Event
	err := rig.engine.Run(context.Background(), state, collect(&events))
	require.NoError(t, err)

	got := kinds(events)
	assert.NotContains(t, got, EventAcceptRequest)
	assert.NotContains(t, got, EventToolStart)

	// The synthetic validation result answers the pending call before the
	// model is asked again.
	assert.Equal(t, schema.Tool, state.Messages[2].Role)
	assert.Contains(t, state.Messages[2].Content, "Missing value for: attributes")
	assert.Equal(t, 2, rig.model.calls)
}

func TestMultiCallValidationAnswersTrailingCalls(t *testing.T) {
	rig := newRig(
		&schema.Message{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{
				{ID: "call_1", Function: schema.FunctionCall{Name: "MintCreateRecordTool", Arguments: `{"module_name":"Tasks"}`}},
				{ID: "call_2", Function: schema.FunctionCall{Name: "MintSearchTool", Arguments: `{}`}},
			},
			ResponseMeta: &schema.ResponseMeta{
				FinishReason: "tool_use",
				Usage:        &schema.TokenUsage{PromptTokens: 42, CompletionTokens: 10, TotalTokens: 52},
			},
		},
		assistantText("I need more details", 55),
	)
	state := newState()

	var events []Event
	err := rig.engine.Run(context.Background(), state, collect(&events))
	require.NoError(t, err)

	// Every requested call gets a tool result before the model is asked
	// again: the failing first call with its validation message, trailing
	// calls with explicit non-execution results.
	require.Len(t, state.Messages, 5)
	assert.Equal(t, "call_1", state.Messages[2].ToolCallID)
	assert.Contains(t, state.Messages[2].Content, "Missing value for")
	assert.Equal(t, "call_2", state.Messages[3].ToolCallID)
	assert.Contains(t, state.Messages[3].Content, "was not executed")
	assert.Equal(t, schema.Assistant, state.Messages[4].Role)
}

func TestUnknownToolAnsweredToModel(t *testing.T) {
	rig := newRig(
		assistantToolCall("call_1", "NoSuchTool", `{}`),
		assistantText("Let me try something else", 55),
	)
	state := newState()

	var events []Event
	err := rig.engine.Run(context.Background(), state, collect(&events))
	require.NoError(t, err)

	assert.Equal(t, schema.Tool, state.Messages[2].Role)
	assert.Contains(t, state.Messages[2].Content, "is not a valid tool")
}

func TestToolFailureBecomesToolResult(t *testing.T) {
	rig := newRig(
		assistantToolCall("call_1", "MintGetModuleFieldsTool", `{"module_name":"Bogus"}`),
		assistantText("That module does not exist", 55),
	)
	state := newState()
	state.SafeTools = []string{"MintGetModuleFieldsTool"}

	var events []Event
	err := rig.engine.Run(context.Background(), state, collect(&events))
	require.NoError(t, err)

	assert.Equal(t, schema.Tool, state.Messages[2].Role)
	assert.Contains(t, state.Messages[2].Content, "Module Error")
	assert.Contains(t, state.Messages[2].Content, "MintGetModuleNamesTool")
}
