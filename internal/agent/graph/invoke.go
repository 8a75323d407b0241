package graph

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/llm"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/prompts"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
)

// invokeModel assembles the effective system message, calls the current
// model with streaming and appends the assistant response. Token usage is
// recorded before the node returns so spend accounting can never trail
// the checkpoint that contains the messages which earned it.
func (e *Engine) invokeModel(ctx context.Context, state *model.ConversationState, emit EmitFunc) (model.Update, error) {
	systemPrompt := prompts.WithSummary(state.SystemPrompt, state.ConversationSummary)
	messages := append([]*schema.Message{schema.SystemMessage(systemPrompt)}, state.Messages...)

	emit(Event{Kind: EventLLMStart})
	response, err := e.client.Invoke(ctx, llm.Request{
		Provider:  state.Provider,
		ModelName: state.ModelName,
		Messages:  messages,
		OnDelta: func(text string) {
			emit(Event{Kind: EventLLMDelta, Content: text})
		},
	})
	if err != nil {
		return model.Update{}, err
	}
	emit(Event{Kind: EventLLMEnd})

	update := model.Update{Append: []*schema.Message{response}}

	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		usage := response.ResponseMeta.Usage
		rec := model.UsageRecord{
			Provider:     state.Provider,
			ModelName:    state.ModelName,
			InputTokens:  usage.PromptTokens,
			OutputTokens: usage.CompletionTokens,
			Timestamp:    time.Now(),
		}
		if err := e.usage.Push(ctx, state.UserID, rec); err != nil {
			return model.Update{}, err
		}
		update.HistoryTokenCount = model.IntPtr(usage.PromptTokens)

		logx.Debug().
			Str("user_id", state.UserID).
			Str("model", state.ModelName).
			Int("input_tokens", usage.PromptTokens).
			Int("output_tokens", usage.CompletionTokens).
			Msg("LLM usage")
	}

	return update, nil
}
