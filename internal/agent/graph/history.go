package graph

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/llm"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/prompts"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/core/errx"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
)

// manageHistory keeps the conversation history within the configured
// bounds before each model call. Trimming never leaves a tool result as
// the first message: conversations always replay starting from a human
// turn.
func (e *Engine) manageHistory(ctx context.Context, state *model.ConversationState) (model.Update, error) {
	cfg := state.HistoryConfig
	messages := state.Messages

	switch cfg.Strategy {
	case model.HistoryKeepNMessages:
		if len(messages) > cfg.NumberOfMessages {
			return model.Update{TrimOldest: keepNBoundary(messages, cfg.NumberOfMessages)}, nil
		}

	case model.HistoryKeepNTokens:
		if state.HistoryTokenCount > cfg.NumberOfTokens && len(messages) > 1 {
			return model.Update{TrimOldest: tokenTrimBoundary(messages)}, nil
		}

	case model.HistorySummarizeNMessages:
		if len(messages) > cfg.NumberOfMessages {
			return e.summarize(ctx, state)
		}

	case model.HistorySummarizeNTokens:
		if state.HistoryTokenCount > cfg.NumberOfTokens {
			return e.summarize(ctx, state)
		}

	case model.HistoryNone, "":

	default:
		return model.Update{}, errx.Internal("invalid history strategy "+string(cfg.Strategy), nil)
	}
	return model.Update{}, nil
}

// keepNBoundary computes how many oldest messages to delete so that at
// most keep messages remain, walking the boundary back until the first
// surviving message is a human one.
func keepNBoundary(messages []*schema.Message, keep int) int {
	toDelete := len(messages) - keep
	for toDelete > 0 && messages[toDelete].Role != schema.User {
		toDelete--
	}
	return toDelete
}

// tokenTrimBoundary deletes the oldest message plus any following
// non-human messages, so the deletion never orphans a tool result.
func tokenTrimBoundary(messages []*schema.Message) int {
	i := 1
	for i < len(messages) && messages[i].Role != schema.User {
		i++
	}
	return i
}

// summarize replaces all but the newest message with a running summary
// produced by a silent model call. A summarization failure propagates:
// history is never dropped without its compensating summary.
func (e *Engine) summarize(ctx context.Context, state *model.ConversationState) (model.Update, error) {
	discard := state.Messages[:len(state.Messages)-1]
	prompt := prompts.SummaryPrompt(state.ConversationSummary)

	request := llm.Request{
		Provider:  state.Provider,
		ModelName: state.ModelName,
		Messages:  append(append([]*schema.Message{}, discard...), schema.UserMessage(prompt)),
		Silent:    true,
	}
	response, err := e.client.Invoke(ctx, request)
	if err != nil {
		return model.Update{}, errx.New(errx.KindServer, "failed to call LLM to summarize conversation", err)
	}

	logx.Debug().
		Str("chat_id", state.ChatID).
		Int("discarded", len(discard)).
		Msg("conversation history summarized")

	return model.Update{
		TrimOldest: len(discard),
		Summary:    model.StringPtr(response.Content),
	}, nil
}
