// Package llm binds the provider SDK adapters behind a single
// tool-calling chat model capability and adds streaming, retry and error
// classification on top.
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
)

// Factory constructs provider chat models on demand and caches them per
// provider/model pair. Tools are bound at construction so escalated models
// keep the same tool surface.
type Factory struct {
	cfg   model.LLMConfig
	tools []*schema.ToolInfo

	mu    sync.Mutex
	cache map[string]einomodel.ToolCallingChatModel
}

// NewFactory builds a factory for the configured providers.
func NewFactory(cfg model.LLMConfig, tools []*schema.ToolInfo) *Factory {
	return &Factory{
		cfg:   cfg,
		tools: tools,
		cache: make(map[string]einomodel.ToolCallingChatModel),
	}
}

// Model returns a chat model for the provider/model pair with the
// registry tools bound.
func (f *Factory) Model(ctx context.Context, provider, modelName string) (einomodel.ToolCallingChatModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := provider + "/" + modelName
	if cm, ok := f.cache[key]; ok {
		return cm, nil
	}

	base, err := f.build(ctx, provider, modelName)
	if err != nil {
		return nil, err
	}
	if len(f.tools) > 0 {
		base, err = base.WithTools(f.tools)
		if err != nil {
			return nil, fmt.Errorf("bind tools to %s: %w", key, err)
		}
	}
	f.cache[key] = base
	return base, nil
}

// SummaryModel returns an untooled model for silent summarization calls.
func (f *Factory) SummaryModel(ctx context.Context, provider, modelName string) (einomodel.ToolCallingChatModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := "summary/" + provider + "/" + modelName
	if cm, ok := f.cache[key]; ok {
		return cm, nil
	}
	base, err := f.build(ctx, provider, modelName)
	if err != nil {
		return nil, err
	}
	f.cache[key] = base
	return base, nil
}

func (f *Factory) build(ctx context.Context, provider, modelName string) (einomodel.ToolCallingChatModel, error) {
	switch provider {
	case model.ProviderAnthropic:
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:    f.cfg.AnthropicAPIKey,
			Model:     modelName,
			MaxTokens: f.cfg.MaxTokens,
		})
	case model.ProviderOpenAI:
		maxTokens := f.cfg.MaxTokens
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:              f.cfg.OpenAIAPIKey,
			Model:               modelName,
			MaxCompletionTokens: &maxTokens,
		})
	case model.ProviderGemini:
		clientCfg := &genai.ClientConfig{
			APIKey:  f.cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if f.cfg.GeminiBaseURL != "" {
			clientCfg.HTTPOptions.BaseURL = f.cfg.GeminiBaseURL
		}
		client, err := genai.NewClient(ctx, clientCfg)
		if err != nil {
			return nil, fmt.Errorf("create Gemini client: %w", err)
		}
		temperature := f.cfg.Temperature
		maxTokens := f.cfg.MaxTokens
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client:      client,
			Model:       modelName,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
