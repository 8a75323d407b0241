package model

// ================ Config ================

// LLMConfig selects the provider binding for new conversations. Model may
// be left empty to use the provider's catalogue default.
type LLMConfig struct {
	Provider    string  `envconfig:"LLM_PROVIDER" default:"ANTHROPIC"`
	Model       string  `envconfig:"LLM_MODEL"`
	MaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"LLM_TEMPERATURE" default:"0.0"`

	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL   string `envconfig:"GEMINI_BASE_URL"`
}

// ToolGateConfig drives the decline-escalation policy of the tool gate.
type ToolGateConfig struct {
	DeclineThreshold int  `envconfig:"TOOL_DECLINE_THRESHOLD" default:"10"`
	SwitchLLMModel   bool `envconfig:"SWITCH_LLM_MODEL" default:"false"`
}

// HistoryEnvConfig is the env-facing form of HistoryConfig.
type HistoryEnvConfig struct {
	Strategy    string `envconfig:"HISTORY_STRATEGY" default:"keep_n_messages"`
	MaxMessages int    `envconfig:"HISTORY_MAX_MESSAGES" default:"10"`
	MaxTokens   int    `envconfig:"HISTORY_MAX_TOKENS" default:"430"`
}

// HistoryConfig converts the env form into the persisted config.
func (c HistoryEnvConfig) HistoryConfig() HistoryConfig {
	return HistoryConfig{
		Strategy:         HistoryStrategy(c.Strategy),
		NumberOfMessages: c.MaxMessages,
		NumberOfTokens:   c.MaxTokens,
	}
}

// UsageLimitConfig configures the usage guard; zero cost means unmetered.
type UsageLimitConfig struct {
	Hours int     `envconfig:"USAGE_LIMIT_HOURS" default:"24"`
	Cost  float64 `envconfig:"USAGE_LIMIT_COST" default:"0"`
}

// Limit returns the runtime limit, nil when unmetered.
func (c UsageLimitConfig) Limit() *UsageLimit {
	if c.Cost <= 0 {
		return nil
	}
	return &UsageLimit{Hours: c.Hours, Cost: c.Cost}
}
