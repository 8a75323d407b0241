package model

import "time"

// UsageRecord is one completed model call's token accounting, appended to
// the usage store and read back only in aggregate.
type UsageRecord struct {
	Provider     string    `json:"provider"`
	ModelName    string    `json:"model_name"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Timestamp    time.Time `json:"timestamp"`
}

// UsageTotals aggregates token counts for one provider/model pair.
type UsageTotals struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// UsageKey identifies a provider/model pair in aggregated usage.
type UsageKey struct {
	Provider  string
	ModelName string
}
