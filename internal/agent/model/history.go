package model

import "fmt"

// HistoryStrategy selects how conversation history is kept in bounds
// between turns. Strategies are mutually exclusive.
type HistoryStrategy string

const (
	// HistoryKeepNMessages trims the oldest messages once the history
	// exceeds a message count.
	HistoryKeepNMessages HistoryStrategy = "keep_n_messages"
	// HistoryKeepNTokens trims the oldest messages once the last observed
	// input-token count exceeds a budget.
	HistoryKeepNTokens HistoryStrategy = "keep_n_tokens"
	// HistorySummarizeNMessages replaces overflowing history with a running
	// summary produced by a silent model call.
	HistorySummarizeNMessages HistoryStrategy = "summarize_n_messages"
	// HistorySummarizeNTokens is the token-triggered variant of the above.
	HistorySummarizeNTokens HistoryStrategy = "summarize_n_tokens"
	// HistoryNone keeps everything.
	HistoryNone HistoryStrategy = "none"
)

// HistoryConfig holds the strategy plus its trigger thresholds.
type HistoryConfig struct {
	Strategy         HistoryStrategy `json:"strategy"`
	NumberOfMessages int             `json:"number_of_messages,omitempty"`
	NumberOfTokens   int             `json:"number_of_tokens,omitempty"`
}

// Validate checks that the selected strategy has a usable threshold.
func (c HistoryConfig) Validate() error {
	switch c.Strategy {
	case HistoryKeepNMessages, HistorySummarizeNMessages:
		if c.NumberOfMessages < 1 {
			return fmt.Errorf("history strategy %s requires a positive message threshold", c.Strategy)
		}
	case HistoryKeepNTokens, HistorySummarizeNTokens:
		if c.NumberOfTokens < 1 {
			return fmt.Errorf("history strategy %s requires a positive token threshold", c.Strategy)
		}
	case HistoryNone:
	default:
		return fmt.Errorf("unknown history strategy %q", c.Strategy)
	}
	return nil
}
