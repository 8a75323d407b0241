package graph

import (
	"time"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/prompts"
)

// seedPrompt sets the base system prompt once per conversation. Later
// turns keep whatever was seeded so the conversation stays coherent.
func (e *Engine) seedPrompt(state *model.ConversationState) model.Update {
	if state.SystemPrompt != "" {
		return model.Update{}
	}
	return model.Update{
		SystemPrompt: model.StringPtr(prompts.SystemPrompt(state.UserID, time.Now())),
	}
}
