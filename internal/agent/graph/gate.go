package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
)

// gateTool decides whether the pending tool call may run. Validation
// failures are answered with a synthetic tool result so the model can
// retry with complete arguments; unsafe tools without consent suspend the
// turn behind an accept_request event.
func (e *Engine) gateTool(ctx context.Context, state *model.ConversationState, emit EmitFunc) (model.Update, gateDecision) {
	call, ok := state.PendingToolCall()
	if !ok {
		// Should be unreachable: the engine only routes here when a call
		// is pending.
		return model.Update{}, gateValidationError
	}

	tool, known := e.registry.Get(call.Function.Name)
	if !known {
		return rejectCalls(state, e.registry.InvalidToolMessage(call.Function.Name)), gateValidationError
	}

	args, err := decodeArgs(call.Function.Arguments)
	if err != nil {
		return rejectCalls(state, fmt.Sprintf("Error: invalid tool arguments: %v\n Please fix your mistakes.", err)), gateValidationError
	}

	if missing := tool.Descriptor.MissingRequired(args); len(missing) > 0 {
		content := fmt.Sprintf("Missing value for: %s. Get the information from the person who sent you the request.", strings.Join(missing, ", "))
		return rejectCalls(state, content), gateValidationError
	}

	if state.IsSafeTool(call.Function.Name) || state.ToolAccept {
		return model.Update{}, gateApproved
	}

	logx.Info().
		Str("chat_id", state.ChatID).
		Str("tool", call.Function.Name).
		Msg("tool call awaiting user consent")

	emit(Event{
		Kind:      EventAcceptRequest,
		Content:   tool.Descriptor.RequestMessage,
		ToolName:  call.Function.Name,
		ToolInput: tool.Descriptor.RenderInput(ctx, e.records, args),
	})
	return model.Update{}, gateSuspend
}

// rejectCalls answers the pending call with content and any trailing
// calls of the same response with not-executed results, so re-entering
// the model never leaves a tool call dangling.
func rejectCalls(state *model.ConversationState, content string) model.Update {
	last := state.LastMessage()
	results := []*schema.Message{{
		Role:       schema.Tool,
		Content:    content,
		ToolCallID: last.ToolCalls[0].ID,
	}}
	for _, extra := range last.ToolCalls[1:] {
		results = append(results, notExecutedResult(extra.ID))
	}
	return model.Update{Append: results}
}

func decodeArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}
