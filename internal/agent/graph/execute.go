package graph

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/tools"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
)

// executeTool runs the approved pending call. Tool failures become tool
// result messages so the model can adapt; they never abort the turn. The
// consent flag is consumed here, which makes a confirmed call run exactly
// once even if the same checkpoint is resumed again.
func (e *Engine) executeTool(ctx context.Context, state *model.ConversationState, deps tools.Deps, emit EmitFunc) (model.Update, error) {
	call, ok := state.PendingToolCall()
	if !ok {
		return model.Update{ToolAccept: model.BoolPtr(false)}, nil
	}

	args, err := decodeArgs(call.Function.Arguments)
	if err != nil {
		args = map[string]any{}
	}

	emit(Event{Kind: EventToolStart, ToolName: call.Function.Name, ToolInput: args})

	content := e.runTool(ctx, deps, call.Function.Name, args, emit)

	emit(Event{Kind: EventToolEnd})

	results := []*schema.Message{{
		Role:       schema.Tool,
		Content:    content,
		ToolCallID: call.ID,
	}}

	// Only the first call of a response is acted on. Trailing calls get
	// explicit non-execution results so the provider still sees a result
	// for every requested call.
	last := state.LastMessage()
	for _, extra := range last.ToolCalls[1:] {
		results = append(results, notExecutedResult(extra.ID))
	}

	return model.Update{
		Append:       results,
		ToolAccept:   model.BoolPtr(false),
		ToolDeclines: model.IntPtr(0),
	}, nil
}

func notExecutedResult(callID string) *schema.Message {
	return &schema.Message{
		Role:       schema.Tool,
		Content:    "Tool call was not executed. Only one tool call is handled per response.",
		ToolCallID: callID,
	}
}

func (e *Engine) runTool(ctx context.Context, deps tools.Deps, name string, args map[string]any, emit EmitFunc) string {
	tool, known := e.registry.Get(name)
	if !known {
		return e.registry.InvalidToolMessage(name)
	}

	output, err := tool.Run(ctx, deps, args)
	if err != nil {
		logx.Error().Err(err).Str("tool", name).Msg("tool execution failed")
		return tools.ErrorMessage(err)
	}

	if url, ok := output.Extra["url"].(string); ok && url != "" {
		emit(Event{Kind: EventLink, Content: url})
	}
	return output.Response
}
