// Package graph implements the conversation state machine: a fixed set
// of nodes wired by conditional transitions, driven synchronously within
// one user turn. Nodes return partial state updates which the engine
// merges, so all mutation flows through one reducer.
package graph

import (
	"context"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/llm"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/record"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/tools"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/core/errx"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
)

// Node names.
const (
	NodeSeedPrompt    = "seed_prompt"
	NodeManageHistory = "manage_history"
	NodeInvokeModel   = "invoke_model"
	NodeGateTool      = "gate_tool"
	NodeExecuteTool   = "execute_tool"
	nodeEnd           = "end"
)

// maxSteps bounds one turn. A well-formed turn needs a handful of steps;
// hitting the bound means the model is stuck in a tool loop.
const maxSteps = 30

// UsageRecorder persists token usage of completed model calls.
type UsageRecorder interface {
	Push(ctx context.Context, userID string, rec model.UsageRecord) error
}

// Engine drives one conversation turn from entry to terminal or to the
// suspension at the tool gate. It holds only process-wide collaborators;
// all per-conversation data lives in the state.
type Engine struct {
	client   *llm.Client
	registry *tools.Registry
	records  record.System
	usage    UsageRecorder
}

// NewEngine wires the engine's collaborators.
func NewEngine(client *llm.Client, registry *tools.Registry, records record.System, usage UsageRecorder) *Engine {
	return &Engine{
		client:   client,
		registry: registry,
		records:  records,
		usage:    usage,
	}
}

// gateDecision is the gate node's routing verdict for a pending call.
type gateDecision string

const (
	gateApproved        gateDecision = "approved"
	gateSuspend         gateDecision = "suspend"
	gateValidationError gateDecision = "validation_error"
)

// Run executes one turn. It returns normally both at terminal and at the
// tool-gate suspension; in the latter case the state still carries the
// pending assistant tool call and tool_accept false, which is exactly what
// the next turn needs to resume at execute_tool.
func (e *Engine) Run(ctx context.Context, state *model.ConversationState, emit EmitFunc) error {
	deps := tools.Deps{Records: e.records, MintUserID: state.MintUserID}

	node := NodeSeedPrompt
	if _, pending := state.PendingToolCall(); pending && state.ToolAccept {
		// Resumed confirmation turn: the model already asked, the human
		// already answered. Do not re-prompt.
		node = NodeExecuteTool
	}

	for step := 0; node != nodeEnd; step++ {
		if step >= maxSteps {
			return errx.Internal("conversation turn exceeded step limit", nil)
		}

		logx.Debug().
			Str("user_id", state.UserID).
			Str("chat_id", state.ChatID).
			Str("node", node).
			Msg("graph step")

		switch node {
		case NodeSeedPrompt:
			state.Apply(e.seedPrompt(state))
			node = NodeManageHistory

		case NodeManageHistory:
			update, err := e.manageHistory(ctx, state)
			if err != nil {
				return err
			}
			state.Apply(update)
			node = NodeInvokeModel

		case NodeInvokeModel:
			update, err := e.invokeModel(ctx, state, emit)
			if err != nil {
				return err
			}
			state.Apply(update)
			if _, pending := state.PendingToolCall(); pending {
				node = NodeGateTool
			} else {
				node = nodeEnd
			}

		case NodeGateTool:
			update, decision := e.gateTool(ctx, state, emit)
			state.Apply(update)
			switch decision {
			case gateApproved:
				node = NodeExecuteTool
			case gateValidationError:
				node = NodeInvokeModel
			default:
				// Consent needed: end the turn, the decision arrives as a
				// separate message.
				node = nodeEnd
			}

		case NodeExecuteTool:
			update, err := e.executeTool(ctx, state, deps, emit)
			if err != nil {
				return err
			}
			state.Apply(update)
			node = NodeInvokeModel
		}
	}
	return nil
}
