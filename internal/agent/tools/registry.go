package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/record"
)

// Deps carries the per-conversation collaborators a tool may use. Tools
// receive it on every call instead of holding global state.
type Deps struct {
	Records record.System

	// MintUserID is the backend identity of the conversation owner, used
	// e.g. to add the organiser to created meetings.
	MintUserID string

	// Now is the clock source, overridable in tests. Nil means time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Output is a tool result split into the payload delivered to the model
// and out-of-band extra data (currently only a record URL) emitted as a
// side-channel event.
type Output struct {
	Response string
	Extra    map[string]any
}

// Func executes one tool call with already-validated arguments.
type Func func(ctx context.Context, deps Deps, args map[string]any) (Output, error)

// Tool pairs a descriptor with its implementation.
type Tool struct {
	Descriptor Descriptor
	Run        Func
}

// Registry maps tool names to their descriptor and implementation, plus
// the safe-tool set exempt from human confirmation. Built once at process
// start and shared read-only afterwards.
type Registry struct {
	tools map[string]Tool
	order []string
	safe  []string
}

// NewRegistry builds a registry from the given tools in order.
func NewRegistry(safe []string, tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool, len(tools)),
		safe:  safe,
	}
	for _, t := range tools {
		r.tools[t.Descriptor.Name] = t
		r.order = append(r.order, t.Descriptor.Name)
	}
	return r
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string{}, r.order...)
}

// SafeTools lists the tools exempt from confirmation.
func (r *Registry) SafeTools() []string {
	return append([]string{}, r.safe...)
}

// ToolInfos returns the model-facing schemas for every registered tool.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor.ToolInfo())
	}
	return out
}

// InvalidToolMessage is the tool-result content for a call naming a tool
// that is not registered.
func (r *Registry) InvalidToolMessage(requested string) string {
	return fmt.Sprintf("Error: %s is not a valid tool, try one of [%s].", requested, strings.Join(r.order, ", "))
}

// ErrorMessage converts a tool execution failure into the tool-result
// content shown to the model. Unknown-module failures get a hint towards
// the module listing tool so the model can self-correct.
func ErrorMessage(err error) string {
	if strings.Contains(err.Error(), "does not exist") {
		return fmt.Sprintf("Module Error: %v . Try to use MintGetModuleNamesTool to get list of available modules.", err)
	}
	return fmt.Sprintf("Error: %v\n Please fix your mistakes.", err)
}
