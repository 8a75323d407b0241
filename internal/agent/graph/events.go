package graph

// EventKind tags one internal execution event produced while a turn runs.
type EventKind string

const (
	EventLLMStart      EventKind = "llm_start"
	EventLLMDelta      EventKind = "llm_delta"
	EventLLMEnd        EventKind = "llm_end"
	EventToolStart     EventKind = "tool_start"
	EventToolEnd       EventKind = "tool_end"
	EventAcceptRequest EventKind = "accept_request"
	EventLink          EventKind = "link"
)

// Event is one execution event. Content carries text deltas and link
// URLs; ToolName and ToolInput are set for tool and accept events.
type Event struct {
	Kind      EventKind
	Content   string
	ToolName  string
	ToolInput map[string]any
}

// EmitFunc receives execution events in order as the engine produces
// them. The transport layer decides how to forward them.
type EmitFunc func(Event)
