package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/record"
)

// FieldKind tells the approval renderer how to present an argument.
type FieldKind string

const (
	// FieldText renders the raw value.
	FieldText FieldKind = "text"
	// FieldDict is a nested attribute map with its own field descriptions.
	FieldDict FieldKind = "dict"
	// FieldLink is a record id resolved to the record's display name.
	FieldLink FieldKind = "link"
	// FieldLinkArray is a list of record ids, each resolved like FieldLink.
	FieldLinkArray FieldKind = "link_array"
)

// FieldDescription carries the human-facing metadata of one tool argument:
// the label shown in approval prompts, whether the argument must be present
// before dispatch, and for link kinds the module the id points into.
type FieldDescription struct {
	Label     string
	Kind      FieldKind
	Required  bool
	RefModule string

	// Fields describes the entries of a FieldDict argument.
	Fields map[string]FieldDescription
}

// Descriptor is the static metadata of one tool. Params feeds the model
// binding, Fields feeds validation and the approval rendering.
type Descriptor struct {
	Name        string
	Description string

	// RequestMessage is shown to the user when the tool needs consent.
	RequestMessage string

	Params map[string]*schema.ParameterInfo
	Fields map[string]FieldDescription
}

// ToolInfo converts the descriptor into the model-facing schema.
func (d Descriptor) ToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name:        d.Name,
		Desc:        d.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(d.Params),
	}
}

// MissingRequired returns the names of required arguments that are absent
// or empty, including required entries of dict arguments. An empty result
// means the call may be dispatched.
func (d Descriptor) MissingRequired(args map[string]any) []string {
	var missing []string
	for name, field := range d.Fields {
		value, ok := args[name]
		if field.Kind == FieldDict {
			inner, isMap := value.(map[string]any)
			if !isMap {
				if field.Required {
					missing = append(missing, name)
				}
				continue
			}
			for sub, subField := range field.Fields {
				if subField.Required && isEmpty(inner[sub]) {
					missing = append(missing, sub)
				}
			}
			continue
		}
		if field.Required && (!ok || isEmpty(value)) {
			missing = append(missing, name)
		}
	}
	return missing
}

// RenderInput produces the human-readable argument map carried by an
// accept_request event. Field names are replaced by labels and link-kind
// arguments are resolved into record display names via the record system.
// Resolution failures degrade to the raw id; approval must not fail just
// because a lookup did.
func (d Descriptor) RenderInput(ctx context.Context, records record.System, args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for name, value := range args {
		field, described := d.Fields[name]
		if !described {
			out[name] = value
			continue
		}
		out[labelOr(field, name)] = renderField(ctx, records, field, value)
	}
	return out
}

func renderField(ctx context.Context, records record.System, field FieldDescription, value any) any {
	switch field.Kind {
	case FieldLink:
		id, ok := value.(string)
		if !ok {
			return value
		}
		return resolveLink(ctx, records, field.RefModule, id)
	case FieldLinkArray:
		items, ok := value.([]any)
		if !ok {
			return value
		}
		resolved := make([]any, 0, len(items))
		for _, item := range items {
			id, ok := item.(string)
			if !ok {
				resolved = append(resolved, item)
				continue
			}
			resolved = append(resolved, resolveLink(ctx, records, field.RefModule, id))
		}
		return resolved
	case FieldDict:
		inner, ok := value.(map[string]any)
		if !ok {
			return value
		}
		out := make(map[string]any, len(inner))
		for sub, subValue := range inner {
			subField, described := field.Fields[sub]
			if !described {
				out[sub] = subValue
				continue
			}
			out[labelOr(subField, sub)] = renderField(ctx, records, subField, subValue)
		}
		return out
	default:
		return value
	}
}

func resolveLink(ctx context.Context, records record.System, module, id string) string {
	rec, err := records.Get(ctx, module, id)
	if err != nil {
		return id
	}
	for _, key := range []string{"full_name", "name", "user_name"} {
		if name, ok := rec.Attributes[key].(string); ok && name != "" {
			return fmt.Sprintf("%s (%s)", name, id)
		}
	}
	return id
}

func labelOr(field FieldDescription, fallback string) string {
	if field.Label != "" {
		return field.Label
	}
	return fallback
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
