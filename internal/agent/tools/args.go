package tools

import "fmt"

// Argument extraction helpers. Model-produced arguments arrive as a
// decoded JSON object, so values are strings, maps and []any.

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func mapArg(args map[string]any, key string) map[string]any {
	v, _ := args[key].(map[string]any)
	return v
}

func stringsArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, fmt.Sprintf("%v", item))
	}
	return out
}
