package tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// arguments extracts the tool call argument bag, tolerating a nil payload.
func arguments(req mcp.CallToolRequest) map[string]any {
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		return args
	}
	return map[string]any{}
}

// stringArg returns a string argument or its default.
func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// intArg returns a numeric argument or its default. JSON numbers arrive as
// float64.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// boolArg returns a boolean argument or its default.
func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// stringSliceArg returns a string-array argument; missing or malformed
// entries are skipped.
func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// anySliceArg returns an array argument as-is.
func anySliceArg(args map[string]any, key string) []any {
	if raw, ok := args[key].([]any); ok {
		return raw
	}
	return nil
}

// jsonResult marshals a document into a text tool result.
func jsonResult(doc any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
