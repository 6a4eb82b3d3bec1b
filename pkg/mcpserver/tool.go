package mcpserver

import (
	"context"
	"fmt"
)

// ToolHandler is the interface for MCP tools.
type ToolHandler interface {
	Name() string
	Description() string
	// InputSchema returns the JSON Schema for the tool's arguments.
	InputSchema() map[string]any
	Execute(ctx context.Context, args map[string]any) (*ToolCallResult, error)
}

// Middleware is a function that wraps a request handler.
type Middleware func(next HandlerFunc) HandlerFunc

// HandlerFunc is a function that handles a JSON-RPC request.
type HandlerFunc func(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse

// Tool adapts a function into a ToolHandler.
type Tool struct {
	ToolName        string
	ToolDescription string
	ToolSchema      map[string]any
	Fn              func(ctx context.Context, args map[string]any) (*ToolCallResult, error)
}

func (t *Tool) Name() string                { return t.ToolName }
func (t *Tool) Description() string         { return t.ToolDescription }
func (t *Tool) InputSchema() map[string]any { return t.ToolSchema }

func (t *Tool) Execute(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	return t.Fn(ctx, args)
}

// ObjectSchema builds a JSON Schema object with string properties. Required
// lists the property names that must be present.
func ObjectSchema(props map[string]string, required ...string) map[string]any {
	properties := make(map[string]any, len(props))
	for name, desc := range props {
		properties[name] = map[string]any{"type": "string", "description": desc}
	}
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringArg returns a required string argument.
func StringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", name)
	}
	return s, nil
}

// OptionalStringArg returns a string argument or def when absent.
func OptionalStringArg(args map[string]any, name, def string) string {
	if s, ok := args[name].(string); ok && s != "" {
		return s
	}
	return def
}
