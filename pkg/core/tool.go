package core

import "context"

// Tool is an invocable capability. Implementations may block or suspend;
// callers always wait for Call to return. A tool must tolerate being
// invoked multiple times across runs (no run-to-run state).
type Tool interface {
	Name() string
	Call(ctx context.Context, input any) (any, error)
}

// ToolFunc adapts a plain query function into a Tool.
type ToolFunc struct {
	name string
	fn   func(ctx context.Context, query string) (string, error)
}

// NewTool wraps fn as a named Tool.
func NewTool(name string, fn func(ctx context.Context, query string) (string, error)) *ToolFunc {
	return &ToolFunc{name: name, fn: fn}
}

func (t *ToolFunc) Name() string { return t.name }

// Call passes the input through as the query string. Non-string inputs
// are rejected by the underlying function receiving an empty query.
func (t *ToolFunc) Call(ctx context.Context, input any) (any, error) {
	query, _ := input.(string)
	return t.fn(ctx, query)
}
