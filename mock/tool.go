package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/recall"
)

// Interface compliance checks.
var (
	_ recall.ToolExecutor = (*ToolExecutor)(nil)
	_ recall.Tool         = (*Tool)(nil)
)

// ToolExecutor is a test double for recall.ToolExecutor.
// Set ExecuteFn before calling Execute.
type ToolExecutor struct {
	ExecuteFn func(ctx context.Context, name string, args json.RawMessage) (*recall.ToolResult, error)
}

// Execute delegates to ExecuteFn.
func (e *ToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (*recall.ToolResult, error) {
	return e.ExecuteFn(ctx, name, args)
}

// Tool is a test double for recall.Tool.
// Invoke returns an empty text result when InvokeFn is nil.
type Tool struct {
	NameValue        string
	DescriptionValue string
	SchemaValue      json.RawMessage
	InvokeFn         func(ctx context.Context, args json.RawMessage) (*recall.ToolResult, error)
}

// NewTool returns a Tool named name with an empty object schema.
func NewTool(name string) *Tool {
	return &Tool{NameValue: name, SchemaValue: json.RawMessage(`{"type":"object"}`)}
}

// Name returns NameValue.
func (t *Tool) Name() string { return t.NameValue }

// Description returns DescriptionValue.
func (t *Tool) Description() string { return t.DescriptionValue }

// Schema returns SchemaValue.
func (t *Tool) Schema() json.RawMessage { return t.SchemaValue }

// Invoke delegates to InvokeFn.
func (t *Tool) Invoke(ctx context.Context, args json.RawMessage) (*recall.ToolResult, error) {
	if t.InvokeFn == nil {
		return recall.TextResult(""), nil
	}
	return t.InvokeFn(ctx, args)
}
