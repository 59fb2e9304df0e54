// Package builtin provides the local tools registered with every agent.
package builtin

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/recall"
)

// Tool is an in-process recall.Tool backed by a plain function.
type Tool struct {
	name        string
	description string
	schema      json.RawMessage
	run         func(ctx context.Context, args json.RawMessage) (*recall.ToolResult, error)
}

// Compile-time interface check.
var _ recall.Tool = (*Tool)(nil)

// Name returns the tool name.
func (t *Tool) Name() string { return t.name }

// Description returns the tool description.
func (t *Tool) Description() string { return t.description }

// Schema returns the JSON schema of the tool arguments.
func (t *Tool) Schema() json.RawMessage { return t.schema }

// Invoke runs the tool.
func (t *Tool) Invoke(ctx context.Context, args json.RawMessage) (*recall.ToolResult, error) {
	return t.run(ctx, args)
}

// Tools returns every local tool in registration order.
func Tools() []recall.Tool {
	return []recall.Tool{
		CalculatorTool(),
		WeatherTool(),
		ListFilesTool(),
	}
}
