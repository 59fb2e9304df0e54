package recall

import (
	"context"
	"encoding/json"
)

// Tool is a named, schema-described callable the agent may invoke while
// generating. Local tools and tools discovered from external providers both
// satisfy it.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	// Invoke runs the tool. A returned error is an infrastructure failure
	// (e.g. ErrToolUnavailable); ToolResult.IsError is a tool-reported
	// domain failure that is sent back to the model.
	Invoke(ctx context.Context, args json.RawMessage) (*ToolResult, error)
}

// ToolDef is the schema sent to the LLM describing a tool's capabilities.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// DefOf returns the definition advertised to the model for t.
func DefOf(t Tool) ToolDef {
	return ToolDef{Name: t.Name(), Description: t.Description(), Parameters: t.Schema()}
}

// ToolExecutor runs tools. Execute returns error for infrastructure failures.
// ToolResult.IsError indicates tool-reported domain failures sent back to the LLM.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
}

// ToolResult represents the outcome of a tool execution.
type ToolResult struct {
	Content []ContentBlock
	IsError bool
}

// TextResult returns a successful result holding text.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []ContentBlock{TextBlock{Text: text}}}
}

// ErrorResult returns a tool-reported failure holding msg.
func ErrorResult(msg string) *ToolResult {
	return &ToolResult{Content: []ContentBlock{TextBlock{Text: msg}}, IsError: true}
}
