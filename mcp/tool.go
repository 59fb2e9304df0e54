package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/fwojciec/recall"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// session is one live provider connection shared by its tools.
type session struct {
	name   string
	client Client

	mu     sync.RWMutex
	closed bool
}

func (s *session) close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close provider %s: %w", s.name, err)
	}
	return nil
}

// Compile-time interface check.
var _ recall.Tool = (*RemoteTool)(nil)

// RemoteTool forwards invocations to the provider that advertised it.
type RemoteTool struct {
	sess        *session
	name        string
	description string
	schema      json.RawMessage
}

func newRemoteTool(sess *session, t mcpgo.Tool) (*RemoteTool, error) {
	schema := t.RawInputSchema
	if len(schema) == 0 {
		var err error
		schema, err = json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s schema: %w", t.Name, err)
		}
	}
	return &RemoteTool{sess: sess, name: t.Name, description: t.Description, schema: schema}, nil
}

// Name returns the tool name as advertised by the provider.
func (t *RemoteTool) Name() string { return t.name }

// Description returns the provider's description of the tool.
func (t *RemoteTool) Description() string { return t.description }

// Schema returns the tool's input schema.
func (t *RemoteTool) Schema() json.RawMessage { return t.schema }

// Invoke calls the tool on its provider. Transport failures and calls after
// the provider was released return recall.ErrToolUnavailable. A failure
// reported by the tool itself becomes an IsError result.
func (t *RemoteTool) Invoke(ctx context.Context, args json.RawMessage) (*recall.ToolResult, error) {
	var arguments map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return recall.ErrorResult(fmt.Sprintf("invalid arguments: %s", err)), nil
		}
	}

	t.sess.mu.RLock()
	defer t.sess.mu.RUnlock()
	if t.sess.closed {
		return nil, fmt.Errorf("%s: provider %s closed: %w", t.name, t.sess.name, recall.ErrToolUnavailable)
	}

	var req mcpgo.CallToolRequest
	req.Params.Name = t.name
	req.Params.Arguments = arguments
	res, err := t.sess.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", t.name, recall.ErrToolUnavailable, err)
	}
	return convertResult(res), nil
}

func convertResult(res *mcpgo.CallToolResult) *recall.ToolResult {
	var parts []string
	for _, c := range res.Content {
		switch v := c.(type) {
		case mcpgo.TextContent:
			parts = append(parts, v.Text)
		case *mcpgo.TextContent:
			parts = append(parts, v.Text)
		default:
			parts = append(parts, fmt.Sprintf("[unsupported content %T]", c))
		}
	}
	text := cleanOutput(strings.Join(parts, "\n"))
	if res.IsError {
		return recall.ErrorResult(text)
	}
	return recall.TextResult(text)
}
