// Package mcp connects to external tool providers speaking the Model Context
// Protocol over stdio and exposes their tools as recall.Tool values.
package mcp

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// ProviderSpec describes how to launch one tool provider.
type ProviderSpec struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
}

// Client is the subset of an MCP client session used by the connector.
// *client.Client satisfies it.
type Client interface {
	Initialize(ctx context.Context, req mcpgo.InitializeRequest) (*mcpgo.InitializeResult, error)
	ListTools(ctx context.Context, req mcpgo.ListToolsRequest) (*mcpgo.ListToolsResult, error)
	CallTool(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error)
	Close() error
}

// Dialer starts a provider process and returns a session that has not yet
// been initialized.
type Dialer func(ctx context.Context, spec ProviderSpec) (Client, error)

// DialStdio launches spec.Command as a child process and talks MCP over its
// stdin and stdout.
func DialStdio(_ context.Context, spec ProviderSpec) (Client, error) {
	c, err := client.NewStdioMCPClient(spec.Command, envList(spec.Env), spec.Args...)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.Command, err)
	}
	return c, nil
}

func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
