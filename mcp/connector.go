package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/recall"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// DefaultTimeout bounds the handshake and tool listing of one provider.
const DefaultTimeout = 10 * time.Second

// Connector opens sessions to tool providers and collects their tools.
type Connector struct {
	dial          Dialer
	logger        *log.Logger
	timeout       time.Duration
	clientName    string
	clientVersion string
}

// Option configures a Connector.
type Option func(*Connector)

// WithDialer replaces the stdio dialer.
func WithDialer(d Dialer) Option {
	return func(c *Connector) { c.dial = d }
}

// WithLogger sets the logger used to report skipped providers.
func WithLogger(l *log.Logger) Option {
	return func(c *Connector) { c.logger = l }
}

// WithTimeout sets the per-provider handshake timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClientInfo sets the implementation name and version sent in the
// initialize handshake.
func WithClientInfo(name, version string) Option {
	return func(c *Connector) {
		c.clientName = name
		c.clientVersion = version
	}
}

// NewConnector creates a Connector that dials providers over stdio.
func NewConnector(opts ...Option) *Connector {
	c := &Connector{
		dial:          DialStdio,
		logger:        log.New(io.Discard),
		timeout:       DefaultTimeout,
		clientName:    "recall",
		clientVersion: "dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials every provider in order. A provider that fails to start,
// complete the handshake, or list its tools is logged and skipped; the
// others are unaffected. The returned Toolset owns every session that
// succeeded and must be closed. Connect only fails when ctx is done.
func (c *Connector) Connect(ctx context.Context, specs []ProviderSpec) (*Toolset, error) {
	ts := &Toolset{}
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(err, ts.Close())
		}
		p, err := c.connectOne(ctx, ts, spec)
		if err != nil {
			c.logger.Error("Skipping tool provider", "provider", spec.Name, "error", err)
			continue
		}
		c.logger.Info("Tools loaded", "provider", p.Name, "count", len(p.Tools))
		ts.mu.Lock()
		ts.providers = append(ts.providers, p)
		ts.mu.Unlock()
	}
	return ts, nil
}

func (c *Connector) connectOne(ctx context.Context, ts *Toolset, spec ProviderSpec) (Provider, error) {
	if spec.Name == "" || spec.Command == "" {
		return Provider{}, fmt.Errorf("provider needs a name and a command: %w", recall.ErrConfiguration)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cl, err := c.dial(ctx, spec)
	if err != nil {
		return Provider{}, fmt.Errorf("%w: %w", recall.ErrProviderConnection, err)
	}
	sess := &session{name: spec.Name, client: cl}
	release := ts.push(sess.close)

	var init mcpgo.InitializeRequest
	init.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcpgo.Implementation{Name: c.clientName, Version: c.clientVersion}
	if _, err := cl.Initialize(ctx, init); err != nil {
		return Provider{}, errors.Join(fmt.Errorf("initialize: %w: %w", recall.ErrProviderConnection, err), release())
	}

	list, err := cl.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		return Provider{}, errors.Join(fmt.Errorf("list tools: %w: %w", recall.ErrProviderConnection, err), release())
	}

	tools := make([]recall.Tool, 0, len(list.Tools))
	for _, t := range list.Tools {
		rt, err := newRemoteTool(sess, t)
		if err != nil {
			return Provider{}, errors.Join(err, release())
		}
		tools = append(tools, rt)
	}
	return Provider{Name: spec.Name, Tools: tools, release: release}, nil
}
