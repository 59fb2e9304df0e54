package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/builtin"
	"github.com/fwojciec/recall/config"
	"github.com/fwojciec/recall/mcp"
	"github.com/fwojciec/recall/toolbox"
)

// version is reported to tool providers during the handshake. Release builds
// set it with -ldflags "-X main.version=...".
var version = "dev"

// buildTools registers the local tools and every tool offered by a reachable
// provider. A provider whose tool names collide with tools already registered
// is logged, released and skipped. The caller owns the returned toolset and
// must close it. A nil dialer uses stdio.
func buildTools(ctx context.Context, cfg *config.Config, logger *log.Logger, dial mcp.Dialer) (*toolbox.Registry, *mcp.Toolset, error) {
	reg := toolbox.New()
	if err := reg.RegisterLocal(builtin.Tools()...); err != nil {
		return nil, nil, fmt.Errorf("register local tools: %w", err)
	}

	opts := []mcp.Option{
		mcp.WithLogger(logger),
		mcp.WithTimeout(cfg.ProviderTimeout),
		mcp.WithClientInfo("recall", version),
	}
	if dial != nil {
		opts = append(opts, mcp.WithDialer(dial))
	}
	toolset, err := mcp.NewConnector(opts...).Connect(ctx, cfg.Providers)
	if err != nil {
		return nil, nil, fmt.Errorf("connect tool providers: %w", err)
	}
	for _, p := range toolset.Providers() {
		err := reg.RegisterDynamic(p.Tools...)
		switch {
		case err == nil:
			continue
		case errors.Is(err, recall.ErrDuplicateToolName), errors.Is(err, recall.ErrEmptyToolName):
			logger.Error("Skipping tool provider", "provider", p.Name, "error", err)
			if rerr := toolset.Release(p.Name); rerr != nil {
				logger.Warn("Release failed", "provider", p.Name, "error", rerr)
			}
		default:
			_ = toolset.Close()
			return nil, nil, fmt.Errorf("register provider %s tools: %w", p.Name, err)
		}
	}
	return reg, toolset, nil
}
