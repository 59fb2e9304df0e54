package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/config"
	"github.com/fwojciec/recall/gemini"
	"github.com/fwojciec/recall/openai"
)

// newProvider constructs the configured backend. A missing credential is only
// a warning: every turn then fails with ErrConfiguration, or with the
// backend's authentication error, and the loop keeps running.
func newProvider(ctx context.Context, cfg *config.Config, apiKey string, logger *log.Logger) (recall.Provider, error) {
	if apiKey == "" {
		logger.Warn("Missing credential", "variable", cfg.APIKeyVar(), "error", recall.ErrConfiguration)
	}
	switch cfg.Backend {
	case config.BackendOpenAI:
		return openai.New(apiKey,
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithModel(cfg.Model),
		), nil
	case config.BackendGemini:
		if apiKey == "" {
			return unconfigured{err: fmt.Errorf("gemini: %s not set: %w", cfg.APIKeyVar(), recall.ErrConfiguration)}, nil
		}
		client, err := gemini.New(ctx, apiKey, gemini.WithModel(cfg.Model))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend %q: %w", cfg.Backend, recall.ErrConfiguration)
	}
}

// unconfigured is a provider that cannot be reached.
type unconfigured struct{ err error }

func (u unconfigured) Stream(context.Context, recall.Request) (recall.Stream, error) {
	return nil, u.err
}
