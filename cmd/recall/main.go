// Command recall is a streaming conversational agent with persistent memory
// and tools discovered from external MCP providers.
//
// Usage:
//
//	OPENAI_API_KEY=... recall
//
// Settings come from recall.yaml (or the file named by RECALL_CONFIG), a .env
// file in the working directory, and RECALL_* environment variables. Type
// "quit" or "exit" to leave.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/agent"
	"github.com/fwojciec/recall/config"
	"github.com/fwojciec/recall/goldmark"
	"github.com/fwojciec/recall/repl"
	"github.com/fwojciec/recall/respond"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "recall: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "recall"})

	// Env is read here and passed down as values.
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := loadConfig(os.Getenv("RECALL_CONFIG"), os.Getenv)
	if err != nil {
		return err
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	return start(ctx, cfg, os.Getenv(cfg.APIKeyVar()), os.Stdin, os.Stdout, logger)
}

// loadConfig layers the YAML file and the environment over the defaults.
// An explicit path must exist; the default path may be absent.
func loadConfig(path string, getenv func(string) string) (*config.Config, error) {
	optional := path == ""
	if optional {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}
	env, err := config.FromEnv(getenv)
	if err != nil {
		return nil, err
	}
	cfg.Merge(env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// start wires every component and runs the prompt loop until the user leaves.
func start(ctx context.Context, cfg *config.Config, apiKey string, in io.Reader, out io.Writer, logger *log.Logger) error {
	history, err := openHistory(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := history.Close(); err != nil {
			logger.Warn("Closing history", "error", err)
		}
	}()

	provider, err := newProvider(ctx, cfg, apiKey, logger)
	if err != nil {
		return err
	}

	tools, toolset, err := buildTools(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := toolset.Close(); err != nil {
			logger.Warn("Closing tool providers", "error", err)
		}
	}()

	opts := []agent.Option{
		agent.WithModel(cfg.Model),
		agent.WithSystemPrompt(cfg.SystemPrompt),
		agent.WithMaxTokens(cfg.MaxTokens),
		agent.WithMaxTurns(cfg.MaxTurns),
		agent.WithLogger(logger),
	}
	if cfg.Temperature != nil {
		opts = append(opts, agent.WithTemperature(*cfg.Temperature))
	}
	loop := agent.New(provider, tools, opts...)
	responder := respond.New(loop, history, respond.WithLogger(logger))

	theme := recall.DefaultTheme()
	banner(out, cfg, len(tools.All()))
	past, err := history.Context(ctx, cfg.SessionID)
	if err != nil {
		logger.Warn("Could not load past conversation", "session", cfg.SessionID, "error", err)
	} else if err := goldmark.Replay(out, past, cfg.Replay(), 0, theme); err != nil {
		return err
	}

	r := repl.New(responder, cfg.SessionID, in, out,
		repl.WithStyles(repl.NewStyles(theme)),
		repl.WithLogger(logger),
		repl.WithStateHook(func(s repl.State) { logger.Debug("State", "state", s) }),
	)
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func banner(w io.Writer, cfg *config.Config, toolCount int) {
	fmt.Fprintf(w, "\nAgent started (session: %s)\n", cfg.SessionID)
	fmt.Fprintf(w, "Memory stored in: %s\n", cfg.Store.DSN)
	fmt.Fprintf(w, "Tools available: %d\n", toolCount)
	fmt.Fprintf(w, "Type 'quit' or 'exit' to leave.\n\n")
}
