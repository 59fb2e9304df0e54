// Package agent orchestrates the conversation loop between a Provider and
// the tools it may call.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/recall"
)

// DefaultMaxTurns bounds the number of model calls in one run.
const DefaultMaxTurns = 25

// ErrTooManyTurns indicates the model kept requesting tools past the turn limit.
var ErrTooManyTurns = errors.New("too many turns")

// Toolbox executes tools and describes them to the model.
type Toolbox interface {
	recall.ToolExecutor
	Definitions() []recall.ToolDef
}

// Compile-time interface check.
var _ recall.Agent = (*Loop)(nil)

// Loop orchestrates the conversation between a Provider and a Toolbox.
type Loop struct {
	provider     recall.Provider
	tools        Toolbox
	model        string
	systemPrompt string
	temperature  *float64
	maxTokens    int
	maxTurns     int
	logger       *log.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithModel sets the model ID for provider requests.
// Empty string means the provider uses its default model.
func WithModel(model string) Option {
	return func(l *Loop) { l.model = model }
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(l *Loop) { l.systemPrompt = prompt }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(l *Loop) { l.temperature = &t }
}

// WithMaxTokens caps the output tokens of each model call.
func WithMaxTokens(n int) Option {
	return func(l *Loop) { l.maxTokens = n }
}

// WithMaxTurns bounds the number of model calls in one run.
func WithMaxTurns(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxTurns = n
		}
	}
}

// WithLogger sets the logger for tool failures.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New creates a new Loop. When tools can be frozen (as toolbox.Registry can)
// it is frozen here, so the tool set the model sees is fixed for the life of
// the loop.
func New(provider recall.Provider, tools Toolbox, opts ...Option) *Loop {
	l := &Loop{
		provider: provider,
		tools:    tools,
		maxTurns: DefaultMaxTurns,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	if f, ok := tools.(interface{ Freeze() }); ok {
		f.Freeze()
	}
	return l
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent func(recall.Event)
}

// WithEventHandler sets a callback that receives each streaming event during
// the run. If nil or not set, events are silently discarded.
func WithEventHandler(h func(recall.Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// Run sends messages to the provider, streams the response, executes any tool
// calls, and repeats until the assistant stops requesting tools. It returns
// the messages produced by the run, including a partial assistant message
// when the stream failed.
func (l *Loop) Run(ctx context.Context, messages []recall.Message, opts ...RunOption) ([]recall.Message, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	history := append([]recall.Message(nil), messages...)
	start := len(history)
	for range l.maxTurns {
		cont, err := l.turn(ctx, &history, &cfg)
		if err != nil {
			return history[start:], err
		}
		if !cont {
			return history[start:], nil
		}
	}
	return history[start:], fmt.Errorf("%w: limit is %d", ErrTooManyTurns, l.maxTurns)
}

// Stream runs the loop and yields its events as they arrive. A failure is
// yielded last, wrapped with recall.ErrGeneration. When the consumer stops
// early the run is cancelled.
func (l *Loop) Stream(ctx context.Context, messages []recall.Message) iter.Seq2[recall.Event, error] {
	return func(yield func(recall.Event, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stopped := false
		handler := func(e recall.Event) {
			if stopped {
				return
			}
			if !yield(e, nil) {
				stopped = true
				cancel()
			}
		}
		_, err := l.Run(ctx, messages, WithEventHandler(handler))
		if err != nil && !stopped {
			yield(nil, fmt.Errorf("%w: %w", recall.ErrGeneration, err))
		}
	}
}

// turn executes a single turn of the conversation loop. It returns true if the
// loop should continue (tool calls were made), false if it should stop.
func (l *Loop) turn(ctx context.Context, history *[]recall.Message, cfg *runConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	req := recall.Request{
		Model:        l.model,
		SystemPrompt: l.systemPrompt,
		Messages:     *history,
		Tools:        l.tools.Definitions(),
		MaxTokens:    l.maxTokens,
		Temperature:  l.temperature,
	}
	if err := req.Validate(); err != nil {
		return false, err
	}

	stream, err := l.provider.Stream(ctx, req)
	if err != nil {
		return false, err
	}
	defer stream.Close()

	// Drain the stream, forwarding events to handler if set.
	var streamErr error
	for {
		evt, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if cfg.onEvent != nil {
			cfg.onEvent(evt)
		}
	}

	// Get the assembled message (partial or complete).
	msg, msgErr := stream.Message()
	if msgErr != nil {
		if streamErr != nil {
			return false, streamErr
		}
		return false, msgErr
	}

	*history = append(*history, msg)

	if streamErr != nil {
		return false, streamErr
	}

	var toolCalls []recall.ToolCallBlock
	for _, block := range msg.Content {
		if tc, ok := block.(recall.ToolCallBlock); ok {
			toolCalls = append(toolCalls, tc)
		}
	}

	if len(toolCalls) == 0 {
		return false, nil
	}

	for _, tc := range toolCalls {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		result, execErr := l.tools.Execute(ctx, tc.Name, tc.Arguments)
		if execErr != nil {
			l.logger.Warn("Tool failed", "tool", tc.Name, "error", execErr)
			result = recall.ErrorResult(execErr.Error())
		}

		*history = append(*history, recall.ToolResultMessage{
			ToolCallID: tc.ID,
			ToolName:   tc.Name,
			Content:    result.Content,
			IsError:    result.IsError,
			Timestamp:  time.Now(),
		})
		if cfg.onEvent != nil {
			cfg.onEvent(recall.EventToolResult{
				ID:       tc.ID,
				ToolName: tc.Name,
				Content:  recall.Text(result.Content),
				IsError:  result.IsError,
			})
		}
	}

	return true, nil
}
