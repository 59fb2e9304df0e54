// Package respond implements the streaming response pipeline: it records the
// user's input, runs the agent over the session's full history, forwards text
// deltas as they arrive, and persists the completed reply.
package respond

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/recall"
)

// Responder produces streamed replies for one history store and agent.
type Responder struct {
	agent   recall.Agent
	history recall.History
	logger  *log.Logger
}

// Option configures a [Responder].
type Option func(*Responder)

// WithLogger sets the logger. Default discards output.
func WithLogger(l *log.Logger) Option {
	return func(r *Responder) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Responder.
func New(agent recall.Agent, history recall.History, opts ...Option) *Responder {
	r := &Responder{
		agent:   agent,
		history: history,
		logger:  log.New(io.Discard),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Respond returns the fragments of the reply to userText. The sequence is lazy:
// nothing happens until it is iterated, and it can be iterated only once.
//
// The user message is stored before the agent runs. The reply is stored as a
// single assistant message only when the agent finishes without error and
// produced text; the concatenated fragments then equal the stored text. A
// failure ends the sequence with one fragment whose Err is set.
func (r *Responder) Respond(ctx context.Context, sessionID, userText string) iter.Seq[recall.Fragment] {
	var used atomic.Bool
	return func(yield func(recall.Fragment) bool) {
		if used.Swap(true) {
			return
		}
		r.respond(ctx, sessionID, userText, yield)
	}
}

func (r *Responder) respond(ctx context.Context, sessionID, userText string, yield func(recall.Fragment) bool) {
	if err := r.history.AppendUser(ctx, sessionID, userText); err != nil {
		yield(recall.ErrorFragment(historyError("record input", err)))
		return
	}
	msgs, err := r.history.Context(ctx, sessionID)
	if err != nil {
		yield(recall.ErrorFragment(historyError("load context", err)))
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reply strings.Builder
	for evt, err := range r.agent.Stream(ctx, msgs) {
		if err != nil {
			r.logger.Error("Generation failed", "session", sessionID, "error", err)
			if !errors.Is(err, recall.ErrGeneration) {
				err = fmt.Errorf("%w: %w", recall.ErrGeneration, err)
			}
			yield(recall.ErrorFragment(err))
			return
		}
		delta, ok := evt.(recall.EventTextDelta)
		if !ok || delta.Delta == "" {
			continue
		}
		reply.WriteString(delta.Delta)
		if !yield(recall.Fragment{Text: delta.Delta}) {
			r.logger.Debug("Reply abandoned", "session", sessionID)
			return
		}
	}

	if reply.Len() == 0 {
		return
	}
	if err := r.history.AppendAssistant(ctx, sessionID, reply.String()); err != nil {
		yield(recall.ErrorFragment(historyError("record reply", err)))
	}
}

func historyError(op string, err error) error {
	if errors.Is(err, recall.ErrHistoryUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, recall.ErrHistoryUnavailable, err)
}
