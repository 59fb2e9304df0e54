package mock

import (
	"context"
	"iter"

	"github.com/fwojciec/recall"
)

// Interface compliance check.
var _ recall.Agent = (*Agent)(nil)

// Agent is a test double for recall.Agent.
// Set StreamFn before calling Stream.
type Agent struct {
	StreamFn func(ctx context.Context, messages []recall.Message) iter.Seq2[recall.Event, error]
}

// Stream delegates to StreamFn.
func (a *Agent) Stream(ctx context.Context, messages []recall.Message) iter.Seq2[recall.Event, error] {
	return a.StreamFn(ctx, messages)
}

// Reply returns a StreamFn that yields each text as an EventTextDelta and
// then, when err is non-nil, the error.
func Reply(err error, texts ...string) func(context.Context, []recall.Message) iter.Seq2[recall.Event, error] {
	return func(context.Context, []recall.Message) iter.Seq2[recall.Event, error] {
		return func(yield func(recall.Event, error) bool) {
			for _, t := range texts {
				if !yield(recall.EventTextDelta{Delta: t}, nil) {
					return
				}
			}
			if err != nil {
				yield(nil, err)
			}
		}
	}
}
