package recall

import (
	"context"
	"iter"
)

// Agent is the runtime that interleaves model calls with tool invocations.
// Stream yields events in arrival order. A non-nil error is always the last
// item of the sequence.
type Agent interface {
	Stream(ctx context.Context, messages []Message) iter.Seq2[Event, error]
}
