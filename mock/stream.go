package mock

import (
	"io"

	"github.com/fwojciec/recall"
)

// Interface compliance check.
var _ recall.Stream = (*Stream)(nil)

// Stream is a test double for recall.Stream.
// Set the function fields for the methods you need. NextFn and MessageFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value).
type Stream struct {
	NextFn    func() (recall.Event, error)
	StateFn   func() recall.StreamState
	MessageFn func() (recall.AssistantMessage, error)
	CloseFn   func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (recall.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() recall.StreamState {
	if s.StateFn == nil {
		return recall.StreamStateNew
	}
	return s.StateFn()
}

// Message delegates to MessageFn.
func (s *Stream) Message() (recall.AssistantMessage, error) {
	return s.MessageFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// ScriptedStream returns a Stream that replays events and then returns io.EOF.
// Message returns msg once the events are exhausted.
func ScriptedStream(msg recall.AssistantMessage, events ...recall.Event) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (recall.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			e := events[i]
			i++
			return e, nil
		},
		MessageFn: func() (recall.AssistantMessage, error) {
			return msg, nil
		},
	}
}
