package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fwojciec/recall"
	"github.com/google/uuid"
)

// maxLineSize bounds one SSE line. Tool call arguments can be large.
const maxLineSize = 1 << 20

// stream implements [recall.Stream] by parsing SSE data lines from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   recall.StreamState
	err     error // terminal error, if any

	pending  []recall.Event
	text     strings.Builder
	thinking strings.Builder
	calls    map[int]*callState
	finished bool // a finish_reason was seen

	stopReason    recall.StopReason
	rawStopReason string
	usage         recall.Usage
}

// callState tracks a tool call being assembled from indexed deltas.
type callState struct {
	id    string
	name  string
	args  strings.Builder
	ended bool
}

// Interface compliance check.
var _ recall.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &stream{
		body:    body,
		scanner: sc,
		ctx:     ctx,
		state:   recall.StreamStateNew,
		calls:   make(map[int]*callState),
	}
}

// Next reads the next semantic event from the SSE stream.
// Returns io.EOF when the stream completes normally.
func (s *stream) Next() (recall.Event, error) {
	for {
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			return evt, nil
		}

		switch s.state {
		case recall.StreamStateComplete:
			return nil, io.EOF
		case recall.StreamStateError:
			return nil, s.err
		case recall.StreamStateClosed:
			return nil, fmt.Errorf("openai: %w", recall.ErrStreamClosed)
		}

		data, err := s.readData()
		if err == io.EOF && s.finished {
			// Some compatible servers close the stream without [DONE].
			s.complete()
			continue
		}
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = recall.StreamStateStreaming

		if data == doneSentinel {
			s.complete()
			continue
		}
		if err := s.processChunk(data); err != nil {
			s.terminate(err)
			return nil, s.err
		}
	}
}

// State returns the current stream state.
func (s *stream) State() recall.StreamState {
	return s.state
}

// Message returns the assembled AssistantMessage.
func (s *stream) Message() (recall.AssistantMessage, error) {
	if s.state == recall.StreamStateNew {
		return recall.AssistantMessage{}, fmt.Errorf("openai: %w", recall.ErrStreamNotReady)
	}
	msg := recall.AssistantMessage{
		StopReason:    s.stopReason,
		RawStopReason: s.rawStopReason,
		Usage:         s.usage,
	}
	if s.thinking.Len() > 0 {
		msg.Content = append(msg.Content, recall.ThinkingBlock{Thinking: s.thinking.String()})
	}
	if s.text.Len() > 0 {
		msg.Content = append(msg.Content, recall.TextBlock{Text: s.text.String()})
	}
	for _, idx := range s.callOrder() {
		msg.Content = append(msg.Content, s.calls[idx].block())
	}
	return msg, nil
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != recall.StreamStateComplete && s.state != recall.StreamStateError {
		s.state = recall.StreamStateClosed
		s.stopReason = recall.StopAborted
		s.rawStopReason = "aborted"
	}
	return s.body.Close()
}

func (s *stream) complete() {
	s.endCalls()
	s.state = recall.StreamStateComplete
	if s.stopReason == "" {
		s.stopReason = recall.StopEndTurn
	}
}

// terminate records a terminal error and sets the appropriate state and stop reason.
func (s *stream) terminate(err error) {
	s.state = recall.StreamStateError
	if err == io.EOF {
		err = fmt.Errorf("openai: unexpected end of stream")
	}
	s.err = err
	if s.ctx.Err() != nil {
		s.stopReason = recall.StopAborted
		s.rawStopReason = "aborted"
	} else {
		s.stopReason = recall.StopError
		s.rawStopReason = "error"
	}
}

// readData returns the payload of the next "data:" line. Blank lines,
// comments, and other SSE fields are skipped.
func (s *stream) readData() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		return data, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return "", io.EOF
}

func (s *stream) processChunk(data string) error {
	var chunk sseChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return fmt.Errorf("openai: failed to parse chunk: %w", err)
	}
	if chunk.Error != nil {
		return fmt.Errorf("openai: %s", chunk.Error.Message)
	}
	if chunk.Usage != nil {
		s.usage = convertUsage(*chunk.Usage)
	}

	for _, choice := range chunk.Choices {
		if choice.Index != 0 {
			continue
		}
		d := choice.Delta
		if d.ReasoningContent != "" {
			s.thinking.WriteString(d.ReasoningContent)
			s.pending = append(s.pending, recall.EventThinkingDelta{Delta: d.ReasoningContent})
		}
		if d.Content != "" {
			s.text.WriteString(d.Content)
			s.pending = append(s.pending, recall.EventTextDelta{Delta: d.Content})
		}
		for _, tc := range d.ToolCalls {
			s.toolCallDelta(tc)
		}
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			s.finished = true
			s.rawStopReason = *choice.FinishReason
			s.stopReason = mapStopReason(*choice.FinishReason)
			s.endCalls()
		}
	}
	return nil
}

func (s *stream) toolCallDelta(tc sseToolCallDelta) {
	cs, ok := s.calls[tc.Index]
	if !ok {
		id := tc.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		cs = &callState{id: id, name: tc.Function.Name}
		s.calls[tc.Index] = cs
		s.pending = append(s.pending, recall.EventToolCallBegin{ID: cs.id, Name: cs.name})
	} else if cs.name == "" && tc.Function.Name != "" {
		cs.name = tc.Function.Name
	}
	if tc.Function.Arguments != "" {
		cs.args.WriteString(tc.Function.Arguments)
		s.pending = append(s.pending, recall.EventToolCallDelta{ID: cs.id, Delta: tc.Function.Arguments})
	}
}

// endCalls emits EventToolCallEnd for every call not yet ended, in index order.
func (s *stream) endCalls() {
	for _, idx := range s.callOrder() {
		cs := s.calls[idx]
		if cs.ended {
			continue
		}
		cs.ended = true
		s.pending = append(s.pending, recall.EventToolCallEnd{Call: cs.block()})
	}
}

func (s *stream) callOrder() []int {
	idx := make([]int, 0, len(s.calls))
	for i := range s.calls {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func (cs *callState) block() recall.ToolCallBlock {
	return recall.ToolCallBlock{ID: cs.id, Name: cs.name, Arguments: normalizeArguments(cs.args.String())}
}

// normalizeArguments returns raw as JSON. Empty arguments become an empty
// object; text that is not valid JSON is kept as a JSON string so it survives
// persistence and the tool can report the problem.
func normalizeArguments(raw string) json.RawMessage {
	if strings.TrimSpace(raw) == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	quoted, _ := json.Marshal(raw)
	return quoted
}

func convertUsage(u sseUsage) recall.Usage {
	cached := 0
	if u.PromptTokensDetails != nil {
		cached = u.PromptTokensDetails.CachedTokens
	}
	return recall.Usage{
		InputTokens:     max(u.PromptTokens-cached, 0),
		OutputTokens:    u.CompletionTokens,
		CacheReadTokens: cached,
	}
}

func mapStopReason(raw string) recall.StopReason {
	switch raw {
	case "stop":
		return recall.StopEndTurn
	case "length":
		return recall.StopLength
	case "tool_calls", "function_call":
		return recall.StopToolUse
	default:
		return recall.StopUnknown
	}
}
