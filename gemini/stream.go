package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/recall"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// stream implements [recall.Stream] by wrapping the genai SDK's streaming
// iterator. Parts of each chunk are turned into events and folded into
// content blocks; consecutive parts of the same kind extend one block.
type stream struct {
	pull  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	ctx   context.Context
	state recall.StreamState
	err   error

	pending []recall.Event
	blocks  []*block
	calls   int

	stopReason    recall.StopReason
	rawStopReason string
	usage         recall.Usage
}

type blockKind int

const (
	kindText blockKind = iota
	kindThinking
	kindToolCall
)

type block struct {
	kind blockKind
	text strings.Builder
	sig  []byte
	call recall.ToolCallBlock
}

func (b *block) content() recall.ContentBlock {
	switch b.kind {
	case kindThinking:
		return recall.ThinkingBlock{Thinking: b.text.String(), Signature: b.sig}
	case kindToolCall:
		return b.call
	default:
		return recall.TextBlock{Text: b.text.String()}
	}
}

// Interface compliance check.
var _ recall.Stream = (*stream)(nil)

// NewStreamFromIter wraps a genai response iterator as a [recall.Stream].
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) recall.Stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		pull:  next,
		stop:  stop,
		ctx:   ctx,
		state: recall.StreamStateNew,
	}
}

// Next returns the next semantic event. Returns io.EOF when the iterator is
// exhausted.
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
			return nil, fmt.Errorf("gemini: %w", recall.ErrStreamClosed)
		}

		if err := s.ctx.Err(); err != nil {
			s.terminate(err)
			return nil, s.err
		}

		resp, err, ok := s.pull()
		if !ok {
			s.complete()
			continue
		}
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = recall.StreamStateStreaming
		if err := s.processChunk(resp); err != nil {
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
		return recall.AssistantMessage{}, fmt.Errorf("gemini: %w", recall.ErrStreamNotReady)
	}
	msg := recall.AssistantMessage{
		StopReason:    s.stopReason,
		RawStopReason: s.rawStopReason,
		Usage:         s.usage,
	}
	for _, b := range s.blocks {
		msg.Content = append(msg.Content, b.content())
	}
	return msg, nil
}

// Close stops the underlying iterator.
func (s *stream) Close() error {
	if s.state != recall.StreamStateComplete && s.state != recall.StreamStateError {
		s.state = recall.StreamStateClosed
		s.stopReason = recall.StopAborted
		s.rawStopReason = "aborted"
	}
	s.stop()
	return nil
}

func (s *stream) complete() {
	s.state = recall.StreamStateComplete
	if s.stopReason == "" {
		s.stopReason = recall.StopEndTurn
		s.rawStopReason = string(recall.StopEndTurn)
	}
	// Gemini reports STOP even when the turn ends in function calls.
	if s.stopReason == recall.StopEndTurn && s.calls > 0 {
		s.stopReason = recall.StopToolUse
	}
}

func (s *stream) terminate(err error) {
	s.state = recall.StreamStateError
	s.err = fmt.Errorf("gemini: %w", err)
	switch {
	case s.ctx.Err() != nil || errors.Is(err, context.Canceled):
		s.stopReason = recall.StopAborted
		s.rawStopReason = "aborted"
	case s.stopReason == recall.StopError:
		// Keep the raw reason recorded by processChunk.
	default:
		s.stopReason = recall.StopError
		s.rawStopReason = "error"
	}
}

func (s *stream) processChunk(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return nil
	}
	if resp.UsageMetadata != nil {
		s.usage = convertUsage(resp.UsageMetadata)
	}
	if len(resp.Candidates) == 0 {
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
			s.stopReason = recall.StopError
			s.rawStopReason = string(fb.BlockReason)
			return fmt.Errorf("prompt blocked: %s", fb.BlockReason)
		}
		return nil
	}

	cand := resp.Candidates[0]
	if cand == nil {
		return nil
	}
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if err := s.processPart(p); err != nil {
				return err
			}
		}
	}
	if cand.FinishReason != "" {
		s.rawStopReason = string(cand.FinishReason)
		s.stopReason = mapFinishReason(cand.FinishReason)
	}
	return nil
}

func (s *stream) processPart(p *genai.Part) error {
	if p == nil {
		return nil
	}
	switch {
	case p.FunctionCall != nil:
		return s.functionCall(p)
	case p.Thought:
		b := s.current(kindThinking, p.Text == "" && p.ThoughtSignature != nil)
		if p.ThoughtSignature != nil {
			b.sig = p.ThoughtSignature
		}
		if p.Text != "" {
			b.text.WriteString(p.Text)
			s.pending = append(s.pending, recall.EventThinkingDelta{Delta: p.Text})
		}
	case p.Text != "":
		b := s.current(kindText, false)
		b.text.WriteString(p.Text)
		s.pending = append(s.pending, recall.EventTextDelta{Delta: p.Text})
	}
	return nil
}

// current returns the open block of the given kind, starting a new one when
// the last block is of a different kind. With reuse set, the most recent
// block of that kind is returned even if other blocks followed it.
func (s *stream) current(kind blockKind, reuse bool) *block {
	if reuse {
		for i := len(s.blocks) - 1; i >= 0; i-- {
			if s.blocks[i].kind == kind {
				return s.blocks[i]
			}
		}
	}
	if n := len(s.blocks); n > 0 && s.blocks[n-1].kind == kind {
		return s.blocks[n-1]
	}
	b := &block{kind: kind}
	s.blocks = append(s.blocks, b)
	return b
}

func (s *stream) functionCall(p *genai.Part) error {
	fc := p.FunctionCall
	args := json.RawMessage("{}")
	if fc.Args != nil {
		raw, err := json.Marshal(fc.Args)
		if err != nil {
			return fmt.Errorf("invalid tool call arguments for %s: %w", fc.Name, err)
		}
		args = raw
	}
	id := fc.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}

	// The signature on a function call part covers the reasoning before it.
	if p.ThoughtSignature != nil {
		for i := len(s.blocks) - 1; i >= 0; i-- {
			if b := s.blocks[i]; b.kind == kindThinking && b.sig == nil {
				b.sig = p.ThoughtSignature
				break
			}
		}
	}

	call := recall.ToolCallBlock{ID: id, Name: fc.Name, Arguments: args}
	s.blocks = append(s.blocks, &block{kind: kindToolCall, call: call})
	s.calls++
	s.pending = append(s.pending,
		recall.EventToolCallBegin{ID: id, Name: fc.Name},
		recall.EventToolCallDelta{ID: id, Delta: string(args)},
		recall.EventToolCallEnd{Call: call},
	)
	return nil
}

func convertUsage(u *genai.GenerateContentResponseUsageMetadata) recall.Usage {
	cached := int(u.CachedContentTokenCount)
	return recall.Usage{
		InputTokens:     max(int(u.PromptTokenCount)-cached, 0),
		OutputTokens:    int(u.CandidatesTokenCount) + int(u.ThoughtsTokenCount),
		CacheReadTokens: cached,
	}
}

func mapFinishReason(r genai.FinishReason) recall.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return recall.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return recall.StopLength
	case genai.FinishReasonSafety,
		genai.FinishReasonRecitation,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII,
		genai.FinishReasonMalformedFunctionCall:
		return recall.StopError
	default:
		return recall.StopUnknown
	}
}
