package json

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/recall"
)

const (
	blockText     = "text"
	blockThinking = "thinking"
	blockToolCall = "tool_call"
)

// block is the on-disk form of a ContentBlock. Signatures are opaque provider
// bytes and marshal as base64.
type block struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"args,omitempty"`
	Signature []byte          `json:"sig,omitempty"`
}

func toBlocks(in []recall.ContentBlock) ([]block, error) {
	out := make([]block, 0, len(in))
	for i, b := range in {
		switch v := b.(type) {
		case recall.TextBlock:
			out = append(out, block{Type: blockText, Text: v.Text})
		case recall.ThinkingBlock:
			out = append(out, block{Type: blockThinking, Text: v.Thinking, Signature: v.Signature})
		case recall.ToolCallBlock:
			out = append(out, block{Type: blockToolCall, ID: v.ID, Name: v.Name, Arguments: v.Arguments, Signature: v.Signature})
		default:
			return nil, fmt.Errorf("content block %d: unsupported type %T", i, b)
		}
	}
	return out, nil
}

func fromBlocks(in []block) ([]recall.ContentBlock, error) {
	out := make([]recall.ContentBlock, 0, len(in))
	for i, b := range in {
		switch b.Type {
		case blockText:
			out = append(out, recall.TextBlock{Text: b.Text})
		case blockThinking:
			out = append(out, recall.ThinkingBlock{Thinking: b.Text, Signature: b.Signature})
		case blockToolCall:
			out = append(out, recall.ToolCallBlock{ID: b.ID, Name: b.Name, Arguments: b.Arguments, Signature: b.Signature})
		default:
			return nil, fmt.Errorf("content block %d: unknown type %q", i, b.Type)
		}
	}
	return out, nil
}
