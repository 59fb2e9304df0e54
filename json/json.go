// Package json stores conversation history as JSON Lines: one file per
// session, one message per line.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/recall"
)

// record is the on-disk form of a single message.
type record struct {
	Role       recall.Role       `json:"role"`
	Time       time.Time         `json:"time"`
	Content    []block           `json:"content"`
	Stop       recall.StopReason `json:"stop,omitempty"`
	RawStop    string            `json:"raw_stop,omitempty"`
	Usage      *usage            `json:"usage,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolName   string            `json:"tool_name,omitempty"`
	IsError    bool              `json:"is_error,omitempty"`
}

type usage struct {
	Input     int `json:"input"`
	Output    int `json:"output"`
	CacheRead int `json:"cache_read,omitempty"`
}

// EncodeMessage returns msg as a single JSON line without the trailing
// newline.
func EncodeMessage(msg recall.Message) ([]byte, error) {
	var (
		rec     record
		content []recall.ContentBlock
	)
	switch m := msg.(type) {
	case recall.UserMessage:
		rec = record{Time: m.Timestamp}
		content = m.Content
	case recall.AssistantMessage:
		rec = record{Time: m.Timestamp, Stop: m.StopReason, RawStop: m.RawStopReason}
		content = m.Content
		if m.Usage != (recall.Usage{}) {
			rec.Usage = &usage{Input: m.Usage.InputTokens, Output: m.Usage.OutputTokens, CacheRead: m.Usage.CacheReadTokens}
		}
	case recall.ToolResultMessage:
		rec = record{Time: m.Timestamp, ToolCallID: m.ToolCallID, ToolName: m.ToolName, IsError: m.IsError}
		content = m.Content
	default:
		return nil, fmt.Errorf("unsupported message %T", msg)
	}
	blocks, err := toBlocks(content)
	if err != nil {
		return nil, err
	}
	rec.Role = msg.Role()
	rec.Content = blocks
	return json.Marshal(rec)
}

// DecodeMessage parses one line written by EncodeMessage.
func DecodeMessage(line []byte) (recall.Message, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, err
	}
	content, err := fromBlocks(rec.Content)
	if err != nil {
		return nil, err
	}
	switch rec.Role {
	case recall.RoleUser:
		return recall.UserMessage{Content: content, Timestamp: rec.Time}, nil
	case recall.RoleAssistant:
		m := recall.AssistantMessage{
			Content:       content,
			StopReason:    rec.Stop,
			RawStopReason: rec.RawStop,
			Timestamp:     rec.Time,
		}
		if rec.Usage != nil {
			m.Usage = recall.Usage{InputTokens: rec.Usage.Input, OutputTokens: rec.Usage.Output, CacheReadTokens: rec.Usage.CacheRead}
		}
		return m, nil
	case recall.RoleTool:
		return recall.ToolResultMessage{
			ToolCallID: rec.ToolCallID,
			ToolName:   rec.ToolName,
			Content:    content,
			IsError:    rec.IsError,
			Timestamp:  rec.Time,
		}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", rec.Role)
	}
}
