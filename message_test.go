package recall_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/recall"
	"github.com/stretchr/testify/assert"
)

func TestMessage_Role(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		msg  recall.Message
		want recall.Role
	}{
		{"UserMessage", recall.UserMessage{}, recall.RoleUser},
		{"AssistantMessage", recall.AssistantMessage{}, recall.RoleAssistant},
		{"ToolResultMessage", recall.ToolResultMessage{}, recall.RoleTool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.msg.Role())
		})
	}
}

func TestRole_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, recall.Role("user"), recall.RoleUser)
	assert.Equal(t, recall.Role("assistant"), recall.RoleAssistant)
	assert.Equal(t, recall.Role("tool"), recall.RoleTool)
}

func TestNewUserMessage(t *testing.T) {
	t.Parallel()
	msg := recall.NewUserMessage("hello")
	assert.Equal(t, []recall.ContentBlock{recall.TextBlock{Text: "hello"}}, msg.Content)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestNewAssistantMessage(t *testing.T) {
	t.Parallel()
	msg := recall.NewAssistantMessage("hi there")
	assert.Equal(t, "hi there", recall.Text(msg.Content))
	assert.Equal(t, recall.StopEndTurn, msg.StopReason)
}

func TestText(t *testing.T) {
	t.Parallel()

	t.Run("joins text blocks and skips others", func(t *testing.T) {
		t.Parallel()
		blocks := []recall.ContentBlock{
			recall.ThinkingBlock{Thinking: "hmm"},
			recall.TextBlock{Text: "Hel"},
			recall.ToolCallBlock{ID: "tc_1", Name: "read", Arguments: json.RawMessage(`{}`)},
			recall.TextBlock{Text: "lo"},
		}
		assert.Equal(t, "Hello", recall.Text(blocks))
	})

	t.Run("nil blocks", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, recall.Text(nil))
	})
}

func TestContentBlockTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	blocks := []recall.ContentBlock{
		recall.TextBlock{Text: "hello"},
		recall.ThinkingBlock{Thinking: "reasoning"},
		recall.ToolCallBlock{ID: "tc_1", Name: "read", Arguments: json.RawMessage(`{}`)},
	}
	for _, block := range blocks {
		switch block.(type) {
		case recall.TextBlock:
		case recall.ThinkingBlock:
		case recall.ToolCallBlock:
		default:
			t.Fatalf("unexpected content block type: %T", block)
		}
	}
}

func TestEventTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	events := []recall.Event{
		recall.EventTextDelta{Delta: "hello"},
		recall.EventThinkingDelta{Delta: "reasoning"},
		recall.EventToolCallBegin{ID: "tc_1", Name: "read"},
		recall.EventToolCallDelta{ID: "tc_1", Delta: `{"path":"`},
		recall.EventToolCallEnd{Call: recall.ToolCallBlock{ID: "tc_1", Name: "read"}},
		recall.EventToolResult{ID: "tc_1", ToolName: "read", Content: "ok"},
	}
	assert.Len(t, events, 6, "update slice and switch when adding new Event types")
	for _, e := range events {
		switch e.(type) {
		case recall.EventTextDelta:
		case recall.EventThinkingDelta:
		case recall.EventToolCallBegin:
		case recall.EventToolCallDelta:
		case recall.EventToolCallEnd:
		case recall.EventToolResult:
		default:
			t.Fatalf("unexpected event type: %T", e)
		}
	}
}
