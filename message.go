package recall

import (
	"encoding/json"
	"strings"
	"time"
)

// Message is a sealed interface representing a conversation message.
// The unexported marker method prevents external implementations.
// Role() returns the message's role without requiring a type switch.
type Message interface {
	isMessage()
	Role() Role
}

// UserMessage represents a message from the user.
type UserMessage struct {
	Content   []ContentBlock
	Timestamp time.Time
}

func (UserMessage) isMessage() {}

// Role returns RoleUser.
func (UserMessage) Role() Role { return RoleUser }

// AssistantMessage represents a message from the assistant.
type AssistantMessage struct {
	Content       []ContentBlock
	StopReason    StopReason
	RawStopReason string
	Usage         Usage
	Timestamp     time.Time
}

func (AssistantMessage) isMessage() {}

// Role returns RoleAssistant.
func (AssistantMessage) Role() Role { return RoleAssistant }

// ToolResultMessage records the outcome of one tool invocation.
type ToolResultMessage struct {
	ToolCallID string
	ToolName   string
	Content    []ContentBlock
	IsError    bool
	Timestamp  time.Time
}

func (ToolResultMessage) isMessage() {}

// Role returns RoleTool.
func (ToolResultMessage) Role() Role { return RoleTool }

// ContentBlock is a sealed interface representing a block of content.
// The unexported marker method prevents external implementations.
type ContentBlock interface {
	contentBlock()
}

// TextBlock contains text content.
type TextBlock struct {
	Text string
}

func (TextBlock) contentBlock() {}

// ThinkingBlock contains thinking/reasoning content. Signature is an opaque
// provider token that must be echoed back unchanged on later turns.
type ThinkingBlock struct {
	Thinking  string
	Signature []byte
}

func (ThinkingBlock) contentBlock() {}

// ToolCallBlock represents a tool call from the assistant.
type ToolCallBlock struct {
	ID        string
	Name      string
	Arguments json.RawMessage
	Signature []byte
}

func (ToolCallBlock) contentBlock() {}

// NewUserMessage returns a UserMessage holding a single TextBlock.
func NewUserMessage(text string) UserMessage {
	return UserMessage{
		Content:   []ContentBlock{TextBlock{Text: text}},
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage returns a completed AssistantMessage holding a single
// TextBlock.
func NewAssistantMessage(text string) AssistantMessage {
	return AssistantMessage{
		Content:    []ContentBlock{TextBlock{Text: text}},
		StopReason: StopEndTurn,
		Timestamp:  time.Now(),
	}
}

// Text concatenates the text of every TextBlock in blocks.
func Text(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		if tb, ok := b.(TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String()
}

// Interface compliance checks.
var (
	_ Message = UserMessage{}
	_ Message = AssistantMessage{}
	_ Message = ToolResultMessage{}

	_ ContentBlock = TextBlock{}
	_ ContentBlock = ThinkingBlock{}
	_ ContentBlock = ToolCallBlock{}
)
