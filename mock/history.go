package mock

import (
	"context"

	"github.com/fwojciec/recall"
)

// Interface compliance check.
var _ recall.History = (*History)(nil)

// History is a test double for recall.History.
// Set the function fields for the methods you need. AppendUser and
// AppendAssistant fall back to AppendFn when their own field is nil.
type History struct {
	AppendFn          func(ctx context.Context, sessionID string, msg recall.Message) error
	AppendUserFn      func(ctx context.Context, sessionID, text string) error
	AppendAssistantFn func(ctx context.Context, sessionID, text string) error
	ContextFn         func(ctx context.Context, sessionID string) ([]recall.Message, error)
}

// Append delegates to AppendFn.
func (h *History) Append(ctx context.Context, sessionID string, msg recall.Message) error {
	return h.AppendFn(ctx, sessionID, msg)
}

// AppendUser delegates to AppendUserFn.
func (h *History) AppendUser(ctx context.Context, sessionID, text string) error {
	if h.AppendUserFn == nil {
		return h.Append(ctx, sessionID, recall.NewUserMessage(text))
	}
	return h.AppendUserFn(ctx, sessionID, text)
}

// AppendAssistant delegates to AppendAssistantFn.
func (h *History) AppendAssistant(ctx context.Context, sessionID, text string) error {
	if h.AppendAssistantFn == nil {
		return h.Append(ctx, sessionID, recall.NewAssistantMessage(text))
	}
	return h.AppendAssistantFn(ctx, sessionID, text)
}

// Context delegates to ContextFn.
func (h *History) Context(ctx context.Context, sessionID string) ([]recall.Message, error) {
	return h.ContextFn(ctx, sessionID)
}
