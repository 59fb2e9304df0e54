package recall

import "context"

// History persists conversations as ordered, append-only message sequences
// keyed by session ID. A session is created implicitly by its first append.
// Implementations wrap every storage failure with ErrHistoryUnavailable.
type History interface {
	Append(ctx context.Context, sessionID string, msg Message) error
	AppendUser(ctx context.Context, sessionID, text string) error
	AppendAssistant(ctx context.Context, sessionID, text string) error
	// Context returns the session's messages in insertion order. An unknown
	// session yields an empty slice.
	Context(ctx context.Context, sessionID string) ([]Message, error)
}
