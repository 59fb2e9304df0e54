// Package sqlite implements recall.History on top of an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/recall"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	session_id  TEXT    NOT NULL,
	sequence_no INTEGER NOT NULL,
	role        TEXT    NOT NULL CHECK (role IN ('user', 'assistant', 'tool')),
	content     TEXT    NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (session_id, sequence_no)
)`

// Compile-time interface check.
var _ recall.History = (*Store)(nil)

// Store is an append-only message log keyed by session ID.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at dsn, e.g. "file:memory.db".
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w: %w", dsn, recall.ErrHistoryUnavailable, err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// alive for the life of the store.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// toolPayload is the content column of a tool row.
type toolPayload struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Text       string `json:"text"`
	IsError    bool   `json:"is_error"`
}

// AppendUser appends a user message holding text.
func (s *Store) AppendUser(ctx context.Context, sessionID, text string) error {
	return s.insert(ctx, sessionID, recall.RoleUser, text)
}

// AppendAssistant appends an assistant message holding text.
func (s *Store) AppendAssistant(ctx context.Context, sessionID, text string) error {
	return s.insert(ctx, sessionID, recall.RoleAssistant, text)
}

// Append appends msg. Only text content is stored for user and assistant
// messages.
func (s *Store) Append(ctx context.Context, sessionID string, msg recall.Message) error {
	switch m := msg.(type) {
	case recall.UserMessage:
		return s.insert(ctx, sessionID, recall.RoleUser, recall.Text(m.Content))
	case recall.AssistantMessage:
		return s.insert(ctx, sessionID, recall.RoleAssistant, recall.Text(m.Content))
	case recall.ToolResultMessage:
		data, err := json.Marshal(toolPayload{
			ToolCallID: m.ToolCallID,
			ToolName:   m.ToolName,
			Text:       recall.Text(m.Content),
			IsError:    m.IsError,
		})
		if err != nil {
			return fmt.Errorf("sqlite: encode tool result: %w: %w", recall.ErrHistoryUnavailable, err)
		}
		return s.insert(ctx, sessionID, recall.RoleTool, string(data))
	default:
		return fmt.Errorf("sqlite: unknown message type %T: %w", msg, recall.ErrHistoryUnavailable)
	}
}

func (s *Store) insert(ctx context.Context, sessionID string, role recall.Role, content string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var next int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence_no), 0) + 1 FROM messages WHERE session_id = ?`,
		sessionID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("sqlite: next sequence: %w: %w", recall.ErrHistoryUnavailable, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, sequence_no, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, next, string(role), content, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	return nil
}

// Context returns the session's messages in insertion order.
func (s *Store) Context(ctx context.Context, sessionID string) ([]recall.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY sequence_no`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	defer rows.Close()

	msgs := []recall.Message{}
	for rows.Next() {
		var role, content, created string
		if err := rows.Scan(&role, &content, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w: %w", recall.ErrHistoryUnavailable, err)
		}
		msg, err := decode(recall.Role(role), content, parseTime(created))
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	return msgs, nil
}

func decode(role recall.Role, content string, ts time.Time) (recall.Message, error) {
	blocks := []recall.ContentBlock{recall.TextBlock{Text: content}}
	switch role {
	case recall.RoleUser:
		return recall.UserMessage{Content: blocks, Timestamp: ts}, nil
	case recall.RoleAssistant:
		return recall.AssistantMessage{Content: blocks, StopReason: recall.StopEndTurn, Timestamp: ts}, nil
	case recall.RoleTool:
		var p toolPayload
		if err := json.Unmarshal([]byte(content), &p); err != nil {
			return nil, fmt.Errorf("sqlite: corrupt tool row: %w: %w", recall.ErrHistoryUnavailable, err)
		}
		return recall.ToolResultMessage{
			ToolCallID: p.ToolCallID,
			ToolName:   p.ToolName,
			Content:    []recall.ContentBlock{recall.TextBlock{Text: p.Text}},
			IsError:    p.IsError,
			Timestamp:  ts,
		}, nil
	default:
		return nil, fmt.Errorf("sqlite: unknown role %q: %w", role, recall.ErrHistoryUnavailable)
	}
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

