package json

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/recall"
)

// maxLine bounds a single stored message.
const maxLine = 16 << 20

// Compile-time interface check.
var _ recall.History = (*Store)(nil)

// Store keeps one append-only log per session under a directory.
type Store struct {
	dir string
	now func() time.Time

	mu sync.Mutex
}

// NewStore returns a Store rooted at dir. The directory is created on the
// first append.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Close is a no-op. Every append is already on disk.
func (s *Store) Close() error { return nil }

func (s *Store) path(sessionID string) (string, error) {
	if sessionID == "" || sessionID == "." || sessionID == ".." || strings.ContainsAny(sessionID, `/\`) {
		return "", fmt.Errorf("json: invalid session id %q: %w", sessionID, recall.ErrHistoryUnavailable)
	}
	return filepath.Join(s.dir, sessionID+".jsonl"), nil
}

// AppendUser appends a user message holding text.
func (s *Store) AppendUser(ctx context.Context, sessionID, text string) error {
	msg := recall.NewUserMessage(text)
	msg.Timestamp = s.now()
	return s.Append(ctx, sessionID, msg)
}

// AppendAssistant appends an assistant message holding text.
func (s *Store) AppendAssistant(ctx context.Context, sessionID, text string) error {
	msg := recall.NewAssistantMessage(text)
	msg.Timestamp = s.now()
	return s.Append(ctx, sessionID, msg)
}

// Append writes msg as one line at the end of the session log.
func (s *Store) Append(ctx context.Context, sessionID string, msg recall.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("json: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	line, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("json: encode: %w: %w", recall.ErrHistoryUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("json: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("json: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	_, err = f.Write(append(line, '\n'))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("json: append %s: %w: %w", sessionID, recall.ErrHistoryUnavailable, err)
	}
	return nil
}

// Context returns the session's messages in insertion order. An unknown
// session has no messages.
func (s *Store) Context(ctx context.Context, sessionID string) ([]recall.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("json: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []recall.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json: %w: %w", recall.ErrHistoryUnavailable, err)
	}
	defer f.Close()

	msgs := []recall.Message{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		msg, err := DecodeMessage(line)
		if err != nil {
			return nil, fmt.Errorf("json: %s line %d: %w: %w", sessionID, n, recall.ErrHistoryUnavailable, err)
		}
		msgs = append(msgs, msg)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("json: read %s: %w: %w", sessionID, recall.ErrHistoryUnavailable, err)
	}
	return msgs, nil
}
