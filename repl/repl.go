// Package repl implements the interactive prompt loop: read a line, stream the
// reply, repeat until the user leaves or input ends.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/recall"
)

const (
	// UserPrompt is printed before each line of input.
	UserPrompt = "User: "
	// AIPrefix is printed before each streamed reply.
	AIPrefix = "AI: "
	// Farewell is printed when the user types an exit keyword.
	Farewell = "Goodbye!"

	maxLineSize = 1 << 20
)

// ErrLineTooLong reports an input line longer than 1 MiB. The line is
// discarded and the loop keeps reading.
var ErrLineTooLong = errors.New("input line too long")

// State is the loop's lifecycle position.
type State int

const (
	Idle State = iota
	AwaitingInput
	Processing
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingInput:
		return "awaiting_input"
	case Processing:
		return "processing"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Responder produces the streamed reply to one line of input.
type Responder interface {
	Respond(ctx context.Context, sessionID, text string) iter.Seq[recall.Fragment]
}

// REPL reads user input line by line and prints streamed replies.
type REPL struct {
	responder Responder
	sessionID string
	in        *bufio.Reader
	out       io.Writer
	styles    Styles
	hook      func(State)
	logger    *log.Logger
	state     State
}

// Option configures a [REPL].
type Option func(*REPL)

// WithStateHook registers fn to be called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(r *REPL) { r.hook = fn }
}

// WithStyles sets the output styles. Default is NewStyles(recall.DefaultTheme()).
func WithStyles(s Styles) Option {
	return func(r *REPL) { r.styles = s }
}

// WithLogger sets the logger. Default discards output.
func WithLogger(l *log.Logger) Option {
	return func(r *REPL) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a REPL for one session.
func New(responder Responder, sessionID string, in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{
		responder: responder,
		sessionID: sessionID,
		in:        bufio.NewReader(in),
		out:       out,
		styles:    NewStyles(recall.DefaultTheme()),
		logger:    log.New(io.Discard),
		state:     Idle,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// State returns the current state.
func (r *REPL) State() State {
	return r.state
}

// Run loops until an exit keyword, end of input, or ctx is done. Failed turns
// are reported inline and the loop continues. Only a read error other than
// end of input is returned.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			r.set(Terminated)
			return nil
		}
		r.set(AwaitingInput)
		fmt.Fprint(r.out, r.styles.UserLabel.Render(UserPrompt))

		line, err := r.readLine()
		if errors.Is(err, ErrLineTooLong) {
			r.logger.Warn("Discarded input line", "session", r.sessionID, "limit", maxLineSize)
			fmt.Fprintln(r.out, r.styles.Error.Render(recall.ErrorFragment(err).Text))
			continue
		}
		if err != nil {
			fmt.Fprintln(r.out)
			r.set(Terminated)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("repl: read input: %w", err)
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if isExit(text) {
			fmt.Fprintln(r.out, r.styles.Muted.Render(Farewell))
			r.set(Terminated)
			return nil
		}

		r.set(Processing)
		r.turn(ctx, text)
	}
}

func (r *REPL) turn(ctx context.Context, text string) {
	fmt.Fprint(r.out, r.styles.AILabel.Render(AIPrefix))
	for f := range r.responder.Respond(ctx, r.sessionID, text) {
		if f.Err != nil {
			r.logger.Debug("Turn failed", "session", r.sessionID, "error", f.Err)
			fmt.Fprint(r.out, r.styles.Error.Render(f.Text))
			continue
		}
		fmt.Fprint(r.out, f.Text)
	}
	fmt.Fprintln(r.out)
}

// readLine returns the next line without its terminator. A final line without
// a newline is returned as is; io.EOF follows it. Lines over maxLineSize are
// consumed in full and reported as ErrLineTooLong.
func (r *REPL) readLine() (string, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		chunk, err := r.in.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if tooLong {
				return "", ErrLineTooLong
			}
			if len(buf) == 0 {
				return "", io.EOF
			}
			return string(buf), nil
		case err != nil:
			return "", err
		case tooLong:
			return "", ErrLineTooLong
		}
		return strings.TrimSuffix(string(buf), "\n"), nil
	}
}

func (r *REPL) set(s State) {
	if r.state == s {
		return
	}
	r.state = s
	if r.hook != nil {
		r.hook(s)
	}
}

func isExit(text string) bool {
	return strings.EqualFold(text, "quit") || strings.EqualFold(text, "exit")
}
