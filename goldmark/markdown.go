// Package goldmark renders stored conversations to ANSI-styled terminal
// output, using goldmark to parse assistant markdown and lipgloss for styling.
package goldmark

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/recall"
)

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered without reflow.
func Render(source string, width int, theme recall.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return renderMarkdown(newPalette(theme), source, width)
}

// Replay writes the last turns of a conversation to w. A turn starts at each
// user message. Assistant replies are rendered as markdown, tool results as a
// single muted line. Nothing is written for an empty conversation or when
// turns is not positive.
func Replay(w io.Writer, msgs []recall.Message, turns, width int, theme recall.Theme) error {
	if len(msgs) == 0 || turns <= 0 {
		return nil
	}
	if width <= 0 {
		width = defaultWidth
	}
	p := newPalette(theme)

	starts := turnStarts(msgs)
	shown := starts
	if len(shown) > turns {
		shown = shown[len(shown)-turns:]
	}

	var sb strings.Builder
	sb.WriteString(p.muted.Render(fmt.Sprintf("Resuming conversation: last %d of %d turns", len(shown), len(starts))))
	sb.WriteString("\n\n")
	for _, m := range msgs[shown[0]:] {
		switch m := m.(type) {
		case recall.UserMessage:
			sb.WriteString(p.user.Render("User: ") + recall.Text(m.Content) + "\n")
		case recall.AssistantMessage:
			text := recall.Text(m.Content)
			if text == "" {
				continue
			}
			sb.WriteString(p.ai.Render("AI:") + "\n")
			sb.WriteString(renderMarkdown(p, text, width) + "\n\n")
		case recall.ToolResultMessage:
			style := p.tool
			if m.IsError {
				style = p.failure
			}
			sb.WriteString(p.muted.Render("  ↳ ") + style.Render(m.ToolName) + p.muted.Render(": "+firstLine(recall.Text(m.Content))) + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// turnStarts returns the index of every user message. Messages before the
// first user message are folded into the first turn.
func turnStarts(msgs []recall.Message) []int {
	var starts []int
	for i, m := range msgs {
		if m.Role() == recall.RoleUser {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 || starts[0] != 0 {
		starts = append([]int{0}, starts...)
	}
	return starts
}

func firstLine(s string) string {
	line, rest, _ := strings.Cut(s, "\n")
	if rest != "" {
		line += " …"
	}
	return line
}
