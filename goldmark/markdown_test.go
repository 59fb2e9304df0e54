package goldmark_test

import (
	"bytes"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/goldmark"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func TestMain(m *testing.M) {
	// Force ANSI output so styled elements produce escape codes.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender(t *testing.T) {
	t.Parallel()
	theme := recall.DefaultTheme()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", goldmark.Render("", 80, theme))
	})

	t.Run("inline styles keep their text", func(t *testing.T) {
		t.Parallel()
		for _, src := range []string{"hello world", "**hello world**", "*hello world*", "`hello world`", "***hello world***"} {
			assert.Contains(t, stripANSI(goldmark.Render(src, 80, theme)), "hello world", src)
		}
	})

	t.Run("heading is styled", func(t *testing.T) {
		t.Parallel()
		heading := goldmark.Render("# Title", 80, theme)
		plain := goldmark.Render("Title", 80, theme)
		assert.Contains(t, stripANSI(heading), "Title")
		assert.NotEqual(t, heading, plain)
		assert.Contains(t, heading, "\x1b[")
	})

	t.Run("fenced code is not reflowed", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(goldmark.Render("```go\nfmt.Println(\"hello world\")\n```", 20, theme))
		assert.Contains(t, out, "go\n")
		assert.Contains(t, out, `│ fmt.Println("hello world")`)
	})

	t.Run("indented code", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(goldmark.Render("paragraph\n\n    indented code\n    more code", 80, theme))
		assert.Contains(t, out, "│ indented code")
		assert.Contains(t, out, "│ more code")
	})

	t.Run("lists", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(goldmark.Render("- one\n- two\n  - inner", 80, theme))
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "- one"))
		assert.True(t, strings.HasPrefix(lines[1], "- two"))
		assert.True(t, strings.HasPrefix(lines[2], "  - inner"))

		ordered := stripANSI(goldmark.Render("3. first\n4. second", 80, theme))
		assert.Contains(t, ordered, "3. first")
		assert.Contains(t, ordered, "4. second")
	})

	t.Run("list continuation lines are indented", func(t *testing.T) {
		t.Parallel()
		src := "- this is a very long list item that should wrap and have continuation lines properly indented"
		lines := strings.Split(stripANSI(goldmark.Render(src, 30, theme)), "\n")
		require.Greater(t, len(lines), 1)
		assert.True(t, strings.HasPrefix(lines[0], "- "))
		for _, line := range lines[1:] {
			assert.True(t, strings.HasPrefix(line, "  "), "continuation line should be indented: %q", line)
		}
	})

	t.Run("paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		long := "word1 word2 word3 word4 word5 word6 word7 word8 word9 word10 word11 word12"
		out := goldmark.Render(long, 30, theme)
		assert.Greater(t, len(strings.Split(out, "\n")), 1)
		assert.Contains(t, stripANSI(out), "word12")
	})

	t.Run("blockquote is prefixed", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(goldmark.Render("> quoted", 80, theme))
		assert.True(t, strings.HasPrefix(out, "│ quoted"))
	})

	t.Run("links and images show destination", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(goldmark.Render("[click](https://example.com) ![alt](https://example.com/i.png)", 80, theme))
		assert.Contains(t, out, "click (https://example.com)")
		assert.Contains(t, out, "alt (https://example.com/i.png)")
	})

	t.Run("thematic break", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(goldmark.Render("above\n\n---\n\nbelow", 80, theme))
		assert.Contains(t, out, "above")
		assert.Contains(t, out, "\n---\n")
		assert.Contains(t, out, "below")
	})

	t.Run("width zero defaults", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, stripANSI(goldmark.Render("hello world", 0, theme)), "hello world")
	})
}

func turn(user, reply string) []recall.Message {
	return []recall.Message{recall.NewUserMessage(user), recall.NewAssistantMessage(reply)}
}

func TestReplay(t *testing.T) {
	t.Parallel()
	theme := recall.DefaultTheme()

	t.Run("empty conversation writes nothing", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, goldmark.Replay(&buf, nil, 3, 80, theme))
		assert.Empty(t, buf.String())
	})

	t.Run("shows only the last turns", func(t *testing.T) {
		t.Parallel()
		var msgs []recall.Message
		for _, q := range []string{"q1", "q2", "q3", "q4"} {
			msgs = append(msgs, turn(q, "answer to "+q)...)
		}
		var buf bytes.Buffer
		require.NoError(t, goldmark.Replay(&buf, msgs, 2, 80, theme))

		out := stripANSI(buf.String())
		assert.Contains(t, out, "last 2 of 4 turns")
		assert.NotContains(t, out, "q1")
		assert.NotContains(t, out, "q2")
		assert.Contains(t, out, "User: q3")
		assert.Contains(t, out, "answer to q3")
		assert.Contains(t, out, "User: q4")
		assert.Contains(t, out, "answer to q4")
		assert.Less(t, strings.Index(out, "q3"), strings.Index(out, "q4"))
	})

	t.Run("zero turns writes nothing", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, goldmark.Replay(&buf, turn("question", "reply"), 0, 80, theme))
		assert.Empty(t, buf.String())
	})

	t.Run("more turns than stored", func(t *testing.T) {
		t.Parallel()
		var msgs []recall.Message
		for _, q := range []string{"a", "b"} {
			msgs = append(msgs, turn("question "+q, "reply")...)
		}
		var buf bytes.Buffer
		require.NoError(t, goldmark.Replay(&buf, msgs, 5, 80, theme))

		out := stripANSI(buf.String())
		assert.Contains(t, out, "last 2 of 2 turns")
		assert.Contains(t, out, "question a")
	})

	t.Run("renders markdown and tool results", func(t *testing.T) {
		t.Parallel()
		msgs := []recall.Message{
			recall.NewUserMessage("What is 2 plus 3 doubled?"),
			recall.AssistantMessage{Content: []recall.ContentBlock{
				recall.ToolCallBlock{ID: "c1", Name: "magic_calculator"},
			}},
			recall.ToolResultMessage{
				ToolCallID: "c1",
				ToolName:   "magic_calculator",
				Content:    []recall.ContentBlock{recall.TextBlock{Text: "10\nextra"}},
			},
			recall.NewAssistantMessage("The answer is **10**."),
		}
		var buf bytes.Buffer
		require.NoError(t, goldmark.Replay(&buf, msgs, 3, 80, theme))

		out := stripANSI(buf.String())
		assert.Contains(t, out, "↳ magic_calculator: 10 …")
		assert.Contains(t, out, "AI:\nThe answer is 10.")
		assert.Equal(t, 1, strings.Count(out, "AI:"), "tool-call-only replies are skipped")
	})
}
