package mcp

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Limits on the text a remote tool can hand back to the model.
const (
	MaxOutputLines = 2000
	MaxOutputBytes = 50 * 1024
)

// cleanOutput makes remote tool output safe to store and send to the model.
// Terminal escape sequences and control characters are removed and the text
// is cut to the output limits, keeping the beginning.
func cleanOutput(s string) string {
	return truncateHead(sanitize(s), MaxOutputLines, MaxOutputBytes)
}

// sanitize strips ANSI sequences and control characters other than tab and
// newline. A lone carriage return rewinds to the start of the line, so
// progress-bar style output collapses to its final state.
func sanitize(s string) string {
	s = strings.ReplaceAll(ansi.Strip(s), "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = overwrite(line)
	}
	return strings.Join(lines, "\n")
}

func overwrite(line string) string {
	var out []rune
	col := 0
	for _, r := range line {
		switch {
		case r == '\r':
			col = 0
		case r != '\t' && r <= 0x1F, r == 0x7F:
		default:
			if col < len(out) {
				out[col] = r
			} else {
				out = append(out, r)
			}
			col++
		}
	}
	return string(out)
}

// truncateHead keeps whole lines from the start of s until either limit would
// be exceeded, then appends a note with the number of lines dropped.
func truncateHead(s string, maxLines, maxBytes int) string {
	if len(s) <= maxBytes && strings.Count(s, "\n") < maxLines {
		return s
	}
	lines := strings.Split(s, "\n")
	var b strings.Builder
	kept := 0
	for _, line := range lines {
		if kept == maxLines || b.Len()+len(line)+1 > maxBytes {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
		kept++
	}
	if kept == 0 {
		// A single oversized line: cut it at a rune boundary.
		cut := []rune(lines[0])
		for len(string(cut)) > maxBytes {
			cut = cut[:len(cut)*9/10]
		}
		b.WriteString(string(cut))
		b.WriteByte('\n')
		kept = 1
	}
	fmt.Fprintf(&b, "... (output truncated: %d of %d lines shown)", kept, len(lines))
	return b.String()
}
