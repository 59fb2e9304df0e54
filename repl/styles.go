package repl

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/recall"
)

// Styles maps a Theme to lipgloss styles for the prompt loop.
type Styles struct {
	UserLabel lipgloss.Style
	AILabel   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t recall.Theme) Styles {
	return Styles{
		UserLabel: lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		AILabel:   lipgloss.NewStyle().Foreground(ansiColor(t.AIMsg)).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Muted:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	return Styles{
		UserLabel: lipgloss.NewStyle(),
		AILabel:   lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Muted:     lipgloss.NewStyle(),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
