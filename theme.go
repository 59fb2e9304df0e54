package recall

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme. A negative index means no color.
type Theme struct {
	UserMsg  int // User prompt label
	AIMsg    int // Assistant prompt label
	ToolCall int // Tool names in banners
	Error    int // Error fragments and messages
	Success  int // Success indicators
	Muted    int // Hints, code gutters
	Accent   int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		AIMsg:    2,
		ToolCall: 3,
		Error:    1,
		Success:  2,
		Muted:    8,
		Accent:   5,
	}
}
