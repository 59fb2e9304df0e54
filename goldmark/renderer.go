package goldmark

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/recall"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type palette struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
	user      lipgloss.Style
	ai        lipgloss.Style
	tool      lipgloss.Style
	failure   lipgloss.Style
}

func newPalette(theme recall.Theme) palette {
	return palette{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
		user:      lipgloss.NewStyle().Foreground(ansiColor(theme.UserMsg)).Bold(true),
		ai:        lipgloss.NewStyle().Foreground(ansiColor(theme.AIMsg)).Bold(true),
		tool:      lipgloss.NewStyle().Foreground(ansiColor(theme.ToolCall)),
		failure:   lipgloss.NewStyle().Foreground(ansiColor(theme.Error)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// doc renders one parsed markdown document into out.
type doc struct {
	p     palette
	src   []byte
	width int
	out   strings.Builder
}

func renderMarkdown(p palette, source string, width int) string {
	d := &doc{p: p, src: []byte(source), width: width}
	root := goldmark.DefaultParser().Parse(text.NewReader(d.src))
	d.children(root, "")
	return strings.TrimRight(d.out.String(), "\n")
}

func (d *doc) children(n ast.Node, prefix string) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		d.block(c, prefix)
		if c.NextSibling() != nil && c.Kind() != ast.KindHTMLBlock {
			d.out.WriteString(strings.TrimRight(prefix, " ") + "\n")
		}
	}
}

// block writes n with every output line prefixed by prefix.
func (d *doc) block(n ast.Node, prefix string) {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		d.wrapped(prefix, d.inline(n))
	case *ast.Heading:
		d.wrapped(prefix, d.p.heading.Render(d.inline(n)))
	case *ast.FencedCodeBlock:
		if lang := string(n.Language(d.src)); lang != "" {
			d.line(prefix, d.p.muted.Render(lang))
		}
		d.code(n, prefix)
	case *ast.CodeBlock:
		d.code(n, prefix)
	case *ast.List:
		d.list(n, prefix)
	case *ast.Blockquote:
		d.children(n, prefix+d.p.muted.Render("│")+" ")
	case *ast.ThematicBreak:
		d.line(prefix, "---")
	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			d.line(prefix, strings.TrimRight(string(seg.Value(d.src)), "\n"))
		}
	default:
		d.children(n, prefix)
	}
}

func (d *doc) line(prefix, s string) {
	d.out.WriteString(prefix + s + "\n")
}

func (d *doc) wrapped(prefix, s string) {
	w := max(d.width-lipgloss.Width(prefix), 10)
	for _, l := range strings.Split(lipgloss.NewStyle().Width(w).Render(s), "\n") {
		d.line(prefix, l)
	}
}

// code writes verbatim lines behind a gutter; code is never reflowed.
func (d *doc) code(n ast.Node, prefix string) {
	gutter := d.p.muted.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		d.line(prefix+gutter, strings.TrimRight(string(seg.Value(d.src)), "\n"))
	}
}

func (d *doc) list(l *ast.List, prefix string) {
	num := l.Start
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		marker := "- "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		pad := strings.Repeat(" ", len(marker))
		first := true
		for ic := c.FirstChild(); ic != nil; ic = ic.NextSibling() {
			if sub, ok := ic.(*ast.List); ok {
				d.list(sub, prefix+pad)
				continue
			}
			var item doc
			item.p, item.src, item.width = d.p, d.src, d.width-len(prefix)-len(marker)
			item.block(ic, "")
			for _, ln := range strings.Split(strings.TrimRight(item.out.String(), "\n"), "\n") {
				lead := pad
				if first {
					lead, first = marker, false
				}
				d.line(prefix+lead, ln)
			}
		}
	}
}

func (d *doc) inline(n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		d.span(c, &sb)
	}
	return sb.String()
}

func (d *doc) span(n ast.Node, sb *strings.Builder) {
	switch n := n.(type) {
	case *ast.Text:
		sb.Write(n.Segment.Value(d.src))
		switch {
		case n.HardLineBreak():
			sb.WriteByte('\n')
		case n.SoftLineBreak():
			sb.WriteByte(' ')
		}
	case *ast.String:
		sb.Write(n.Value)
	case *ast.Emphasis:
		if n.Level == 1 {
			sb.WriteString(d.p.italic.Render(d.inline(n)))
		} else {
			sb.WriteString(d.p.bold.Render(d.inline(n)))
		}
	case *ast.CodeSpan:
		sb.WriteString(d.p.bold.Render(d.inline(n)))
	case *ast.Link:
		sb.WriteString(d.p.underline.Render(d.inline(n)) + " " + d.p.muted.Render("("+string(n.Destination)+")"))
	case *ast.Image:
		sb.WriteString(d.p.underline.Render(d.inline(n)) + " " + d.p.muted.Render("("+string(n.Destination)+")"))
	case *ast.AutoLink:
		sb.WriteString(d.p.underline.Render(string(n.URL(d.src))))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(d.src))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			d.span(c, sb)
		}
	}
}
