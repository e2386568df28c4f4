package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjy-dev/covlens/internal/config"
)

// tabWidth is the terminal tab stop interval.
const tabWidth = 8

// palette holds the syntax colours, loosely based on the One Dark theme.
var palette = map[tokenClass]struct {
	fg   string
	bold bool
}{
	classKeyword:  {"#c678dd", true},
	classComment:  {"#5c6370", false},
	classString:   {"#98c379", false},
	classNumber:   {"#d19a66", false},
	classOperator: {"#56b6c2", false},
	classBuiltin:  {"#e5c07b", false},
	classFunction: {"#61afef", false},
	className:     {"#e06c75", false},
}

// Renderer draws annotated source listings.
type Renderer struct {
	renderer *lipgloss.Renderer
	theme    config.Theme
	syntax   bool

	lineNo    lipgloss.Style
	count     lipgloss.Style
	zero      lipgloss.Style
	border    lipgloss.Style
	header    lipgloss.Style
	uncovered lipgloss.Style
	classes   map[tokenClass]lipgloss.Style
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRenderer sets the lipgloss renderer, which decides the colour profile.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(rd *Renderer) { rd.renderer = r }
}

// WithTheme sets the coverage colours.
func WithTheme(t config.Theme) Option {
	return func(rd *Renderer) { rd.theme = t }
}

// WithSyntax enables or disables syntax highlighting.
func WithSyntax(enabled bool) Option {
	return func(rd *Renderer) { rd.syntax = enabled }
}

// New creates a Renderer. Without options it uses the default lipgloss
// renderer, config.DefaultTheme and syntax highlighting.
func New(opts ...Option) *Renderer {
	rd := &Renderer{
		theme:  config.DefaultTheme,
		syntax: true,
	}
	for _, opt := range opts {
		opt(rd)
	}
	if rd.renderer == nil {
		rd.renderer = lipgloss.DefaultRenderer()
	}

	ns := rd.renderer.NewStyle
	rd.lineNo = ns().Foreground(lipgloss.Color(rd.theme.BorderFg))
	rd.count = ns().Foreground(lipgloss.Color(rd.theme.CountFg))
	rd.zero = ns().Foreground(lipgloss.Color(rd.theme.ZeroFg)).Bold(true)
	rd.border = ns().Foreground(lipgloss.Color(rd.theme.BorderFg))
	rd.header = ns().Foreground(lipgloss.Color(rd.theme.HeaderFg)).Bold(true)
	rd.uncovered = ns().Background(lipgloss.Color(rd.theme.UncoveredBg))
	rd.classes = make(map[tokenClass]lipgloss.Style, len(palette)+1)
	rd.classes[classPlain] = ns()
	for class, c := range palette {
		rd.classes[class] = ns().Foreground(lipgloss.Color(c.fg)).Bold(c.bold)
	}
	return rd
}

// Lines renders every line of source. When st is active each line gets a
// count gutter and uncovered ranges are highlighted; otherwise only line
// numbers are shown.
func (rd *Renderer) Lines(filename string, source []byte, st *State) []string {
	text := string(source)
	lines := splitLines(text)

	var runs [][]run
	if rd.syntax {
		runs = tokenizeLines(filename, text, lines)
	}
	if runs == nil {
		runs = plainRuns(lines)
	}

	numWidth := len(strconv.Itoa(len(lines)))
	out := make([]string, len(lines))
	for i, line := range lines {
		lineNo := i + 1
		var b strings.Builder
		b.WriteString(rd.lineNo.Render(fmt.Sprintf("%*d", numWidth, lineNo)))
		b.WriteString(" ")
		if st != nil && st.Active() {
			b.WriteString(rd.gutter(st, lineNo))
			spans := SpansForLine(st.Regions(), lineNo, len(line))
			b.WriteString(rd.paint(runs[i], spanMask(spans, len(line))))
		} else {
			b.WriteString(rd.border.Render("│"))
			b.WriteString(" ")
			b.WriteString(rd.paint(runs[i], nil))
		}
		out[i] = b.String()
	}
	return out
}

// Render writes the listing to w, one line per source line.
func (rd *Renderer) Render(w io.Writer, filename string, source []byte, st *State) error {
	for _, line := range rd.Lines(filename, source, st) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// gutter renders the right-aligned count column followed by a border.
func (rd *Renderer) gutter(st *State, line int) string {
	value := st.DisplayValue(line)
	cell := fmt.Sprintf("%*s ", st.GutterWidth(), value)
	style := rd.count
	if value == "0" {
		style = rd.zero
	}
	return style.Render(cell) + rd.border.Render("│") + " "
}

// paint renders the runs of one line, giving masked bytes the uncovered background.
func (rd *Renderer) paint(runs []run, mask []bool) string {
	var b strings.Builder
	offset, col := 0, 0
	for _, r := range runs {
		base := rd.classes[r.class]
		for start := 0; start < len(r.text); {
			masked := mask != nil && mask[offset+start]
			end := start + 1
			for end < len(r.text) && (mask != nil && mask[offset+end]) == masked {
				end++
			}
			var piece string
			piece, col = expandTabs(r.text[start:end], col)
			style := base
			if masked {
				style = style.Inherit(rd.uncovered)
			}
			b.WriteString(style.Render(piece))
			start = end
		}
		offset += len(r.text)
	}
	return b.String()
}

// expandTabs replaces tabs with spaces up to the next tab stop, starting at
// display column col. It returns the expanded text and the new column.
func expandTabs(s string, col int) (string, int) {
	if !strings.Contains(s, "\t") {
		return s, col + lipgloss.Width(s)
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\t' {
			next := (col/tabWidth + 1) * tabWidth
			b.WriteString(strings.Repeat(" ", next-col))
			col = next
			continue
		}
		b.WriteRune(r)
		col += lipgloss.Width(string(r))
	}
	return b.String(), col
}

// Header summarises the state for display above a listing.
func (rd *Renderer) Header(filename string, st *State) string {
	if st == nil || !st.Active() {
		return rd.header.Render(filename) + "  coverage hidden"
	}
	stats := st.Mapping().Stats()
	return fmt.Sprintf("%s  max %d  lines %d/%d (%.1f%%)  uncovered regions %d",
		rd.header.Render(filename),
		stats.MaxCount,
		stats.CountedLines-stats.ZeroLines, stats.CountedLines, stats.Percentage(),
		stats.UncoveredRegions)
}
