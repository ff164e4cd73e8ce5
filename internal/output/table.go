package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// table is a left-aligned text table. Cells are padded by display width
// before coloring so escape codes never skew the columns.
type table struct {
	headers []string
	rows    [][]string
	colors  [][]*color.Color
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

// addRow appends a row. colors may be shorter than cells; nil entries are
// printed plain.
func (t *table) addRow(cells []string, colors ...*color.Color) {
	t.rows = append(t.rows, cells)
	t.colors = append(t.colors, colors)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t *table) render(w io.Writer) {
	t.renderWidth(w, terminalWidth(w))
}

// renderWidth renders the table. When maxWidth is positive, the separator
// and every line wider than maxWidth are cut to it; cut lines lose color.
func (t *table) renderWidth(w io.Writer, maxWidth int) {
	widths := t.widths()
	total := 0
	for _, width := range widths {
		total += width + 2
	}
	total -= 2
	if maxWidth > 0 && total > maxWidth {
		total = maxWidth
	}

	fit := func(cells []string, colors []*color.Color) string {
		plain := strings.TrimRight(t.line(cells, widths, nil), " ")
		if maxWidth > 0 && runewidth.StringWidth(plain) > maxWidth {
			return runewidth.Truncate(plain, maxWidth, "…")
		}
		return strings.TrimRight(t.line(cells, widths, colors), " ")
	}

	header := fit(t.headers, nil)
	fmt.Fprintln(w, Header.Sprint(header))
	fmt.Fprintln(w, strings.Repeat("─", total))
	for i, row := range t.rows {
		fmt.Fprintln(w, fit(row, t.colors[i]))
	}
}

func (t *table) line(cells []string, widths []int, colors []*color.Color) string {
	var sb strings.Builder
	for i, cell := range cells {
		padded := cell
		if i < len(cells)-1 {
			padded = runewidth.FillRight(cell, widths[i]+2)
		}
		if i < len(colors) && colors[i] != nil {
			// Color only the text, not the padding.
			padded = colors[i].Sprint(cell) + padded[len(cell):]
		}
		sb.WriteString(padded)
	}
	return sb.String()
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	case diff < 365*24*time.Hour:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := int(diff.Hours() / 24 / 365)
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}
