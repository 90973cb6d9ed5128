package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vnma/vaxtui/internal/screens"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

// Layout constants for tables
const (
	// Header line plus the "↑ more" / "↓ more" indicators
	TableChromeLines = 3

	cellGap = 2
)

// Table is a scrollable, cursor-driven view over the rows of a list screen.
// It holds only the selection; rows are passed in on every render.
type Table struct {
	cursor     int
	offset     int
	maxVisible int

	width  int
	height int

	loading      bool
	spinnerFrame int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{}
}

// SetSize sets the outer size of the table
func (t *Table) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.maxVisible = max(height-TableChromeLines, 1)
	t.ensureVisible()
}

// Visible returns how many rows fit on screen
func (t *Table) Visible() int {
	return t.maxVisible
}

// Cursor returns the selected row index
func (t *Table) Cursor() int {
	return t.cursor
}

// Reset moves the cursor back to the first row
func (t *Table) Reset() {
	t.cursor = 0
	t.offset = 0
}

// Clamp keeps the cursor inside a list of count rows
func (t *Table) Clamp(count int) {
	if t.cursor >= count {
		t.cursor = max(count-1, 0)
	}
	t.ensureVisible()
}

func (t *Table) SetLoading(loading bool) {
	t.loading = loading
}

func (t *Table) SetSpinnerFrame(frame int) {
	t.spinnerFrame = frame
}

// HandleKey moves the cursor. It reports whether the key was a movement key.
func (t *Table) HandleKey(key string, count int) bool {
	if count == 0 {
		return false
	}
	switch key {
	case "j", "down":
		if t.cursor < count-1 {
			t.cursor++
		}
	case "k", "up":
		if t.cursor > 0 {
			t.cursor--
		}
	case "g", "home":
		t.cursor = 0
		t.offset = 0
	case "G", "end":
		t.cursor = count - 1
	case "ctrl+d", "pgdown":
		t.cursor = min(t.cursor+max(t.maxVisible/2, 1), count-1)
	case "ctrl+u", "pgup":
		t.cursor = max(t.cursor-max(t.maxVisible/2, 1), 0)
	default:
		return false
	}
	t.ensureVisible()
	return true
}

// Selected returns the row under the cursor
func (t *Table) Selected(rows []screens.Row) (screens.Row, bool) {
	if t.cursor < 0 || t.cursor >= len(rows) {
		return screens.Row{}, false
	}
	return rows[t.cursor], true
}

func (t *Table) ensureVisible() {
	if t.maxVisible <= 0 {
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.maxVisible {
		t.offset = t.cursor - t.maxVisible + 1
	}
}

// widths resolves column widths. Columns without a fixed width share what
// is left of the table width.
func widths(columns []screens.Column, total int) []int {
	out := make([]int, len(columns))
	fixedSum, flexible := 0, 0
	for i, c := range columns {
		if c.Width > 0 {
			out[i] = c.Width
			fixedSum += c.Width
		} else {
			flexible++
		}
	}
	if flexible == 0 {
		return out
	}
	remaining := total - fixedSum - cellGap*(len(columns)-1) - 2
	share := max(remaining/flexible, 8)
	for i, c := range columns {
		if c.Width <= 0 {
			out[i] = share
		}
	}
	return out
}

// View renders the header and the visible rows
func (t *Table) View(columns []screens.Column, rows []screens.Row, empty string) string {
	ws := widths(columns, t.width)
	gap := strings.Repeat(" ", cellGap)

	var header []string
	for i, c := range columns {
		header = append(header, styles.Pad(c.Title, ws[i]))
	}
	lines := []string{" " + styles.ColumnHeaderStyle.Render(strings.Join(header, gap))}

	if t.loading && len(rows) == 0 {
		spinner := styles.SpinnerFrames[t.spinnerFrame%len(styles.SpinnerFrames)]
		lines = append(lines, " "+styles.AccentStyle.Render(spinner)+styles.DimStyle.Render(" Loading..."))
		return t.fill(lines)
	}
	if len(rows) == 0 {
		lines = append(lines, " "+styles.DimStyle.Render(empty))
		return t.fill(lines)
	}

	if t.offset > 0 {
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf(" ↑ %d more", t.offset)))
	} else {
		lines = append(lines, "")
	}

	end := min(t.offset+t.maxVisible, len(rows))
	for i := t.offset; i < end; i++ {
		var parts []styles.RowPart
		for j, cell := range rows[i].Cells {
			if j >= len(ws) {
				break
			}
			text := styles.Pad(cell, ws[j])
			if j < len(ws)-1 {
				text += gap
			}
			parts = append(parts, styles.RowPart{Text: text})
		}
		lines = append(lines, styles.RenderListRow(parts, i == t.cursor, t.width))
	}

	if below := len(rows) - end; below > 0 {
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf(" ↓ %d more", below)))
	}
	return t.fill(lines)
}

func (t *Table) fill(lines []string) string {
	return lipgloss.NewStyle().Width(t.width).Height(t.height).Render(strings.Join(lines, "\n"))
}
