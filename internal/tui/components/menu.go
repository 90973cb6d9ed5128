package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

// MenuItem is one selectable line of a Menu
type MenuItem struct {
	Title       string
	Description string
}

// menuIndex implements fuzzy.Source over lowercased titles
type menuIndex struct {
	lowerTitles []string
}

func (idx menuIndex) String(i int) string { return idx.lowerTitles[i] }
func (idx menuIndex) Len() int            { return len(idx.lowerTitles) }

// Menu is the home screen list with a type-to-filter input
type Menu struct {
	items []MenuItem
	index menuIndex

	cursor int
	width  int
	height int

	filterActive bool
	filterInput  textinput.Model
	matches      []int // indices into items, nil when not filtering
}

// NewMenu creates a menu over items
func NewMenu(items []MenuItem) *Menu {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle

	lower := make([]string, len(items))
	for i, it := range items {
		lower[i] = strings.ToLower(it.Title)
	}
	return &Menu{items: items, index: menuIndex{lowerTitles: lower}, filterInput: ti}
}

func (c *Menu) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// IsFilterTyping returns true while the filter input has the keyboard
func (c *Menu) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

// Selected returns the index of the chosen item in the original list
func (c *Menu) Selected() (int, bool) {
	visible := c.visible()
	if c.cursor < 0 || c.cursor >= len(visible) {
		return 0, false
	}
	return visible[c.cursor], true
}

func (c *Menu) visible() []int {
	if c.matches != nil {
		return c.matches
	}
	all := make([]int, len(c.items))
	for i := range all {
		all[i] = i
	}
	return all
}

// Update handles navigation and filtering, returns (cmd, chosen)
func (c *Menu) Update(msg tea.Msg) (tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	if c.IsFilterTyping() {
		switch keyMsg.String() {
		case "esc":
			c.clearFilter()
			return nil, false
		case "enter":
			c.filterInput.Blur()
			return nil, len(c.visible()) > 0
		case "up", "down":
			// fall through to navigation
		default:
			var cmd tea.Cmd
			c.filterInput, cmd = c.filterInput.Update(msg)
			c.applyFilter()
			return cmd, false
		}
	}

	count := len(c.visible())
	switch keyMsg.String() {
	case "/":
		c.filterActive = true
		return c.filterInput.Focus(), false
	case "esc":
		if c.filterActive {
			c.clearFilter()
		}
	case "j", "down":
		if c.cursor < count-1 {
			c.cursor++
		}
	case "k", "up":
		if c.cursor > 0 {
			c.cursor--
		}
	case "g", "home":
		c.cursor = 0
	case "G", "end":
		c.cursor = max(count-1, 0)
	case "enter", "l":
		return nil, count > 0
	}
	return nil, false
}

func (c *Menu) clearFilter() {
	c.filterActive = false
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.matches = nil
	c.cursor = 0
}

func (c *Menu) applyFilter() {
	query := strings.ToLower(c.filterInput.Value())
	c.cursor = 0
	if query == "" {
		c.matches = nil
		return
	}
	found := fuzzy.FindFrom(query, c.index)
	c.matches = make([]int, len(found))
	for i, match := range found {
		c.matches[i] = match.Index
	}
}

// View renders the menu
func (c *Menu) View() string {
	var lines []string
	if c.filterActive {
		lines = append(lines, " "+c.filterInput.View(), "")
	}

	visible := c.visible()
	titleWidth := 0
	for _, it := range c.items {
		titleWidth = max(titleWidth, lipgloss.Width(it.Title))
	}
	for i, idx := range visible {
		it := c.items[idx]
		desc := styles.Truncate(it.Description, max(c.width-titleWidth-6, 0))
		dim := styles.DimGray
		parts := []styles.RowPart{
			{Text: styles.Pad(it.Title, titleWidth) + "   "},
			{Text: desc, Foreground: &dim},
		}
		lines = append(lines, styles.RenderListRow(parts, i == c.cursor, c.width))
	}
	if len(visible) == 0 {
		lines = append(lines, " "+styles.DimStyle.Render("No matches"))
	}

	return lipgloss.NewStyle().Width(c.width).Height(c.height).Render(strings.Join(lines, "\n"))
}
