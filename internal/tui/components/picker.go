package components

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

const pickerWidth = 30

// Picker is a small popup for choosing one of a list of options.
// Typing narrows the list with a fuzzy match.
type Picker struct {
	visible bool
	title   string
	options []string
	active  string
	query   string
	matches []string
	cursor  int
}

// NewPicker creates a hidden picker
func NewPicker() Picker {
	return Picker{}
}

// Show displays the picker. active is marked as the current choice.
func (m *Picker) Show(title string, options []string, active string) {
	m.visible = true
	m.title = title
	m.options = options
	m.active = active
	m.query = ""
	m.refilter()
	m.cursor = 0
	for i, opt := range m.matches {
		if opt == active {
			m.cursor = i
			break
		}
	}
}

// Hide dismisses the picker
func (m *Picker) Hide() {
	m.visible = false
}

// IsVisible returns whether the picker is shown
func (m Picker) IsVisible() bool {
	return m.visible
}

func (m *Picker) refilter() {
	m.cursor = 0
	if m.query == "" {
		m.matches = m.options
		return
	}
	ranks := fuzzy.RankFindFold(m.query, m.options)
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})
	m.matches = make([]string, len(ranks))
	for i, r := range ranks {
		m.matches[i] = r.Target
	}
}

// HandleKey processes a key press, returns (handled, selection).
// If selection is non-nil, the user confirmed a choice.
func (m *Picker) HandleKey(key string) (handled bool, selection *string) {
	if !m.visible {
		return false, nil
	}

	switch key {
	case "down", "ctrl+j", "ctrl+n":
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}
	case "up", "ctrl+k", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if len(m.matches) == 0 {
			return true, nil
		}
		chosen := m.matches[m.cursor]
		m.visible = false
		return true, &chosen
	case "esc":
		m.visible = false
	case "backspace":
		if m.query != "" {
			runes := []rune(m.query)
			m.query = string(runes[:len(runes)-1])
			m.refilter()
		}
	default:
		if r := []rune(key); len(r) == 1 {
			m.query += key
			m.refilter()
		}
	}
	return true, nil // consume all keys when visible
}

// View renders the picker
func (m Picker) View() string {
	if !m.visible {
		return ""
	}

	lines := []string{styles.ModalTitleStyle.Render(m.title)}
	if m.query != "" {
		lines = append(lines, styles.FilterPromptStyle.Render("/ ")+m.query)
	}

	for i, opt := range m.matches {
		prefix := "  "
		if opt == m.active {
			prefix = "✓ "
		}
		text := styles.Pad(prefix+opt, pickerWidth)

		switch {
		case i == m.cursor:
			lines = append(lines, lipgloss.NewStyle().
				Foreground(styles.White).
				Background(styles.SlateLight).
				Render(text))
		case opt == m.active:
			lines = append(lines, styles.AccentStyle.Render(text))
		default:
			lines = append(lines, lipgloss.NewStyle().Foreground(styles.LightGray).Render(text))
		}
	}
	if len(m.matches) == 0 {
		lines = append(lines, styles.DimStyle.Render("  no match"))
	}

	return styles.ModalStyle.Render(strings.Join(lines, "\n"))
}
