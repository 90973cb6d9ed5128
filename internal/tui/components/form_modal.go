package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vnma/vaxtui/internal/screens"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

const formWidth = 44

// FormModal collects the fields of a screens.Form. Fields with options are
// cycled with left/right instead of typed.
type FormModal struct {
	visible bool
	title   string
	fields  []screens.Field
	inputs  []textinput.Model
	choices []int
	focus   int
	err     string
}

// NewFormModal creates a hidden form modal
func NewFormModal() FormModal {
	return FormModal{}
}

// Show displays form with every field reset to its initial value
func (m *FormModal) Show(form screens.Form) {
	m.visible = true
	m.title = form.Title
	m.fields = form.Fields
	m.inputs = make([]textinput.Model, len(form.Fields))
	m.choices = make([]int, len(form.Fields))
	m.focus = 0
	m.err = ""

	for i, f := range form.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = formWidth - 2
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		ti.SetValue(f.Value)
		m.inputs[i] = ti

		m.choices[i] = 0
		for j, opt := range f.Options {
			if opt.Value == f.Value {
				m.choices[i] = j
				break
			}
		}
	}
	m.focusField(0)
}

// Hide dismisses the modal. The typed values are kept for Reopen.
func (m *FormModal) Hide() {
	m.visible = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// Reopen shows the last form again with an error line
func (m *FormModal) Reopen(errMsg string) {
	m.visible = true
	m.err = errMsg
	m.focusField(m.focus)
}

// IsVisible returns whether the modal is shown
func (m FormModal) IsVisible() bool {
	return m.visible
}

// Values returns the entered value of every field by key
func (m FormModal) Values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for i, f := range m.fields {
		if len(f.Options) > 0 {
			out[f.Key] = f.Options[m.choices[i]].Value
			continue
		}
		out[f.Key] = m.inputs[i].Value()
	}
	return out
}

func (m *FormModal) focusField(i int) {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	if len(m.fields[m.focus].Options) == 0 {
		m.inputs[m.focus].Focus()
	}
}

// Update handles input events, returns (modal, cmd, submitted)
func (m FormModal) Update(msg tea.Msg) (FormModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.Hide()
			return m, nil, false
		case "ctrl+s":
			return m, nil, true
		case "enter":
			if m.focus == len(m.inputs)-1 || len(m.inputs) == 0 {
				return m, nil, true
			}
			m.focusField(m.focus + 1)
			return m, nil, false
		case "tab", "down":
			m.focusField(m.focus + 1)
			return m, nil, false
		case "shift+tab", "up":
			m.focusField(m.focus - 1)
			return m, nil, false
		}

		if len(m.inputs) > 0 {
			if opts := m.fields[m.focus].Options; len(opts) > 0 {
				switch keyMsg.String() {
				case "left", "h":
					m.choices[m.focus] = (m.choices[m.focus] - 1 + len(opts)) % len(opts)
				case "right", "l", " ":
					m.choices[m.focus] = (m.choices[m.focus] + 1) % len(opts)
				}
				return m, nil, false
			}
		}
	}

	if len(m.inputs) == 0 {
		return m, nil, false
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

// View renders the form modal
func (m FormModal) View() string {
	if !m.visible {
		return ""
	}

	line := lipgloss.NewStyle().Width(formWidth).Background(styles.SlateDark)

	rows := []string{styles.ModalTitleStyle.Width(formWidth).Render(m.title)}
	for i, f := range m.fields {
		label := styles.SubtitleStyle
		if i == m.focus {
			label = styles.AccentStyle
		}
		rows = append(rows, line.Render(label.Render(f.Label)))

		if len(f.Options) > 0 {
			value := "‹ " + f.Options[m.choices[i]].Label + " ›"
			if i == m.focus {
				value = styles.TitleStyle.Render(value)
			} else {
				value = styles.DimStyle.Render(value)
			}
			rows = append(rows, line.Render(value))
		} else {
			rows = append(rows, line.Render(m.inputs[i].View()))
		}
	}

	if m.err != "" {
		rows = append(rows, "", line.Render(styles.ErrorStyle.Render(wrap(m.err, formWidth))))
	}
	rows = append(rows, "", styles.DimStyle.Render("tab next · enter save · esc cancel"))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// wrap breaks text into lines no wider than width
func wrap(text string, width int) string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var cur string
		for _, word := range strings.Fields(para) {
			if cur != "" && lipgloss.Width(cur)+1+lipgloss.Width(word) > width {
				lines = append(lines, cur)
				cur = word
				continue
			}
			if cur != "" {
				cur += " "
			}
			cur += word
		}
		lines = append(lines, cur)
	}
	return strings.Join(lines, "\n")
}
