package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

// ConfirmModal asks a yes/no question before an action runs
type ConfirmModal struct {
	visible bool
	prompt  string
	danger  bool
}

// NewConfirmModal creates a hidden confirm modal
func NewConfirmModal() ConfirmModal {
	return ConfirmModal{}
}

// Show displays prompt. danger switches to the red border.
func (m *ConfirmModal) Show(prompt string, danger bool) {
	m.visible = true
	m.prompt = prompt
	m.danger = danger
}

func (m *ConfirmModal) Hide() {
	m.visible = false
}

func (m ConfirmModal) IsVisible() bool {
	return m.visible
}

// HandleKey returns done once the user answered, and the answer
func (m *ConfirmModal) HandleKey(key string) (done, yes bool) {
	if !m.visible {
		return false, false
	}
	switch key {
	case "y", "Y", "enter":
		m.visible = false
		return true, true
	case "n", "N", "esc", "q":
		m.visible = false
		return true, false
	}
	return false, false
}

// View renders the confirm modal
func (m ConfirmModal) View() string {
	if !m.visible {
		return ""
	}
	style := styles.ModalStyle
	if m.danger {
		style = styles.DangerModalStyle
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render(wrap(m.prompt, formWidth)),
		"",
		styles.HelpKeyStyle.Render("[Y]")+styles.HelpDescStyle.Render(" Yes")+"      "+
			styles.HelpKeyStyle.Render("[N]")+styles.HelpDescStyle.Render(" No"),
	)
	return style.Render(body)
}
