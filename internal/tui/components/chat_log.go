package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

// ChatLine is one rendered message of a conversation
type ChatLine struct {
	Own    bool // sent by the local user, drawn on the right
	Sender string
	Text   string
	When   string
}

// ChatLog is a scrollable conversation that sticks to the newest message
type ChatLog struct {
	vp    viewport.Model
	lines []ChatLine
}

// NewChatLog creates an empty conversation view
func NewChatLog() *ChatLog {
	return &ChatLog{vp: viewport.New(0, 0)}
}

func (c *ChatLog) SetSize(width, height int) {
	c.vp.Width = width
	c.vp.Height = max(height, 1)
	c.render()
}

// SetLines replaces the conversation and scrolls to the end
func (c *ChatLog) SetLines(lines []ChatLine) {
	c.lines = lines
	c.render()
	c.vp.GotoBottom()
}

// Update scrolls the log
func (c *ChatLog) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.vp, cmd = c.vp.Update(msg)
	return cmd
}

func (c *ChatLog) render() {
	width := c.vp.Width
	if width <= 0 {
		return
	}
	bubbleWidth := max(width*2/3, 10)

	var out []string
	for _, l := range c.lines {
		style := styles.OtherBubbleStyle
		align := lipgloss.Left
		if l.Own {
			style = styles.OwnBubbleStyle
			align = lipgloss.Right
		}
		meta := styles.DimStyle.Render(strings.TrimSpace(l.Sender + "  " + l.When))
		bubble := style.Render(wrap(l.Text, bubbleWidth-2))
		block := lipgloss.JoinVertical(align, meta, bubble)
		out = append(out, lipgloss.PlaceHorizontal(width, align, block), "")
	}
	if len(out) == 0 {
		out = append(out, styles.DimStyle.Render("No messages yet. Say hello!"))
	}
	c.vp.SetContent(strings.Join(out, "\n"))
}

// View renders the visible part of the conversation
func (c *ChatLog) View() string {
	return c.vp.View()
}
