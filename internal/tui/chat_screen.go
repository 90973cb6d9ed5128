package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vnma/vaxtui/internal/chat"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/screens"
	"github.com/vnma/vaxtui/internal/tui/components"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

// conversation is the shared layout of the chat and assistant screens:
// a message log above a single-line input
type conversation struct {
	log   *components.ChatLog
	input textinput.Model
}

func newConversation(placeholder string) conversation {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.CharLimit = 1000
	ti.Focus()
	return conversation{log: components.NewChatLog(), input: ti}
}

// handleKey routes typing to the input. It returns the trimmed text when
// enter was pressed on a non-blank line.
func (c *conversation) handleKey(msg tea.KeyMsg) (tea.Cmd, string, bool) {
	switch msg.String() {
	case "esc":
		return nil, "", false
	case "enter":
		text := strings.TrimSpace(c.input.Value())
		return nil, text, true
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		return c.log.Update(msg), "", true
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd, "", true
}

func (c *conversation) view(width, height int, title, status string) string {
	header := styles.TitleStyle.Render(title)
	if status != "" {
		header += "  " + status
	}
	c.input.Width = max(width-4, 10)
	c.log.SetSize(width, max(height-4, 1))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		c.log.View(),
		"",
		c.input.View(),
	)
}

// chatScreen is a live support conversation between a citizen and staff
type chatScreen struct {
	id   int
	env  *env
	who  chat.Participant
	room *chat.Room
	conv conversation

	opening bool
	sending bool
	stop    func()
}

func newChatScreen(id int, e *env, who chat.Participant) *chatScreen {
	return &chatScreen{
		id:      id,
		env:     e,
		who:     who,
		room:    chat.NewRoom(e.deps.Chat, who, e.deps.Logger),
		conv:    newConversation("Type a message and press enter"),
		opening: true,
	}
}

func (s *chatScreen) ID() int { return s.id }

func (s *chatScreen) Title() string {
	if s.who.Staff {
		return "Chat with " + s.who.UserName
	}
	return "Contact staff"
}

func (s *chatScreen) Init() tea.Cmd   { return OpenChatCmd(s.id, s.room) }
func (s *chatScreen) Busy() bool      { return s.opening || s.sending }
func (s *chatScreen) Overlay() string { return "" }

func (s *chatScreen) Hints() string {
	return styles.HelpKeyStyle.Render("enter") + styles.HelpDescStyle.Render(" send") + "  " +
		styles.HelpKeyStyle.Render("PgUp/PgDn") + styles.HelpDescStyle.Render(" scroll")
}

func (s *chatScreen) Close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (s *chatScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case WatchStartedMsg:
		s.stop = msg.Stop
		return msg.Next
	case ChatUpdatedMsg:
		s.opening = false
		s.conv.log.SetLines(s.lines(msg.Messages))
		return msg.Next
	case ChatSentMsg:
		s.sending = false
		if msg.Err != nil {
			return NoticeCmd("Message not sent", domain.UserMessage(msg.Err, "Something went wrong."))
		}
		s.conv.input.SetValue("")
	case ErrMsg:
		s.opening = false
		s.sending = false
	}
	return nil
}

func (s *chatScreen) lines(msgs []domain.ChatMessage) []components.ChatLine {
	out := make([]components.ChatLine, len(msgs))
	for i, m := range msgs {
		own := m.IsUser
		if s.who.Staff {
			own = m.Sender == chat.StaffSender
		}
		out[i] = components.ChatLine{
			Own:    own,
			Sender: m.Sender,
			Text:   m.Text,
			When:   time.UnixMilli(m.Timestamp).Format("02 Jan 15:04"),
		}
	}
	return out
}

func (s *chatScreen) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	cmd, text, handled := s.conv.handleKey(msg)
	if !handled || msg.String() != "enter" {
		return cmd, handled
	}
	if text == "" || s.sending {
		return nil, true
	}
	s.sending = true
	return SendChatCmd(s.id, s.room, text, s.env.timeout), true
}

func (s *chatScreen) View(width, height int) string {
	status := ""
	switch {
	case s.opening:
		status = styles.DimStyle.Render("connecting...")
	case s.sending:
		status = styles.DimStyle.Render("sending...")
	}
	return s.conv.view(width, height, s.Title(), status)
}

// assistantScreen is the AI question-and-answer conversation
type assistantScreen struct {
	id        int
	env       *env
	assistant *screens.Assistant
	conv      conversation
	busy      bool
}

func newAssistantScreen(id int, e *env) *assistantScreen {
	return &assistantScreen{
		id:        id,
		env:       e,
		assistant: screens.NewAssistant(e.deps),
		conv:      newConversation("Ask about vaccines, side effects, schedules..."),
		busy:      true,
	}
}

func (s *assistantScreen) ID() int         { return s.id }
func (s *assistantScreen) Title() string   { return "AI assistant" }
func (s *assistantScreen) Busy() bool      { return s.busy }
func (s *assistantScreen) Overlay() string { return "" }
func (s *assistantScreen) Close()          {}

func (s *assistantScreen) Hints() string {
	return styles.HelpKeyStyle.Render("enter") + styles.HelpDescStyle.Render(" ask")
}

func (s *assistantScreen) Init() tea.Cmd {
	return LoadAssistantCmd(s.id, s.assistant, s.env.timeout)
}

func (s *assistantScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case AssistantMsg:
		s.busy = false
		s.refresh()
		if msg.Err != nil {
			return NoticeCmd("Assistant", domain.UserMessage(msg.Err, "The assistant is unavailable."))
		}
		s.conv.input.SetValue("")
	case ErrMsg:
		s.busy = false
	}
	return nil
}

func (s *assistantScreen) refresh() {
	msgs := s.assistant.Messages()
	lines := make([]components.ChatLine, len(msgs))
	for i, m := range msgs {
		sender := "Assistant"
		if m.IsUser {
			sender = "You"
		}
		lines[i] = components.ChatLine{Own: m.IsUser, Sender: sender, Text: m.Text, When: m.Timestamp}
	}
	s.conv.log.SetLines(lines)
}

func (s *assistantScreen) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	cmd, text, handled := s.conv.handleKey(msg)
	if !handled || msg.String() != "enter" {
		return cmd, handled
	}
	if text == "" || s.busy {
		return nil, true
	}
	s.busy = true
	return AskAssistantCmd(s.id, s.assistant, text, s.env.timeout), true
}

func (s *assistantScreen) View(width, height int) string {
	status := ""
	if s.busy {
		status = styles.DimStyle.Render("thinking...")
	}
	return s.conv.view(width, height, s.Title(), status)
}
