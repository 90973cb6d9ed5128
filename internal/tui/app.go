package tui

import (
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vnma/vaxtui/internal/chat"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/screens"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmLogout
	StateNotice
)

const (
	defaultTimeout = 30 * time.Second
	statusDuration = 4 * time.Second
	tickInterval   = 100 * time.Millisecond

	// Header and footer lines
	ChromeHeight = 2
)

// env is what every screen shares
type env struct {
	deps    screens.Deps
	timeout time.Duration
	frame   int
}

// Options configures the application model
type Options struct {
	Deps    screens.Deps
	Session SessionClearer
	Timeout time.Duration
	Logger  *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	env     *env
	session SessionClearer
	logger  *slog.Logger

	Stack  *ScreenStack
	nextID int

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	Notice      NoticeMsg

	// SignedOut is set when the user chose to sign out
	SignedOut bool
}

// NewModel creates a new application model with the role's home menu
func NewModel(opts Options) Model {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Deps.Logger == nil {
		opts.Deps.Logger = logger
	}

	m := Model{
		State:   StateBrowsing,
		env:     &env{deps: opts.Deps, timeout: timeout},
		session: opts.Session,
		logger:  logger,
		Stack:   NewScreenStack(),
	}
	m.Stack.Push(newHomeScreen(m.newID(), m.env))
	return m
}

func (m *Model) newID() int {
	m.nextID++
	return m.nextID
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return TickCmd(tickInterval)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.env.frame++
		return m, TickCmd(tickInterval)

	case StatusMsg:
		m.StatusMsg = msg.Text
		m.StatusIsErr = msg.IsErr
		return m, ClearStatusCmd(statusDuration)

	case NoticeMsg:
		m.Notice = msg
		m.State = StateNotice
		return m, nil

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case OpenEntryMsg:
		return m.open(msg.Entry)

	case OpenChatMsg:
		if m.env.deps.Chat == nil {
			return m, StatusCmd("Support chat is not configured", true)
		}
		return m.push(newChatScreen(m.newID(), m.env, msg.Who))

	case LoggedOutMsg:
		if msg.Err != nil {
			m.logger.Error("sign out failed", "error", msg.Err)
		}
		m.SignedOut = true
		m.Stack.Clear()
		return m, tea.Quit
	}

	if sm, ok := msg.(screenMsg); ok {
		return m.route(sm)
	}
	return m, nil
}

// route delivers a message to the screen it was produced for. Results for
// screens that were closed meanwhile are dropped, and any subscription they
// carry is stopped.
func (m Model) route(msg screenMsg) (tea.Model, tea.Cmd) {
	sc := m.Stack.Find(msg.target())
	if sc == nil {
		if started, ok := msg.(WatchStartedMsg); ok && started.Stop != nil {
			started.Stop()
		}
		return m, nil
	}

	var cmds []tea.Cmd
	if e, ok := msg.(ErrMsg); ok {
		m.logger.Warn("screen error", "screen", sc.Title(), "context", e.Context, "error", e.Err)
		cmds = append(cmds, NoticeCmd("Error "+e.Context, domain.UserMessage(e.Err, "Something went wrong.")))
	}
	cmds = append(cmds, sc.Update(msg))
	return m, tea.Batch(cmds...)
}

func (m Model) open(entry screens.Entry) (tea.Model, tea.Cmd) {
	id := m.newID()
	switch entry.Kind {
	case screens.KindList:
		return m.push(newListScreen(id, m.env, entry.List(m.env.deps)))
	case screens.KindChat:
		u := m.env.deps.User
		return m.Update(OpenChatMsg{Who: chat.Participant{UserID: u.ID, UserName: u.Username}})
	case screens.KindAssistant:
		return m.push(newAssistantScreen(id, m.env))
	case screens.KindStats:
		return m.push(newStatsScreen(id, m.env))
	case screens.KindProfile:
		return m.push(newProfileScreen(id, m.env))
	}
	return m, nil
}

func (m Model) push(sc Screen) (tea.Model, tea.Cmd) {
	m.Stack.Push(sc)
	m.logger.Debug("screen opened", "screen", sc.Title(), "depth", m.Stack.Len())
	return m, sc.Init()
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Stack.Clear()
		return m, tea.Quit
	}

	// Handle state-specific keys
	switch m.State {
	case StateHelp, StateNotice:
		m.State = StateBrowsing
		return m, nil

	case StateConfirmLogout:
		switch msg.String() {
		case "y", "Y":
			m.State = StateBrowsing
			return m, LogoutCmd(m.session)
		case "n", "N", "esc":
			m.State = StateBrowsing
		}
		return m, nil
	}

	top := m.Stack.Top()
	if top != nil {
		if cmd, handled := top.HandleKey(msg); handled {
			return m, cmd
		}
	}

	switch msg.String() {
	case "q":
		m.Stack.Clear()
		return m, tea.Quit
	case "?":
		m.State = StateHelp
	case "L":
		m.State = StateConfirmLogout
	case "esc", "backspace", "h", "left":
		m.Stack.Pop()
	}
	return m, nil
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}
	if m.State == StateConfirmLogout {
		return m.renderLogoutConfirmation()
	}
	if m.State == StateNotice {
		return m.renderNotice()
	}

	top := m.Stack.Top()
	if top == nil {
		return ""
	}

	contentHeight := max(m.Height-ChromeHeight, 1)
	content := styles.ScreenStyle.Render(top.View(m.Width-2, contentHeight))
	content = lipgloss.NewStyle().Width(m.Width).Height(contentHeight).MaxHeight(contentHeight).Render(content)

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderFooter(top),
	)

	if overlay := top.Overlay(); overlay != "" {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			overlay)
	}
	return view
}

// renderHeader renders the breadcrumb and the signed-in user
func (m Model) renderHeader() string {
	crumbs := strings.Join(m.Stack.Titles(), " › ")
	left := "vaxtui  " + crumbs
	right := m.env.deps.User.Username
	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.HeaderStyle.Width(m.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter(top Screen) string {
	var left string
	if top.Busy() {
		left = RenderSpinner(m.env.frame) + " " + styles.DimStyle.Render("Working...")
	} else if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	center := top.Hints()

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// RenderSpinner returns the spinner glyph for frame
func RenderSpinner(frame int) string {
	return styles.AccentStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      LISTS
  j/k        Up/down               /      Search
  g/G        First/last item       f      Filter
  Ctrl+u/d   Scroll half page      x      Clear search and filters
  Enter      Open                  r      Refresh
  Esc        Back                  m      Show more

OTHER
  q          Quit                  L      Sign out
  ?          This help

Screen actions are listed at the bottom of each screen.

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderNotice renders the blocking error notice
func (m Model) renderNotice() string {
	width := min(max(m.Width/2, 40), m.Width-4)
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.Notice.Title),
		"",
		lipgloss.NewStyle().Width(width-4).Render(m.Notice.Text),
		"",
		styles.DimStyle.Render("Press any key to continue"),
	)
	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.DangerModalStyle.Width(width).Render(body))
}

// renderLogoutConfirmation renders the logout confirmation modal
func (m Model) renderLogoutConfirmation() string {
	modal := `
              Sign out?

  This forgets your saved session on
  this computer. Settings are kept.

        [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}
