package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/screens"
	"github.com/vnma/vaxtui/internal/tui/components"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

// homeScreen is the role's menu. It is the root of the stack.
type homeScreen struct {
	id      int
	env     *env
	entries []screens.Entry
	menu    *components.Menu
}

func newHomeScreen(id int, e *env) *homeScreen {
	entries := screens.Menu(e.deps.User.Role(), e.deps.Chat != nil)
	items := make([]components.MenuItem, len(entries))
	for i, en := range entries {
		items[i] = components.MenuItem{Title: en.Title, Description: en.Description}
	}
	return &homeScreen{id: id, env: e, entries: entries, menu: components.NewMenu(items)}
}

func (s *homeScreen) ID() int                { return s.id }
func (s *homeScreen) Title() string          { return "Home" }
func (s *homeScreen) Init() tea.Cmd          { return nil }
func (s *homeScreen) Update(tea.Msg) tea.Cmd { return nil }
func (s *homeScreen) Overlay() string        { return "" }
func (s *homeScreen) Busy() bool             { return false }
func (s *homeScreen) Close()                 {}

func (s *homeScreen) Hints() string {
	return styles.HelpKeyStyle.Render("enter") + styles.HelpDescStyle.Render(" open") + "  " +
		styles.HelpKeyStyle.Render("/") + styles.HelpDescStyle.Render(" filter") + "  " +
		styles.HelpKeyStyle.Render("L") + styles.HelpDescStyle.Render(" sign out")
}

func (s *homeScreen) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	typing := s.menu.IsFilterTyping()
	switch msg.String() {
	case "q", "?", "L":
		if !typing {
			return nil, false
		}
	}
	cmd, chosen := s.menu.Update(msg)
	if chosen {
		if idx, ok := s.menu.Selected(); ok {
			entry := s.entries[idx]
			return func() tea.Msg { return OpenEntryMsg{Entry: entry} }, true
		}
	}
	return cmd, true
}

func (s *homeScreen) View(width, height int) string {
	u := s.env.deps.User
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	header := styles.TitleStyle.Render("Welcome, "+name) + "  " +
		styles.DimBadgeStyle.Render(string(u.Role()))
	s.menu.SetSize(width, max(height-2, 1))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", s.menu.View())
}

// statsScreen is the admin dashboard
type statsScreen struct {
	id    int
	env   *env
	stats *domain.Stats
	err   error
	busy  bool
}

func newStatsScreen(id int, e *env) *statsScreen {
	return &statsScreen{id: id, env: e, busy: true}
}

func (s *statsScreen) ID() int         { return s.id }
func (s *statsScreen) Title() string   { return "Statistics" }
func (s *statsScreen) Overlay() string { return "" }
func (s *statsScreen) Busy() bool      { return s.busy }
func (s *statsScreen) Close()          {}

func (s *statsScreen) Hints() string {
	return styles.HelpKeyStyle.Render("r") + styles.HelpDescStyle.Render(" refresh")
}

func (s *statsScreen) Init() tea.Cmd {
	return LoadStatsCmd(s.id, s.env.deps, s.env.timeout)
}

func (s *statsScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StatsLoadedMsg:
		s.busy = false
		s.stats, s.err = msg.Stats, msg.Err
	case ErrMsg:
		s.busy = false
	}
	return nil
}

func (s *statsScreen) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "r" && !s.busy {
		s.busy = true
		return s.Init(), true
	}
	return nil, false
}

func (s *statsScreen) View(width, height int) string {
	lines := []string{styles.TitleStyle.Render("Statistics"), ""}
	switch {
	case s.err != nil:
		lines = append(lines, styles.ErrorStyle.Render(domain.UserMessage(s.err, "Could not load statistics")))
	case s.stats == nil:
		lines = append(lines, styles.DimStyle.Render("Loading..."))
	default:
		st := s.stats
		lines = append(lines,
			styles.SubtitleStyle.Render("People vaccinated   ")+styles.TitleStyle.Render(fmt.Sprint(st.TotalVaccinated)),
			styles.SubtitleStyle.Render("Completion rate     ")+styles.TitleStyle.Render(fmt.Sprintf("%.1f%%", st.CompletionRate)),
			"",
			styles.ColumnHeaderStyle.Render("Most used vaccines"),
		)
		top := 0
		for _, v := range st.PopularVaccines {
			top = max(top, v.Count)
		}
		barSpace := max(width-34, 10)
		for _, v := range st.PopularVaccines {
			n := 0
			if top > 0 {
				n = v.Count * barSpace / top
			}
			lines = append(lines, styles.Pad(v.Name, 22)+" "+
				styles.AccentStyle.Render(strings.Repeat("█", n))+" "+
				styles.DimStyle.Render(fmt.Sprint(v.Count)))
		}
		if len(st.PopularVaccines) == 0 {
			lines = append(lines, styles.DimStyle.Render("No doses recorded yet"))
		}
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

// profileScreen shows and edits the signed-in account
type profileScreen struct {
	id      int
	env     *env
	profile *screens.Profile
	form    components.FormModal
	busy    bool
}

func newProfileScreen(id int, e *env) *profileScreen {
	return &profileScreen{id: id, env: e, profile: screens.NewProfile(e.deps), form: components.NewFormModal(), busy: true}
}

func (s *profileScreen) ID() int       { return s.id }
func (s *profileScreen) Title() string { return "Profile" }
func (s *profileScreen) Busy() bool    { return s.busy }
func (s *profileScreen) Close()        {}

func (s *profileScreen) Hints() string {
	return styles.HelpKeyStyle.Render("e") + styles.HelpDescStyle.Render(" edit")
}

func (s *profileScreen) Init() tea.Cmd {
	return LoadProfileCmd(s.id, s.profile, s.env.timeout)
}

func (s *profileScreen) Overlay() string {
	if s.form.IsVisible() {
		return s.form.View()
	}
	return ""
}

func (s *profileScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ProfileMsg:
		s.busy = false
		if msg.Err != nil {
			text := domain.UserMessage(msg.Err, "Could not update your profile")
			var ve *domain.ValidationError
			if msg.Saved && errors.As(msg.Err, &ve) {
				s.form.Reopen(text)
				return nil
			}
			return NoticeCmd("Profile", text)
		}
		if msg.Saved {
			return StatusCmd("Profile updated", false)
		}
	case ErrMsg:
		s.busy = false
	}
	return nil
}

func (s *profileScreen) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if s.form.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		s.form, cmd, submitted = s.form.Update(msg)
		if submitted {
			s.form.Hide()
			s.busy = true
			return SaveProfileCmd(s.id, s.profile, s.form.Values(), s.env.timeout), true
		}
		return cmd, true
	}
	if msg.String() == "e" && !s.busy {
		s.form.Show(s.profile.Form())
		return nil, true
	}
	return nil, false
}

func (s *profileScreen) View(width, height int) string {
	u := s.profile.User()
	row := func(label, value string) string {
		if value == "" {
			value = styles.DimStyle.Render("-")
		}
		return styles.SubtitleStyle.Render(styles.Pad(label, 14)) + value
	}
	lines := []string{
		styles.TitleStyle.Render("Profile"), "",
		row("Username", u.Username),
		row("Name", strings.TrimSpace(u.FirstName+" "+u.LastName)),
		row("Email", u.Email),
		row("Phone", u.PhoneNumber),
		row("Citizen ID", u.CitizenID),
		row("Birth date", u.BirthDate.String()),
		row("Gender", u.Gender),
		row("Role", string(u.Role())),
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}
