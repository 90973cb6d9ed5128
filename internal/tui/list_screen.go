package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
	"github.com/vnma/vaxtui/internal/screens"
	"github.com/vnma/vaxtui/internal/tui/components"
	"github.com/vnma/vaxtui/internal/tui/styles"
)

// pendingKind records what an open modal is collecting input for
type pendingKind int

const (
	pendNone pendingKind = iota
	pendAction
	pendFilterGroup
	pendFilterChoice
	pendFilterFields
)

type pending struct {
	kind     pendingKind
	action   screens.Action
	rowID    int64
	values   map[string]string
	hadForm  bool
	group    screens.FilterGroup
	groupIdx map[string]screens.FilterGroup
}

// listScreen shows a screens.View as a table with search, filters,
// incremental loading and the view's actions
type listScreen struct {
	id   int
	env  *env
	view screens.View

	table     *components.Table
	search    textinput.Model
	searching bool

	form    components.FormModal
	confirm components.ConfirmModal
	picker  components.Picker
	pending pending

	loading bool
	running bool
	stop    func()
}

func newListScreen(id int, e *env, view screens.View) *listScreen {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search..."
	ti.PromptStyle = styles.FilterPromptStyle
	ti.CharLimit = 64

	return &listScreen{
		id:      id,
		env:     e,
		view:    view,
		table:   components.NewTable(),
		search:  ti,
		form:    components.NewFormModal(),
		confirm: components.NewConfirmModal(),
		picker:  components.NewPicker(),
	}
}

func (s *listScreen) ID() int       { return s.id }
func (s *listScreen) Title() string { return s.view.Title() }
func (s *listScreen) Busy() bool    { return s.loading || s.running }

func (s *listScreen) Init() tea.Cmd {
	s.loading = true
	s.table.SetLoading(true)
	cmds := []tea.Cmd{FetchListCmd(s.id, s.view, s.env.timeout)}
	if w, ok := s.view.(screens.Watcher); ok && w.Live() {
		cmds = append(cmds, WatchListCmd(s.id, w))
	}
	return tea.Batch(cmds...)
}

func (s *listScreen) Close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (s *listScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ListLoadedMsg:
		s.loading = false
		s.table.SetLoading(false)
		s.table.Clamp(len(s.view.Rows()))
		if msg.Err != nil {
			return NoticeCmd("Could not load "+strings.ToLower(s.view.Title()), domain.UserMessage(msg.Err, "Something went wrong."))
		}
		return nil

	case WatchStartedMsg:
		s.stop = msg.Stop
		return msg.Next

	case SourceChangedMsg:
		return tea.Batch(RefreshListCmd(s.id, s.view, s.env.timeout), msg.Next)

	case FormReadyMsg:
		s.pending = pending{kind: pendAction, action: msg.Action, rowID: msg.RowID, hadForm: true}
		s.form.Show(msg.Form)
		return nil

	case ActionDoneMsg:
		s.running = false
		return s.actionDone(msg)

	case ErrMsg:
		s.loading = false
		s.running = false
		s.table.SetLoading(false)
	}
	return nil
}

func (s *listScreen) actionDone(msg ActionDoneMsg) tea.Cmd {
	s.table.Clamp(len(s.view.Rows()))
	if errors.Is(msg.Err, listing.ErrStale) {
		s.pending = pending{}
		text := "Saved, but the list could not be refreshed. Press r to retry."
		if msg.Result.Notice != "" {
			text = msg.Result.Notice + ", but the list could not be refreshed. Press r to retry."
		}
		return StatusCmd(text, true)
	}
	if msg.Err != nil {
		text := domain.UserMessage(msg.Err, "Could not "+strings.ToLower(s.pending.action.Label))
		var ve *domain.ValidationError
		if errors.As(msg.Err, &ve) && s.pending.hadForm {
			s.form.Reopen(text)
			return nil
		}
		title := s.pending.action.Label + " failed"
		s.pending = pending{}
		return NoticeCmd(title, text)
	}

	s.pending = pending{}
	var cmds []tea.Cmd
	if msg.Result.Notice != "" {
		cmds = append(cmds, StatusCmd(msg.Result.Notice, false))
	}
	if msg.Result.Chat != nil {
		who := *msg.Result.Chat
		cmds = append(cmds, func() tea.Msg { return OpenChatMsg{Who: who} })
	}
	return tea.Batch(cmds...)
}

func (s *listScreen) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()

	// Modals first
	if s.confirm.IsVisible() {
		if done, yes := s.confirm.HandleKey(key); done {
			if yes {
				return s.run(), true
			}
			s.pending = pending{}
		}
		return nil, true
	}

	if s.picker.IsVisible() {
		_, choice := s.picker.HandleKey(key)
		if choice != nil {
			return s.picked(*choice), true
		}
		if !s.picker.IsVisible() {
			s.pending = pending{}
		}
		return nil, true
	}

	if s.form.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		s.form, cmd, submitted = s.form.Update(msg)
		if submitted {
			return s.submitted(), true
		}
		if !s.form.IsVisible() {
			s.pending = pending{}
		}
		return cmd, true
	}

	if s.searching {
		switch key {
		case "esc":
			s.searching = false
			s.search.SetValue("")
			s.search.Blur()
			s.view.SetSearch("")
			s.table.Reset()
			return nil, true
		case "enter", "down", "up":
			s.search.Blur()
			s.searching = false
			return nil, true
		}
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		s.view.SetSearch(s.search.Value())
		s.table.Reset()
		return cmd, true
	}

	rows := s.view.Rows()
	if s.table.HandleKey(key, len(rows)) {
		s.view.MaybeLoadMore(s.table.Cursor(), s.table.Visible())
		return nil, true
	}

	for _, a := range s.view.Actions() {
		if a.Key == key {
			return s.start(a, rows), true
		}
	}

	switch key {
	case "/":
		if !s.view.Searchable() {
			return nil, false
		}
		s.searching = true
		s.search.SetValue(s.view.Search())
		return s.search.Focus(), true
	case "f":
		return s.openFilters(), true
	case "x":
		s.view.ClearFilters()
		s.search.SetValue("")
		s.table.Reset()
		return StatusCmd("Filters cleared", false), true
	case "r":
		s.loading = true
		s.table.SetLoading(true)
		return RefreshListCmd(s.id, s.view, s.env.timeout), true
	case "m":
		if s.view.State() == listing.StateLoading {
			return StatusCmd("Still loading, try again in a moment", false), true
		}
		if !s.view.LoadMore() {
			return StatusCmd("Everything is shown", false), true
		}
		return nil, true
	case "esc":
		if s.search.Value() != "" {
			s.search.SetValue("")
			s.view.SetSearch("")
			s.table.Reset()
			return nil, true
		}
	}
	return nil, false
}

// start begins an action: form, then confirmation, then run
func (s *listScreen) start(a screens.Action, rows []screens.Row) tea.Cmd {
	if s.running {
		return StatusCmd("Please wait for the current action to finish", true)
	}
	var rowID int64
	if a.NeedsRow {
		row, ok := s.table.Selected(rows)
		if !ok {
			return StatusCmd("Select an item first", true)
		}
		rowID = row.ID
	}

	s.pending = pending{kind: pendAction, action: a, rowID: rowID}
	if a.Form != nil {
		return ActionFormCmd(s.id, a, rowID, s.env.timeout)
	}
	return s.confirmOrRun()
}

func (s *listScreen) confirmOrRun() tea.Cmd {
	a := s.pending.action
	if a.Confirm != nil {
		prompt := a.Confirm(s.pending.rowID)
		s.confirm.Show(prompt, strings.HasPrefix(prompt, "Delete"))
		return nil
	}
	return s.run()
}

func (s *listScreen) run() tea.Cmd {
	s.running = true
	p := s.pending
	return RunActionCmd(s.id, p.action, p.rowID, p.values, s.env.timeout)
}

func (s *listScreen) submitted() tea.Cmd {
	values := s.form.Values()
	switch s.pending.kind {
	case pendFilterFields:
		if err := s.view.ApplyFilter(s.pending.group.Name, "", values); err != nil {
			s.form.Reopen(domain.UserMessage(err, "Invalid filter"))
			return nil
		}
		s.form.Hide()
		s.pending = pending{}
		s.table.Reset()
		return nil
	case pendAction:
		s.form.Hide()
		s.pending.values = values
		return s.confirmOrRun()
	}
	s.form.Hide()
	return nil
}

func (s *listScreen) openFilters() tea.Cmd {
	groups := s.view.Filters()
	if len(groups) == 0 {
		return StatusCmd("This list has no filters", false)
	}
	byLabel := make(map[string]screens.FilterGroup, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Label
		byLabel[g.Label] = g
	}
	s.pending = pending{kind: pendFilterGroup, groupIdx: byLabel}
	s.picker.Show("Filter by", labels, "")
	return nil
}

func (s *listScreen) picked(choice string) tea.Cmd {
	switch s.pending.kind {
	case pendFilterGroup:
		g := s.pending.groupIdx[choice]
		s.pending.group = g
		if len(g.Fields) > 0 {
			s.pending.kind = pendFilterFields
			s.form.Show(screens.Form{Title: g.Label, Fields: g.Fields})
			return nil
		}
		s.pending.kind = pendFilterChoice
		s.picker.Show(g.Label, g.Choices, s.activeChoice(g))
		return nil
	case pendFilterChoice:
		err := s.view.ApplyFilter(s.pending.group.Name, choice, nil)
		s.pending = pending{}
		s.table.Reset()
		if err != nil {
			return StatusCmd(domain.UserMessage(err, "Invalid filter"), true)
		}
	}
	return nil
}

// activeChoice finds the current choice of g among the active filter labels
func (s *listScreen) activeChoice(g screens.FilterGroup) string {
	active := s.view.ActiveFilters()
	for _, c := range g.Choices {
		if slices.ContainsFunc(active, func(label string) bool { return strings.HasSuffix(label, ": "+c) || label == c }) {
			return c
		}
	}
	return screens.AnyChoice
}

func (s *listScreen) Overlay() string {
	switch {
	case s.confirm.IsVisible():
		return s.confirm.View()
	case s.picker.IsVisible():
		return s.picker.View()
	case s.form.IsVisible():
		return s.form.View()
	}
	return ""
}

func (s *listScreen) Hints() string {
	var parts []string
	for _, a := range s.view.Actions() {
		parts = append(parts, styles.HelpKeyStyle.Render(a.Key)+styles.HelpDescStyle.Render(" "+a.Label))
	}
	if s.view.Searchable() {
		parts = append(parts, styles.HelpKeyStyle.Render("/")+styles.HelpDescStyle.Render(" search"))
	}
	if len(s.view.Filters()) > 0 {
		parts = append(parts, styles.HelpKeyStyle.Render("f")+styles.HelpDescStyle.Render(" filter"))
	}
	return strings.Join(parts, "  ")
}

func (s *listScreen) View(width, height int) string {
	displayed, filtered, full := s.view.Counts()
	count := fmt.Sprintf("%d of %d", displayed, filtered)
	if filtered != full {
		count += fmt.Sprintf(" (%d total)", full)
	}

	header := styles.TitleStyle.Render(s.view.Title()) + "  " + styles.DimStyle.Render(count)
	if s.view.HasMore() {
		header += "  " + styles.DimStyle.Render("m more")
	}

	var bar []string
	if s.searching || s.view.Search() != "" {
		bar = append(bar, s.search.View())
	}
	for _, label := range s.view.ActiveFilters() {
		bar = append(bar, styles.BadgeStyle.Render(label))
	}

	lines := []string{header}
	if len(bar) > 0 {
		lines = append(lines, strings.Join(bar, " "))
	}

	s.table.SetSize(width, max(height-len(lines)-1, 1))
	s.table.SetSpinnerFrame(s.env.frame)

	empty := "Nothing here yet"
	if s.view.State() == listing.StateError {
		empty = domain.UserMessage(s.view.Err(), "Could not load this list")
	} else if full > 0 {
		empty = "No matches. Press x to clear filters"
	}
	lines = append(lines, "", s.table.View(s.view.Columns(), s.view.Rows(), empty))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
