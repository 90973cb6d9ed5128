package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnma/vaxtui/internal/domain"
)

type fakeScreen struct {
	id     int
	title  string
	got    []tea.Msg
	closed bool
	keys   map[string]bool
}

func newFake(id int, title string) *fakeScreen {
	return &fakeScreen{id: id, title: title, keys: map[string]bool{}}
}

func (f *fakeScreen) ID() int                    { return f.id }
func (f *fakeScreen) Title() string              { return f.title }
func (f *fakeScreen) Init() tea.Cmd              { return nil }
func (f *fakeScreen) View(int, int) string       { return f.title }
func (f *fakeScreen) Overlay() string            { return "" }
func (f *fakeScreen) Busy() bool                 { return false }
func (f *fakeScreen) Hints() string              { return "" }
func (f *fakeScreen) Close()                     { f.closed = true }
func (f *fakeScreen) Update(msg tea.Msg) tea.Cmd { f.got = append(f.got, msg); return nil }

func (f *fakeScreen) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	return nil, f.keys[msg.String()]
}

type fakeSession struct{ cleared int }

func (s *fakeSession) ClearSession() error { s.cleared++; return nil }

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestScreenStack(t *testing.T) {
	t.Run("Should never pop the root screen", func(t *testing.T) {
		s := NewScreenStack()
		root := newFake(1, "Home")
		s.Push(root)

		assert.Nil(t, s.Pop())
		assert.Equal(t, 1, s.Len())
		assert.False(t, root.closed)
	})

	t.Run("Should close popped screens and forget their ids", func(t *testing.T) {
		s := NewScreenStack()
		s.Push(newFake(1, "Home"))
		child := newFake(2, "Vaccines")
		s.Push(child)

		assert.Equal(t, []string{"Home", "Vaccines"}, s.Titles())
		assert.Same(t, child, s.Find(2))

		s.Pop()
		assert.True(t, child.closed)
		assert.Nil(t, s.Find(2))
		assert.Equal(t, "Home", s.Top().Title())
	})

	t.Run("Should close every screen on clear", func(t *testing.T) {
		s := NewScreenStack()
		a, b := newFake(1, "Home"), newFake(2, "Sites")
		s.Push(a)
		s.Push(b)

		s.Clear()
		assert.True(t, a.closed)
		assert.True(t, b.closed)
		assert.Nil(t, s.Top())
	})
}

func TestModel_Routing(t *testing.T) {
	t.Run("Should deliver a result to the screen it belongs to", func(t *testing.T) {
		m := NewModel(Options{})
		sc := newFake(100, "Statistics")
		m.Stack.Push(sc)

		msg := StatsLoadedMsg{ScreenID: 100, Stats: &domain.Stats{TotalVaccinated: 4}}
		_, _ = m.Update(msg)

		require.Len(t, sc.got, 1)
		assert.Equal(t, msg, sc.got[0])
	})

	t.Run("Should drop results for closed screens", func(t *testing.T) {
		m := NewModel(Options{})
		sc := newFake(100, "Statistics")
		m.Stack.Push(sc)
		m.Stack.Pop()

		_, cmd := m.Update(ListLoadedMsg{ScreenID: 100})
		assert.Nil(t, cmd)
		assert.Empty(t, sc.got)
	})

	t.Run("Should stop a subscription that arrives after its screen closed", func(t *testing.T) {
		m := NewModel(Options{})
		stopped := false

		_, _ = m.Update(WatchStartedMsg{ScreenID: 42, Stop: func() { stopped = true }})
		assert.True(t, stopped)
	})

	t.Run("Should surface screen errors in a notice", func(t *testing.T) {
		m := NewModel(Options{})
		sc := newFake(100, "Sites")
		m.Stack.Push(sc)

		_, cmd := m.Update(ErrMsg{ScreenID: 100, Err: domain.ErrForbidden, Context: "deleting"})
		require.NotNil(t, cmd)
		assert.Len(t, sc.got, 1)
	})

	t.Run("Should block input until the notice is dismissed", func(t *testing.T) {
		m := NewModel(Options{})
		sc := newFake(100, "Sites")
		m.Stack.Push(sc)

		model, _ := m.Update(NoticeMsg{Title: "Delete failed", Text: "You do not have permission to do that."})
		assert.Equal(t, StateNotice, model.(Model).State)

		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, StateBrowsing, model.(Model).State)
		assert.Equal(t, 2, model.(Model).Stack.Len())
	})
}

func TestModel_Keys(t *testing.T) {
	t.Run("Should let the top screen handle keys first", func(t *testing.T) {
		m := NewModel(Options{})
		sc := newFake(100, "Vaccines")
		sc.keys["q"] = true
		m.Stack.Push(sc)

		_, cmd := m.Update(keyPress("q"))
		assert.Nil(t, cmd)
		assert.Equal(t, 2, m.Stack.Len())
	})

	t.Run("Should go back on escape", func(t *testing.T) {
		m := NewModel(Options{})
		sc := newFake(100, "Vaccines")
		m.Stack.Push(sc)

		_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, 1, m.Stack.Len())
		assert.True(t, sc.closed)
	})

	t.Run("Should clear the session after confirming sign out", func(t *testing.T) {
		session := &fakeSession{}
		var model tea.Model = NewModel(Options{Session: session})

		model, _ = model.Update(keyPress("L"))
		assert.Equal(t, StateConfirmLogout, model.(Model).State)

		model, cmd := model.Update(keyPress("y"))
		require.NotNil(t, cmd)
		msg := cmd()
		assert.Equal(t, LoggedOutMsg{}, msg)
		assert.Equal(t, 1, session.cleared)

		model, _ = model.Update(msg)
		assert.True(t, model.(Model).SignedOut)
	})

	t.Run("Should keep the session when sign out is declined", func(t *testing.T) {
		session := &fakeSession{}
		var model tea.Model = NewModel(Options{Session: session})

		model, _ = model.Update(keyPress("L"))
		model, cmd := model.Update(keyPress("n"))
		assert.Nil(t, cmd)
		assert.Equal(t, StateBrowsing, model.(Model).State)
		assert.Zero(t, session.cleared)
	})
}

func TestListenCmd(t *testing.T) {
	t.Run("Should coalesce notifications until read", func(t *testing.T) {
		ch, notify := signal()
		notify()
		notify()
		notify()

		assert.Len(t, ch, 1)
	})

	t.Run("Should continue the chain after each change", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ch, notify := signal()
		notify()

		cmd := listenCmd(ctx, ch, func(next tea.Cmd) tea.Msg {
			return SourceChangedMsg{ScreenID: 7, Next: next}
		})
		msg, ok := cmd().(SourceChangedMsg)
		require.True(t, ok)
		assert.Equal(t, 7, msg.ScreenID)
		assert.NotNil(t, msg.Next)
	})

	t.Run("Should stop once the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		ch, _ := signal()
		cancel()

		cmd := listenCmd(ctx, ch, func(tea.Cmd) tea.Msg { return errors.New("unexpected") })
		done := make(chan tea.Msg, 1)
		go func() { done <- cmd() }()

		select {
		case msg := <-done:
			assert.Nil(t, msg)
		case <-time.After(time.Second):
			t.Fatal("listener did not stop")
		}
	})
}
