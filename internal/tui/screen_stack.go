package tui

import tea "github.com/charmbracelet/bubbletea"

// Screen is one page of the navigation stack
type Screen interface {
	ID() int
	Title() string
	Init() tea.Cmd

	// Update receives the messages addressed to this screen
	Update(msg tea.Msg) tea.Cmd

	// HandleKey gets first pick of key presses while the screen is on top.
	// Keys it does not handle fall through to the global bindings.
	HandleKey(msg tea.KeyMsg) (tea.Cmd, bool)

	View(width, height int) string

	// Overlay returns a modal drawn over the whole window, or ""
	Overlay() string

	Busy() bool
	Hints() string

	// Close releases subscriptions when the screen leaves the stack
	Close()
}

// ScreenStack manages the stack of open screens. The home menu sits at
// the bottom and is never popped.
type ScreenStack struct {
	screens []Screen
}

// NewScreenStack creates a new empty screen stack
func NewScreenStack() *ScreenStack {
	return &ScreenStack{}
}

// Len returns the number of screens in the stack
func (s *ScreenStack) Len() int {
	return len(s.screens)
}

// Get returns the screen at the given index (0 = bottom/oldest)
func (s *ScreenStack) Get(idx int) Screen {
	if idx < 0 || idx >= len(s.screens) {
		return nil
	}
	return s.screens[idx]
}

// Top returns the topmost (current/focused) screen
func (s *ScreenStack) Top() Screen {
	if len(s.screens) == 0 {
		return nil
	}
	return s.screens[len(s.screens)-1]
}

// Find returns the open screen with id, or nil once it has been closed
func (s *ScreenStack) Find(id int) Screen {
	for _, sc := range s.screens {
		if sc.ID() == id {
			return sc
		}
	}
	return nil
}

// Push adds a new screen to the stack
func (s *ScreenStack) Push(sc Screen) {
	s.screens = append(s.screens, sc)
}

// Pop closes and removes the top screen. The root screen is kept.
func (s *ScreenStack) Pop() Screen {
	if len(s.screens) <= 1 {
		return nil
	}
	popped := s.screens[len(s.screens)-1]
	s.screens = s.screens[:len(s.screens)-1]
	popped.Close()
	return popped
}

// Clear closes every screen
func (s *ScreenStack) Clear() {
	for i := len(s.screens) - 1; i >= 0; i-- {
		s.screens[i].Close()
	}
	s.screens = nil
}

// Titles returns the breadcrumb from the root to the top
func (s *ScreenStack) Titles() []string {
	out := make([]string, len(s.screens))
	for i, sc := range s.screens {
		out[i] = sc.Title()
	}
	return out
}
