package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vnma/vaxtui/internal/chat"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/screens"
)

// Message types for the TUI. Messages produced for one screen carry its ID;
// the app drops them if that screen has been closed in the meantime.

// screenMsg is implemented by every message addressed to one screen
type screenMsg interface {
	target() int
}

// ErrMsg represents an error
type ErrMsg struct {
	ScreenID int
	Err      error
	Context  string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ListLoadedMsg signals that a list screen's fetch finished
type ListLoadedMsg struct {
	ScreenID int
	Err      error
}

// FormReadyMsg carries a form built for an action
type FormReadyMsg struct {
	ScreenID int
	Action   screens.Action
	RowID    int64
	Form     screens.Form
}

// ActionDoneMsg signals that an action ran
type ActionDoneMsg struct {
	ScreenID int
	Result   screens.Result
	Err      error
}

// WatchStartedMsg carries a live subscription for a screen. Stop ends it.
type WatchStartedMsg struct {
	ScreenID int
	Stop     func()
	Next     tea.Cmd
}

// SourceChangedMsg signals that a realtime-backed list changed
type SourceChangedMsg struct {
	ScreenID int
	Next     tea.Cmd
}

// ChatUpdatedMsg carries the latest messages of an open conversation
type ChatUpdatedMsg struct {
	ScreenID int
	Messages []domain.ChatMessage
	Next     tea.Cmd
}

// ChatSentMsg signals that a chat message was sent
type ChatSentMsg struct {
	ScreenID int
	Err      error
}

// AssistantMsg signals that the assistant conversation changed
type AssistantMsg struct {
	ScreenID int
	Err      error
}

// StatsLoadedMsg carries the dashboard numbers
type StatsLoadedMsg struct {
	ScreenID int
	Stats    *domain.Stats
	Err      error
}

// ProfileMsg signals that the profile was loaded or saved
type ProfileMsg struct {
	ScreenID int
	Saved    bool
	Err      error
}

func (m ErrMsg) target() int           { return m.ScreenID }
func (m ListLoadedMsg) target() int    { return m.ScreenID }
func (m FormReadyMsg) target() int     { return m.ScreenID }
func (m ActionDoneMsg) target() int    { return m.ScreenID }
func (m WatchStartedMsg) target() int  { return m.ScreenID }
func (m SourceChangedMsg) target() int { return m.ScreenID }
func (m ChatUpdatedMsg) target() int   { return m.ScreenID }
func (m ChatSentMsg) target() int      { return m.ScreenID }
func (m AssistantMsg) target() int     { return m.ScreenID }
func (m StatsLoadedMsg) target() int   { return m.ScreenID }
func (m ProfileMsg) target() int       { return m.ScreenID }

// StatusMsg sets the footer status line
type StatusMsg struct {
	Text  string
	IsErr bool
}

// NoticeMsg opens the error notice modal
type NoticeMsg struct {
	Title string
	Text  string
}

// OpenEntryMsg opens a home menu entry
type OpenEntryMsg struct {
	Entry screens.Entry
}

// OpenChatMsg opens a support conversation
type OpenChatMsg struct {
	Who chat.Participant
}

// LoggedOutMsg signals that the session was cleared
type LoggedOutMsg struct {
	Err error
}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct{}

// TickMsg advances spinners
type TickMsg struct{}
