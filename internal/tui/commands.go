package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vnma/vaxtui/internal/chat"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/realtime"
	"github.com/vnma/vaxtui/internal/screens"
)

// Command factories for async operations

// FetchListCmd loads a list screen from its source
func FetchListCmd(id int, view screens.View, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return ListLoadedMsg{ScreenID: id, Err: view.Fetch(ctx)}
	}
}

// RefreshListCmd re-fetches a list screen, keeping its search and filters
func RefreshListCmd(id int, view screens.View, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return ListLoadedMsg{ScreenID: id, Err: view.Refresh(ctx)}
	}
}

// ActionFormCmd builds the form of an action, which may need server data
func ActionFormCmd(id int, action screens.Action, rowID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		form, err := action.Form(ctx, rowID)
		if err != nil {
			return ErrMsg{ScreenID: id, Err: err, Context: "preparing " + action.Label}
		}
		return FormReadyMsg{ScreenID: id, Action: action, RowID: rowID, Form: form}
	}
}

// RunActionCmd runs an action with the collected form values
func RunActionCmd(id int, action screens.Action, rowID int64, values map[string]string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := action.Run(ctx, rowID, values)
		return ActionDoneMsg{ScreenID: id, Result: res, Err: err}
	}
}

// signal coalesces change notifications from a subscription goroutine.
// A pending notification absorbs later ones until it is read.
func signal() (chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	return ch, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// listenCmd waits for the next change. It returns nil once ctx ends, which
// stops the continuation chain.
func listenCmd(ctx context.Context, ch <-chan struct{}, msg func(next tea.Cmd) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			return msg(listenCmd(ctx, ch, msg))
		}
	}
}

// WatchListCmd starts the realtime mirror behind a list screen and streams
// SourceChangedMsg for every change
func WatchListCmd(id int, w screens.Watcher) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		ch, notify := signal()

		unsub, err := w.Watch(ctx, notify)
		if err != nil {
			cancel()
			return ErrMsg{ScreenID: id, Err: err, Context: "watching for changes"}
		}
		return WatchStartedMsg{
			ScreenID: id,
			Stop:     stopper(unsub, cancel),
			Next: listenCmd(ctx, ch, func(next tea.Cmd) tea.Msg {
				return SourceChangedMsg{ScreenID: id, Next: next}
			}),
		}
	}
}

// OpenChatCmd subscribes to a conversation and streams ChatUpdatedMsg
func OpenChatCmd(id int, room *chat.Room) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		ch, notify := signal()

		unsub, err := room.Open(ctx, func(_ []domain.ChatMessage) { notify() })
		if err != nil {
			cancel()
			return ErrMsg{ScreenID: id, Err: err, Context: "opening conversation"}
		}
		return WatchStartedMsg{
			ScreenID: id,
			Stop:     stopper(unsub, cancel),
			Next: listenCmd(ctx, ch, func(next tea.Cmd) tea.Msg {
				return ChatUpdatedMsg{ScreenID: id, Messages: room.Messages(), Next: next}
			}),
		}
	}
}

func stopper(unsub realtime.Unsubscribe, cancel context.CancelFunc) func() {
	return func() {
		unsub()
		cancel()
	}
}

// SendChatCmd sends one chat message
func SendChatCmd(id int, room *chat.Room, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return ChatSentMsg{ScreenID: id, Err: room.Send(ctx, text)}
	}
}

// LoadAssistantCmd loads the assistant conversation history
func LoadAssistantCmd(id int, a *screens.Assistant, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return AssistantMsg{ScreenID: id, Err: a.Load(ctx)}
	}
}

// AskAssistantCmd asks the assistant a question
func AskAssistantCmd(id int, a *screens.Assistant, question string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return AssistantMsg{ScreenID: id, Err: a.Ask(ctx, question)}
	}
}

// LoadStatsCmd loads the admin dashboard
func LoadStatsCmd(id int, deps screens.Deps, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		stats, err := screens.Stats(ctx, deps)
		return StatsLoadedMsg{ScreenID: id, Stats: stats, Err: err}
	}
}

// LoadProfileCmd refreshes the signed-in account
func LoadProfileCmd(id int, p *screens.Profile, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return ProfileMsg{ScreenID: id, Err: p.Load(ctx)}
	}
}

// SaveProfileCmd saves the profile form
func SaveProfileCmd(id int, p *screens.Profile, values map[string]string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return ProfileMsg{ScreenID: id, Saved: true, Err: p.Save(ctx, values)}
	}
}

// StatusCmd shows text in the footer
func StatusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text, IsErr: isErr}
	}
}

// NoticeCmd shows a blocking notice that any key dismisses
func NoticeCmd(title, text string) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Title: title, Text: text}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// SessionClearer forgets the saved sign-in
type SessionClearer interface {
	ClearSession() error
}

// LogoutCmd clears the saved session, then signals completion
func LogoutCmd(session SessionClearer) tea.Cmd {
	return func() tea.Msg {
		if session == nil {
			return LoggedOutMsg{}
		}
		return LoggedOutMsg{Err: session.ClearSession()}
	}
}
