package chat

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/realtime"
)

// StaffSender is the sender name used for every staff reply
const StaffSender = "Staff"

// Database is the part of the realtime client a chat needs
type Database interface {
	Subscribe(ctx context.Context, path string, onChange func(realtime.Snapshot)) (realtime.Unsubscribe, error)
	Get(ctx context.Context, path string, dest any) error
	Push(ctx context.Context, path string, value any) (string, error)
	Update(ctx context.Context, path string, fields map[string]any) error
}

// Participant identifies whose conversation a room holds and who is typing in it
type Participant struct {
	UserID   int64  // citizen owning the conversation
	UserName string // citizen username, shown in the staff inbox
	Staff    bool   // true when the local user is answering as staff
}

// Room is one support conversation, kept in sync with the realtime database
type Room struct {
	db     Database
	who    Participant
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	messages []domain.ChatMessage
}

// NewRoom creates a room for who. Call Open to start receiving messages.
func NewRoom(db Database, who Participant, logger *slog.Logger) *Room {
	if logger == nil {
		logger = slog.Default()
	}
	return &Room{db: db, who: who, logger: logger, now: time.Now}
}

func messagesPath(userID int64) string { return fmt.Sprintf("chats/%d", userID) }

const inboxPath = "staff_chats"

// Open subscribes to the conversation. onUpdate receives the full ordered
// message list on the initial load and after every change.
func (r *Room) Open(ctx context.Context, onUpdate func([]domain.ChatMessage)) (realtime.Unsubscribe, error) {
	return r.db.Subscribe(ctx, messagesPath(r.who.UserID), func(s realtime.Snapshot) {
		msgs, err := r.decode(s)
		if err != nil {
			r.logger.Warn("dropping undecodable chat snapshot", "user", r.who.UserID, "error", err)
			return
		}
		r.mu.Lock()
		r.messages = msgs
		r.mu.Unlock()
		if onUpdate != nil {
			onUpdate(slices.Clone(msgs))
		}
	})
}

// Messages returns the last received messages in order
func (r *Room) Messages() []domain.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.messages)
}

func (r *Room) decode(s realtime.Snapshot) ([]domain.ChatMessage, error) {
	var raw map[string]domain.ChatMessage
	if err := s.Decode(&raw); err != nil {
		return nil, err
	}
	msgs := make([]domain.ChatMessage, 0, len(raw))
	for key, m := range raw {
		m.Key = key
		if !r.who.Staff {
			// A citizen sees their own lines by sender, whatever the stored flag says
			m.IsUser = m.Sender == r.who.UserName
		}
		msgs = append(msgs, m)
	}
	slices.SortFunc(msgs, func(a, b domain.ChatMessage) int {
		return cmp.Or(cmp.Compare(a.Timestamp, b.Timestamp), strings.Compare(a.Key, b.Key))
	})
	return msgs, nil
}

// Send appends text to the conversation and refreshes the staff inbox entry
func (r *Room) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Invalid("text", "Message cannot be empty")
	}

	msg := domain.ChatMessage{
		Text:      text,
		Sender:    r.who.UserName,
		Timestamp: r.now().UnixMilli(),
		IsUser:    !r.who.Staff,
	}
	if r.who.Staff {
		msg.Sender = StaffSender
	}

	if _, err := r.db.Push(ctx, messagesPath(r.who.UserID), msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if err := r.touchInbox(ctx, msg); err != nil {
		// The message itself was delivered
		r.logger.Warn("failed to update staff inbox", "user", r.who.UserID, "error", err)
	}
	return nil
}

// touchInbox updates the conversation's inbox entry, creating it on first contact
func (r *Room) touchInbox(ctx context.Context, msg domain.ChatMessage) error {
	var entries map[string]domain.ChatSummary
	if err := r.db.Get(ctx, inboxPath, &entries); err != nil {
		return err
	}
	for chatID, e := range entries {
		if e.UserID == r.who.UserID {
			return r.db.Update(ctx, inboxPath+"/"+chatID, map[string]any{
				"last_message": msg.Text,
				"timestamp":    msg.Timestamp,
			})
		}
	}
	_, err := r.db.Push(ctx, inboxPath, domain.ChatSummary{
		UserID:      r.who.UserID,
		UserName:    r.who.UserName,
		LastMessage: msg.Text,
		Timestamp:   msg.Timestamp,
	})
	return err
}
