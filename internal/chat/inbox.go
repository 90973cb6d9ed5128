package chat

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/realtime"
)

// Inbox mirrors the staff list of conversations. Its Fetch method serves
// the latest mirrored entries so a listing.Controller can filter and page them.
type Inbox struct {
	db     Database
	logger *slog.Logger

	mu      sync.RWMutex
	entries []domain.ChatSummary
}

// NewInbox creates an inbox over db
func NewInbox(db Database, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{db: db, logger: logger}
}

// Open subscribes to the inbox; onUpdate fires after each change
func (i *Inbox) Open(ctx context.Context, onUpdate func()) (realtime.Unsubscribe, error) {
	return i.db.Subscribe(ctx, inboxPath, func(s realtime.Snapshot) {
		var raw map[string]domain.ChatSummary
		if err := s.Decode(&raw); err != nil {
			i.logger.Warn("dropping undecodable inbox snapshot", "error", err)
			return
		}
		entries := make([]domain.ChatSummary, 0, len(raw))
		for chatID, e := range raw {
			e.ChatID = chatID
			entries = append(entries, e)
		}
		i.mu.Lock()
		i.entries = entries
		i.mu.Unlock()
		if onUpdate != nil {
			onUpdate()
		}
	})
}

// Fetch returns the mirrored entries; it never touches the network
func (i *Inbox) Fetch(context.Context) ([]domain.ChatSummary, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.entries), nil
}
