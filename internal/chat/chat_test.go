package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/realtime"
)

// memDB is an in-memory Database that notifies subscribers synchronously
type memDB struct {
	mu    sync.Mutex
	nodes map[string]map[string]json.RawMessage
	subs  map[string][]func(realtime.Snapshot)
	seq   int
}

func newMemDB() *memDB {
	return &memDB{
		nodes: map[string]map[string]json.RawMessage{},
		subs:  map[string][]func(realtime.Snapshot){},
	}
}

func (m *memDB) snapshot(path string) realtime.Snapshot {
	raw, _ := json.Marshal(m.nodes[path])
	if m.nodes[path] == nil {
		raw = []byte("null")
	}
	return realtime.Snapshot{Path: path, Raw: raw}
}

func (m *memDB) notify(path string) {
	snap := m.snapshot(path)
	for _, fn := range m.subs[path] {
		fn(snap)
	}
}

func (m *memDB) Subscribe(_ context.Context, path string, fn func(realtime.Snapshot)) (realtime.Unsubscribe, error) {
	m.mu.Lock()
	m.subs[path] = append(m.subs[path], fn)
	snap := m.snapshot(path)
	m.mu.Unlock()
	fn(snap)
	return func() {}, nil
}

func (m *memDB) Get(_ context.Context, path string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(path).Decode(dest)
}

func (m *memDB) Push(_ context.Context, path string, value any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("-k%03d", m.seq)
	raw, _ := json.Marshal(value)
	if m.nodes[path] == nil {
		m.nodes[path] = map[string]json.RawMessage{}
	}
	m.nodes[path][key] = raw
	m.notify(path)
	return key, nil
}

func (m *memDB) Update(_ context.Context, path string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	parent, key := "staff_chats", path[len("staff_chats/"):]
	var cur map[string]any
	_ = json.Unmarshal(m.nodes[parent][key], &cur)
	for k, v := range fields {
		cur[k] = v
	}
	raw, _ := json.Marshal(cur)
	m.nodes[parent][key] = raw
	m.notify(parent)
	return nil
}

func fixedClock(ms ...int64) func() time.Time {
	i := 0
	return func() time.Time {
		t := time.UnixMilli(ms[i])
		if i < len(ms)-1 {
			i++
		}
		return t
	}
}

func TestRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Should order messages and mark the citizen's own lines", func(t *testing.T) {
		db := newMemDB()
		citizen := NewRoom(db, Participant{UserID: 7, UserName: "lan"}, nil)
		citizen.now = fixedClock(2000)
		staff := NewRoom(db, Participant{UserID: 7, UserName: "lan", Staff: true}, nil)
		staff.now = fixedClock(1000)

		var last []domain.ChatMessage
		_, err := citizen.Open(ctx, func(m []domain.ChatMessage) { last = m })
		require.NoError(t, err)
		assert.Empty(t, last)

		require.NoError(t, citizen.Send(ctx, "  second  "))
		require.NoError(t, staff.Send(ctx, "first"))

		require.Len(t, last, 2)
		assert.Equal(t, "first", last[0].Text)
		assert.Equal(t, StaffSender, last[0].Sender)
		assert.False(t, last[0].IsUser)
		assert.Equal(t, "second", last[1].Text)
		assert.True(t, last[1].IsUser)
		assert.Equal(t, last, citizen.Messages())
	})

	t.Run("Should create the inbox entry once and then update it", func(t *testing.T) {
		db := newMemDB()
		room := NewRoom(db, Participant{UserID: 7, UserName: "lan"}, nil)
		room.now = fixedClock(100, 200)

		require.NoError(t, room.Send(ctx, "hello"))
		require.NoError(t, room.Send(ctx, "anyone?"))

		inbox := NewInbox(db, nil)
		_, err := inbox.Open(ctx, nil)
		require.NoError(t, err)
		entries, err := inbox.Fetch(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(7), entries[0].UserID)
		assert.Equal(t, "lan", entries[0].UserName)
		assert.Equal(t, "anyone?", entries[0].LastMessage)
		assert.Equal(t, int64(200), entries[0].Timestamp)
		assert.NotEmpty(t, entries[0].ChatID)
	})

	t.Run("Should reject blank messages without writing", func(t *testing.T) {
		db := newMemDB()
		room := NewRoom(db, Participant{UserID: 1, UserName: "a"}, nil)

		err := room.Send(ctx, "   ")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, db.nodes)
	})
}

func TestInbox(t *testing.T) {
	t.Run("Should notify on every change", func(t *testing.T) {
		db := newMemDB()
		inbox := NewInbox(db, nil)
		calls := 0
		_, err := inbox.Open(context.Background(), func() { calls++ })
		require.NoError(t, err)

		room := NewRoom(db, Participant{UserID: 2, UserName: "b"}, nil)
		require.NoError(t, room.Send(context.Background(), "hi"))

		assert.Equal(t, 2, calls)
		entries, _ := inbox.Fetch(context.Background())
		assert.Len(t, entries, 1)
	})
}
