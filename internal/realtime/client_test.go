package realtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnma/vaxtui/internal/domain"
)

// fakeDB serves one mutable JSON document per path
type fakeDB struct {
	mu    sync.Mutex
	nodes map[string]string
	gets  int
	auth  []string
}

func (f *fakeDB) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[path] = body
}

func (f *fakeDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.URL.Query().Get("auth"))

	switch r.Method {
	case http.MethodGet:
		f.gets++
		body, ok := f.nodes[r.URL.Path]
		if !ok {
			body = "null"
		}
		w.Write([]byte(body))
	case http.MethodPost:
		data, _ := io.ReadAll(r.Body)
		f.nodes[r.URL.Path+"#posted"] = string(data)
		w.Write([]byte(`{"name":"-Nabc123"}`))
	case http.MethodPatch:
		data, _ := io.ReadAll(r.Body)
		f.nodes[r.URL.Path] = string(data)
		w.Write(data)
	}
}

func newTestClient(t *testing.T, db *fakeDB, auth string) *Client {
	t.Helper()
	srv := httptest.NewServer(db)
	t.Cleanup(srv.Close)
	return NewClient(Options{DatabaseURL: srv.URL + "/", Auth: auth, PollInterval: 10 * time.Millisecond})
}

func TestClient_Get(t *testing.T) {
	t.Run("Should decode a node and leave dest alone when missing", func(t *testing.T) {
		db := &fakeDB{nodes: map[string]string{"/staff_chats/7.json": `{"user_name":"An"}`}}
		c := newTestClient(t, db, "secret")

		var got domain.ChatSummary
		require.NoError(t, c.Get(context.Background(), "staff_chats/7", &got))
		assert.Equal(t, "An", got.UserName)

		missing := domain.ChatSummary{UserName: "keep"}
		require.NoError(t, c.Get(context.Background(), "staff_chats/8", &missing))
		assert.Equal(t, "keep", missing.UserName)
		assert.Equal(t, []string{"secret", "secret"}, db.auth)
	})

	t.Run("Should map permission errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Permission denied"}`))
		}))
		defer srv.Close()

		c := NewClient(Options{DatabaseURL: srv.URL})
		var v any
		err := c.Get(context.Background(), "chats/1", &v)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.Equal(t, "Permission denied", err.Error())
	})
}

func TestClient_PushAndUpdate(t *testing.T) {
	t.Run("Should return the generated key", func(t *testing.T) {
		db := &fakeDB{nodes: map[string]string{}}
		c := newTestClient(t, db, "")

		key, err := c.Push(context.Background(), "chats/3", domain.ChatMessage{Text: "hi", Sender: "u", Timestamp: 1})
		require.NoError(t, err)
		assert.Equal(t, "-Nabc123", key)

		var posted map[string]any
		require.NoError(t, json.Unmarshal([]byte(db.nodes["/chats/3.json#posted"]), &posted))
		assert.Equal(t, "hi", posted["text"])
	})

	t.Run("Should patch fields", func(t *testing.T) {
		db := &fakeDB{nodes: map[string]string{}}
		c := newTestClient(t, db, "")

		require.NoError(t, c.Update(context.Background(), "staff_chats/3", map[string]any{"last_message": "hi"}))
		assert.JSONEq(t, `{"last_message":"hi"}`, db.nodes["/staff_chats/3.json"])
	})
}

func TestClient_Subscribe(t *testing.T) {
	t.Run("Should deliver the initial value and each change once", func(t *testing.T) {
		db := &fakeDB{nodes: map[string]string{"/chats/1.json": `{"a":{"text":"one"}}`}}
		c := newTestClient(t, db, "")

		got := make(chan string, 10)
		unsub, err := c.Subscribe(context.Background(), "chats/1", func(s Snapshot) {
			got <- string(s.Raw)
		})
		require.NoError(t, err)
		defer unsub()

		assert.Equal(t, `{"a":{"text":"one"}}`, <-got)

		db.set("/chats/1.json", `{"a":{"text":"one"},"b":{"text":"two"}}`)
		select {
		case v := <-got:
			assert.Contains(t, v, "two")
		case <-time.After(2 * time.Second):
			t.Fatal("change was not delivered")
		}

		// Unchanged polls deliver nothing
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, got)
	})

	t.Run("Should stop polling after unsubscribe", func(t *testing.T) {
		db := &fakeDB{nodes: map[string]string{}}
		c := newTestClient(t, db, "")

		unsub, err := c.Subscribe(context.Background(), "chats/2", func(Snapshot) {})
		require.NoError(t, err)
		unsub()
		unsub()

		db.mu.Lock()
		before := db.gets
		db.mu.Unlock()
		time.Sleep(50 * time.Millisecond)
		db.mu.Lock()
		defer db.mu.Unlock()
		assert.Equal(t, before, db.gets)
	})

	t.Run("Should fail when the initial read fails", func(t *testing.T) {
		c := NewClient(Options{DatabaseURL: "http://127.0.0.1:1", Timeout: time.Second})
		_, err := c.Subscribe(context.Background(), "chats/1", func(Snapshot) {})
		assert.ErrorIs(t, err, domain.ErrNetwork)
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("Should treat null as missing", func(t *testing.T) {
		assert.False(t, Snapshot{Raw: []byte("null")}.Exists())
		assert.False(t, Snapshot{}.Exists())
		assert.True(t, Snapshot{Raw: []byte("{}")}.Exists())
	})

	t.Run("Should prefer etags when both sides have one", func(t *testing.T) {
		assert.False(t, changed(Snapshot{Raw: []byte("1"), ETag: "x"}, Snapshot{Raw: []byte("2"), ETag: "x"}))
		assert.True(t, changed(Snapshot{Raw: []byte("1")}, Snapshot{Raw: []byte("2")}))
	})
}
