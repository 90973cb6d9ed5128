package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vnma/vaxtui/internal/domain"
)

// Bucket names
var (
	bucketSession   = []byte("session")
	bucketDownloads = []byte("downloads")

	allBuckets = [][]byte{bucketSession, bucketDownloads}
)

const keyCurrent = "current"

// SessionStore implements domain.Store using BoltDB. Each service URL gets
// its own database so switching servers never mixes sessions.
type SessionStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var _ domain.Store = (*SessionStore)(nil)

// NewSessionStore opens (or creates) the store for serverURL under
// baseCacheDir. An empty baseCacheDir gives a memory-only store.
func NewSessionStore(baseCacheDir, serverURL string) (*SessionStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &SessionStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "vaxtui.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SessionStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SessionStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *SessionStore) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// === Session ===

func (s *SessionStore) LoadSession() (*domain.Session, bool) {
	var sess domain.Session
	if !s.get(bucketSession, keyCurrent, &sess) || sess.Token.AccessToken == "" {
		return nil, false
	}
	return &sess, true
}

func (s *SessionStore) SaveSession(sess *domain.Session) error {
	return s.set(bucketSession, keyCurrent, sess)
}

func (s *SessionStore) ClearSession() error {
	return s.delete(bucketSession, keyCurrent)
}

// === Downloaded certificates ===

func (s *SessionStore) CertificatePath(recordID int64) (string, bool) {
	var path string
	if !s.get(bucketDownloads, strconv.FormatInt(recordID, 10), &path) {
		return "", false
	}
	return path, true
}

func (s *SessionStore) SaveCertificatePath(recordID int64, path string) error {
	return s.set(bucketDownloads, strconv.FormatInt(recordID, 10), path)
}

func (s *SessionStore) ForgetCertificate(recordID int64) {
	s.delete(bucketDownloads, strconv.FormatInt(recordID, 10))
}
