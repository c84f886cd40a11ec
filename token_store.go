package authclient

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// MemoryTokenStore keeps the token in process memory. Useful for tests and
// for embedding the machine in a host that manages its own persistence.
type MemoryTokenStore struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewMemoryTokenStore returns an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{now: time.Now}
}

// WithClock injects a custom clock (useful for tests).
func (s *MemoryTokenStore) WithClock(clock func() time.Time) *MemoryTokenStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *MemoryTokenStore) Save(token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s.token = token
	s.expiresAt = s.now().Add(ttl)
	return nil
}

func (s *MemoryTokenStore) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return "", ErrNoToken
	}

	if !s.now().Before(s.expiresAt) {
		s.token = ""
		return "", ErrNoToken
	}

	return s.token, nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.expiresAt = time.Time{}
	return nil
}

// tokenRecord is the on-disk shape of a persisted token.
type tokenRecord struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileTokenStore persists the token as a 0600 JSON file so CLI sessions
// survive process restarts.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileTokenStore creates the parent directory if needed.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		return nil, goerrors.New("token store path is required", goerrors.CategoryBadInput)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "could not create token store directory")
	}

	return &FileTokenStore{path: path, now: time.Now}, nil
}

// WithClock injects a custom clock (useful for tests).
func (s *FileTokenStore) WithClock(clock func() time.Time) *FileTokenStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *FileTokenStore) Save(token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	record := tokenRecord{
		Token:     token,
		ExpiresAt: s.now().Add(ttl),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not encode token record")
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "could not persist token")
	}

	return nil
}

func (s *FileTokenStore) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", goerrors.Wrap(err, goerrors.CategoryOperation, "could not read token store")
	}

	var record tokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// Unreadable store entries behave like no token at all.
		_ = os.Remove(s.path)
		return "", ErrNoToken
	}

	if record.Token == "" || !s.now().Before(record.ExpiresAt) {
		_ = os.Remove(s.path)
		return "", ErrNoToken
	}

	return record.Token, nil
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "could not clear token store")
	}
	return nil
}
