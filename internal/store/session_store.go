// Package store is the gateway's client-local storage: a small JSON file
// holding the cached user record and the token expiry timestamp. Nothing
// else is persisted on this side of the API.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hospital_training_portal/internal/model"
)

// CachedSession mirrors what the browser client kept in localStorage:
// the user object for the UI plus the absolute token expiry.
type CachedSession struct {
	User           *model.User `json:"user,omitempty"`
	TokenExpiresAt int64       `json:"token_expires_at,omitempty"` // unix milliseconds
}

type SessionStore struct {
	filename string
	mu       sync.Mutex
}

func NewSessionStore(filename string) (*SessionStore, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &SessionStore{filename: filename}, nil
}

// Load reads the cached session. A missing file is an empty session,
// not an error; a corrupt file is discarded the same way, because a
// cache that cannot be parsed is as good as no cache.
func (s *SessionStore) Load() (CachedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CachedSession{}, nil
		}
		return CachedSession{}, err
	}
	if len(data) == 0 {
		return CachedSession{}, nil
	}

	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		return CachedSession{}, nil
	}
	return cached, nil
}

func (s *SessionStore) SaveUser(user *model.User) error {
	return s.update(func(c *CachedSession) { c.User = user })
}

// SaveExpiry records when the current access token runs out.
func (s *SessionStore) SaveExpiry(expiresAt time.Time) error {
	return s.update(func(c *CachedSession) { c.TokenExpiresAt = expiresAt.UnixMilli() })
}

// Clear wipes the cached user and expiry. Used on logout and on
// irrecoverable refresh failure; must always succeed locally even when
// the upstream is unreachable, so a missing file is fine.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.filename)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *SessionStore) update(mutate func(*CachedSession)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cached CachedSession
	if data, err := os.ReadFile(s.filename); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &cached)
	}

	mutate(&cached)

	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filename, data, 0644)
}
