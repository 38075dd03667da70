// Package session holds the client's access token and persists it across
// process restarts.
package session

import (
	"context"
	"errors"
	"sync"
)

// AccessTokenKey is the single persisted key holding the bearer token.
const AccessTokenKey = "access_token"

var (
	ErrUnknownBackend = errors.New("unknown session backend")
	ErrMissingDSN     = errors.New("session backend requires a DSN")
)

// Store persists the access token. Load returns "" when no token is stored.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Session is the process-wide holder of the current access token. Reads are
// served from memory; writes go through to the Store. Login and logout are
// the only writers, and the last write wins.
type Session struct {
	mu    sync.RWMutex
	token string
	store Store
}

// Open creates a Session seeded with whatever token the store already holds.
// No expiry check is done here; an expired token is discovered by the next 401.
func Open(ctx context.Context, store Store) (*Session, error) {
	token, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{token: token, store: store}, nil
}

// Token returns the current access token and whether one is present.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set replaces the current token and persists it.
func (s *Session) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Clear drops the token. The in-memory token is cleared even when the store
// fails, so a failed persist never leaves the process authenticated.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	return s.store.Clear(ctx)
}
