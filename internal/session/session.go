package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/dukerupert/pizzeria/internal/model"
)

const DefaultTTL = 24 * time.Hour

// Store keeps logged-in sessions in memory, keyed by an opaque random token.
// Sessions do not survive a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock replaces time.Now; for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Create starts a session for the named user.
func (s *Store) Create(name, street string) (*model.Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &model.Session{
		Token:     hex.EncodeToString(tokenBytes),
		Name:      name,
		Street:    street,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	s.sessions[sess.Token] = sess
	copied := *sess
	return &copied, nil
}

// Get returns the session for token, or nil if unknown or expired.
func (s *Store) Get(token string) *model.Session {
	if token == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil
	}
	copied := *sess
	return &copied
}

// Delete ends the session and reports whether it existed.
func (s *Store) Delete(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return false
	}
	delete(s.sessions, token)
	return true
}

// DeleteExpired removes expired sessions and returns how many were removed.
func (s *Store) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
