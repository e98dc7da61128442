// Package session holds the in-memory credential store for one
// authenticated admin session. Credentials live only in process memory;
// a restart always forces a fresh login.
package session

import (
	"encoding/base64"
	"sync"
	"time"
)

// Store keeps the current session's authentication material. A session
// exists exactly while the UI is in the authenticated state: it is created
// on successful login and destroyed on logout or on any 401 response.
type Store struct {
	mu         sync.Mutex
	username   string
	secret     string
	validSince time.Time
	active     bool
}

// NewStore returns an empty (unauthenticated) store.
func NewStore() *Store {
	return &Store{}
}

// Set commits new session credentials, replacing any previous session.
func (s *Store) Set(username, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.secret = secret
	s.validSince = time.Now()
	s.active = true
}

// Clear destroys the session. Safe to call repeatedly.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	s.secret = ""
	s.validSince = time.Time{}
	s.active = false
}

// Valid reports whether a session is currently held.
func (s *Store) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Username returns the logged-in admin name, or "" when unauthenticated.
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// ValidSince returns the login time of the current session.
func (s *Store) ValidSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validSince
}

// AuthHeader returns the Authorization header value for the current
// session, or ok=false when no session is held. The service authenticates
// admin calls with HTTP Basic.
func (s *Store) AuthHeader() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return "", false
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(s.username + ":" + s.secret))
	return "Basic " + encoded, true
}
