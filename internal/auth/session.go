package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// AdminSession is the authorized/unauthorized flag that gates destructive
// message operations. The flag is checked by the calling layer; the message
// service itself has no notion of identity.
type AdminSession struct {
	auth       Authenticator
	mu         sync.RWMutex
	authorized bool
}

// NewAdminSession creates an unauthorized session checked against auth.
func NewAdminSession(auth Authenticator) *AdminSession {
	return &AdminSession{auth: auth}
}

// Authenticate flips the session to authorized when password is accepted.
// A rejected password leaves the current state unchanged.
func (s *AdminSession) Authenticate(password string) bool {
	if !s.auth.Check(password) {
		return false
	}
	s.mu.Lock()
	s.authorized = true
	s.mu.Unlock()
	return true
}

// IsAuthorized reports the current state.
func (s *AdminSession) IsAuthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authorized
}

// Logout clears the authorized flag.
func (s *AdminSession) Logout() {
	s.mu.Lock()
	s.authorized = false
	s.mu.Unlock()
}

// Sessions tracks authorized admin sessions by opaque session ID.
// Only successful logins are registered. With a positive ttl a session
// expires ttl after login; expired entries are dropped on lookup and on
// every login, so the registry holds at most the logins of one ttl window.
type Sessions struct {
	auth     Authenticator
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	session   *AdminSession
	expiresAt time.Time // zero never expires
}

func (e *sessionEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewSessions creates an empty registry. ttl <= 0 keeps sessions until logout.
func NewSessions(auth Authenticator, ttl time.Duration) *Sessions {
	return &Sessions{
		auth:     auth,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Login authenticates password and, on success, returns a new session ID.
func (r *Sessions) Login(password string) (string, bool, error) {
	session := NewAdminSession(r.auth)
	if !session.Authenticate(password) {
		return "", false, nil
	}

	id, err := generateSessionID()
	if err != nil {
		return "", false, fmt.Errorf("generate session ID: %w", err)
	}

	now := r.now()
	entry := &sessionEntry{session: session}
	if r.ttl > 0 {
		entry.expiresAt = now.Add(r.ttl)
	}

	r.mu.Lock()
	for key, e := range r.sessions {
		if e.expired(now) {
			delete(r.sessions, key)
		}
	}
	r.sessions[id] = entry
	r.mu.Unlock()
	return id, true, nil
}

// Get returns the live session for id, or nil.
func (r *Sessions) Get(id string) *AdminSession {
	if id == "" {
		return nil
	}
	r.mu.RLock()
	e := r.sessions[id]
	r.mu.RUnlock()
	if e == nil {
		return nil
	}
	if e.expired(r.now()) {
		r.Logout(id)
		return nil
	}
	return e.session
}

// Len returns the number of registered sessions, expired or not.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IsAuthorized reports whether id names an authorized session.
func (r *Sessions) IsAuthorized(id string) bool {
	s := r.Get(id)
	return s != nil && s.IsAuthorized()
}

// Logout clears and forgets the session.
func (r *Sessions) Logout(id string) {
	r.mu.Lock()
	e := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if e != nil {
		e.session.Logout()
	}
}

// generateSessionID generates a random admin session ID.
func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
