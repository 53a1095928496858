package services

import (
	"sync"
	"time"

	"shootdesk-backend/internal/models"

	"github.com/google/uuid"
)

// Session is the signed-in identity passed to every operation
type Session struct {
	ID        string
	ProfileID string
	Name      string
	Role      models.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsAdmin reports whether the session belongs to an admin
func (s *Session) IsAdmin() bool { return s.Role == models.RoleAdmin }

// IsPhotographer reports whether the session belongs to a photographer
func (s *Session) IsPhotographer() bool { return s.Role == models.RolePhotographer }

// SystemSession is the admin identity used by the CLI
func SystemSession() *Session {
	return &Session{ID: "system", Name: "system", Role: models.RoleAdmin}
}

// SessionStore keeps active sessions in memory
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	onDelete []func(sessionID string)
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a new session store
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create opens a session for a profile
func (s *SessionStore) Create(profile *models.Profile) *Session {
	now := s.now()
	session := &Session{
		ID:        uuid.New().String(),
		ProfileID: profile.ID,
		Name:      profile.Name,
		Role:      profile.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return session
}

// Get retrieves a live session by ID
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	session, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if s.now().After(session.ExpiresAt) {
		s.Delete(id)
		return nil, false
	}
	return session, true
}

// OnDelete registers fn to run after a session ends by sign-out, password reset or expiry
func (s *SessionStore) OnDelete(fn func(sessionID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDelete = append(s.onDelete, fn)
}

// Delete removes a session
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	_, exists := s.sessions[id]
	delete(s.sessions, id)
	hooks := s.onDelete
	s.mu.Unlock()

	if exists {
		for _, fn := range hooks {
			fn(id)
		}
	}
}

// DeleteForProfile removes every session of a profile
func (s *SessionStore) DeleteForProfile(profileID string) {
	s.mu.Lock()
	var ended []string
	for id, session := range s.sessions {
		if session.ProfileID == profileID {
			delete(s.sessions, id)
			ended = append(ended, id)
		}
	}
	hooks := s.onDelete
	s.mu.Unlock()

	for _, id := range ended {
		for _, fn := range hooks {
			fn(id)
		}
	}
}

// TTL returns the lifetime of new sessions
func (s *SessionStore) TTL() time.Duration { return s.ttl }
