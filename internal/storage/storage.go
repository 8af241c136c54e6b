package storage

import (
	"log/slog"
	"sync"
	"time"

	"github.com/unisima/ocr-extractor/internal/controller"
)

// SessionStore keeps one controller per browser session
type SessionStore struct {
	sessions map[string]*controller.Controller
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*controller.Controller),
	}
}

func (s *SessionStore) Get(sessionID string) (*controller.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

// Set stores a session, closing any controller it replaces
func (s *SessionStore) Set(sessionID string, session *controller.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.sessions[sessionID]; ok && old != session {
		old.Close()
	}
	s.sessions[sessionID] = session
}

// GetOrCreate returns the session, creating it with newFn when missing
func (s *SessionStore) GetOrCreate(sessionID string, newFn func() *controller.Controller) *controller.Controller {
	if session, ok := s.Get(sessionID); ok {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return session
	}
	session := newFn()
	s.sessions[sessionID] = session
	return session
}

func (s *SessionStore) GetAll() map[string]*controller.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*controller.Controller, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Delete removes a session and revokes its preview
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		session.Close()
		delete(s.sessions, sessionID)
	}
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were removed
func (s *SessionStore) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if session.LastActive().Before(cutoff) {
			session.Close()
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("Expired idle sessions", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}
