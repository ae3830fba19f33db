package session

import (
	"sync"

	"github.com/rosoporto/weather-bot/internal/domain"
)

// Store holds per-chat sessions in memory. It is shared by the update loop
// and the scheduler goroutine, so every access goes through mu.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*domain.Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*domain.Session)}
}

// Get returns a copy of the chat's session.
func (s *Store) Get(chatID int64) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return domain.Session{ChatID: chatID, State: domain.StateNew}, false
	}
	return sess.Clone(), true
}

// State returns the current state; a missing session reads as StateNew.
func (s *Store) State(chatID int64) domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[chatID]; ok {
		return sess.State
	}
	return domain.StateNew
}

// Update applies fn to the chat's session under the write lock, creating
// the session first if it does not exist. It returns the updated copy.
func (s *Store) Update(chatID int64, fn func(*domain.Session)) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &domain.Session{ChatID: chatID, State: domain.StateNew}
		s.sessions[chatID] = sess
	}
	fn(sess)
	return sess.Clone()
}

// Reset replaces the chat's session with a fresh onboarding session and
// returns what was there before.
func (s *Store) Reset(chatID int64) (prev domain.Session, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.sessions[chatID]; ok {
		prev, existed = old.Clone(), true
	}
	s.sessions[chatID] = domain.NewSession(chatID)
	return prev, existed
}

// Delete removes the chat's session. Deleting a missing session is a no-op.
func (s *Store) Delete(chatID int64) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return domain.Session{}, false
	}
	delete(s.sessions, chatID)
	return sess.Clone(), true
}

// Len reports the number of known chats.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
