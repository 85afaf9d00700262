package session

import (
	"context"
	"fmt"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates a Store backed by an in-memory map. Records do
// not survive a process restart; intended for tests and development.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]*Session)}
}

func (s *memoryStore) Get(_ context.Context, id string) (*Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false, nil
	}
	return sess.Clone(), true, nil
}

func (s *memoryStore) Save(_ context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}
