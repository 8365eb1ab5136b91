package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/onboarding"
)

type sessionEntry struct {
	session   *onboarding.Session
	expiresAt time.Time
}

// InMemorySessionStore is the single-instance fallback when Redis is down.
// Sessions are cloned on the way in and out so callers never share state.
type InMemorySessionStore struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]sessionEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ onboarding.SessionStore = (*InMemorySessionStore)(nil)

// NewInMemorySessionStore starts a store with a background sweeper
func NewInMemorySessionStore(sweepInterval time.Duration) *InMemorySessionStore {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	s := &InMemorySessionStore{
		entries:  make(map[uuid.UUID]sessionEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop(sweepInterval)
	return s
}

// Save stores a copy of the session
func (s *InMemorySessionStore) Save(_ context.Context, sess *onboarding.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID] = sessionEntry{session: sess.Clone(), expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns a copy of the session
func (s *InMemorySessionStore) Get(_ context.Context, id uuid.UUID) (*onboarding.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, onboarding.ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

// Delete removes a session
func (s *InMemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *InMemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemorySessionStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			return
		}
	}
}

func (s *InMemorySessionStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Close stops the sweeper
func (s *InMemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}
