package storage

import (
	"context"
	"sync"
	"time"
)

var _ SeenStore = (*MemorySeenStore)(nil)

// sweepInterval bounds how often MarkIfNew scans for expired keys.
const sweepInterval = time.Minute

// MemorySeenStore is an in-process SeenStore. MarkIfNew evicts expired keys at most once
// per sweepInterval; Purge evicts them on demand.
type MemorySeenStore struct {
	mu        sync.Mutex
	expires   map[string]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (s *MemorySeenStore) WithClock(now func() time.Time) *MemorySeenStore {
	s.now = now
	return s
}

func (s *MemorySeenStore) MarkIfNew(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.purgeLocked(now)
	}
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

// Forget removes key so the next MarkIfNew reports it as new.
func (s *MemorySeenStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expires, key)
	return nil
}

// Purge drops expired keys and returns how many were removed.
func (s *MemorySeenStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked(s.now())
}

func (s *MemorySeenStore) purgeLocked(now time.Time) int {
	s.lastSweep = now
	removed := 0
	for key, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys, expired ones included.
func (s *MemorySeenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

func (s *MemorySeenStore) Close() error {
	return nil
}
