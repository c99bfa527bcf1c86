package ephemeral

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
)

type memoryEntry struct {
	email     string
	expiresAt time.Time
}

type memoryKey struct {
	purpose Purpose
	token   string
}

// MemoryStore is a process-local Store guarded by a mutex. It suits single
// instance deployments and tests; use RedisStore when several instances serve
// the same users.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[memoryKey]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore returns a store whose entries live for ttl. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[memoryKey]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Put(_ context.Context, purpose Purpose, token, email string) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked(now)

	e := memoryEntry{email: email}
	if s.ttl > 0 {
		e.expiresAt = now.Add(s.ttl)
	}
	s.entries[memoryKey{purpose: purpose, token: token}] = e
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, purpose Purpose, token string) (string, error) {
	now := s.now()
	key := memoryKey{purpose: purpose, token: token}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	delete(s.entries, key)

	if s.expired(e, now) {
		return "", common.ErrorNotFound
	}
	return e.email, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (s *MemoryStore) purgeLocked(now time.Time) {
	for k, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, k)
		}
	}
}
