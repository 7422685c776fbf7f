package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. The lock is held only for single map operations.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[[32]byte]Session
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[[32]byte]Session)}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	m.sessions[s.KeyHash] = *s
	m.mu.Unlock()
	return nil
}

// Take implements Store.
func (m *MemoryStore) Take(_ context.Context, key [32]byte) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key [32]byte) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key [32]byte) error {
	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()
	return nil
}

// Sweep implements Store. Candidates are collected under a read lock, then each is removed
// under its own short write lock after re-checking that it is still expired.
func (m *MemoryStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	m.mu.RLock()
	var expired [][32]byte
	for key, s := range m.sessions {
		if s.Expired(now) {
			expired = append(expired, key)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, key := range expired {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		m.mu.Lock()
		if s, ok := m.sessions[key]; ok && s.Expired(now) {
			delete(m.sessions, key)
			removed++
		}
		m.mu.Unlock()
	}
	return removed, nil
}

// Len implements Store.
func (m *MemoryStore) Len(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
