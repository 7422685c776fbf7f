package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no session exists for a key.
	ErrNotFound = errors.New("session not found")
	// ErrUnavailable wraps infrastructure failures of a backing store.
	ErrUnavailable = errors.New("session store unavailable")
	// ErrCorrupt is returned when a stored session cannot be decoded.
	ErrCorrupt = errors.New("session record corrupt")
)

// Store persists sessions keyed by refresh-token hash. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save inserts or replaces s.
	Save(ctx context.Context, s *Session) error
	// Take removes and returns the session for key. Concurrent callers with the same key
	// observe at most one success; the rest get ErrNotFound.
	Take(ctx context.Context, key [32]byte) (*Session, error)
	// Get returns a copy of the session without removing it.
	Get(ctx context.Context, key [32]byte) (*Session, error)
	// Delete removes the session. Missing keys are not an error.
	Delete(ctx context.Context, key [32]byte) error
	// Sweep removes every session expired at now and reports how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
	// Len reports the number of stored sessions, expired or not.
	Len(ctx context.Context) (int, error)
}
