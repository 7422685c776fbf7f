package rate

import (
	"context"
	"errors"
	"time"
)

// Config sets the window size and the number of hits allowed inside it.
type Config struct {
	Limit  int
	Window time.Duration
}

// DefaultConfig allows 100 hits per minute.
func DefaultConfig() Config {
	return Config{Limit: 100, Window: time.Minute}
}

// Validate rejects non-positive limits and windows.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return errors.New("rate limit must be > 0")
	}
	if c.Window <= 0 {
		return errors.New("rate window must be > 0")
	}
	return nil
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	Count   int
	Limit   int
}

// Limiter counts hits per key.
type Limiter interface {
	// Allow records a hit for key.
	Allow(ctx context.Context, key string) (Decision, error)
	// Reset clears the window for key.
	Reset(ctx context.Context, key string) error
	// Prune drops windows that have closed and reports how many were dropped.
	Prune(ctx context.Context) (int, error)
}

func decide(count int64, limit int) Decision {
	return Decision{Allowed: count <= int64(limit), Count: int(count), Limit: limit}
}
