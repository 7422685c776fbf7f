package rate

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count int64
	start time.Time
}

// MemoryLimiter is an in-process Limiter.
type MemoryLimiter struct {
	config Config
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]window
}

// NewMemory returns a MemoryLimiter. A nil clock uses time.Now.
func NewMemory(cfg Config, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{config: cfg, now: now, windows: make(map[string]window)}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	w, ok := l.windows[key]
	if !ok || l.closed(w, now) {
		w = window{start: now}
	}
	w.count++
	l.windows[key] = w
	l.mu.Unlock()

	return decide(w.count, l.config.Limit), nil
}

// Reset implements Limiter.
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
	return nil
}

// Prune implements Limiter. Closed windows are collected first, then removed one at a
// time so request-path calls are never blocked for the whole scan.
func (l *MemoryLimiter) Prune(ctx context.Context) (int, error) {
	now := l.now()

	l.mu.Lock()
	var stale []string
	for key, w := range l.windows {
		if l.closed(w, now) {
			stale = append(stale, key)
		}
	}
	l.mu.Unlock()

	pruned := 0
	for _, key := range stale {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}
		l.mu.Lock()
		if w, ok := l.windows[key]; ok && l.closed(w, now) {
			delete(l.windows, key)
			pruned++
		}
		l.mu.Unlock()
	}
	return pruned, nil
}

// Len reports the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *MemoryLimiter) closed(w window, now time.Time) bool {
	return !now.Before(w.start.Add(l.config.Window))
}
