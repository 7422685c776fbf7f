//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goShield "github.com/MrEthical07/goShield"
	"github.com/MrEthical07/goShield/session"
)

var shopper = goShield.Credential{UserID: "u-42", Email: "shopper@shop.example", Role: goShield.RoleUser}

func TestRedisCompatRefreshRotation(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			engine := newRedisEngine(t, mode.setup(t), nil)

			pair, err := engine.CreateSession(ctx, shopper)
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			next, err := engine.RefreshSession(ctx, pair.RefreshToken)
			if err != nil {
				t.Fatalf("RefreshSession failed: %v", err)
			}
			if _, err := engine.RefreshSession(ctx, pair.RefreshToken); !errors.Is(err, goShield.ErrSessionExpired) {
				t.Fatalf("expected ErrSessionExpired on reuse, got %v", err)
			}
			if err := engine.RevokeSession(ctx, next.RefreshToken); err != nil {
				t.Fatalf("RevokeSession failed: %v", err)
			}
			if _, err := engine.RefreshSession(ctx, next.RefreshToken); !errors.Is(err, goShield.ErrSessionExpired) {
				t.Fatalf("expected ErrSessionExpired after revoke, got %v", err)
			}
		})
	}
}

func TestRedisCompatRefreshSingleWinner(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			engine := newRedisEngine(t, mode.setup(t), nil)

			pair, err := engine.CreateSession(ctx, shopper)
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}

			var (
				wg      sync.WaitGroup
				winners int64
				start   = make(chan struct{})
			)
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					if _, err := engine.RefreshSession(ctx, pair.RefreshToken); err == nil {
						atomic.AddInt64(&winners, 1)
					}
				}()
			}
			close(start)
			wg.Wait()

			if winners != 1 {
				t.Fatalf("expected exactly one winner, got %d", winners)
			}
		})
	}
}

func TestRedisCompatStoreSweep(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			if mode.name == "cluster" {
				t.Skip("sweep scans and MGETs a single node")
			}
			ctx := context.Background()
			now := time.Now()
			store := session.NewRedisStore(mode.setup(t), integrationConfig().Session.RedisPrefix, func() time.Time { return now })

			live := &session.Session{KeyHash: session.HashToken("live"), UserID: "u1", Role: "user",
				CreatedAt: now.UnixMilli(), ExpiresAt: now.Add(time.Hour).UnixMilli()}
			if err := store.Save(ctx, live); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			removed, err := store.Sweep(ctx, now.Add(2*time.Hour))
			if err != nil {
				t.Fatalf("Sweep failed: %v", err)
			}
			if removed != 1 {
				t.Fatalf("expected 1 removed, got %d", removed)
			}
			if _, err := store.Get(ctx, live.KeyHash); !errors.Is(err, session.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after sweep, got %v", err)
			}
		})
	}
}

func TestRedisCompatAdmissionWindow(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			engine := newRedisEngine(t, mode.setup(t), func(c *goShield.Config) {
				c.RateLimit.Limit = 5
				c.RateLimit.Window = time.Minute
			})

			for i := 0; i < 5; i++ {
				if err := engine.Admit(ctx, "198.51.100.10"); err != nil {
					t.Fatalf("request %d rejected: %v", i+1, err)
				}
			}
			if err := engine.Admit(ctx, "198.51.100.10"); !errors.Is(err, goShield.ErrRateLimited) {
				t.Fatalf("expected ErrRateLimited, got %v", err)
			}
			if err := engine.Admit(ctx, "198.51.100.11"); err != nil {
				t.Fatalf("other origin rejected: %v", err)
			}
		})
	}
}
