package goShield

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const (
	testJWTSecret       = "0123456789abcdef0123456789abcdef"
	testEncryptionKey   = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testPseudonymSecret = "pseudonym-secret-for-tests"
	testPassword        = "correct-password-123"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 5, 14, 22, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = testJWTSecret
	cfg.Privacy.EncryptionKey = testEncryptionKey
	cfg.Privacy.PseudonymSecret = testPseudonymSecret
	cfg.JWT.AccessTTL = 10 * time.Minute
	cfg.Session.RefreshTTL = time.Hour
	cfg.Metrics.Enabled = true
	return cfg
}

type memoryUsers struct {
	mu       sync.Mutex
	users    map[string]Credential
	upgrades int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]Credential)}
}

func (m *memoryUsers) add(identifier string, cred Credential) {
	m.mu.Lock()
	m.users[strings.ToLower(identifier)] = cred
	m.mu.Unlock()
}

func (m *memoryUsers) GetUserByIdentifier(_ context.Context, identifier string) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.users[identifier]
	if !ok {
		return Credential{}, ErrUserNotFound
	}
	return cred, nil
}

func (m *memoryUsers) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, cred := range m.users {
		if cred.UserID == userID {
			cred.PasswordHash = hash
			m.users[k] = cred
			m.upgrades++
		}
	}
	return nil
}

func (m *memoryUsers) hashFor(identifier string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[identifier].PasswordHash
}

func newTestEngine(t testing.TB, cfg Config, configure func(*Builder)) *Engine {
	t.Helper()

	b := New().WithConfig(cfg)
	if configure != nil {
		configure(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func testCredential() Credential {
	return Credential{UserID: "u1", Email: "jane.doe@example.com", Role: RoleUser}
}
