package goShield

import (
	"context"
	"testing"
)

func BenchmarkValidateAccess(b *testing.B) {
	engine := newBenchmarkEngine(b, nil)

	pair, err := engine.CreateSession(context.Background(), testCredential())
	if err != nil {
		b.Fatalf("create session failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.ValidateAccess(pair.AccessToken); err != nil {
			b.Fatalf("validate failed: %v", err)
		}
	}
}

func BenchmarkRefreshMemory(b *testing.B) {
	benchmarkRefresh(b, nil)
}

func BenchmarkRefreshRedis(b *testing.B) {
	_, rdb := newTestRedis(b)
	benchmarkRefresh(b, func(bl *Builder) { bl.WithRedis(rdb) })
}

func benchmarkRefresh(b *testing.B, configure func(*Builder)) {
	engine := newBenchmarkEngine(b, configure)

	pair, err := engine.CreateSession(context.Background(), testCredential())
	if err != nil {
		b.Fatalf("create session failed: %v", err)
	}
	refresh := pair.RefreshToken

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := engine.RefreshSession(context.Background(), refresh)
		if err != nil {
			b.Fatalf("refresh failed: %v", err)
		}
		refresh = next.RefreshToken
	}
}

func BenchmarkAdmitParallel(b *testing.B) {
	cfg := testConfig()
	cfg.RateLimit.Limit = 1 << 30
	engine := newTestEngine(b, cfg, nil)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := engine.Admit(context.Background(), "bench"); err != nil {
				b.Errorf("admit failed: %v", err)
				return
			}
		}
	})
}

func newBenchmarkEngine(tb testing.TB, configure func(*Builder)) *Engine {
	tb.Helper()

	cfg := testConfig()
	cfg.Metrics.Enabled = false
	cfg.Audit.Enabled = false
	return newTestEngine(tb, cfg, configure)
}
