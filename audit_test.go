package goShield

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func auditConfig() Config {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64
	cfg.Audit.DropIfFull = false
	return cfg
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := NewChannelSink(8)
	engine := newTestEngine(t, testConfig(), func(b *Builder) { b.WithAuditSink(sink) })

	if _, err := engine.CreateSession(context.Background(), testCredential()); err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	engine.Close()

	select {
	case ev := <-sink.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
	if engine.AuditDropped() != 0 {
		t.Fatal("disabled audit must not count drops")
	}
}

func TestAuditRefreshEvents(t *testing.T) {
	sink := NewChannelSink(8)
	engine := newTestEngine(t, auditConfig(), func(b *Builder) { b.WithAuditSink(sink) })
	ctx := WithClientIP(context.Background(), "203.0.113.7")

	pair, err := engine.CreateSession(ctx, testCredential())
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if _, err := engine.RefreshSession(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	_, _ = engine.RefreshSession(ctx, pair.RefreshToken)

	want := []struct {
		eventType string
		success   bool
	}{
		{auditEventSessionCreated, true},
		{auditEventRefreshSuccess, true},
		{auditEventRefreshInvalid, false},
	}
	for _, w := range want {
		select {
		case ev := <-sink.Events():
			if ev.EventType != w.eventType || ev.Success != w.success {
				t.Fatalf("expected %s/%v, got %s/%v", w.eventType, w.success, ev.EventType, ev.Success)
			}
			if ev.ID == "" || ev.Timestamp.IsZero() {
				t.Fatalf("event missing id or timestamp: %+v", ev)
			}
			if ev.IP != "***.***.***.***" {
				t.Fatalf("expected masked client address, got %q", ev.IP)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", w.eventType)
		}
	}
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	buf := &syncBuffer{}
	cfg := auditConfig()
	cfg.Login.MaxAttempts = 1
	engine, _ := newLoginEngine(t, cfg, func(b *Builder) { b.WithAuditSink(NewJSONWriterSink(buf)) })
	ctx := context.Background()

	pair, err := engine.Login(ctx, "jane@example.com", testPassword)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	_, _ = engine.Login(ctx, "jane@example.com", "wrong-password")
	_, _ = engine.Login(ctx, "jane@example.com", "wrong-password")
	engine.Close()

	out := buf.String()
	if out == "" {
		t.Fatal("expected audit output")
	}
	for _, secret := range []string{
		pair.AccessToken,
		pair.RefreshToken,
		testPassword,
		"wrong-password",
		"jane@example.com",
	} {
		if strings.Contains(out, secret) {
			t.Fatalf("audit output leaked %q", secret)
		}
	}
	if !strings.Contains(out, auditEventLoginRateLimited) {
		t.Fatalf("expected rate limited event in %s", out)
	}
}
