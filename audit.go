package goShield

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrEthical07/goShield/internal/audit"
)

// AuditEvent is one security-relevant engine outcome. Events are sanitized before any
// sink sees them.
type AuditEvent = audit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink discards events.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers events in a channel, mostly for tests.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// ZapSink logs events through a zap logger.
type ZapSink = audit.ZapSink

var (
	NewChannelSink    = audit.NewChannelSink
	NewJSONWriterSink = audit.NewJSONWriterSink
)

// NewZapSink returns a sink writing to logger under the "audit" name.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return audit.NewZapSink(logger)
}

const (
	auditEventSessionCreated   = "session_created"
	auditEventRefreshSuccess   = "refresh_success"
	auditEventRefreshInvalid   = "refresh_invalid"
	auditEventSessionRevoked   = "session_revoked"
	auditEventSessionsSwept    = "sessions_swept"
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLoginRateLimited = "login_rate_limited"
	auditEventPasswordUpgraded = "password_upgraded"
	auditEventAdmissionDenied  = "admission_denied"
)

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID string, err error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	e.audit.Emit(ctx, event)
}
