package goShield

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goShield/cryptox"
	"github.com/MrEthical07/goShield/internal/audit"
	"github.com/MrEthical07/goShield/internal/rate"
	"github.com/MrEthical07/goShield/jwt"
	"github.com/MrEthical07/goShield/password"
	"github.com/MrEthical07/goShield/privacy"
	"github.com/MrEthical07/goShield/session"
)

// Engine defines a public type used by goShield APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// All methods are safe for concurrent use.
type Engine struct {
	config        Config
	store         session.Store
	limiter       rate.Limiter
	loginLimiter  rate.Limiter
	jwtManager    *jwt.Manager
	passwords     *password.Suite
	dummyHash     string
	cipher        *cryptox.Cipher
	pseudonymizer *privacy.Pseudonymizer
	audit         *audit.Dispatcher
	metrics       *Metrics
	logger        *zap.Logger
	userProvider  UserProvider
	now           func() time.Time

	lifecycleMu sync.Mutex
	stop        chan struct{}
	stopped     chan struct{}
	closed      bool
}

// Start launches the background sweeper. It runs every Session.SweepInterval until ctx
// is done or Close is called, removing expired sessions and pruning closed limiter
// windows. Calling Start more than once is a no-op.
func (e *Engine) Start(ctx context.Context) {
	if e == nil {
		return
	}
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if e.stop != nil || e.closed {
		return
	}

	e.stop = make(chan struct{})
	e.stopped = make(chan struct{})
	go e.sweepLoop(ctx, e.config.Session.SweepInterval, e.stop, e.stopped)
}

func (e *Engine) sweepLoop(ctx context.Context, interval time.Duration, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			e.maintain(ctx)
		}
	}
}

// maintain is one sweeper tick.
func (e *Engine) maintain(ctx context.Context) {
	if _, err := e.SweepExpired(ctx); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn("session sweep failed", zap.Error(err))
	}
	for _, l := range []rate.Limiter{e.limiter, e.loginLimiter} {
		if l == nil {
			continue
		}
		if _, err := l.Prune(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Warn("limiter prune failed", zap.Error(err))
		}
	}
}

// Close describes the close operation and its observable behavior.
//
// Close stops the sweeper, waits for it to exit and drains pending audit events. It is
// idempotent.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.lifecycleMu.Lock()
	if e.closed {
		e.lifecycleMu.Unlock()
		return
	}
	e.closed = true
	stop, stopped := e.stop, e.stopped
	e.lifecycleMu.Unlock()

	if stop != nil {
		close(stop)
		<-stopped
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// ProductionMode reports whether the engine runs with production hardening.
func (e *Engine) ProductionMode() bool {
	return e != nil && e.config.ProductionMode
}

// CSRFConfig returns the CSRF cookie settings.
func (e *Engine) CSRFConfig() CSRFConfig {
	return e.config.CSRF
}

// Logger returns the engine's sanitizing logger.
func (e *Engine) Logger() *zap.Logger {
	if e == nil || e.logger == nil {
		return zap.NewNop()
	}
	return e.logger
}
