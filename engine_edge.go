package goShield

import (
	"context"

	"github.com/MrEthical07/goShield/cryptox"
)

const unknownOrigin = "unknown"

// Admit records one request from origin against the admission window. It returns
// ErrRateLimited once the origin exceeds RateLimit.Limit within RateLimit.Window, and an
// error wrapping ErrLimiterUnavailable when the limiter backend fails. Admission is
// always granted when rate limiting is disabled.
func (e *Engine) Admit(ctx context.Context, origin string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.limiter == nil {
		return nil
	}
	if origin == "" {
		origin = unknownOrigin
	}

	d, err := e.limiter.Allow(ctx, origin)
	if err != nil {
		e.metricInc(MetricLimiterUnavailable)
		e.logger.Warn("admission limiter unavailable")
		return err
	}
	if !d.Allowed {
		e.metricInc(MetricAdmissionRejected)
		// Only the first rejection in a window is audited.
		if d.Count == d.Limit+1 {
			e.emitAudit(WithClientIP(ctx, origin), auditEventAdmissionDenied, false, "", ErrRateLimited, nil)
		}
		return ErrRateLimited
	}

	e.metricInc(MetricAdmissionAllowed)
	return nil
}

// IssueCSRFToken returns a fresh hex token of CSRF.TokenBytes random bytes.
func (e *Engine) IssueCSRFToken() (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	token, err := cryptox.RandomToken(e.config.CSRF.TokenBytes)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricCSRFIssued)
	return token, nil
}
