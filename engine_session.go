package goShield

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/goShield/cryptox"
	internalflows "github.com/MrEthical07/goShield/internal/flows"
	"github.com/MrEthical07/goShield/session"
)

// CreateSession describes the createsession operation and its observable behavior.
//
// CreateSession mints a short-lived access token and a single-use refresh token for cred
// and stores a session keyed by the refresh token hash. It fails only on an invalid
// credential, entropy exhaustion (ErrEntropyUnavailable) or store failure
// (ErrStoreUnavailable); in every failure case nothing is stored.
func (e *Engine) CreateSession(ctx context.Context, cred Credential) (*TokenPair, error) {
	if e == nil || e.jwtManager == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if cred.UserID == "" {
		return nil, errors.New("goShield: credential has no user id")
	}
	if !cred.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, cred.Role)
	}

	issued, err := internalflows.IssueSession(ctx, toFlowIdentity(cred), e.issueDeps())
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionCreated, true, cred.UserID, nil, nil)
	return toTokenPair(issued), nil
}

// RefreshSession describes the refreshsession operation and its observable behavior.
//
// RefreshSession exchanges a refresh token for a new pair. The presented token is
// consumed atomically: of any number of concurrent calls with the same token at most one
// succeeds, and every other call, as well as any later call, returns ErrSessionExpired.
// Store failures are returned as ErrStoreUnavailable and are never reported as an
// authentication failure. If the replacement session cannot be written, the consumed
// session is written back so the same token can be retried; when that write fails too
// the token is gone and the user must log in again.
func (e *Engine) RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.jwtManager == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	res := internalflows.RunRefresh(ctx, refreshToken, e.issueDeps())
	switch res.Failure {
	case internalflows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.emitAudit(ctx, auditEventRefreshSuccess, true, res.UserID, nil, nil)
		return toTokenPair(res.Issued), nil
	case internalflows.RefreshFailureSessionNotFound, internalflows.RefreshFailureSessionExpired:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, res.UserID, ErrSessionExpired, nil)
		return nil, ErrSessionExpired
	default:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, res.UserID, res.Err, nil)
		return nil, res.Err
	}
}

// RevokeSession removes the session for refreshToken. Unknown tokens are not an error.
func (e *Engine) RevokeSession(ctx context.Context, refreshToken string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if refreshToken == "" {
		return nil
	}

	if err := e.store.Delete(ctx, session.HashToken(refreshToken)); err != nil {
		return err
	}
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditEventSessionRevoked, true, "", nil, nil)
	return nil
}

// SweepExpired removes every session whose expiry is at or before now and reports how
// many were removed. Sessions with a future expiry are never touched.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}

	removed, err := e.store.Sweep(ctx, e.now())
	if removed > 0 {
		e.metrics.Add(MetricSessionSwept, uint64(removed))
		e.emitAudit(ctx, auditEventSessionsSwept, true, "", nil, map[string]string{
			"removed": strconv.Itoa(removed),
		})
	}
	return removed, err
}

// ValidateAccess describes the validateaccess operation and its observable behavior.
//
// ValidateAccess verifies an access token's signature, algorithm, expiry and claims
// without any store lookup. It returns ErrTokenExpired for expired tokens and
// ErrTokenMalformed for every other defect.
func (e *Engine) ValidateAccess(token string) (*AuthResult, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	res := internalflows.RunValidate(token, internalflows.ValidateDeps{
		ParseAccess: e.jwtManager.ParseAccess,
		ValidRole:   func(r string) bool { return Role(r).Valid() },
		Now:         time.Now,
		Observe: func(d time.Duration) {
			e.metrics.Observe(MetricValidateLatency, d)
		},
	})

	switch res.Failure {
	case internalflows.ValidateFailureNone:
	case internalflows.ValidateFailureExpired:
		e.metricInc(MetricAccessRejected)
		return nil, ErrTokenExpired
	default:
		e.metricInc(MetricAccessRejected)
		return nil, ErrTokenMalformed
	}

	e.metricInc(MetricAccessValid)
	claims := res.Claims
	result := &AuthResult{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

func (e *Engine) issueDeps() internalflows.IssueDeps {
	return internalflows.IssueDeps{
		Now:        e.now,
		RefreshTTL: e.config.Session.RefreshTTL,
		NewRefreshToken: func() (string, error) {
			return cryptox.RandomToken(e.config.Session.RefreshTokenBytes)
		},
		IssueAccessToken: func(id internalflows.Identity) (string, time.Time, error) {
			token, err := e.jwtManager.CreateAccess(id.UserID, id.Email, id.Role)
			if err != nil {
				return "", time.Time{}, err
			}
			return token, e.now().Add(e.jwtManager.TTL()), nil
		},
		SessionStore: e.store,
	}
}

func toFlowIdentity(cred Credential) internalflows.Identity {
	return internalflows.Identity{
		UserID: cred.UserID,
		Email:  cred.Email,
		Role:   string(cred.Role),
	}
}

func toTokenPair(issued internalflows.Issued) *TokenPair {
	return &TokenPair{
		AccessToken:      issued.AccessToken,
		RefreshToken:     issued.RefreshToken,
		AccessExpiresAt:  issued.AccessExpiresAt,
		RefreshExpiresAt: issued.RefreshExpiresAt,
	}
}
