package goShield

import (
	"context"

	internalflows "github.com/MrEthical07/goShield/internal/flows"
)

// Login describes the login operation and its observable behavior.
//
// Login verifies password against the record returned by the configured UserProvider and
// creates a session on success. Unknown identifiers and wrong passwords both return
// ErrInvalidCredentials after the same amount of hashing work. An identifier that
// exceeds Login.MaxAttempts within Login.Cooldown gets ErrLoginRateLimited until the
// window closes.
func (e *Engine) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	if e == nil || e.userProvider == nil || e.passwords == nil {
		return nil, ErrEngineNotReady
	}

	res := internalflows.RunLogin(ctx, identifier, password, e.loginDeps())
	switch res.Failure {
	case internalflows.LoginFailureNone:
		e.metricInc(MetricLoginSuccess)
		e.metricInc(MetricSessionCreated)
		if res.Upgraded {
			e.metricInc(MetricPasswordUpgraded)
			e.emitAudit(ctx, auditEventPasswordUpgraded, true, res.User.UserID, nil, nil)
		}
		e.emitAudit(ctx, auditEventLoginSuccess, true, res.User.UserID, nil, nil)
		return toTokenPair(res.Issued), nil
	case internalflows.LoginFailureRateLimited:
		e.metricInc(MetricLoginRateLimited)
		e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrLoginRateLimited, map[string]string{
			"identifier": identifier,
		})
		return nil, ErrLoginRateLimited
	case internalflows.LoginFailureInvalidCredentials:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, res.User.UserID, ErrInvalidCredentials, map[string]string{
			"identifier": identifier,
		})
		return nil, ErrInvalidCredentials
	case internalflows.LoginFailureLimiter:
		e.metricInc(MetricLimiterUnavailable)
		return nil, res.Err
	default:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, res.User.UserID, res.Err, nil)
		return nil, res.Err
	}
}

func (e *Engine) loginDeps() internalflows.LoginDeps {
	deps := internalflows.LoginDeps{
		GetUser: func(ctx context.Context, identifier string) (internalflows.LoginUser, error) {
			cred, err := e.userProvider.GetUserByIdentifier(ctx, identifier)
			if err != nil {
				return internalflows.LoginUser{}, err
			}
			return internalflows.LoginUser{
				UserID:       cred.UserID,
				Email:        cred.Email,
				Role:         string(cred.Role),
				PasswordHash: cred.PasswordHash,
			}, nil
		},
		UserNotFound:   ErrUserNotFound,
		VerifyPassword: e.passwords.Verify,
		DummyRecord:    e.dummyHash,
		Issue: func(ctx context.Context, user internalflows.LoginUser) (internalflows.Issued, error) {
			if !Role(user.Role).Valid() {
				user.Role = string(RoleUser)
			}
			return internalflows.IssueSession(ctx, internalflows.Identity{
				UserID: user.UserID,
				Email:  user.Email,
				Role:   user.Role,
			}, e.issueDeps())
		},
		Warn: e.logger.Sugar().Warnw,
	}

	if e.loginLimiter != nil {
		deps.AllowAttempt = func(ctx context.Context, identifier string) (bool, error) {
			d, err := e.loginLimiter.Allow(ctx, identifier)
			if err != nil {
				return false, err
			}
			return d.Allowed, nil
		}
		deps.ResetAttempts = e.loginLimiter.Reset
	}

	if upgrader, ok := e.userProvider.(PasswordUpgrader); ok && e.config.Password.UpgradeOnLogin {
		deps.NeedsUpgrade = e.passwords.NeedsUpgrade
		deps.HashPassword = e.passwords.Hash
		deps.UpdatePasswordHash = upgrader.UpdatePasswordHash
	}

	return deps
}

// HashPassword hashes password with the configured primary algorithm. The record is
// "<saltHex>:<hashHex>" for PBKDF2 and a PHC string for Argon2id.
func (e *Engine) HashPassword(password string) (string, error) {
	if e == nil || e.passwords == nil {
		return "", ErrEngineNotReady
	}
	return e.passwords.Hash(password)
}

// VerifyPassword checks password against a stored record of either supported format.
func (e *Engine) VerifyPassword(password, record string) (bool, error) {
	if e == nil || e.passwords == nil {
		return false, ErrEngineNotReady
	}
	return e.passwords.Verify(password, record)
}
