package flows

import (
	"context"
	"errors"
	"strings"
)

// LoginUser is the flow-local view of a stored credential.
type LoginUser struct {
	UserID       string
	Email        string
	Role         string
	PasswordHash string
}

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureRateLimited
	LoginFailureLimiter
	LoginFailureLookup
	LoginFailureInvalidCredentials
	LoginFailureIssue
)

// LoginResult carries either the issued pair or failure metadata.
type LoginResult struct {
	Failure  LoginFailureKind
	Err      error
	User     LoginUser
	Issued   Issued
	Upgraded bool
}

// LoginDeps captures login dependencies. AllowAttempt, ResetAttempts, NeedsUpgrade,
// HashPassword and UpdatePasswordHash are optional.
type LoginDeps struct {
	AllowAttempt  func(ctx context.Context, identifier string) (bool, error)
	ResetAttempts func(ctx context.Context, identifier string) error

	GetUser      func(ctx context.Context, identifier string) (LoginUser, error)
	UserNotFound error

	VerifyPassword func(password, record string) (bool, error)
	// DummyRecord is verified against when the identifier is unknown so both paths cost
	// one hash computation.
	DummyRecord string

	NeedsUpgrade       func(record string) (bool, error)
	HashPassword       func(password string) (string, error)
	UpdatePasswordHash func(ctx context.Context, userID, hash string) error

	Issue func(ctx context.Context, user LoginUser) (Issued, error)
	Warn  func(msg string, keysAndValues ...any)
}

// NormalizeIdentifier lowercases and trims an identifier before it is used as a
// limiter key or lookup value.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// RunLogin checks the attempt window, verifies password against the stored record and
// issues a session on success.
func RunLogin(ctx context.Context, identifier, password string, deps LoginDeps) LoginResult {
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	identifier = NormalizeIdentifier(identifier)

	if deps.AllowAttempt != nil {
		allowed, err := deps.AllowAttempt(ctx, identifier)
		if err != nil {
			return LoginResult{Failure: LoginFailureLimiter, Err: err}
		}
		if !allowed {
			return LoginResult{Failure: LoginFailureRateLimited}
		}
	}

	if identifier == "" || password == "" {
		return LoginResult{Failure: LoginFailureInvalidCredentials}
	}

	user, err := deps.GetUser(ctx, identifier)
	if err != nil {
		if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
			if deps.DummyRecord != "" {
				_, _ = deps.VerifyPassword(password, deps.DummyRecord)
			}
			return LoginResult{Failure: LoginFailureInvalidCredentials}
		}
		return LoginResult{Failure: LoginFailureLookup, Err: err}
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		deps.Warn("stored password record unusable", "user_id", user.UserID, "error", err)
		return LoginResult{Failure: LoginFailureInvalidCredentials, User: user}
	}
	if !ok {
		return LoginResult{Failure: LoginFailureInvalidCredentials, User: user}
	}

	upgraded := false
	if deps.UpdatePasswordHash != nil && deps.NeedsUpgrade != nil && deps.HashPassword != nil {
		if needs, err := deps.NeedsUpgrade(user.PasswordHash); err == nil && needs {
			if hash, err := deps.HashPassword(password); err == nil {
				if err := deps.UpdatePasswordHash(ctx, user.UserID, hash); err != nil {
					deps.Warn("password hash upgrade failed", "user_id", user.UserID, "error", err)
				} else {
					user.PasswordHash = hash
					upgraded = true
				}
			}
		}
	}

	issued, err := deps.Issue(ctx, user)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, User: user, Upgraded: upgraded}
	}

	if deps.ResetAttempts != nil {
		if err := deps.ResetAttempts(ctx, identifier); err != nil {
			deps.Warn("login attempt reset failed", "error", err)
		}
	}

	return LoginResult{User: user, Issued: issued, Upgraded: upgraded}
}
