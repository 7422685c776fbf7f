package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goShield/session"
)

// Identity is the credential snapshot carried by a session and its access tokens.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Issued is a freshly minted access/refresh pair.
type Issued struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SessionStore is the subset of session.Store used by issuance and rotation.
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	Take(ctx context.Context, key [32]byte) (*session.Session, error)
}

// IssueDeps captures session issuance dependencies.
type IssueDeps struct {
	Now              func() time.Time
	RefreshTTL       time.Duration
	NewRefreshToken  func() (string, error)
	IssueAccessToken func(Identity) (string, time.Time, error)
	SessionStore     SessionStore
}

// IssueSession mints a refresh token and an access token for id and stores the new
// session under the refresh token hash. Nothing is stored when either token cannot be
// minted.
func IssueSession(ctx context.Context, id Identity, deps IssueDeps) (Issued, error) {
	refresh, err := deps.NewRefreshToken()
	if err != nil {
		return Issued{}, err
	}
	return issueWithToken(ctx, id, refresh, deps)
}

func issueWithToken(ctx context.Context, id Identity, refresh string, deps IssueDeps) (Issued, error) {
	access, accessExp, err := deps.IssueAccessToken(id)
	if err != nil {
		return Issued{}, err
	}

	now := deps.Now()
	expiresAt := now.Add(deps.RefreshTTL)
	sess := &session.Session{
		KeyHash:   session.HashToken(refresh),
		UserID:    id.UserID,
		Email:     id.Email,
		Role:      id.Role,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: expiresAt.UnixMilli(),
	}
	if err := deps.SessionStore.Save(ctx, sess); err != nil {
		return Issued{}, err
	}

	return Issued{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: time.UnixMilli(sess.ExpiresAt),
	}, nil
}

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureNextSecret
	RefreshFailureSessionNotFound
	RefreshFailureSessionExpired
	RefreshFailureStore
	RefreshFailureIssue
)

// RefreshResult carries either the rotated pair or failure metadata.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error
	UserID  string
	Issued  Issued
}

// RunRefresh rotates refreshToken. The old session is removed with a single Take, so of
// any number of concurrent callers presenting the same token at most one proceeds. The
// replacement token is minted before the old session is touched; an entropy failure
// leaves the presented token usable. When the replacement cannot be issued after the Take,
// the taken session is saved back so the presented token stays usable; if that save also
// fails the token is lost and the user has to log in again.
func RunRefresh(ctx context.Context, refreshToken string, deps IssueDeps) RefreshResult {
	if refreshToken == "" {
		return RefreshResult{Failure: RefreshFailureSessionNotFound, Err: session.ErrNotFound}
	}

	next, err := deps.NewRefreshToken()
	if err != nil {
		return RefreshResult{Failure: RefreshFailureNextSecret, Err: err}
	}

	sess, err := deps.SessionStore.Take(ctx, session.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrCorrupt) {
			return RefreshResult{Failure: RefreshFailureSessionNotFound, Err: err}
		}
		return RefreshResult{Failure: RefreshFailureStore, Err: err}
	}

	// Take already removed the entry; an expired one is simply not replaced.
	if sess.Expired(deps.Now()) {
		return RefreshResult{Failure: RefreshFailureSessionExpired, UserID: sess.UserID}
	}

	id := Identity{UserID: sess.UserID, Email: sess.Email, Role: sess.Role}
	issued, err := issueWithToken(ctx, id, next, deps)
	if err != nil {
		if restoreErr := deps.SessionStore.Save(ctx, sess); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
		if errors.Is(err, session.ErrUnavailable) {
			return RefreshResult{Failure: RefreshFailureStore, Err: err, UserID: sess.UserID}
		}
		return RefreshResult{Failure: RefreshFailureIssue, Err: err, UserID: sess.UserID}
	}

	return RefreshResult{UserID: sess.UserID, Issued: issued}
}
