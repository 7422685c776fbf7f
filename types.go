package goShield

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Role is the enumerated authorization role carried in access tokens.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole accepts "admin" or "user", ignoring case and surrounding space.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Credential is the identity snapshot a session is issued for.
type Credential struct {
	UserID       string
	Email        string
	Role         Role
	PasswordHash string
}

// TokenPair is returned by session creation and refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// AuthResult is returned by [Engine.ValidateAccess].
type AuthResult struct {
	UserID    string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// UserProvider looks up stored credentials for Login. Implementations return
// ErrUserNotFound for unknown identifiers.
type UserProvider interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (Credential, error)
}

// PasswordUpgrader is optionally implemented by a UserProvider. When present, Login
// rewrites password records that use outdated parameters after a successful check.
type PasswordUpgrader interface {
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}
