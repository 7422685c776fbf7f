package session

import (
	"crypto/sha256"
	"time"
)

// Session is one live refresh-token session.
//
// CreatedAt and ExpiresAt are Unix milliseconds.
type Session struct {
	KeyHash [32]byte

	UserID string
	Email  string
	Role   string

	CreatedAt int64
	ExpiresAt int64
}

// HashToken returns the store key for a refresh token.
func HashToken(token string) [32]byte {
	return sha256.Sum256([]byte(token))
}

// Expired reports whether the session is past its expiry at now. A session is expired
// from the ExpiresAt instant onward.
func (s *Session) Expired(now time.Time) bool {
	return now.UnixMilli() >= s.ExpiresAt
}

// ExpiresAtTime returns ExpiresAt as a time.Time.
func (s *Session) ExpiresAtTime() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// TTL returns the remaining lifetime at now, or zero when expired.
func (s *Session) TTL(now time.Time) time.Duration {
	remaining := time.Duration(s.ExpiresAt-now.UnixMilli()) * time.Millisecond
	if remaining < 0 {
		return 0
	}
	return remaining
}
