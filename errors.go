package goShield

import (
	"errors"

	"github.com/MrEthical07/goShield/cryptox"
	"github.com/MrEthical07/goShield/internal/rate"
	"github.com/MrEthical07/goShield/session"
)

// AuthErrorKind classifies an unauthenticated outcome.
type AuthErrorKind uint8

const (
	// AuthInvalidCredentials means the identifier or password did not match.
	AuthInvalidCredentials AuthErrorKind = iota + 1
	// AuthSessionExpired means the refresh token is unknown, already used, revoked or expired.
	AuthSessionExpired
	// AuthTokenMalformed means an access token failed signature, structure or claim checks.
	AuthTokenMalformed
	// AuthTokenExpired means an access token is well formed but past its expiry.
	AuthTokenExpired
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthInvalidCredentials:
		return "invalid credentials"
	case AuthSessionExpired:
		return "session expired"
	case AuthTokenMalformed:
		return "token malformed"
	case AuthTokenExpired:
		return "token expired"
	default:
		return "unauthenticated"
	}
}

// AuthError is the typed "unauthenticated" result. It never wraps an infrastructure
// failure; those are reported with ErrStoreUnavailable or ErrLimiterUnavailable.
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	return e.Kind.String()
}

// Is matches any *AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// AdmissionReason classifies a rejected request.
type AdmissionReason uint8

const (
	// AdmissionRateLimited means the client origin exhausted its request window.
	AdmissionRateLimited AdmissionReason = iota + 1
	// AdmissionLoginThrottled means an identifier exhausted its login attempt window.
	AdmissionLoginThrottled
)

// AdmissionError is a normal, expected rejection. Callers map it to a fixed response.
type AdmissionError struct {
	Reason AdmissionReason
}

func (e *AdmissionError) Error() string {
	if e.Reason == AdmissionLoginThrottled {
		return "login rate limited"
	}
	return "rate limited"
}

// Is matches any *AdmissionError with the same reason.
func (e *AdmissionError) Is(target error) bool {
	t, ok := target.(*AdmissionError)
	return ok && t.Reason == e.Reason
}

var (
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials error = &AuthError{Kind: AuthInvalidCredentials}
	// ErrSessionExpired is an exported constant or variable used by the session engine.
	ErrSessionExpired error = &AuthError{Kind: AuthSessionExpired}
	// ErrTokenMalformed is an exported constant or variable used by the session engine.
	ErrTokenMalformed error = &AuthError{Kind: AuthTokenMalformed}
	// ErrTokenExpired is an exported constant or variable used by the session engine.
	ErrTokenExpired error = &AuthError{Kind: AuthTokenExpired}

	// ErrRateLimited is returned by Engine.Admit when an origin exceeds its window.
	ErrRateLimited error = &AdmissionError{Reason: AdmissionRateLimited}
	// ErrLoginRateLimited is returned by Engine.Login when an identifier is throttled.
	ErrLoginRateLimited error = &AdmissionError{Reason: AdmissionLoginThrottled}

	// ErrDecryptionFailed is reported for every undecryptable payload. It is a
	// *cryptox.CryptoError, as is ErrEntropyUnavailable.
	ErrDecryptionFailed = cryptox.ErrDecryptionFailed
	// ErrEntropyUnavailable is fatal: no token is issued when the random source fails.
	ErrEntropyUnavailable = cryptox.ErrEntropyUnavailable

	// ErrStoreUnavailable wraps session store infrastructure failures.
	ErrStoreUnavailable = session.ErrUnavailable
	// ErrLimiterUnavailable wraps rate limiter infrastructure failures.
	ErrLimiterUnavailable = rate.ErrRedisUnavailable

	// ErrUserNotFound is returned by UserProvider implementations for unknown identifiers.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole is returned by ParseRole.
	ErrInvalidRole = errors.New("invalid role")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// CryptoError is the typed failure of a crypto primitive.
type CryptoError = cryptox.CryptoError

// IsUnauthenticated reports whether err is an *AuthError of any kind.
func IsUnauthenticated(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
