package flows

import (
	"errors"
	"time"

	"github.com/MrEthical07/goShield/jwt"
)

// ValidateFailureKind classifies access-token failures for root-level mapping.
type ValidateFailureKind int

const (
	ValidateFailureNone ValidateFailureKind = iota
	ValidateFailureMalformed
	ValidateFailureExpired
	ValidateFailureRole
)

// ValidateResult returns either parsed claims or a classified failure.
type ValidateResult struct {
	Failure ValidateFailureKind
	Err     error
	Claims  *jwt.AccessClaims
}

// ValidateDeps captures stateless validation dependencies.
type ValidateDeps struct {
	ParseAccess func(string) (*jwt.AccessClaims, error)
	ValidRole   func(string) bool
	Now         func() time.Time
	Observe     func(time.Duration)
}

// RunValidate verifies an access token without touching the session store.
func RunValidate(token string, deps ValidateDeps) ValidateResult {
	if deps.Observe != nil && deps.Now != nil {
		start := deps.Now()
		defer func() { deps.Observe(deps.Now().Sub(start)) }()
	}

	claims, err := deps.ParseAccess(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ValidateResult{Failure: ValidateFailureExpired, Err: err}
		}
		return ValidateResult{Failure: ValidateFailureMalformed, Err: err}
	}
	if claims.UserID == "" {
		return ValidateResult{Failure: ValidateFailureMalformed, Err: jwt.ErrTokenMalformed}
	}
	if deps.ValidRole != nil && !deps.ValidRole(claims.Role) {
		return ValidateResult{Failure: ValidateFailureRole}
	}

	return ValidateResult{Claims: claims}
}
