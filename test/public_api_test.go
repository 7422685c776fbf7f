package test

import (
	"context"
	"net/http"
	"testing"

	goShield "github.com/MrEthical07/goShield"
	"github.com/MrEthical07/goShield/middleware"
	"github.com/MrEthical07/goShield/privacy"
)

// Guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goShield.New
	_ = goShield.LoadConfig

	var _ *goShield.Engine
	var _ goShield.Config
	var _ goShield.AuthResult
	var _ goShield.TokenPair
	var _ goShield.UserProvider
	var _ goShield.PasswordUpgrader
	var _ goShield.AuditSink
	var _ goShield.SessionStore
	var _ goShield.Limiter

	var _ error = goShield.ErrInvalidCredentials
	var _ error = goShield.ErrSessionExpired
	var _ error = goShield.ErrTokenMalformed
	var _ error = goShield.ErrTokenExpired
	var _ error = goShield.ErrRateLimited
	var _ error = goShield.ErrLoginRateLimited

	var _ func(*goShield.Engine) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*goShield.Engine, middleware.EdgeOptions) func(http.Handler) http.Handler = middleware.Edge
	var _ func(...goShield.Role) func(http.Handler) http.Handler = middleware.RequireRole

	var _ func(*goShield.Engine, context.Context, string, string) (*goShield.TokenPair, error) = (*goShield.Engine).Login
	var _ func(*goShield.Engine, context.Context, goShield.Credential) (*goShield.TokenPair, error) = (*goShield.Engine).CreateSession
	var _ func(*goShield.Engine, context.Context, string) (*goShield.TokenPair, error) = (*goShield.Engine).RefreshSession
	var _ func(*goShield.Engine, context.Context, string) error = (*goShield.Engine).RevokeSession
	var _ func(*goShield.Engine, string) (*goShield.AuthResult, error) = (*goShield.Engine).ValidateAccess
	var _ func(*goShield.Engine, context.Context, string) error = (*goShield.Engine).Admit
	var _ func(*goShield.Engine, privacy.Record, string) (privacy.Result, error) = (*goShield.Engine).Pseudonymize
}
