// Package goShield provides the session and data-protection core for content storefronts:
// signed access tokens, single-use rotating refresh sessions, edge admission control, and
// PII masking, anonymization and pseudonymization of records leaving the process.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goShield is the public surface. It exposes [Engine], [Builder], [Config], the error
// taxonomy and value types ([TokenPair], [AuthResult], [MetricsSnapshot]). Flow
// orchestration, rate limiting and audit dispatch live under internal/. The leaf packages
// cryptox, password, jwt, pii, mask, privacy, session and logging are usable on their own.
//
// # What this package must NOT do
//
//   - Store a refresh token in plaintext. Sessions are keyed by its SHA-256.
//   - Report a store or limiter outage as an authentication failure.
//   - Start with a well-known secret. Production mode refuses to build without secrets;
//     development mode generates random per-process ones.
//   - Import any sub-package that re-imports goShield (no import cycles).
//
// # Performance contract
//
// ValidateAccess is the hot path and never touches the session store. RefreshSession and
// CreateSession perform one store write each; RefreshSession's single Take is what makes
// rotation single-winner under concurrency.
package goShield
