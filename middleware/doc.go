// Package middleware exposes net/http adapters around goShield.Engine.
//
// # Handlers
//
//   - [Edge]: admission control per client address, CSRF cookie issuance and security
//     headers. Mount it first.
//   - [Guard]: bearer access-token verification; injects the validated identity.
//   - [RequireRole]: rejects identities whose role is not in an allow list. Mount after Guard.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication or rate limiting itself; all decisions are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Verify CSRF tokens. It only issues them; verification belongs to the handlers that
//     change state.
//   - Echo a rejection reason beyond the fixed status text.
package middleware
