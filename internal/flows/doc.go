// Package flows contains pure-function orchestrators for the session Engine operations.
//
// Each flow function (IssueSession, RunRefresh, RunLogin, RunValidate) accepts a typed
// dependency struct and returns a result without side effects beyond those dependencies.
// This keeps the Engine type thin and lets every branch be tested with in-memory fakes.
//
// # Architecture boundaries
//
// Flow functions coordinate the session store, token issuance, password verification,
// and the login attempt limiter. They do NOT own any of these resources; ownership stays
// with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goShield (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency funcs and interfaces.
package flows
