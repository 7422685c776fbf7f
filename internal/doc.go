// Package internal holds the building blocks of goShield that are not part of its public
// API.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher plus Sink implementations)
//   - flows: pure-function orchestration of login, issue, refresh and validate
//   - rate: fixed-window limiters backed by memory or Redis
//
// # What this package must NOT do
//
//   - Export types that appear in the public goShield API.
package internal
