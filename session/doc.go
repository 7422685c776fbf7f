// Package session stores refresh-token sessions.
//
// A [Session] is keyed by the SHA-256 of its refresh token (see [HashToken]) so the bearer
// value itself is never written to a store. Two [Store] implementations are provided:
// [MemoryStore] for single-process deployments and tests, and [RedisStore] for shared
// deployments.
//
// # Binary encoding
//
// [RedisStore] persists sessions in a compact binary format led by a schema version byte.
// [Decode] rejects versions it does not know.
//
// # Architecture boundaries
//
// This package owns persistence only. It does not issue tokens or decide whether a
// session may be rotated; the Engine does. Take is the primitive the Engine relies on for
// single-use rotation: it removes and returns a session atomically, so among concurrent
// callers presenting the same token at most one receives it.
package session
