// Package audit relays structured security events from the Engine to pluggable sinks.
//
//   - [Sink]: interface for event consumers (channel, JSON writer, zap logger, no-op).
//   - [Dispatcher]: buffered async relay, dropping or blocking when full.
//   - [Event]: one audit record with timestamp, type, user, client address and metadata.
//
// Every event is passed through [Sanitize] before it is queued, so sinks never see raw
// PII or secrets.
//
// # What this package must NOT do
//
//   - Decide which events to emit. The Engine does that.
package audit
