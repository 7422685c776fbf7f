// Package rate provides fixed-window request counters for admission control.
//
// # Window semantics
//
// A window opens on the first hit for a key and lasts Config.Window. Hits inside the
// window increment a counter; once the counter passes Config.Limit further hits are
// rejected until the window closes. There is no queuing and no sliding average.
//
// The Redis implementation uses INCR with a PEXPIRE on the first hit so Redis owns window
// expiry. The in-memory implementation keeps a map of windows that is pruned on a timer.
//
// # What this package must NOT do
//
//   - Decide HTTP status codes or response bodies (middleware does).
//   - Be imported outside the goShield module.
package rate
