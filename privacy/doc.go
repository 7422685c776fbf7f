// Package privacy transforms structured records before they leave the process.
//
// [Anonymize] is destructive: the result cannot be linked back to the subject by anyone.
// [Pseudonymizer] derives a stable pseudo identifier and encrypts contact fields, so a key
// holder can recover them with [Pseudonymizer.Reveal]. [SanitizeForLog] walks arbitrary
// values and returns a redacted copy suitable for log sinks.
//
// No function in this package mutates its input.
package privacy
