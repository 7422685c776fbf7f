// Package mask applies one-way partial redaction to sensitive values.
//
// Every masker is deterministic and idempotent: masking an already masked value returns
// it unchanged. [SanitizeText] combines the maskers with the default [pii.Classifier] to
// redact free text in a single pass.
package mask
