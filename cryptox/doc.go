// Package cryptox provides the symmetric sealing, random token, and constant-time comparison
// primitives shared by the session and data-protection layers.
//
// # Payload format
//
// Sealed values are rendered as "<ivHex>:<bodyHex>" where body is the AES-256-CBC ciphertext
// followed by an HMAC-SHA256 tag over iv||ciphertext (encrypt-then-MAC). The format carries no
// version or key identifier; rotating the master key requires re-sealing stored values.
//
// # What this package must NOT do
//
//   - Fall back to a non-cryptographic random source when crypto/rand fails.
//   - Report why a payload failed to open (every failure is [ErrDecryptionFailed]).
//   - Import goShield, session, or privacy (no upward imports).
package cryptox
