// Package password implements one-way password hashing and constant-time verification.
//
// # Output formats
//
// The default [PBKDF2] hasher stores records as
//
//	<saltHex>:<hashHex>
//
// where hash = PBKDF2-HMAC-SHA512(password, saltHex, iterations, 64). The hex salt string
// itself is the KDF salt input, which keeps records written by the storefront's previous
// auth module verifiable.
//
// The [Argon2] hasher stores records in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// A [Suite] hashes with one configured algorithm and verifies either format, so stored
// records can migrate on the next successful login ([Suite.NeedsUpgrade]).
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive records.
//   - Import any other goShield package except cryptox.
//   - Log plaintext passwords.
package password
