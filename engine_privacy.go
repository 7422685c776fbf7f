package goShield

import "github.com/MrEthical07/goShield/privacy"

// Anonymize is privacy.Anonymize.
func (e *Engine) Anonymize(rec privacy.Record) privacy.Result {
	return privacy.Anonymize(rec)
}

// Pseudonymize replaces identifiers in rec with a stable pseudo identifier for subjectID
// and encrypts email and phone with the engine key.
func (e *Engine) Pseudonymize(rec privacy.Record, subjectID string) (privacy.Result, error) {
	if e == nil || e.pseudonymizer == nil {
		return privacy.Result{}, ErrEngineNotReady
	}
	return e.pseudonymizer.Pseudonymize(rec, subjectID)
}

// PseudoID returns the pseudo identifier Pseudonymize assigns to subjectID.
func (e *Engine) PseudoID(subjectID string) string {
	if e == nil || e.pseudonymizer == nil {
		return ""
	}
	return e.pseudonymizer.PseudoID(subjectID)
}

// Reveal decrypts field of a pseudonymized record. A missing field is
// privacy.ErrFieldMissing; every other failure is ErrDecryptionFailed.
func (e *Engine) Reveal(rec privacy.Record, field string) (string, error) {
	if e == nil || e.pseudonymizer == nil {
		return "", ErrEngineNotReady
	}
	return e.pseudonymizer.Reveal(rec, field)
}

// Encrypt seals plaintext with the engine's field-encryption key.
func (e *Engine) Encrypt(plaintext string) (string, error) {
	if e == nil || e.cipher == nil {
		return "", ErrEngineNotReady
	}
	return e.cipher.Encrypt(plaintext)
}

// Decrypt opens a payload produced by Encrypt.
func (e *Engine) Decrypt(payload string) (string, error) {
	if e == nil || e.cipher == nil {
		return "", ErrEngineNotReady
	}
	return e.cipher.Decrypt(payload)
}
