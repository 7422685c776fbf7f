package privacy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/MrEthical07/goShield/cryptox"
	"github.com/MrEthical07/goShield/pii"
)

// Pseudonymizer derives stable pseudo identifiers and encrypts contact fields.
type Pseudonymizer struct {
	secret []byte
	cipher *cryptox.Cipher
}

// NewPseudonymizer requires a non-empty secret and a cipher.
func NewPseudonymizer(secret []byte, c *cryptox.Cipher) (*Pseudonymizer, error) {
	if len(secret) == 0 {
		return nil, errors.New("privacy: pseudonym secret is empty")
	}
	if c == nil {
		return nil, errors.New("privacy: cipher is nil")
	}
	return &Pseudonymizer{secret: append([]byte(nil), secret...), cipher: c}, nil
}

// PseudoID returns hex(HMAC-SHA256(secret, subjectID)).
func (p *Pseudonymizer) PseudoID(subjectID string) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(subjectID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Pseudonymize sets pseudoId, removes the original identifiers and encrypts email and
// phone. Encryption failures abort the transform.
func (p *Pseudonymizer) Pseudonymize(rec Record, subjectID string) (Result, error) {
	res := newResult(rec)
	r := res.Record

	r[FieldPseudoID] = p.PseudoID(subjectID)
	delete(r, FieldID)
	delete(r, FieldUserID)
	delete(r, FieldUserIDAlt)

	for field, category := range map[string]pii.Category{
		FieldEmail: pii.CategoryEmail,
		FieldPhone: pii.CategoryPhone,
	} {
		v, ok := present(r, field)
		if !ok {
			continue
		}
		sealed, err := p.cipher.Encrypt(v)
		if err != nil {
			return Result{}, fmt.Errorf("privacy: encrypt %s: %w", field, err)
		}
		r[field] = sealed
		res.Fields[field] = ProtectedField{Category: category, Encrypted: true}
	}

	return res, nil
}

// Reveal decrypts an encrypted field of a pseudonymized record.
func (p *Pseudonymizer) Reveal(rec Record, field string) (string, error) {
	v, ok := rec[field].(string)
	if !ok || v == "" {
		return "", ErrFieldMissing
	}
	return p.cipher.Decrypt(v)
}
