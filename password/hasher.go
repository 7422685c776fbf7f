package password

import (
	"errors"
	"strings"
)

// Algorithm names a password hashing scheme.
type Algorithm string

const (
	// AlgorithmPBKDF2 is PBKDF2-HMAC-SHA512 with a colon-joined hex record.
	AlgorithmPBKDF2 Algorithm = "pbkdf2-sha512"
	// AlgorithmArgon2id is Argon2id with a PHC record.
	AlgorithmArgon2id Algorithm = "argon2id"
)

const defaultMaxPasswordBytes = 4096

var (
	// ErrMalformedRecord is returned when a stored record cannot be parsed.
	ErrMalformedRecord = errors.New("malformed password record")
	// ErrPasswordTooLong is returned when a password exceeds the configured byte limit.
	ErrPasswordTooLong = errors.New("password too long")
)

// Hasher hashes passwords into storable records and verifies them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, record string) (bool, error)
	NeedsUpgrade(record string) (bool, error)
}

// Detect reports which algorithm produced record.
func Detect(record string) (Algorithm, bool) {
	switch {
	case strings.HasPrefix(record, "$"+algorithmID+"$"):
		return AlgorithmArgon2id, true
	case strings.Contains(record, ":"):
		return AlgorithmPBKDF2, true
	default:
		return "", false
	}
}

// Suite hashes with a primary algorithm and verifies records from any supported one.
type Suite struct {
	primary Algorithm
	pbkdf2  *PBKDF2
	argon2  *Argon2
}

// NewSuite builds a Suite. Both hashers are validated even when only one is primary so a
// misconfigured fallback is caught at startup.
func NewSuite(primary Algorithm, pcfg PBKDF2Config, acfg Argon2Config) (*Suite, error) {
	p, err := NewPBKDF2(pcfg)
	if err != nil {
		return nil, err
	}
	a, err := NewArgon2(acfg)
	if err != nil {
		return nil, err
	}

	switch primary {
	case "", AlgorithmPBKDF2:
		primary = AlgorithmPBKDF2
	case AlgorithmArgon2id:
	default:
		return nil, errors.New("unsupported password algorithm")
	}

	return &Suite{primary: primary, pbkdf2: p, argon2: a}, nil
}

// Primary returns the algorithm used by Hash.
func (s *Suite) Primary() Algorithm {
	return s.primary
}

// Hash hashes password with the primary algorithm.
func (s *Suite) Hash(password string) (string, error) {
	if s.primary == AlgorithmArgon2id {
		return s.argon2.Hash(password)
	}
	return s.pbkdf2.Hash(password)
}

// Verify routes record to the hasher that produced it.
func (s *Suite) Verify(password, record string) (bool, error) {
	alg, ok := Detect(record)
	if !ok {
		return false, ErrMalformedRecord
	}
	if alg == AlgorithmArgon2id {
		return s.argon2.Verify(password, record)
	}
	return s.pbkdf2.Verify(password, record)
}

// NeedsUpgrade is true when record was produced by a non-primary algorithm or with weaker
// parameters than the primary one is configured for.
func (s *Suite) NeedsUpgrade(record string) (bool, error) {
	alg, ok := Detect(record)
	if !ok {
		return false, ErrMalformedRecord
	}
	if alg != s.primary {
		return true, nil
	}
	if alg == AlgorithmArgon2id {
		return s.argon2.NeedsUpgrade(record)
	}
	return s.pbkdf2.NeedsUpgrade(record)
}
