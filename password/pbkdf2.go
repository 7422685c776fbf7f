package password

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/MrEthical07/goShield/cryptox"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// MinPBKDF2Iterations is the lowest accepted work factor.
	MinPBKDF2Iterations = 100_000

	minPBKDF2SaltLength = 16
	minPBKDF2KeyLength  = 32
)

// PBKDF2Config holds the PBKDF2-HMAC-SHA512 work parameters.
type PBKDF2Config struct {
	Iterations       int
	SaltLength       int
	KeyLength        int
	MaxPasswordBytes int
}

// DefaultPBKDF2Config matches the record format already in production: 16-byte salt,
// 100k iterations, 64-byte key.
func DefaultPBKDF2Config() PBKDF2Config {
	return PBKDF2Config{
		Iterations:       MinPBKDF2Iterations,
		SaltLength:       16,
		KeyLength:        64,
		MaxPasswordBytes: defaultMaxPasswordBytes,
	}
}

// PBKDF2 hashes passwords into "<saltHex>:<hashHex>" records.
type PBKDF2 struct {
	config PBKDF2Config
}

// NewPBKDF2 validates cfg and returns a hasher.
func NewPBKDF2(cfg PBKDF2Config) (*PBKDF2, error) {
	if cfg.Iterations < MinPBKDF2Iterations {
		return nil, errors.New("pbkdf2 iterations must be >= 100000")
	}
	if cfg.SaltLength < minPBKDF2SaltLength {
		return nil, errors.New("pbkdf2 salt length must be >= 16")
	}
	if cfg.KeyLength < minPBKDF2KeyLength {
		return nil, errors.New("pbkdf2 key length must be >= 32")
	}
	if cfg.MaxPasswordBytes <= 0 {
		cfg.MaxPasswordBytes = defaultMaxPasswordBytes
	}
	return &PBKDF2{config: cfg}, nil
}

// Hash derives a record from password under a fresh random salt. It fails only when the
// password is over the byte limit or the entropy source is unavailable.
func (p *PBKDF2) Hash(password string) (string, error) {
	if len(password) > p.config.MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	salt, err := cryptox.RandomToken(p.config.SaltLength)
	if err != nil {
		return "", err
	}

	hash := p.derive(password, salt, p.config.KeyLength)
	return salt + ":" + hex.EncodeToString(hash), nil
}

// Verify recomputes the hash with the stored salt and compares in constant time.
func (p *PBKDF2) Verify(password, record string) (bool, error) {
	if len(password) > p.config.MaxPasswordBytes {
		return false, nil
	}

	salt, expected, err := parsePBKDF2(record)
	if err != nil {
		return false, err
	}

	computed := p.derive(password, salt, len(expected))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// NeedsUpgrade reports whether record is shorter than the configured key length. The
// iteration count is not stored in the record, so it cannot be compared.
func (p *PBKDF2) NeedsUpgrade(record string) (bool, error) {
	_, hash, err := parsePBKDF2(record)
	if err != nil {
		return false, err
	}
	return len(hash) < p.config.KeyLength, nil
}

func (p *PBKDF2) derive(password, salt string, keyLen int) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), p.config.Iterations, keyLen, sha512.New)
}

func parsePBKDF2(record string) (string, []byte, error) {
	salt, hashHex, ok := strings.Cut(record, ":")
	if !ok || salt == "" || hashHex == "" {
		return "", nil, ErrMalformedRecord
	}
	if _, err := hex.DecodeString(salt); err != nil {
		return "", nil, ErrMalformedRecord
	}
	hash, err := hex.DecodeString(hashHex)
	if err != nil || len(hash) == 0 {
		return "", nil, ErrMalformedRecord
	}
	return salt, hash, nil
}
