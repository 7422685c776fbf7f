package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// entropy is swapped in tests to simulate an exhausted random source.
var entropy io.Reader = rand.Reader

// RandomBytes returns n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.New("random length must be > 0")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(entropy, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return buf, nil
}

// RandomToken returns byteLength random bytes, hex encoded. Refresh tokens and CSRF
// tokens are minted through here.
func RandomToken(byteLength int) (string, error) {
	buf, err := RandomBytes(byteLength)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Equal reports whether a and b are identical without leaking the position of the
// first differing byte.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ParseKey decodes a hex master key and checks its length.
func ParseKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}
