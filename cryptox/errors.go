package cryptox

import "errors"

// ErrorKind classifies a CryptoError.
type ErrorKind uint8

const (
	// KindDecryptionFailed covers every reason a payload cannot be opened.
	KindDecryptionFailed ErrorKind = iota + 1
	// KindEntropyUnavailable means the system random source failed.
	KindEntropyUnavailable
)

// CryptoError is the typed failure of a crypto primitive. It carries no detail beyond
// its kind.
type CryptoError struct {
	Kind ErrorKind
}

func (e *CryptoError) Error() string {
	switch e.Kind {
	case KindDecryptionFailed:
		return "decryption failed"
	case KindEntropyUnavailable:
		return "entropy source unavailable"
	default:
		return "crypto failure"
	}
}

// Is matches any *CryptoError of the same kind.
func (e *CryptoError) Is(target error) bool {
	t, ok := target.(*CryptoError)
	return ok && t.Kind == e.Kind
}

var (
	// ErrDecryptionFailed is returned for every payload that cannot be opened: bad format,
	// wrong key, tampered body, or invalid padding all look the same to the caller.
	ErrDecryptionFailed error = &CryptoError{Kind: KindDecryptionFailed}
	// ErrEntropyUnavailable is returned when the system random source fails. It is fatal:
	// callers must refuse to issue material rather than retry with a weaker source.
	ErrEntropyUnavailable error = &CryptoError{Kind: KindEntropyUnavailable}
	// ErrInvalidKey is returned when a master key is not exactly KeySize bytes.
	ErrInvalidKey = errors.New("invalid encryption key")
)
