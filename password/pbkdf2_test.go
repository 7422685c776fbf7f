package password

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/pbkdf2"
)

func newTestPBKDF2(t *testing.T) *PBKDF2 {
	t.Helper()
	h, err := NewPBKDF2(DefaultPBKDF2Config())
	if err != nil {
		t.Fatalf("NewPBKDF2 error: %v", err)
	}
	return h
}

func TestPBKDF2RecordFormat(t *testing.T) {
	h := newTestPBKDF2(t)

	record, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	salt, hash, ok := strings.Cut(record, ":")
	if !ok {
		t.Fatalf("record %q is not colon-joined", record)
	}
	if len(salt) != 32 {
		t.Fatalf("expected 16-byte hex salt, got %d chars", len(salt))
	}
	if len(hash) != 128 {
		t.Fatalf("expected 64-byte hex hash, got %d chars", len(hash))
	}
}

func TestPBKDF2VerifyRoundTrip(t *testing.T) {
	h := newTestPBKDF2(t)

	for _, pw := range []string{"", "a", "p@ss:word", "пароль"} {
		record, err := h.Hash(pw)
		if err != nil {
			t.Fatalf("Hash(%q) error: %v", pw, err)
		}
		ok, err := h.Verify(pw, record)
		if err != nil || !ok {
			t.Fatalf("Verify(%q) = %v, %v; want true", pw, ok, err)
		}
		ok, err = h.Verify(pw+"x", record)
		if err != nil || ok {
			t.Fatalf("Verify(%q) with different password = %v, %v; want false", pw, ok, err)
		}
	}
}

func TestPBKDF2SaltIsFresh(t *testing.T) {
	h := newTestPBKDF2(t)

	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct records for the same password")
	}
}

// Records written by the previous storefront module use the hex salt string as KDF input.
func TestPBKDF2VerifiesLegacyRecord(t *testing.T) {
	h := newTestPBKDF2(t)

	salt := "00112233445566778899aabbccddeeff"
	hash := pbkdf2.Key([]byte("legacy-secret"), []byte(salt), 100000, 64, sha512.New)
	record := salt + ":" + hex.EncodeToString(hash)

	ok, err := h.Verify("legacy-secret", record)
	if err != nil || !ok {
		t.Fatalf("expected legacy record to verify, got %v err=%v", ok, err)
	}
}

func TestPBKDF2MalformedRecords(t *testing.T) {
	h := newTestPBKDF2(t)

	for _, record := range []string{"", "nocolon", ":abcd", "abcd:", "zz:abcd", "abcd:zz"} {
		if _, err := h.Verify("pw", record); !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("Verify(%q) error = %v; want ErrMalformedRecord", record, err)
		}
	}
}

func TestPBKDF2RejectsLowWorkFactor(t *testing.T) {
	cfg := DefaultPBKDF2Config()
	cfg.Iterations = 1000
	if _, err := NewPBKDF2(cfg); err == nil {
		t.Fatal("expected iterations below the floor to be rejected")
	}
}
