package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required master key length in bytes.
	KeySize = 32
	// IVSize is the per-call initialization vector length.
	IVSize = aes.BlockSize

	tagSize = sha256.Size

	encInfo = "goshield/v1/aes-256-cbc"
	macInfo = "goshield/v1/hmac-sha256"
)

// Cipher seals and opens short string values with AES-256-CBC and an HMAC-SHA256 tag.
// Encryption and MAC keys are derived from the master key with HKDF so the two never share
// key material. A Cipher is safe for concurrent use.
type Cipher struct {
	block  cipher.Block
	macKey []byte
}

// NewCipher derives sub-keys from a KeySize master key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	encKey, err := deriveKey(key, encInfo)
	if err != nil {
		return nil, err
	}
	macKey, err := deriveKey(key, macInfo)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}

	return &Cipher{block: block, macKey: macKey}, nil
}

func deriveKey(master []byte, info string) ([]byte, error) {
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), out); err != nil {
		return nil, err
	}
	return out, nil
}

// Encrypt seals plaintext under a fresh random IV and returns "<ivHex>:<bodyHex>".
// Two calls with the same plaintext never produce the same output.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv, err := RandomBytes(IVSize)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	body := make([]byte, len(padded), len(padded)+tagSize)
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(body, padded)
	body = append(body, c.tag(iv, body)...)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(body), nil
}

// Decrypt opens a payload produced by Encrypt. The tag is checked before any padding is
// inspected, and every failure returns ErrDecryptionFailed.
func (c *Cipher) Decrypt(payload string) (string, error) {
	ivHex, bodyHex, ok := strings.Cut(payload, ":")
	if !ok {
		return "", ErrDecryptionFailed
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != IVSize {
		return "", ErrDecryptionFailed
	}
	body, err := hex.DecodeString(bodyHex)
	if err != nil || len(body) < aes.BlockSize+tagSize {
		return "", ErrDecryptionFailed
	}

	ciphertext, tag := body[:len(body)-tagSize], body[len(body)-tagSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrDecryptionFailed
	}
	if !hmac.Equal(tag, c.tag(iv, ciphertext)) {
		return "", ErrDecryptionFailed
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, ciphertext)

	unpadded, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok {
		return "", ErrDecryptionFailed
	}
	return string(unpadded), nil
}

func (c *Cipher) tag(iv, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, c.macKey)
	mac.Write(iv)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// pkcs7Unpad walks the whole final block so the work done does not depend on where the
// padding is wrong.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}

	n := int(data[len(data)-1])
	good := subtle.ConstantTimeLessOrEq(1, n) & subtle.ConstantTimeLessOrEq(n, blockSize)

	last := data[len(data)-blockSize:]
	for i := 0; i < blockSize; i++ {
		inPad := subtle.ConstantTimeLessOrEq(blockSize-n, i)
		match := subtle.ConstantTimeByteEq(last[i], byte(n))
		good &= subtle.ConstantTimeSelect(inPad, match, 1)
	}
	if good != 1 {
		return nil, false
	}

	return data[:len(data)-n], true
}
