package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// envelopeVersion is the literal format tag of the current envelope layout.
	envelopeVersion = "enc_v1"
	envelopeParts   = 4

	ivSize  = 12
	tagSize = 16
)

var (
	// ErrMalformedEnvelope is returned when a stored value does not have the
	// exact four-part versioned envelope shape.
	ErrMalformedEnvelope = errors.New("malformed encrypted envelope")
	// ErrDecryptFailed is returned when authentication fails: tampered
	// ciphertext, tampered tag, or wrong key. No plaintext is ever returned
	// alongside it.
	ErrDecryptFailed = errors.New("decryption failed")
)

type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

// NoopCipher passes values through without encryption. It is for test
// fixtures only; the server always runs with an AESCipher.
type NoopCipher struct{}

func (NoopCipher) Encrypt(plaintext string) (string, error) { return plaintext, nil }
func (NoopCipher) Decrypt(envelope string) (string, error)  { return envelope, nil }

// AESCipher encrypts fields with AES-256-GCM under a single process-wide key.
type AESCipher struct {
	gcm cipher.AEAD
}

// NewAESCipher builds a cipher from a 64-hex-character (32-byte) key.
// Key validation happens here so a misconfigured key aborts startup rather
// than failing on first use.
func NewAESCipher(hexKey string) (*AESCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESCipher{gcm: gcm}, nil
}

func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	// Seal returns ciphertext || tag; the envelope stores them as separate
	// hex segments.
	sealed := c.gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		envelopeVersion,
		hex.EncodeToString(iv),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, ":"), nil
}

func (c *AESCipher) Decrypt(envelope string) (string, error) {
	iv, tag, ciphertext, err := parseEnvelope(envelope)
	if err != nil {
		return "", err
	}

	plaintext, err := c.gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// IsEncrypted reports whether a stored value carries the envelope version tag.
// Rows written before encryption was enabled hold raw plaintext and are
// passed through unchanged on read.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, envelopeVersion+":")
}

func parseEnvelope(envelope string) (iv, tag, ciphertext []byte, err error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != envelopeParts || parts[0] != envelopeVersion {
		return nil, nil, nil, ErrMalformedEnvelope
	}

	iv, err = hex.DecodeString(parts[1])
	if err != nil || len(iv) != ivSize {
		return nil, nil, nil, ErrMalformedEnvelope
	}

	tag, err = hex.DecodeString(parts[2])
	if err != nil || len(tag) != tagSize {
		return nil, nil, nil, ErrMalformedEnvelope
	}

	ciphertext, err = hex.DecodeString(parts[3])
	if err != nil {
		return nil, nil, nil, ErrMalformedEnvelope
	}

	return iv, tag, ciphertext, nil
}
