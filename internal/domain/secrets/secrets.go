package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Decoded segment lengths that fix the structural shape of an encrypted value.
const (
	ivSize  = 12
	tagSize = 16
)

// Domain errors
var (
	ErrKeySize          = errors.New("encryption key must be 64 hex characters (32 bytes)")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Cipher encrypts and decrypts stored values with a single AES-256-GCM key
// loaded once at process start. It holds no other state and is safe for
// concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// ParseKey decodes a hex-encoded 32-byte key from configuration.
// PRE: hexKey is 64 hex characters
// POST: Returns the raw key bytes, or ErrKeySize for any other input
func ParseKey(hexKey string) ([]byte, error) {
	if hexKey == "" {
		return nil, ErrKeySize
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != KeySize {
		return nil, ErrKeySize
	}
	return key, nil
}

// NewCipher creates a Cipher from a raw 32-byte key.
// PRE: key is exactly KeySize bytes
// POST: Returns a ready-to-use Cipher
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt encrypts plaintext with a fresh random IV.
// PRE: Cipher was built from a valid key
// POST: Returns base64(iv):base64(ciphertext):base64(tag)
// INVARIANT: an IV is never reused for the key; two calls with the same
// plaintext produce different values
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]
	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(ciphertext),
		base64.StdEncoding.EncodeToString(tag),
	}, ":"), nil
}

// Decrypt reverses Encrypt.
// PRE: value was produced by Encrypt with the same key
// POST: Returns the plaintext, or ErrDecryptionFailed on a malformed value,
// a tampered ciphertext or tag, or a wrong key; never partial output
func (c *Cipher) Decrypt(value string) (string, error) {
	iv, ciphertext, tag, err := splitValue(value)
	if err != nil {
		return "", err
	}
	plaintext, err := c.aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication tag mismatch", ErrDecryptionFailed)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value has the structural shape of an encrypted
// value: exactly three base64 segments joined by ':' whose decoded IV and tag
// lengths match. Anything else is treated as plaintext, which makes repeated
// encryption of stored values idempotent.
func IsEncrypted(value string) bool {
	_, _, _, err := splitValue(value)
	return err == nil
}

// splitValue decodes the three segments and validates their lengths.
func splitValue(value string) (iv, ciphertext, tag []byte, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return nil, nil, nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrDecryptionFailed, len(parts))
	}
	iv, err = base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return nil, nil, nil, fmt.Errorf("%w: bad iv segment", ErrDecryptionFailed)
	}
	ciphertext, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: bad ciphertext segment", ErrDecryptionFailed)
	}
	tag, err = base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(tag) != tagSize {
		return nil, nil, nil, fmt.Errorf("%w: bad tag segment", ErrDecryptionFailed)
	}
	return iv, ciphertext, tag, nil
}
