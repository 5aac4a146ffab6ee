// Package secrets decrypts the SMTP passwords and provider API keys stored
// on email accounts. Values are AES-256-GCM ciphertexts, base64 encoded,
// with the nonce prepended.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"os"

	"github.com/pkg/errors"
)

// Decryptor maps a stored ciphertext to its plaintext credential. The send
// pipeline takes this as an injected capability so tests can substitute it.
type Decryptor func(ciphertext string) (string, error)

// Codec encrypts and decrypts credential strings with a fixed key.
type Codec struct {
	key []byte
}

// NewCodec builds a Codec from a 32-byte key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != 32 {
		return nil, errors.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return &Codec{key: key}, nil
}

// NewCodecFromEnv reads the base64-encoded key from CREDENTIALS_ENCRYPTION_KEY.
func NewCodecFromEnv() (*Codec, error) {
	raw := os.Getenv("CREDENTIALS_ENCRYPTION_KEY")
	if raw == "" {
		return nil, errors.New("CREDENTIALS_ENCRYPTION_KEY environment variable is required")
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode CREDENTIALS_ENCRYPTION_KEY")
	}
	return NewCodec(key)
}

// Encrypt seals plaintext and returns a base64 ciphertext with the nonce prepended.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Wrap(err, "failed to create GCM")
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It fails on truncated or tampered input.
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode ciphertext")
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Wrap(err, "failed to create GCM")
	}
	if len(raw) < gcm.NonceSize() {
		return "", errors.New("ciphertext shorter than nonce")
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to decrypt credential")
	}
	return string(plaintext), nil
}
