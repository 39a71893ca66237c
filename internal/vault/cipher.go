package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
)

// ErrAuthentication indicates a GCM tag mismatch: wrong key, corrupted
// blob, or mismatched associated data. The three cases are deliberately
// indistinguishable and no partial plaintext is ever returned.
var ErrAuthentication = errors.New("authentication failed")

// ErrInvalidKey indicates key material of the wrong length or encoding.
// It is fatal at construction; no sync operation may proceed without a
// valid key.
var ErrInvalidKey = errors.New("invalid key material")

// Cipher encrypts and decrypts opaque byte payloads bound to
// caller-supplied associated data. Blobs are self-describing:
// nonce || ciphertext-and-tag.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a Cipher from a raw 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// NewCipherFromBase64 creates a Cipher from a base64-encoded key, the
// form key material takes in configuration.
func NewCipherFromBase64(encoded string) (*Cipher, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: key not configured", ErrInvalidKey)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64", ErrInvalidKey)
	}

	return NewCipher(key)
}

// GenerateKey returns a fresh random key, base64-encoded for storage in
// configuration.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt seals plaintext under the key and associated data. A fresh
// random nonce is generated per call; a nonce must never be reused
// under the same key.
func (c *Cipher) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	// Seal appends to the nonce so the blob is nonce || ciphertext+tag.
	return c.aead.Seal(nonce, nonce, plaintext, associatedData), nil
}

// Decrypt opens a blob produced by Encrypt. The associated data must
// match what was supplied at encryption time; any mismatch of nonce,
// ciphertext, tag or associated data yields ErrAuthentication.
func (c *Cipher) Decrypt(blob, associatedData []byte) ([]byte, error) {
	if len(blob) < NonceSize {
		return nil, ErrAuthentication
	}

	nonce, ciphertext := blob[:NonceSize], blob[NonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, associatedData)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}
