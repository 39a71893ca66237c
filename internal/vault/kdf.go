package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the KDF salt length in bytes.
	SaltSize = 16

	// kdfIterations is deliberately high; key derivation is a rare,
	// startup-time operation.
	kdfIterations = 100_000
)

// DeriveKey derives a 32-byte key from a passphrase via
// PBKDF2-HMAC-SHA256. A nil salt generates a fresh random one; the salt
// used is returned and must be persisted for later re-derivation.
func DeriveKey(passphrase []byte, salt []byte) (key, usedSalt []byte, err error) {
	if salt == nil {
		salt = make([]byte, SaltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("generating salt: %w", err)
		}
	}

	key = pbkdf2.Key(passphrase, salt, kdfIterations, KeySize, sha256.New)
	return key, salt, nil
}
