// Package vault implements the at-rest cryptography of the sync engine:
// an AES-256-GCM authenticated cipher, passphrase key derivation, the
// canonical associated-data encoding, and content digests for change
// detection. The package performs no I/O and holds no mutable state
// beyond the fixed key.
package vault
