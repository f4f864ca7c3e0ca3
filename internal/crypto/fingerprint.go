package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"didvault/internal/domain"
)

// Fingerprint returns a short hex fingerprint of a key for display/logging.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(key domain.SymmetricKey) string {
	sum := sha256.Sum256(key[:])
	return hex.EncodeToString(sum[:10])
}

// Checksum returns the full SHA-256 of b in hex.
func Checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
