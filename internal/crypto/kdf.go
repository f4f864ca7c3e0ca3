package crypto

import (
	"crypto/sha256"

	"didvault/internal/domain"
)

// DeriveKey hashes the UTF-8 passphrase with a single round of SHA-256 and
// uses the digest as the key.
//
// There is no salt and no work factor. Callers that need brute-force
// resistance must supply a strong passphrase or stretch it beforehand.
func DeriveKey(passphrase string) domain.SymmetricKey {
	return domain.SymmetricKey(sha256.Sum256([]byte(passphrase)))
}
