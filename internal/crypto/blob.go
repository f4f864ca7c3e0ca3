package crypto

import (
	"encoding/base64"
	"fmt"

	"didvault/internal/domain"
)

// EncodeBlob returns the standard, padded base64 text of raw.
func EncodeBlob(raw []byte) domain.Blob {
	return domain.Blob(base64.StdEncoding.EncodeToString(raw))
}

// DecodeBlob returns the raw nonce ‖ ciphertext‖tag bytes of blob.
func DecodeBlob(blob domain.Blob) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(string(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedBlob, err)
	}
	return raw, nil
}
