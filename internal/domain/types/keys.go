package types

// SymmetricKey is a 256-bit key derived from a passphrase.
type SymmetricKey [32]byte

// Slice returns the key as a []byte.
func (k *SymmetricKey) Slice() []byte { return k[:] }

// Blob is the base64 text of nonce ‖ ciphertext‖tag.
type Blob string

// String returns the base64 text.
func (b Blob) String() string { return string(b) }
