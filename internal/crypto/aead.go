package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"didvault/internal/domain"
)

const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16
)

// Suite names the AEAD used by a Codec. All suites share the same key,
// nonce and tag sizes, so blobs have one layout regardless of suite.
type Suite string

const (
	SuiteAES256GCM        Suite = "aes-256-gcm"
	SuiteChaCha20Poly1305 Suite = "chacha20-poly1305"
)

// ParseSuite maps a configuration string to a Suite.
func ParseSuite(s string) (Suite, error) {
	switch Suite(strings.ToLower(strings.TrimSpace(s))) {
	case "", SuiteAES256GCM:
		return SuiteAES256GCM, nil
	case SuiteChaCha20Poly1305:
		return SuiteChaCha20Poly1305, nil
	default:
		return "", fmt.Errorf("unknown cipher suite %q", s)
	}
}

// Codec seals and opens blobs with one suite.
type Codec struct {
	suite Suite
	rand  io.Reader
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithRandom sets the nonce source. It must be safe for concurrent use if the
// codec is shared.
func WithRandom(r io.Reader) CodecOption {
	return func(c *Codec) { c.rand = r }
}

// NewCodec returns a codec for suite, defaulting to AES-256-GCM.
func NewCodec(suite Suite, opts ...CodecOption) *Codec {
	if suite == "" {
		suite = SuiteAES256GCM
	}
	c := &Codec{suite: suite, rand: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suite reports the codec's AEAD.
func (c *Codec) Suite() Suite { return c.suite }

// Encrypt seals plaintext under key with a fresh random nonce and returns
// base64(nonce ‖ ciphertext‖tag). No associated data is bound.
func (c *Codec) Encrypt(key domain.SymmetricKey, plaintext []byte) (domain.Blob, error) {
	aead, err := c.aead(key)
	if err != nil {
		return "", err
	}
	out := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(c.rand, out); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	out = aead.Seal(out, out[:NonceSize], plaintext, nil)
	return EncodeBlob(out), nil
}

// Decrypt opens a blob produced by Encrypt. It returns ErrMalformedBlob when
// the blob is not base64 or too short to hold a nonce, and
// ErrAuthenticationFailed when the tag does not verify.
func (c *Codec) Decrypt(key domain.SymmetricKey, blob domain.Blob) ([]byte, error) {
	raw, err := DecodeBlob(blob)
	if err != nil {
		return nil, err
	}
	if len(raw) < NonceSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", domain.ErrMalformedBlob, len(raw), NonceSize)
	}
	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	nonce, sealed := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}
	return plaintext, nil
}

func (c *Codec) aead(key domain.SymmetricKey) (cipher.AEAD, error) {
	switch c.suite {
	case SuiteChaCha20Poly1305:
		return chacha20poly1305.New(key[:])
	case SuiteAES256GCM:
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	default:
		return nil, fmt.Errorf("unknown cipher suite %q", c.suite)
	}
}

var defaultCodec = NewCodec(SuiteAES256GCM)

// Encrypt seals plaintext with the default AES-256-GCM codec.
func Encrypt(key domain.SymmetricKey, plaintext []byte) (domain.Blob, error) {
	return defaultCodec.Encrypt(key, plaintext)
}

// Decrypt opens blob with the default AES-256-GCM codec.
func Decrypt(key domain.SymmetricKey, blob domain.Blob) ([]byte, error) {
	return defaultCodec.Decrypt(key, blob)
}
