package did

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58/base58"

	"didvault/internal/domain"
)

const (
	// DefaultMethod is the DID method used by the vault.
	DefaultMethod = "dv"

	seedBytes = 16
	idBytes   = 16
)

// ErrInvalidDID is returned by Parse for strings that are not
// did:<method>:<base58 identifier>.
var ErrInvalidDID = errors.New("invalid DID")

// DID is a parsed identifier.
type DID struct {
	Method string
	ID     []byte
}

// String renders the DID in its textual form.
func (d DID) String() string {
	return "did:" + d.Method + ":" + base58.Encode(d.ID)
}

// Generator mints random DIDs for one method.
type Generator struct {
	Method string
	Rand   io.Reader
}

// New returns a generator for method using crypto/rand.
func New(method string) *Generator {
	if method == "" {
		method = DefaultMethod
	}
	return &Generator{Method: method, Rand: rand.Reader}
}

// Generate hashes fresh random bytes with SHA-256, keeps the first 16 bytes
// and encodes them in base58.
func (g *Generator) Generate() (domain.DID, error) {
	var seed [seedBytes]byte
	if _, err := io.ReadFull(g.Rand, seed[:]); err != nil {
		return "", fmt.Errorf("did seed: %w", err)
	}
	sum := sha256.Sum256(seed[:])
	return domain.DID(DID{Method: g.Method, ID: sum[:idBytes]}.String()), nil
}

// Parse splits s into method and identifier bytes.
func Parse(s string) (DID, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" {
		return DID{}, fmt.Errorf("%w: %q", ErrInvalidDID, s)
	}
	for _, r := range parts[1] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return DID{}, fmt.Errorf("%w: method %q", ErrInvalidDID, parts[1])
		}
	}
	id, err := base58.Decode(parts[2])
	if err != nil {
		return DID{}, fmt.Errorf("%w: %v", ErrInvalidDID, err)
	}
	if len(id) != idBytes {
		return DID{}, fmt.Errorf("%w: identifier is %d bytes, want %d", ErrInvalidDID, len(id), idBytes)
	}
	return DID{Method: parts[1], ID: id}, nil
}

// Valid reports whether s has the generated DID shape.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Compile-time assertion that Generator implements domain.DIDGenerator.
var _ domain.DIDGenerator = (*Generator)(nil)
