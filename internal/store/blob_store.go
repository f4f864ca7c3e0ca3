package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"didvault/internal/domain"
)

const addressPrefix = "sha256-"

// BlobFileStore is a local content-addressed directory. It stands in for a
// remote pinning service in development and offline deployments.
type BlobFileStore struct {
	dir string
	log *zap.Logger
	mu  sync.Mutex
}

// NewBlobFileStore returns a BlobFileStore rooted at dir, creating it if
// needed.
func NewBlobFileStore(dir string, log *zap.Logger) (*BlobFileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("blob store dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BlobFileStore{dir: dir, log: log.With(zap.String("component", "blobstore"))}, nil
}

// Address returns the content address of data.
func Address(data []byte) domain.ContentAddress {
	sum := sha256.Sum256(data)
	return domain.ContentAddress(addressPrefix + hex.EncodeToString(sum[:]))
}

// Pin writes data under its content address. Pinning the same bytes twice is
// a no-op. name is recorded in the log only.
func (s *BlobFileStore) Pin(ctx context.Context, name string, data []byte) (domain.ContentAddress, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	addr := Address(data)
	path := s.path(addr)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		s.log.Debug("blob already pinned", zap.String("address", addr.String()), zap.String("name", name))
		return addr, nil
	}
	if err := writeFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("pin %s: %w", addr, err)
	}
	s.log.Info("blob pinned",
		zap.String("address", addr.String()),
		zap.String("name", name),
		zap.Int("bytes", len(data)))
	return addr, nil
}

// Fetch returns the bytes stored under addr.
func (s *BlobFileStore) Fetch(addr domain.ContentAddress) ([]byte, error) {
	if !validAddress(addr) {
		return nil, fmt.Errorf("content address %q: %w", addr, domain.ErrNotFound)
	}
	b, ok, err := readFile(s.path(addr))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("content address %q: %w", addr, domain.ErrNotFound)
	}
	return b, nil
}

func (s *BlobFileStore) path(addr domain.ContentAddress) string {
	return filepath.Join(s.dir, string(addr))
}

func validAddress(addr domain.ContentAddress) bool {
	h, ok := strings.CutPrefix(string(addr), addressPrefix)
	if !ok || len(h) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}

// Compile-time assertion that BlobFileStore implements domain.PinningGateway.
var _ domain.PinningGateway = (*BlobFileStore)(nil)
