package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"didvault/internal/crypto"
	"didvault/internal/domain"
	"didvault/internal/metrics"
)

// DefaultCredentialKey names the credential that records a document's
// content address when the request does not choose one.
const DefaultCredentialKey = "document"

var (
	// ErrEmptyDocument is returned when there is nothing to vault.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrMissingOwner is returned when the request names no owner.
	ErrMissingOwner = errors.New("owner must not be empty")
	// ErrWeakPassphrase is returned when the passphrase is shorter than the
	// configured minimum.
	ErrWeakPassphrase = errors.New("passphrase is too short")
)

// Config tunes a Service.
type Config struct {
	// MinPassphraseLength rejects shorter passphrases when positive.
	MinPassphraseLength int
	// RelayTarget is used when a request does not name one. Empty disables
	// relaying for such requests.
	RelayTarget string
}

// Service encrypts documents, pins the ciphertext and records its address
// as a credential on the owner's identity.
type Service struct {
	codec      *crypto.Codec
	pins       domain.PinningGateway
	identities domain.IdentityService
	vault      domain.IdentityVault
	relay      domain.RelayQueue
	cfg        Config
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// New wires a document service. relay may be nil, in which case identities
// are never propagated.
func New(
	codec *crypto.Codec,
	pins domain.PinningGateway,
	identities domain.IdentityService,
	v domain.IdentityVault,
	relay domain.RelayQueue,
	cfg Config,
	log *zap.Logger,
	m *metrics.Metrics,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		codec:      codec,
		pins:       pins,
		identities: identities,
		vault:      v,
		relay:      relay,
		cfg:        cfg,
		log:        log.With(zap.String("component", "documents")),
		metrics:    m,
	}
}

// Vault runs the full pipeline for one document. The pin happens before any
// vault state is touched; a failed pin leaves the vault unchanged.
func (s *Service) Vault(ctx context.Context, req domain.VaultRequest) (domain.VaultReceipt, error) {
	if len(req.Document) == 0 {
		return domain.VaultReceipt{}, ErrEmptyDocument
	}
	if strings.TrimSpace(string(req.Owner)) == "" {
		return domain.VaultReceipt{}, ErrMissingOwner
	}
	if err := s.checkPassphrase(req.Passphrase); err != nil {
		return domain.VaultReceipt{}, err
	}

	key := crypto.DeriveKey(req.Passphrase)
	defer crypto.WipeKey(&key)

	blob, err := s.codec.Encrypt(key, req.Document)
	if err != nil {
		return domain.VaultReceipt{}, fmt.Errorf("encrypt document: %w", err)
	}
	raw, err := crypto.DecodeBlob(blob)
	if err != nil {
		return domain.VaultReceipt{}, err
	}

	name := req.Filename
	if name == "" {
		name = "doc"
	}
	start := time.Now()
	addr, err := s.pins.Pin(ctx, name, raw)
	s.metrics.ObservePin(time.Since(start), err)
	if err != nil {
		return domain.VaultReceipt{}, err
	}

	rec, _, err := s.identities.Ensure(req.DID, req.Owner, req.Metadata)
	if err != nil {
		return domain.VaultReceipt{}, err
	}

	credKey := req.CredentialKey
	if credKey == "" {
		credKey = DefaultCredentialKey
	}
	_, err = s.vault.IssueCredential(rec.ID, req.Owner, credKey, addr.String())
	s.metrics.ObserveVaultOp("issue_credential", err)
	if err != nil {
		return domain.VaultReceipt{}, err
	}

	receipt := domain.VaultReceipt{
		DID:            rec.ID,
		ContentAddress: addr,
		CredentialKey:  credKey,
		Blob:           blob,
		SHA256:         crypto.Checksum(req.Document),
		Size:           len(req.Document),
	}

	target := req.RelayTarget
	if target == "" {
		target = s.cfg.RelayTarget
	}
	if target != "" && s.relay != nil {
		if err := s.relay.Enqueue(rec.ID, target); err != nil {
			s.log.Warn("relay not scheduled", zap.String("did", rec.ID.String()), zap.Error(err))
		} else {
			receipt.Relayed = true
		}
	}

	s.log.Info("document vaulted",
		zap.String("did", rec.ID.String()),
		zap.String("address", addr.String()),
		zap.String("credential", credKey),
		zap.Int("size", receipt.Size),
		zap.String("key_fp", crypto.Fingerprint(key)),
	)
	return receipt, nil
}

// Open decrypts a blob produced by Vault.
func (s *Service) Open(passphrase string, blob domain.Blob) ([]byte, error) {
	key := crypto.DeriveKey(passphrase)
	defer crypto.WipeKey(&key)
	return s.codec.Decrypt(key, blob)
}

func (s *Service) checkPassphrase(p string) error {
	if s.cfg.MinPassphraseLength > 0 && len([]rune(p)) < s.cfg.MinPassphraseLength {
		return fmt.Errorf("%w: need at least %d characters", ErrWeakPassphrase, s.cfg.MinPassphraseLength)
	}
	return nil
}

// Compile-time assertion that Service implements domain.DocumentService.
var _ domain.DocumentService = (*Service)(nil)
