package identity

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"didvault/internal/domain"
	"didvault/internal/metrics"
)

// maxMintAttempts bounds retries when a freshly generated DID collides with
// an active one.
const maxMintAttempts = 4

// ErrInvalidOwner is returned when the owner is empty or only whitespace.
var ErrInvalidOwner = errors.New("owner must not be empty")

// Service mints identities in a vault and resolves identities a caller
// already owns.
type Service struct {
	vault   domain.IdentityVault
	gen     domain.DIDGenerator
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New returns an identity service over v using gen for new identifiers.
func New(v domain.IdentityVault, gen domain.DIDGenerator, log *zap.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{vault: v, gen: gen, log: log.With(zap.String("component", "identity")), metrics: m}
}

// Mint creates an identity under a freshly generated DID.
func (s *Service) Mint(owner domain.Owner, metadata string) (domain.IdentityRecord, error) {
	if err := validateOwner(owner); err != nil {
		return domain.IdentityRecord{}, err
	}
	var lastErr error
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		id, err := s.gen.Generate()
		if err != nil {
			return domain.IdentityRecord{}, fmt.Errorf("generate DID: %w", err)
		}
		rec, err := s.vault.CreateIdentity(id, owner, metadata)
		s.metrics.ObserveVaultOp("create_identity", err)
		if err == nil {
			s.log.Info("identity minted", zap.String("did", id.String()))
			return rec, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return domain.IdentityRecord{}, err
		}
		lastErr = err
		s.log.Warn("generated DID collided, retrying", zap.String("did", id.String()))
	}
	return domain.IdentityRecord{}, fmt.Errorf("mint identity after %d attempts: %w", maxMintAttempts, lastErr)
}

// Ensure returns the identity id when owner controls it, or creates it when
// it does not exist. created reports which happened.
func (s *Service) Ensure(id domain.DID, owner domain.Owner, metadata string) (domain.IdentityRecord, bool, error) {
	if err := validateOwner(owner); err != nil {
		return domain.IdentityRecord{}, false, err
	}
	if id == "" {
		rec, err := s.Mint(owner, metadata)
		return rec, err == nil, err
	}
	for {
		if rec, ok := s.vault.GetIdentity(id); ok {
			if rec.Owner != owner {
				return domain.IdentityRecord{}, false, fmt.Errorf("identity %q: %w", id, domain.ErrUnauthorized)
			}
			return rec, false, nil
		}
		rec, err := s.vault.CreateIdentity(id, owner, metadata)
		s.metrics.ObserveVaultOp("create_identity", err)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Created concurrently; re-read and check the owner.
			continue
		}
		if err != nil {
			return domain.IdentityRecord{}, false, err
		}
		s.log.Info("identity created", zap.String("did", id.String()))
		return rec, true, nil
	}
}

func validateOwner(owner domain.Owner) error {
	if strings.TrimSpace(string(owner)) == "" {
		return ErrInvalidOwner
	}
	return nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
