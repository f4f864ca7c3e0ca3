package app

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"didvault/internal/crypto"
	"didvault/internal/did"
	"didvault/internal/domain"
	"didvault/internal/metrics"
	"didvault/internal/pinning"
	"didvault/internal/platform/ratelimiter"
	"didvault/internal/relay"
	documentsvc "didvault/internal/services/document"
	identitysvc "didvault/internal/services/identity"
	"didvault/internal/store"
	"didvault/internal/vault"
)

// Wire bundles the vault, collaborators and services built from a Config.
type Wire struct {
	Config     Config
	Log        *zap.Logger
	Metrics    *metrics.Metrics
	Vault      *vault.Vault
	Codec      *crypto.Codec
	Generator  *did.Generator
	Pins       domain.PinningGateway
	Dispatcher *relay.Dispatcher
	Identities *identitysvc.Service
	Documents  *documentsvc.Service
	Limiter    *ratelimiter.KeyLimiter
}

// NewWire constructs the dependency graph from cfg. cfg must be valid.
func NewWire(cfg Config, log *zap.Logger) (*Wire, error) {
	if log == nil {
		log = zap.NewNop()
	}
	suite, err := crypto.ParseSuite(cfg.Cipher)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	v := vault.New(domain.Owner(cfg.Admin))
	m.RegisterIdentityGauge(v.Len)

	pins, err := NewPinningGateway(cfg.Pinning, log)
	if err != nil {
		return nil, err
	}

	var sink domain.RelaySink
	switch cfg.Relay.Mode {
	case RelayHTTP:
		sink = relay.NewHTTP(cfg.Relay.Endpoint, &http.Client{Timeout: cfg.Relay.Timeout})
	default:
		sink = relay.NewLog(log)
	}
	dispatcher := relay.NewDispatcher(sink, relay.DispatcherConfig{
		Workers:   cfg.Relay.Workers,
		QueueSize: cfg.Relay.QueueSize,
		Retry:     cfg.Relay.Retry,
	}, log, m)

	codec := crypto.NewCodec(suite)
	gen := did.New(cfg.DIDMethod)
	ids := identitysvc.New(v, gen, log, m)
	docs := documentsvc.New(codec, pins, ids, v, dispatcher, documentsvc.Config{
		MinPassphraseLength: cfg.MinPassphraseLength,
		RelayTarget:         cfg.Relay.Target,
	}, log, m)

	return &Wire{
		Config:     cfg,
		Log:        log,
		Metrics:    m,
		Vault:      v,
		Codec:      codec,
		Generator:  gen,
		Pins:       pins,
		Dispatcher: dispatcher,
		Identities: ids,
		Documents:  docs,
		Limiter:    ratelimiter.PerWindow(cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}, nil
}

// NewPinningGateway returns the gateway selected by cfg.Mode.
func NewPinningGateway(cfg Pinning, log *zap.Logger) (domain.PinningGateway, error) {
	switch cfg.Mode {
	case PinningIPFS:
		return pinning.NewHTTPGateway(cfg.Endpoint, &http.Client{Timeout: cfg.Timeout}, cfg.Retry, log), nil
	case PinningFile:
		s, err := store.NewBlobFileStore(cfg.Dir, log)
		if err != nil {
			return nil, fmt.Errorf("blob store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown pinning mode %q", cfg.Mode)
	}
}
