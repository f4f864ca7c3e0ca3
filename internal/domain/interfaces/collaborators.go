package interfaces

import (
	"context"

	domaintypes "didvault/internal/domain/types"
)

// PinningGateway stores opaque bytes and returns their content address.
type PinningGateway interface {
	Pin(ctx context.Context, name string, data []byte) (domaintypes.ContentAddress, error)
}

// RelaySink propagates a DID to another endpoint.
type RelaySink interface {
	SyncIdentity(ctx context.Context, id domaintypes.DID, target string) error
}

// RelayQueue schedules relay work without blocking the caller.
type RelayQueue interface {
	Enqueue(id domaintypes.DID, target string) error
}

// DIDGenerator mints new identifiers.
type DIDGenerator interface {
	Generate() (domaintypes.DID, error)
}
