package interfaces

import (
	"context"

	domaintypes "didvault/internal/domain/types"
)

// IdentityService mints identities or reuses ones the caller already owns.
type IdentityService interface {
	Mint(owner domaintypes.Owner, metadata string) (domaintypes.IdentityRecord, error)
	Ensure(
		id domaintypes.DID,
		owner domaintypes.Owner,
		metadata string,
	) (domaintypes.IdentityRecord, bool, error)
}

// DocumentService runs the encrypt, pin and attach pipeline.
type DocumentService interface {
	Vault(ctx context.Context, req domaintypes.VaultRequest) (domaintypes.VaultReceipt, error)
	Open(passphrase string, blob domaintypes.Blob) ([]byte, error)
}
