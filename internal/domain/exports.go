package domain

import (
	interfaces "didvault/internal/domain/interfaces"
	types "didvault/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	DID              = types.DID
	Owner            = types.Owner
	ContentAddress   = types.ContentAddress
	IdentityRecord   = types.IdentityRecord
	CredentialRecord = types.CredentialRecord
	SymmetricKey     = types.SymmetricKey
	Blob             = types.Blob
	VaultRequest     = types.VaultRequest
	VaultReceipt     = types.VaultReceipt
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityVault   = interfaces.IdentityVault
	PinningGateway  = interfaces.PinningGateway
	RelaySink       = interfaces.RelaySink
	RelayQueue      = interfaces.RelayQueue
	DIDGenerator    = interfaces.DIDGenerator
	IdentityService = interfaces.IdentityService
	DocumentService = interfaces.DocumentService
)
