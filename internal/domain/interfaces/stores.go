package interfaces

import domaintypes "didvault/internal/domain/types"

// IdentityVault owns identity and credential records and enforces the
// single-owner mutation rule. Reads are open to any caller.
type IdentityVault interface {
	CreateIdentity(
		id domaintypes.DID,
		owner domaintypes.Owner,
		metadata string,
	) (domaintypes.IdentityRecord, error)
	UpdateIdentity(
		id domaintypes.DID,
		owner domaintypes.Owner,
		metadata string,
	) (domaintypes.IdentityRecord, error)
	RevokeIdentity(id domaintypes.DID, owner domaintypes.Owner) error
	GetIdentity(id domaintypes.DID) (domaintypes.IdentityRecord, bool)

	IssueCredential(
		id domaintypes.DID,
		owner domaintypes.Owner,
		key string,
		value string,
	) (domaintypes.CredentialRecord, error)
	RevokeCredential(id domaintypes.DID, owner domaintypes.Owner, key string) error
	GetCredential(id domaintypes.DID, key string) (domaintypes.CredentialRecord, bool)
	ListCredentials(id domaintypes.DID) []domaintypes.CredentialRecord

	Len() int
}
