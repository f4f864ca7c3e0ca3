package types

// IdentityRecord is an active identity held by the vault.
//
// ID and Owner never change after creation; Metadata is replaced in place by
// the owner. CreatedAt is in seconds since the Unix epoch.
type IdentityRecord struct {
	ID        DID    `json:"id"`
	Owner     Owner  `json:"owner"`
	Metadata  string `json:"metadata"`
	CreatedAt int64  `json:"created_at"`
}

// CredentialRecord is a key/value claim attached to one identity.
type CredentialRecord struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	IssuedAt int64  `json:"issued_at"`
}
