package types

// VaultRequest asks for a document to be encrypted, pinned and attached to
// an identity as a credential.
type VaultRequest struct {
	Passphrase    string
	Document      []byte
	Filename      string
	Owner         Owner
	DID           DID    // optional; a fresh DID is minted when empty
	Metadata      string // metadata for a newly created identity
	CredentialKey string // defaults to "document"
	RelayTarget   string // optional relay endpoint to propagate the DID to
}

// VaultReceipt describes the outcome of a vaulted document.
type VaultReceipt struct {
	DID            DID            `json:"did"`
	ContentAddress ContentAddress `json:"content_address"`
	CredentialKey  string         `json:"credential_key"`
	Blob           Blob           `json:"blob"`
	SHA256         string         `json:"sha256"`
	Size           int            `json:"size"`
	Relayed        bool           `json:"relayed"`
}
