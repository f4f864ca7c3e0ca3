// Package vault holds identity records and their credentials in memory.
//
// # Lifecycle
//
// An identity is ACTIVE from CreateIdentity until RevokeIdentity removes it;
// no revoked state is retained. Credentials live inside their identity and
// are removed with it, so a re-created id starts with no credentials.
//
// # Ownership
//
// Every mutation except CreateIdentity requires the caller-supplied owner to
// equal the recorded owner byte for byte. Reads (GetIdentity, GetCredential,
// ListCredentials) are open to anyone who knows the id.
//
// # Concurrency
//
// Vault is safe for concurrent use. The id index and each identity have
// separate locks; nothing blocks on I/O while a lock is held.
package vault
