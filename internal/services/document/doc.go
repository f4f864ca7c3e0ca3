// Package document vaults documents for an identity.
//
// Vault derives a key from the caller's passphrase, encrypts the document,
// pins the ciphertext, resolves or mints the owner's identity and records the
// content address as a credential. When a relay target is known the DID is
// queued for propagation; relay failures never fail the request.
//
// # Notes
//
// Derived keys are wiped when each call returns. Only key fingerprints are
// logged.
package document
