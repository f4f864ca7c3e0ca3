// Package identity mints DIDs into the vault and resolves identities a caller
// already owns.
//
// It rejects blank owners, retries on the (practically impossible) collision
// of a generated DID with an active one, and records each vault write in
// metrics.
package identity
