// Package did mints and parses identifiers of the form
//
//	did:<method>:<base58(sha256(random 16 bytes)[:16])>
//
// The identifier carries no key material; it only has to be unique.
package did
