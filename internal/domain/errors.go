package domain

import "errors"

var (
	// ErrAlreadyExists is returned when creating an identity whose id is active.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound is returned when an identity or credential is not active.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the caller is not the recorded owner.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedBlob is returned when a blob cannot contain a nonce.
	ErrMalformedBlob = errors.New("malformed blob")
	// ErrAuthenticationFailed is returned when a blob fails to authenticate
	// under the supplied key: wrong key, tampered or truncated data.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrTransportFailure wraps failures talking to pinning or relay endpoints.
	ErrTransportFailure = errors.New("transport failure")
)
