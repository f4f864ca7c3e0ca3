// Package pinning provides an HTTP implementation of domain.PinningGateway.
//
// The gateway speaks the IPFS "add" dialect: a multipart/form-data POST with
// the bytes in a "file" part, answered by JSON carrying the content address
// in "Hash". Attempts are retried with exponential backoff; 4xx answers other
// than 429 are treated as permanent. Every failure returned to callers wraps
// domain.ErrTransportFailure.
package pinning
