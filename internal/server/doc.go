// Package server exposes the vault over HTTP.
//
// Routes are registered on a net/http ServeMux with method patterns. Every
// request passes through request-id, access-log, security-header and
// per-client rate-limit middleware. Errors map to status codes as follows:
// already exists 409, not found 404, unauthorized 403, malformed blob or bad
// input 400, authentication failure 422, upstream transport failure 502.
//
// Run serves the API and a separate Prometheus listener and drives the relay
// dispatcher, shutting all of them down when its context ends.
package server
