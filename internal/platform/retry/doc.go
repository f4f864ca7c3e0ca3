// Package retry wraps exponential backoff for calls to pinning and relay
// endpoints. Vault operations never go through it.
package retry
