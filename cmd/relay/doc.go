// Package main runs the in-memory relay receiver used by didvault during
// development and tests. Point a vault at it with relay.mode: http and
// relay.endpoint set to this server's base URL.
//
// HTTP API
//
//	POST /sync { "did": "...", "target": "..." }
//	    Record that did should be propagated to target. Responds 202.
//
//	GET /sync/{did}
//	    Return every sync received for {did}, oldest first, or 404.
//
//	GET /health
//	    Liveness probe.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - The relay never sees documents or keys; it only records identifiers.
//   - The default listen address is :8080.
package main
