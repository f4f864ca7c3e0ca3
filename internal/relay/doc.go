// Package relay propagates DIDs to other endpoints.
//
// Two domain.RelaySink implementations are provided:
//   - LogSink records the request and succeeds; it is the default when no
//     relay endpoint is configured.
//   - HTTPSink posts {"did","target"} JSON to <base>/sync. Non-2xx statuses
//     are returned as errors wrapping domain.ErrTransportFailure.
//
// Dispatcher decouples callers from sink latency. Enqueue never blocks; a
// fixed pool of workers delivers jobs, each attempt bounded by its own
// timeout and retried with backoff. Delivery is at-most-once.
//
// Receiver is the other end of HTTPSink: an in-memory endpoint that records
// sync requests, served by cmd/relay.
package relay
