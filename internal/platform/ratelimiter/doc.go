// Package ratelimiter provides per-key token buckets with idle eviction.
package ratelimiter
