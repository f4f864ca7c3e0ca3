// Package metrics defines the Prometheus collectors exported by the vault
// daemon and small helpers to record into them.
package metrics
