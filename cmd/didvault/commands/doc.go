// Package commands defines the didvault CLI.
//
// Commands
//
//   - serve            Run the HTTP API, metrics listener and relay dispatcher
//   - encrypt          Seal a file or stdin into a base64 blob
//   - decrypt          Open a base64 blob
//   - key fingerprint  Print the fingerprint of a passphrase-derived key
//   - did new          Generate a DID
//   - did parse        Validate a DID
//   - pin              Encrypt a file and pin it
//
// # Implementation
//
// The root command loads configuration (defaults, --config file, DIDVAULT_*
// environment, then flags) and builds the logger before any subcommand runs.
// Only serve and pin construct the wider dependency graph.
package commands
