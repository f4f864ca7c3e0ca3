// Package app loads configuration and wires the vault's dependencies.
//
// Contents:
//   - Config: defaults, YAML file, DIDVAULT_* environment overrides and
//     validation.
//   - NewLogger: zap logger construction.
//   - Wire: the vault, pinning gateway, relay dispatcher and services built
//     from a Config, for the server and CLI commands to use.
package app
