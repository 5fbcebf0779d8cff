// Package commands defines the e2ectl CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init         Create the first device key pair for an identity
//   - fingerprint  Print the active key's fingerprint and QR payload
//   - devices      List all device key pairs
//   - label        Rename a device key pair
//   - rotate       Generate a fresh active key pair
//   - lock         Seal private key material under a passphrase
//   - unlock       Restore sealed key material for this session
//   - backup       Create or restore an encrypted keyring backup
//   - resolve      Look up a peer's published public key
//
// # Implementation
//
// The root command loads the YAML config, applies flag overrides and builds
// one e2ecore.Session before any subcommand runs, so handlers share a single
// configured crypto surface.
package commands
