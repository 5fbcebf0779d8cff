// Package domain defines the shared types, interfaces and error taxonomy of
// the encryption core.
//
// Contents
//
//   - Fixed-size X25519 key types and the KeyPair/Keyring model
//   - The Envelope wire structure carried through the message store
//   - Per-conversation session state (send index, replay bookkeeping)
//   - Recovery backup artifacts and attachment file keys
//   - Store and directory interfaces implemented by collaborators
//
// Everything here is plain data; behaviour lives in the sibling packages.
package domain
