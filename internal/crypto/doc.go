// Package crypto exposes the minimal primitives used by the encryption core.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - XChaCha20-Poly1305 sealing helpers (Seal, Open)
//   - Argon2id passphrase derivation (DeriveKEK) and HKDF message-key
//     derivation (DeriveSessionKey)
//   - Public-key fingerprints for display and verification (ComputeFingerprint)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// All functions work on the fixed-size array types defined in internal/domain
// to avoid accidental reallocations. Callers should treat returned secrets as
// sensitive and rely on Wipe when practical to reduce lifetime in memory.
package crypto
