// Package store provides file-backed persistence for keyrings and session
// state.
//
// Everything is JSON on disk, written atomically (temp file, then rename)
// with 0600 permissions. Private key halves are persisted only in sealed
// form; the plaintext halves never reach disk once a vault passphrase exists.
package store
