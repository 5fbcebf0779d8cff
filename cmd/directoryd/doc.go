// Command directoryd is a minimal in-memory public-key directory for local
// development and tests.
//
// Identities publish their current public key with POST /keys and peers fetch
// it with GET /keys/{identity}. Nothing is persisted; restart clears it.
package main
