// Package e2ecore is the end-to-end encryption core behind the admin
// messaging surface: device key lifecycle, passphrase locking at rest,
// recoverable backups, per-conversation message crypto with replay
// bookkeeping, and attachment encryption via wrapped file keys.
//
// The entry point is Session, constructed per authenticated identity with
// NewSession. There is no package-level singleton; callers own the Session
// for the lifetime of one login and pass it to whatever needs crypto.
//
//	sess, err := e2ecore.NewSession("alice",
//		e2ecore.WithHome("/var/lib/app"),
//		e2ecore.WithDirectory(dir),
//	)
//	if err != nil { ... }
//	if _, err := sess.Initialize(); err != nil { ... }
//	env, err := sess.Encrypt(ctx, []byte("hello"), "bob")
//
// Message transport and storage stay outside this package: Encrypt returns an
// Envelope, Decrypt takes one back, and the caller moves it however it likes.
package e2ecore
