package e2ecore_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"e2ecore"
)

func fastKDF() e2ecore.KDFParams {
	return e2ecore.KDFParams{Time: 1, MemoryKB: 8 * 1024, Threads: 1}
}

// memDirectory is an in-memory public-key directory for tests.
type memDirectory struct {
	keys map[e2ecore.IdentityID]e2ecore.X25519Public
}

func (d *memDirectory) Resolve(_ context.Context, id e2ecore.IdentityID) (*e2ecore.X25519Public, error) {
	k, ok := d.keys[id]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

// newPair builds two initialized sessions that can resolve each other.
func newPair(t *testing.T) (alice, bob *e2ecore.Session) {
	t.Helper()
	dir := &memDirectory{keys: make(map[e2ecore.IdentityID]e2ecore.X25519Public)}

	mk := func(id e2ecore.IdentityID) *e2ecore.Session {
		s, err := e2ecore.NewSession(id,
			e2ecore.WithHome(t.TempDir()),
			e2ecore.WithDirectory(dir),
			e2ecore.WithKDFParams(fastKDF()),
		)
		if err != nil {
			t.Fatalf("NewSession %s: %v", id, err)
		}
		info, err := s.Initialize()
		if err != nil {
			t.Fatalf("Initialize %s: %v", id, err)
		}
		dir.keys[id] = info.PublicKey
		return s
	}
	return mk("alice"), mk("bob")
}

func TestSession_HelloRoundTrip(t *testing.T) {
	alice, bob := newPair(t)
	ctx := context.Background()

	env, err := alice.Encrypt(ctx, []byte("hello"), "bob")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	alicePub, err := alice.ActivePublicKey()
	if err != nil {
		t.Fatalf("ActivePublicKey: %v", err)
	}
	if env.SenderPublicKey != alicePub {
		t.Fatal("envelope sender key is not Alice's")
	}
	if env.MessageIndex != 1 {
		t.Fatalf("MessageIndex = %d, want 1", env.MessageIndex)
	}
	if len(env.Nonce) == 0 {
		t.Fatal("empty nonce")
	}

	res, err := bob.Decrypt(env, "alice")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(res.Plaintext) != "hello" {
		t.Fatalf("got %q, want %q", res.Plaintext, "hello")
	}
}

func TestSession_RecipientWithoutEncryption(t *testing.T) {
	alice, _ := newPair(t)

	_, err := alice.Encrypt(context.Background(), []byte("x"), "carol")
	if !errors.Is(err, e2ecore.ErrRecipientKeyUnknown) {
		t.Fatalf("want ErrRecipientKeyUnknown, got %v", err)
	}
}

func TestSession_LockUnlockScenario(t *testing.T) {
	alice, bob := newPair(t)
	ctx := context.Background()
	const passphrase = "correct horse battery staple"

	inbound, err := alice.Encrypt(ctx, []byte("before lock"), "bob")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if err := bob.Lock(passphrase); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if !bob.IsLocked() {
		t.Fatal("IsLocked = false after Lock")
	}

	// Everything needing a private key fails closed.
	if _, err := bob.Encrypt(ctx, []byte("x"), "alice"); !errors.Is(err, e2ecore.ErrLocked) {
		t.Fatalf("Encrypt while locked: want ErrLocked, got %v", err)
	}
	if _, err := bob.Decrypt(inbound, "alice"); !errors.Is(err, e2ecore.ErrLocked) {
		t.Fatalf("Decrypt while locked: want ErrLocked, got %v", err)
	}
	if _, err := bob.Rotate(); !errors.Is(err, e2ecore.ErrLocked) {
		t.Fatalf("Rotate while locked: want ErrLocked, got %v", err)
	}
	if _, err := bob.CreateBackup(""); !errors.Is(err, e2ecore.ErrLocked) {
		t.Fatalf("CreateBackup while locked: want ErrLocked, got %v", err)
	}

	if err := bob.Unlock("wrong passphrase!"); !errors.Is(err, e2ecore.ErrInvalidPassphrase) {
		t.Fatalf("Unlock wrong: want ErrInvalidPassphrase, got %v", err)
	}
	if !bob.IsLocked() {
		t.Fatal("failed unlock must leave the vault locked")
	}

	if err := bob.Unlock(passphrase); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	res, err := bob.Decrypt(inbound, "alice")
	if err != nil {
		t.Fatalf("Decrypt after unlock: %v", err)
	}
	if string(res.Plaintext) != "before lock" {
		t.Fatalf("got %q", res.Plaintext)
	}
	if _, err := bob.Encrypt(ctx, []byte("works again"), "alice"); err != nil {
		t.Fatalf("Encrypt after unlock: %v", err)
	}
}

func TestSession_RotationKeepsHistoryDecryptable(t *testing.T) {
	alice, bob := newPair(t)
	ctx := context.Background()

	old, err := alice.Encrypt(ctx, []byte("old epoch"), "bob")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	rotated, err := bob.Rotate()
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if old.SenderPublicKey == rotated.PublicKey {
		t.Fatal("rotation did not change the active key")
	}

	res, err := bob.Decrypt(old, "alice")
	if err != nil {
		t.Fatalf("Decrypt pre-rotation message: %v", err)
	}
	if string(res.Plaintext) != "old epoch" {
		t.Fatalf("got %q", res.Plaintext)
	}

	devices, err := bob.Devices()
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
}

func TestSession_BackupRestoreFlow(t *testing.T) {
	alice, bob := newPair(t)
	ctx := context.Background()

	env, err := alice.Encrypt(ctx, []byte("survives the disaster"), "bob")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	b, err := bob.CreateBackup("")
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}
	if b.Code == "" || b.Blob == "" {
		t.Fatal("backup missing code or blob")
	}

	// Bob's device dies; a brand-new session restores from the backup.
	reborn, err := e2ecore.NewSession("bob",
		e2ecore.WithHome(t.TempDir()),
		e2ecore.WithKDFParams(fastKDF()),
	)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := reborn.RestoreBackup(b.Code, b.Blob); err != nil {
		t.Fatalf("RestoreBackup: %v", err)
	}

	res, err := reborn.Decrypt(env, "alice")
	if err != nil {
		t.Fatalf("Decrypt after restore: %v", err)
	}
	if string(res.Plaintext) != "survives the disaster" {
		t.Fatalf("got %q", res.Plaintext)
	}

	if err := reborn.RestoreBackup("wrong horse battery staple", b.Blob); !errors.Is(err, e2ecore.ErrInvalidCode) {
		t.Fatalf("wrong code: want ErrInvalidCode, got %v", err)
	}
}

func TestSession_AttachmentFlow(t *testing.T) {
	alice, bob := newPair(t)
	ctx := context.Background()

	original := make([]byte, 2<<20)
	if _, err := rand.Read(original); err != nil {
		t.Fatalf("rand: %v", err)
	}

	ef, err := alice.EncryptAttachment(original)
	if err != nil {
		t.Fatalf("EncryptAttachment: %v", err)
	}
	wrapped, err := alice.WrapFileKey(ctx, ef.Key, "bob")
	if err != nil {
		t.Fatalf("WrapFileKey: %v", err)
	}

	// Bob receives the envelope and the file ciphertext separately.
	key, err := bob.UnwrapFileKey(wrapped, "alice")
	if err != nil {
		t.Fatalf("UnwrapFileKey: %v", err)
	}
	got, err := bob.DecryptAttachment(ef.Ciphertext, key)
	if err != nil {
		t.Fatalf("DecryptAttachment: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatal("attachment round trip mismatch")
	}
}

func TestSession_StrictReplay(t *testing.T) {
	dir := &memDirectory{keys: make(map[e2ecore.IdentityID]e2ecore.X25519Public)}
	mk := func(id e2ecore.IdentityID) *e2ecore.Session {
		s, err := e2ecore.NewSession(id,
			e2ecore.WithHome(t.TempDir()),
			e2ecore.WithDirectory(dir),
			e2ecore.WithKDFParams(fastKDF()),
			e2ecore.WithStrictReplay(),
		)
		if err != nil {
			t.Fatalf("NewSession: %v", err)
		}
		info, err := s.Initialize()
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		dir.keys[id] = info.PublicKey
		return s
	}
	alice, bob := mk("alice"), mk("bob")

	env, err := alice.Encrypt(context.Background(), []byte("once"), "bob")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := bob.Decrypt(env, "alice"); err != nil {
		t.Fatalf("first Decrypt: %v", err)
	}
	if _, err := bob.Decrypt(env, "alice"); !errors.Is(err, e2ecore.ErrReplaySuspected) {
		t.Fatalf("replay under strict policy: want ErrReplaySuspected, got %v", err)
	}
}

func TestSession_FingerprintStable(t *testing.T) {
	alice, _ := newPair(t)

	fp1, err := alice.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	fp2, err := alice.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fp1 != fp2 {
		t.Fatal("fingerprint not stable across calls")
	}

	vp, err := alice.VerificationPayload()
	if err != nil {
		t.Fatalf("VerificationPayload: %v", err)
	}
	if vp.ShortFingerprint != fp1.Short {
		t.Fatal("verification payload fingerprint mismatch")
	}
	pub, err := alice.ActivePublicKey()
	if err != nil {
		t.Fatalf("ActivePublicKey: %v", err)
	}
	if vp.PublicKey != pub {
		t.Fatal("verification payload key mismatch")
	}
}

func TestMessageRecord_TaggedVariants(t *testing.T) {
	alice, bob := newPair(t)

	env, err := alice.Encrypt(context.Background(), []byte("wire me"), "bob")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	rec := e2ecore.EncodeRecord(e2ecore.EncryptedContent(env))
	if !rec.Encrypted || rec.SenderPublicKey == nil {
		t.Fatal("encrypted record lost its flags")
	}
	back := e2ecore.DecodeRecord(rec)
	if back.Kind != e2ecore.KindEncrypted {
		t.Fatalf("Kind = %v, want KindEncrypted", back.Kind)
	}
	res, err := bob.Decrypt(back.Envelope, "alice")
	if err != nil {
		t.Fatalf("Decrypt decoded envelope: %v", err)
	}
	if string(res.Plaintext) != "wire me" {
		t.Fatalf("got %q", res.Plaintext)
	}

	plain := e2ecore.DecodeRecord(e2ecore.EncodeRecord(e2ecore.PlaintextContent("visible")))
	if plain.Kind != e2ecore.KindPlaintext || plain.Plaintext != "visible" {
		t.Fatalf("plaintext variant broken: %+v", plain)
	}

	// Historical records flagged encrypted without a sender key decode to the
	// legacy fallback, never into the decrypt path.
	legacy := e2ecore.DecodeRecord(e2ecore.MessageRecord{Content: "old text", Encrypted: true})
	if legacy.Kind != e2ecore.KindLegacyPlaintextFallback || legacy.Plaintext != "old text" {
		t.Fatalf("legacy variant broken: %+v", legacy)
	}
}

func TestSession_StatePersistsAcrossConstruction(t *testing.T) {
	home := t.TempDir()
	dir := &memDirectory{keys: make(map[e2ecore.IdentityID]e2ecore.X25519Public)}

	open := func() *e2ecore.Session {
		s, err := e2ecore.NewSession("alice",
			e2ecore.WithHome(home),
			e2ecore.WithDirectory(dir),
			e2ecore.WithKDFParams(fastKDF()),
		)
		if err != nil {
			t.Fatalf("NewSession: %v", err)
		}
		info, err := s.Initialize()
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		dir.keys["alice"] = info.PublicKey
		return s
	}

	first := open()
	bob, err := e2ecore.NewSession("bob",
		e2ecore.WithHome(t.TempDir()),
		e2ecore.WithDirectory(dir),
		e2ecore.WithKDFParams(fastKDF()),
	)
	if err != nil {
		t.Fatalf("NewSession bob: %v", err)
	}
	bobInfo, err := bob.Initialize()
	if err != nil {
		t.Fatalf("Initialize bob: %v", err)
	}
	dir.keys["bob"] = bobInfo.PublicKey

	if _, err := first.Encrypt(context.Background(), []byte("one"), "bob"); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// A new process over the same home continues the same conversation.
	second := open()
	env, err := second.Encrypt(context.Background(), []byte("two"), "bob")
	if err != nil {
		t.Fatalf("Encrypt from reopened session: %v", err)
	}
	if env.MessageIndex != 2 {
		t.Fatalf("MessageIndex = %d, want 2 after reopen", env.MessageIndex)
	}
}
