package store_test

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"e2ecore/internal/domain"
	"e2ecore/internal/store"
)

func testPair(t *testing.T, active bool) domain.KeyPair {
	t.Helper()
	p := domain.KeyPair{
		DeviceLabel: "laptop",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Active:      active,
	}
	if _, err := rand.Read(p.Public[:]); err != nil {
		t.Fatalf("rand: %v", err)
	}
	if _, err := rand.Read(p.Private[:]); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return p
}

func TestKeyring_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := store.NewFileKeyringStore(dir)

	ring := domain.Keyring{
		Identity: "alice",
		Pairs:    []domain.KeyPair{testPair(t, true), testPair(t, false)},
	}
	if err := s.SaveKeyring(ring); err != nil {
		t.Fatalf("SaveKeyring: %v", err)
	}

	got, found, err := s.LoadKeyring("alice")
	if err != nil || !found {
		t.Fatalf("LoadKeyring: found=%v err=%v", found, err)
	}
	if len(got.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(got.Pairs))
	}
	for i := range ring.Pairs {
		if got.Pairs[i].Public != ring.Pairs[i].Public {
			t.Fatalf("pair %d: public key changed", i)
		}
		if got.Pairs[i].Private != ring.Pairs[i].Private {
			t.Fatalf("pair %d: private key changed", i)
		}
		if got.Pairs[i].Locked {
			t.Fatalf("pair %d: plaintext pair loaded as locked", i)
		}
	}
	if !got.Pairs[0].Active || got.Pairs[1].Active {
		t.Fatal("active flags changed")
	}
}

func TestKeyring_SealedPairsLoadLocked(t *testing.T) {
	dir := t.TempDir()
	s := store.NewFileKeyringStore(dir)

	p := testPair(t, true)
	p.Sealed = []byte("opaque sealed bytes")
	ring := domain.Keyring{
		Identity: "alice",
		Vault:    domain.VaultHeader{Set: true, Salt: []byte("salt"), Time: 1, MemoryKB: 8, Threads: 1},
		Pairs:    []domain.KeyPair{p},
	}
	if err := s.SaveKeyring(ring); err != nil {
		t.Fatalf("SaveKeyring: %v", err)
	}

	got, found, err := s.LoadKeyring("alice")
	if err != nil || !found {
		t.Fatalf("LoadKeyring: found=%v err=%v", found, err)
	}
	if !got.Vault.Set {
		t.Fatal("vault header lost")
	}
	if !got.Pairs[0].Locked || got.Pairs[0].HasPrivate() {
		t.Fatal("sealed pair must load locked with a zero private half")
	}
	if string(got.Pairs[0].Sealed) != "opaque sealed bytes" {
		t.Fatal("sealed blob changed")
	}
}

func TestKeyring_RefusesPlaintextOnceVaultSet(t *testing.T) {
	s := store.NewFileKeyringStore(t.TempDir())

	ring := domain.Keyring{
		Identity: "alice",
		Vault:    domain.VaultHeader{Set: true},
		Pairs:    []domain.KeyPair{testPair(t, true)}, // no Sealed
	}
	if err := s.SaveKeyring(ring); err == nil {
		t.Fatal("plaintext private half must be refused once the vault is set")
	}
}

func TestKeyring_PlaintextNeverOnDiskWhenSealed(t *testing.T) {
	dir := t.TempDir()
	s := store.NewFileKeyringStore(dir)

	p := testPair(t, true)
	p.Sealed = []byte("sealed")
	ring := domain.Keyring{
		Identity: "alice",
		Vault:    domain.VaultHeader{Set: true},
		Pairs:    []domain.KeyPair{p},
	}
	if err := s.SaveKeyring(ring); err != nil {
		t.Fatalf("SaveKeyring: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "keyring.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(raw), "plain_private") {
		t.Fatal("sealed keyring file carries a plaintext private field")
	}
}

func TestKeyring_OtherIdentityInvisible(t *testing.T) {
	s := store.NewFileKeyringStore(t.TempDir())

	if err := s.SaveKeyring(domain.Keyring{Identity: "alice", Pairs: []domain.KeyPair{testPair(t, true)}}); err != nil {
		t.Fatalf("SaveKeyring: %v", err)
	}
	_, found, err := s.LoadKeyring("mallory")
	if err != nil {
		t.Fatalf("LoadKeyring: %v", err)
	}
	if found {
		t.Fatal("another identity's keyring must not be visible")
	}
}

func TestKeyring_MissingFile(t *testing.T) {
	s := store.NewFileKeyringStore(t.TempDir())
	_, found, err := s.LoadKeyring("alice")
	if err != nil {
		t.Fatalf("LoadKeyring: %v", err)
	}
	if found {
		t.Fatal("missing file must report not found")
	}
}

func TestFileSessionStore_RoundTrip(t *testing.T) {
	s := store.NewFileSessionStore(t.TempDir())

	st := domain.SessionState{
		Peer:      "bob",
		SendIndex: 7,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	rs := st.ReceiveFor(domain.X25519Public{1, 2})
	rs.Mark(3)
	rs.Mark(5)

	if err := s.SaveSession(st); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, found, err := s.LoadSession("bob")
	if err != nil || !found {
		t.Fatalf("LoadSession: found=%v err=%v", found, err)
	}
	if got.SendIndex != 7 {
		t.Fatalf("SendIndex = %d, want 7", got.SendIndex)
	}
	back := got.ReceiveFor(domain.X25519Public{1, 2})
	if back.HighWater != 6 || !back.Observed(3) {
		t.Fatalf("receive state lost: %+v", back)
	}
}

func TestFileSessionStore_MultiplePeers(t *testing.T) {
	s := store.NewFileSessionStore(t.TempDir())

	for i, peer := range []domain.IdentityID{"bob", "carol"} {
		if err := s.SaveSession(domain.SessionState{Peer: peer, SendIndex: uint64(i + 1)}); err != nil {
			t.Fatalf("SaveSession %s: %v", peer, err)
		}
	}
	bob, found, err := s.LoadSession("bob")
	if err != nil || !found || bob.SendIndex != 1 {
		t.Fatalf("bob: found=%v err=%v state=%+v", found, err, bob)
	}
	carol, found, err := s.LoadSession("carol")
	if err != nil || !found || carol.SendIndex != 2 {
		t.Fatalf("carol: found=%v err=%v state=%+v", found, err, carol)
	}
}
