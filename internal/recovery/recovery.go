// Package recovery exports and restores the full keyring as an encrypted,
// portable blob.
//
// The blob is sealed under a recovery code, by default a generated BIP-39
// mnemonic shown to the user exactly once. The code is never persisted; a
// lost code makes the blob permanently useless, which is the point.
package recovery

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tyler-smith/go-bip39"

	"e2ecore/internal/crypto"
	"e2ecore/internal/domain"
	"e2ecore/internal/keystore"
	"e2ecore/internal/vault"
)

const (
	// blobMagic prefixes every backup blob so corruption and wrong-file
	// mistakes are caught before any key derivation runs.
	blobMagic = "E2EBAK1\n"

	// blobInfo is the associated data bound into the backup ciphertext.
	blobInfo = "e2ecore/backup/v1"

	// mnemonicEntropyBits sizes generated recovery codes at 12 words.
	mnemonicEntropyBits = 128
)

// Manager creates and restores keyring backups over a keystore.
type Manager struct {
	ks     *keystore.Store
	params crypto.KDFParams
	logger *slog.Logger
}

// New returns a backup manager over ks using the given KDF cost for sealing.
func New(ks *keystore.Store, params crypto.KDFParams, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{ks: ks, params: params, logger: logger}
}

// blobHeader is the outer, unencrypted structure of a backup blob. It carries
// everything Restore needs to re-derive the sealing key.
type blobHeader struct {
	Version  int    `json:"version"`
	Salt     []byte `json:"salt"`
	Time     uint32 `json:"time"`
	MemoryKB uint32 `json:"memory_kb"`
	Threads  uint8  `json:"threads"`
	Nonce    []byte `json:"nonce"`
	Sealed   []byte `json:"sealed"`
}

// payload is the encrypted inner structure: every key pair, private halves
// included.
type payload struct {
	CreatedAt time.Time     `json:"created_at"`
	Pairs     []payloadPair `json:"pairs"`
}

type payloadPair struct {
	Public      domain.X25519Public `json:"public_key"`
	Private     []byte              `json:"private_key"`
	DeviceLabel string              `json:"device_label"`
	CreatedAt   time.Time           `json:"created_at"`
	Active      bool                `json:"active"`
}

// Create serializes every key pair, historical ones included, and seals the
// result under code. An empty code generates a fresh mnemonic; a supplied
// code must meet the vault passphrase policy. The keystore must be unlocked.
func (m *Manager) Create(code string) (domain.Backup, error) {
	if code == "" {
		entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
		if err != nil {
			return domain.Backup{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
		}
		code, err = bip39.NewMnemonic(entropy)
		if err != nil {
			return domain.Backup{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
		}
	} else if !vault.SecurePassphrase(code) {
		return domain.Backup{}, domain.ErrWeakPassphrase
	}

	pairs, err := m.ks.UnlockedPairs()
	if err != nil {
		return domain.Backup{}, err
	}
	if len(pairs) == 0 {
		if m.ks.Locked() {
			return domain.Backup{}, domain.ErrLocked
		}
		return domain.Backup{}, domain.ErrNoKeysAvailable
	}

	now := time.Now().UTC()
	p := payload{CreatedAt: now, Pairs: make([]payloadPair, 0, len(pairs))}
	for i := range pairs {
		p.Pairs = append(p.Pairs, payloadPair{
			Public:      pairs[i].Public,
			Private:     pairs[i].Private.Slice(),
			DeviceLabel: pairs[i].DeviceLabel,
			CreatedAt:   pairs[i].CreatedAt,
			Active:      pairs[i].Active,
		})
	}
	plaintext, err := json.Marshal(p)
	if err != nil {
		return domain.Backup{}, err
	}
	defer crypto.Wipe(plaintext)

	salt, err := crypto.RandomSalt()
	if err != nil {
		return domain.Backup{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	kek := crypto.DeriveKEK(code, salt, m.params)
	defer crypto.Wipe(kek)

	nonce, ct, err := crypto.Seal(kek, plaintext, []byte(blobInfo))
	if err != nil {
		return domain.Backup{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}

	hdr := blobHeader{
		Version:  1,
		Salt:     salt,
		Time:     m.params.Time,
		MemoryKB: m.params.MemoryKB,
		Threads:  m.params.Threads,
		Nonce:    nonce,
		Sealed:   ct,
	}
	raw, err := json.Marshal(hdr)
	if err != nil {
		return domain.Backup{}, err
	}

	m.logger.Debug("backup created", "pairs", len(pairs))
	return domain.Backup{
		Code:      code,
		Blob:      blobMagic + base64.StdEncoding.EncodeToString(raw),
		CreatedAt: now,
	}, nil
}

// Restore decrypts blob with code and merges the contained key pairs into the
// keystore. Existing pairs are kept; the newest pair overall becomes active.
// Structural damage reports ErrCorruptBackup, a failed decryption
// ErrInvalidCode; the two are deliberately distinguishable because only one
// is worth retyping the code for.
func (m *Manager) Restore(code, blob string) error {
	body, ok := strings.CutPrefix(blob, blobMagic)
	if !ok {
		return domain.ErrCorruptBackup
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return domain.ErrCorruptBackup
	}
	var hdr blobHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return domain.ErrCorruptBackup
	}
	if hdr.Version != 1 || len(hdr.Salt) == 0 || len(hdr.Nonce) == 0 || len(hdr.Sealed) == 0 {
		return domain.ErrCorruptBackup
	}

	params := crypto.KDFParams{Time: hdr.Time, MemoryKB: hdr.MemoryKB, Threads: hdr.Threads}
	kek := crypto.DeriveKEK(code, hdr.Salt, params)
	defer crypto.Wipe(kek)

	plaintext, err := crypto.Open(kek, hdr.Nonce, hdr.Sealed, []byte(blobInfo))
	if err != nil {
		return domain.ErrInvalidCode
	}
	defer crypto.Wipe(plaintext)

	var p payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return domain.ErrCorruptBackup
	}

	restored := make([]domain.KeyPair, 0, len(p.Pairs))
	for _, pp := range p.Pairs {
		if len(pp.Private) != crypto.KeyBytes {
			return domain.ErrCorruptBackup
		}
		kp := domain.KeyPair{
			Public:      pp.Public,
			DeviceLabel: pp.DeviceLabel,
			CreatedAt:   pp.CreatedAt,
			Active:      pp.Active,
		}
		copy(kp.Private[:], pp.Private)
		crypto.Wipe(pp.Private)
		restored = append(restored, kp)
	}

	if err := m.ks.Merge(restored, true); err != nil {
		return err
	}
	m.logger.Debug("backup restored", "pairs", len(restored))
	return nil
}
