// Package attachment encrypts file payloads under one-time keys.
//
// Each file gets its own random key; the key travels to the recipient wrapped
// inside an ordinary message envelope, so attachment ciphertext can sit on
// any untrusted store. Functions here are pure; session wiring lives in the
// facade.
package attachment

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"e2ecore/internal/crypto"
	"e2ecore/internal/domain"
)

// fileInfo is the associated data bound into every attachment ciphertext.
const fileInfo = "e2ecore/attachment/v1"

// EncryptFile seals data under a fresh one-time key and returns both. The key
// is never reused across files.
func EncryptFile(data []byte) (domain.EncryptedFile, error) {
	key, err := crypto.RandomKey()
	if err != nil {
		return domain.EncryptedFile{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	nonce, ct, err := crypto.Seal(key[:], data, []byte(fileInfo))
	if err != nil {
		return domain.EncryptedFile{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	return domain.EncryptedFile{
		Ciphertext: ct,
		Key:        domain.FileKey{Key: key, Nonce: nonce},
	}, nil
}

// DecryptFile opens an attachment with its unwrapped one-time key. Tampered
// ciphertext reports ErrCryptoFailure.
func DecryptFile(ciphertext []byte, key domain.FileKey) ([]byte, error) {
	pt, err := crypto.Open(key.Key[:], key.Nonce, ciphertext, []byte(fileInfo))
	if err != nil {
		return nil, fmt.Errorf("%w: attachment authentication failed", domain.ErrCryptoFailure)
	}
	return pt, nil
}

// keyEnvelope is the wire form of a FileKey inside a wrapped message.
type keyEnvelope struct {
	Key   string `json:"key"`
	Nonce string `json:"iv"`
}

// MarshalFileKey serializes a FileKey for wrapping inside a message envelope.
func MarshalFileKey(k domain.FileKey) ([]byte, error) {
	return json.Marshal(keyEnvelope{
		Key:   base64.StdEncoding.EncodeToString(k.Key[:]),
		Nonce: base64.StdEncoding.EncodeToString(k.Nonce),
	})
}

// UnmarshalFileKey parses a wrapped key payload back into a FileKey.
func UnmarshalFileKey(data []byte) (domain.FileKey, error) {
	var env keyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.FileKey{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	rawKey, err := base64.StdEncoding.DecodeString(env.Key)
	if err != nil || len(rawKey) != crypto.KeyBytes {
		return domain.FileKey{}, fmt.Errorf("%w: malformed file key", domain.ErrCryptoFailure)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != crypto.NonceBytes {
		return domain.FileKey{}, fmt.Errorf("%w: malformed file nonce", domain.ErrCryptoFailure)
	}
	var k domain.FileKey
	copy(k.Key[:], rawKey)
	crypto.Wipe(rawKey)
	k.Nonce = nonce
	return k, nil
}
