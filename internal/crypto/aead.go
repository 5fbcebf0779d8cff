package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeyBytes is the size of every symmetric key in the core.
	KeyBytes = chacha20poly1305.KeySize
	// NonceBytes is the XChaCha20-Poly1305 nonce size.
	NonceBytes = chacha20poly1305.NonceSizeX
	// SaltBytes is the KDF salt size.
	SaltBytes = 16
)

// Seal encrypts plaintext under key with a fresh random nonce and returns
// both. ad binds associated data into the authentication tag.
func Seal(key, plaintext, ad []byte) (nonce, ciphertext []byte, err error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, NonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return nonce, aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts ciphertext sealed by Seal. Any tampering of nonce,
// ciphertext or ad fails authentication.
func Open(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, ad)
}

// RandomKey returns a fresh 32-byte symmetric key.
func RandomKey() ([32]byte, error) {
	var k [32]byte
	_, err := rand.Read(k[:])
	return k, err
}

// RandomSalt returns a fresh KDF salt.
func RandomSalt() ([]byte, error) {
	salt := make([]byte, SaltBytes)
	_, err := rand.Read(salt)
	return salt, err
}
