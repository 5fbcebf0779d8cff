package attachment_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"e2ecore/internal/attachment"
	"e2ecore/internal/domain"
)

func TestEncryptDecrypt_LargeFile(t *testing.T) {
	data := make([]byte, 2<<20)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}

	ef, err := attachment.EncryptFile(data)
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}
	if bytes.Contains(ef.Ciphertext, data[:64]) {
		t.Fatal("ciphertext leaks plaintext")
	}

	got, err := attachment.DecryptFile(ef.Ciphertext, ef.Key)
	if err != nil {
		t.Fatalf("DecryptFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("round trip mismatch")
	}
}

func TestEncryptFile_FreshKeyPerFile(t *testing.T) {
	a, err := attachment.EncryptFile([]byte("same bytes"))
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}
	b, err := attachment.EncryptFile([]byte("same bytes"))
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}
	if a.Key.Key == b.Key.Key {
		t.Fatal("one-time key reused across files")
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Fatal("identical ciphertext for independent encryptions")
	}
}

func TestDecryptFile_Tamper(t *testing.T) {
	ef, err := attachment.EncryptFile([]byte("contract.pdf bytes"))
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	bad := append([]byte(nil), ef.Ciphertext...)
	bad[len(bad)/2] ^= 0x01
	if _, err := attachment.DecryptFile(bad, ef.Key); !errors.Is(err, domain.ErrCryptoFailure) {
		t.Fatalf("want ErrCryptoFailure, got %v", err)
	}

	wrongKey := ef.Key
	wrongKey.Key[0] ^= 0x01
	if _, err := attachment.DecryptFile(ef.Ciphertext, wrongKey); !errors.Is(err, domain.ErrCryptoFailure) {
		t.Fatalf("wrong key: want ErrCryptoFailure, got %v", err)
	}
}

func TestFileKey_WireRoundTrip(t *testing.T) {
	ef, err := attachment.EncryptFile([]byte("payload"))
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	wire, err := attachment.MarshalFileKey(ef.Key)
	if err != nil {
		t.Fatalf("MarshalFileKey: %v", err)
	}
	back, err := attachment.UnmarshalFileKey(wire)
	if err != nil {
		t.Fatalf("UnmarshalFileKey: %v", err)
	}
	if back.Key != ef.Key.Key || !bytes.Equal(back.Nonce, ef.Key.Nonce) {
		t.Fatal("file key changed across the wire")
	}
}

func TestUnmarshalFileKey_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"{",
		`{"key": "zzz", "iv": "zzz"}`,
		`{"key": "QUJD", "iv": "QUJD"}`, // wrong lengths
	} {
		if _, err := attachment.UnmarshalFileKey([]byte(raw)); !errors.Is(err, domain.ErrCryptoFailure) {
			t.Fatalf("%q: want ErrCryptoFailure, got %v", raw, err)
		}
	}
}
