package utils

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plain := []byte("the quick brown fox")
	sealed, err := EncryptBytes(plain, "passphrase")
	if err != nil {
		t.Fatalf("EncryptBytes: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Fatal("ciphertext contains the plaintext")
	}
	out, err := DecryptBytes(sealed, "passphrase")
	if err != nil {
		t.Fatalf("DecryptBytes: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("round trip changed data: got %q", out)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := EncryptBytes([]byte("data"), "right")
	if err != nil {
		t.Fatalf("EncryptBytes: %v", err)
	}
	if _, err := DecryptBytes(sealed, "wrong"); err == nil {
		t.Fatal("wrong passphrase decrypted successfully")
	}
}

func TestDecryptTruncated(t *testing.T) {
	if _, err := DecryptBytes([]byte("short"), "x"); err == nil {
		t.Fatal("truncated ciphertext decrypted successfully")
	}
}
