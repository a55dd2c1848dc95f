package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const cryptSaltLen = 16
const cryptIterations = 100000

// EncryptBytes seals data with AES-GCM under a key derived from the
// passphrase. The salt and nonce are prepended to the ciphertext.
func EncryptBytes(data []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, cryptSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, cryptSaltLen+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// DecryptBytes inverts EncryptBytes.
func DecryptBytes(data []byte, passphrase string) ([]byte, error) {
	if len(data) < cryptSaltLen {
		return nil, errors.New("ciphertext too short")
	}
	salt, rest := data[:cryptSaltLen], data[cryptSaltLen:]
	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, cryptIterations, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
