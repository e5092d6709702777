// Package sealed encrypts the free-text ticket fields (topic and close reason) before they are stored.
//
// Ciphertext is XChaCha20-Poly1305 with a random nonce, base64 encoded so it can be stored in a string field.
package sealed

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// keyInfo binds derived keys to this use.
const keyInfo = "tickets sealed text v1"

var (
	// ErrNoKey is returned when an empty secret is provided.
	ErrNoKey = errors.New("no encryption key provided")

	// ErrCiphertextTooShort is returned when the ciphertext cannot contain a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Box encrypts and decrypts text with a key derived from a secret.
type Box struct {
	key []byte
}

// New derives a key from secret and returns a Box using it.
func New(secret string) (*Box, error) {
	if secret == "" {
		return nil, ErrNoKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("error deriving key: %w", err)
	}

	return &Box{key: key}, nil
}

// Encrypt seals plaintext and returns it base64 encoded.
func (b *Box) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", fmt.Errorf("error creating cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("error generating nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (b *Box) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("error decoding ciphertext: %w", err)
	}

	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", fmt.Errorf("error creating cipher: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", ErrCiphertextTooShort
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("error decrypting: %w", err)
	}
	return string(plaintext), nil
}
