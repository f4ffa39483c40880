// Package crypto implements the symmetric cipher used to protect the single
// piece of sensitive linkage data: the filer's user identifier inside the
// identity mapping store. Encrypting it — not just isolating it in a separate
// table — means a full dump of the mapping store reveals nothing without the
// out-of-band key.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"voisafe/backend/internal/apperr"
)

// Cipher performs AES-256-CBC encryption with a process-wide key injected at
// construction. The key is read-only after startup; concurrent calls need no
// locking because every encryption draws a fresh IV.
type Cipher struct {
	key []byte
}

// NewCipher builds a Cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: key must be 32 bytes, got %d", len(key))
	}
	return &Cipher{key: key}, nil
}

// Encrypt returns a self-describing blob in the form "ivhex:cipherhex".
// A fresh random IV is generated per call, so encrypting the same plaintext
// twice yields different blobs.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("crypto: creating cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("crypto: generating iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(encrypted), nil
}

// Decrypt parses the embedded IV and reverses Encrypt. Malformed blobs, a
// wrong key and corrupted data all surface as apperr.ErrDecryption — a typed
// error, never a panic.
func (c *Cipher) Decrypt(blob string) (string, error) {
	parts := strings.SplitN(blob, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("crypto: blob missing iv separator: %w", apperr.ErrDecryption)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("crypto: invalid iv: %w", apperr.ErrDecryption)
	}

	encrypted, err := hex.DecodeString(parts[1])
	if err != nil || len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("crypto: invalid ciphertext: %w", apperr.ErrDecryption)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("crypto: creating cipher: %w", apperr.ErrDecryption)
	}

	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(decrypted, encrypted)

	plaintext, err := pkcs7Unpad(decrypted, aes.BlockSize)
	if err != nil {
		// Bad padding usually means a wrong key or tampered data.
		return "", fmt.Errorf("crypto: %v: %w", err, apperr.ErrDecryption)
	}
	return string(plaintext), nil
}

// Hash returns the SHA-256 hex digest of data. One-way, for auxiliary
// integrity checks; never used for the identity link itself.
func Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padding], nil
}
