package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrDecryption        = errors.New("decryption failed")
	ErrInvalidCiphertext = fmt.Errorf("%w: invalid ciphertext", ErrDecryption)
	ErrAuthFailed        = fmt.Errorf("%w: authentication failed", ErrDecryption)
	ErrInvalidKey        = errors.New("invalid key size")
)

// Cipher names an AEAD construction.
type Cipher string

const (
	AES256GCM         Cipher = "aes-256-gcm"
	XChaCha20Poly1305 Cipher = "xchacha20-poly1305"
)

// ParseCipher maps a stored cipher name to a Cipher.
// An empty name selects AES-256-GCM.
func ParseCipher(name string) (Cipher, error) {
	switch Cipher(name) {
	case "", AES256GCM:
		return AES256GCM, nil
	case XChaCha20Poly1305:
		return XChaCha20Poly1305, nil
	default:
		return "", fmt.Errorf("unknown cipher %q", name)
	}
}

func (c Cipher) newAEAD(key []byte) (cipher.AEAD, error) {
	switch c {
	case XChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create XChaCha20-Poly1305: %w", err)
		}
		return aead, nil
	case AES256GCM, "":
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create cipher: %w", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCM: %w", err)
		}
		return gcm, nil
	default:
		return nil, fmt.Errorf("unknown cipher %q", string(c))
	}
}

// Encryptor provides authenticated encryption
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates a new encryptor with the given key.
// The key is not retained past the cipher setup.
func NewEncryptor(key []byte, c Cipher) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := c.newAEAD(key)
	if err != nil {
		return nil, err
	}
	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns
// nonce || ciphertext || tag.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce, err := GenerateRandom(e.aead.NonceSize())
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens data produced by Encrypt.
func (e *Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(ciphertext) < nonceSize+e.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// EncryptString encrypts plaintext and returns it base64 encoded.
func EncryptString(plaintext string, key []byte, c Cipher) (string, error) {
	enc, err := NewEncryptor(key, c)
	if err != nil {
		return "", err
	}

	data := []byte(plaintext)
	defer ClearBytes(data)

	sealed, err := enc.Encrypt(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString. Every failure caused by the key or
// the ciphertext matches ErrDecryption.
func DecryptString(ciphertext string, key []byte, c Cipher) (string, error) {
	enc, err := NewEncryptor(key, c)
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := enc.Decrypt(sealed)
	if err != nil {
		return "", err
	}
	defer ClearBytes(plaintext)

	return string(plaintext), nil
}
