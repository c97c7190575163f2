package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize      = 16     // Random salt size in bytes
	KeySize       = 32     // Derived key size (AES-256, XChaCha20)
	MinSaltLength = 4      // Minimum encoded salt length
	MaxSaltLength = 128    // Maximum encoded salt length
	PBKDF2Iters   = 210000 // PBKDF2 iterations (OWASP minimum)

	argonTime    = 3         // Number of passes
	argonMemory  = 64 * 1024 // Memory in KiB (64 MB)
	argonThreads = 4
)

// ErrDerivation is returned when a key cannot be derived from the password
// and salt, most often because the stored salt is not valid base64.
var ErrDerivation = errors.New("key derivation failed")

// Algorithm names a password-based key derivation function.
type Algorithm string

const (
	Argon2id     Algorithm = "argon2id"
	PBKDF2SHA256 Algorithm = "pbkdf2-sha256"
)

// ParseAlgorithm maps a stored KDF name to an Algorithm.
// An empty name selects Argon2id.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "", Argon2id:
		return Argon2id, nil
	case PBKDF2SHA256:
		return PBKDF2SHA256, nil
	default:
		return "", fmt.Errorf("%w: unknown algorithm %q", ErrDerivation, name)
	}
}

// KDF handles key derivation from passwords
type KDF struct {
	Algorithm Algorithm
	Salt      string
}

// NewKDF creates a new Argon2id KDF with a random salt
func NewKDF() (*KDF, error) {
	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	return &KDF{
		Algorithm: Argon2id,
		Salt:      salt,
	}, nil
}

// DeriveKey derives an encryption key from a password.
// The caller owns the returned key and should clear it when done.
func (k *KDF) DeriveKey(password []byte) ([]byte, error) {
	alg, err := ParseAlgorithm(string(k.Algorithm))
	if err != nil {
		return nil, err
	}

	salt, err := DecodeSalt(k.Salt)
	if err != nil {
		return nil, err
	}
	defer ClearBytes(salt)

	switch alg {
	case PBKDF2SHA256:
		return pbkdf2.Key(password, salt, PBKDF2Iters, KeySize, sha256.New), nil
	default:
		return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeySize), nil
	}
}

// DeriveKey derives a 32-byte key from password and an encoded salt using
// Argon2id.
func DeriveKey(password []byte, salt string) ([]byte, error) {
	kdf := KDF{Algorithm: Argon2id, Salt: salt}
	return kdf.DeriveKey(password)
}

// NewSalt generates a random salt in its stored (base64) form.
func NewSalt() (string, error) {
	raw, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(raw), nil
}

// DecodeSalt decodes a stored salt. Padding is optional.
func DecodeSalt(salt string) ([]byte, error) {
	if len(salt) < MinSaltLength || len(salt) > MaxSaltLength {
		return nil, fmt.Errorf("%w: salt must be %d to %d characters", ErrDerivation, MinSaltLength, MaxSaltLength)
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(salt, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed salt encoding", ErrDerivation)
	}
	return raw, nil
}
