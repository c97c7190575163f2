package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/awnumar/memguard"
)

// SessionKey holds the derived key of an unlocked vault in a locked,
// guarded memory region.
type SessionKey struct {
	buf *memguard.LockedBuffer
}

// NewSessionKey moves key into protected memory. The source slice is wiped
// in every case, including errors.
func NewSessionKey(key []byte) (*SessionKey, error) {
	if len(key) != KeySize {
		ClearBytes(key)
		return nil, ErrInvalidKey
	}

	buf := memguard.NewBufferFromBytes(key)
	buf.Freeze()
	return &SessionKey{buf: buf}, nil
}

// Valid reports whether the key has not been destroyed.
func (k *SessionKey) Valid() bool {
	return k != nil && k.buf != nil && k.buf.IsAlive()
}

// Bytes returns the key material. The slice aliases protected memory and
// becomes invalid after Destroy.
func (k *SessionKey) Bytes() []byte {
	if !k.Valid() {
		return nil
	}
	return k.buf.Bytes()
}

// Equal compares the key with other in constant time.
func (k *SessionKey) Equal(other []byte) bool {
	if !k.Valid() {
		return false
	}
	return k.buf.EqualTo(other)
}

// Destroy wipes the key and releases its memory
func (k *SessionKey) Destroy() {
	if k == nil || k.buf == nil {
		return
	}
	k.buf.Destroy()
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	memguard.WipeBytes(b)
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
