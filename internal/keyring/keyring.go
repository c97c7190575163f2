// Package keyring keeps vault passwords in the OS keyring, keyed by the
// vault id from vault_config.toml.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "lockvault"

var (
	ErrNoVaultID = errors.New("vault has no id")
	ErrNotFound  = keyring.ErrNotFound
)

// SavePassword stores a password in the OS keyring
func SavePassword(vaultID string, password []byte) error {
	if vaultID == "" {
		return ErrNoVaultID
	}
	if err := keyring.Set(serviceName, vaultID, string(password)); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(vaultID string) ([]byte, error) {
	if vaultID == "" {
		return nil, ErrNoVaultID
	}
	password, err := keyring.Get(serviceName, vaultID)
	if err != nil {
		return nil, err
	}
	return []byte(password), nil
}

// DeletePassword removes a password from the OS keyring
func DeletePassword(vaultID string) error {
	if vaultID == "" {
		return ErrNoVaultID
	}
	return keyring.Delete(serviceName, vaultID)
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(vaultID string) bool {
	if vaultID == "" {
		return false
	}
	_, err := keyring.Get(serviceName, vaultID)
	return err == nil
}
