package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/keyring"
	"github.com/illarion/lockvault/internal/vault"
)

// KeyringSave saves the password to the OS keyring
func KeyringSave() {
	c := openVault()
	defer c.Close()

	if !c.Encrypted() {
		fmt.Fprintln(os.Stderr, "Error: vault is not encrypted")
		exit(1)
	}

	// Prompt for password
	password, err := vault.ReadPassword("Enter password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		exit(1)
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	if err := c.Unlock(password); err != nil {
		HandleError(err)
	}

	// Get vault ID (create if not exists)
	vaultID, err := c.EnsureVaultID()
	if err != nil {
		HandleError(err)
	}

	if err := keyring.SavePassword(vaultID, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete() {
	c := openVault()
	defer c.Close()

	if err := keyring.DeletePassword(c.VaultID()); err != nil {
		if errors.Is(err, keyring.ErrNotFound) || errors.Is(err, keyring.ErrNoVaultID) {
			fmt.Println("No password stored in keyring")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		exit(1)
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus() {
	c := openVault()
	defer c.Close()

	if keyring.HasPassword(c.VaultID()) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
