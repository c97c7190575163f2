package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/keyring"
	"github.com/illarion/lockvault/internal/vault"
)

// Passwd changes the vault password, or sets one on an unencrypted vault
func Passwd() {
	c := openVault()
	defer c.Close()

	encrypted := c.Encrypted()
	current := unlockVault(c)
	defer crypto.ClearBytes(current)

	newPassword, err := vault.ReadPasswordConfirm("Enter new password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		exit(1)
	}
	defer crypto.ClearBytes(newPassword)

	if err := c.ChangePassword(current, newPassword); err != nil {
		HandleError(err)
	}

	// Always try to update keyring if vault ID exists
	if vaultID := c.VaultID(); vaultID != "" && keyring.HasPassword(vaultID) {
		if err := keyring.SavePassword(vaultID, newPassword); err == nil {
			fmt.Println("Keyring updated with new password")
		}
	}

	if encrypted {
		fmt.Println("password changed successfully")
	} else {
		fmt.Println("vault encrypted successfully")
	}
}
