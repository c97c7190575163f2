package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/vault"
)

// Init creates vault_config.toml in the current directory and, unless plain
// is set, encrypts it with a new password
func Init(plain bool) {
	path := vault.DefaultPath(logger)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists in this directory\n", vault.FileName)
		fmt.Fprintf(os.Stderr, "Use 'lockvault status' to see current state\n")
		exit(1)
	} else if !errors.Is(err, fs.ErrNotExist) {
		HandleError(err)
	}

	c := openVault()
	defer c.Close()

	if plain {
		fmt.Printf("created unencrypted vault: %s\n", c.Path())
		fmt.Println("Run 'lockvault passwd' to encrypt it")
		return
	}

	password, err := GetNewPassword("Enter new password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	if err := c.ChangePassword(nil, password); err != nil {
		HandleError(err)
	}

	fmt.Printf("created encrypted vault: %s\n", c.Path())
	fmt.Println("The password is not stored anywhere - you must remember it.")
}
