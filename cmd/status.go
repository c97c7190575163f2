package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/illarion/lockvault/internal/git"
	"github.com/illarion/lockvault/internal/keyring"
	"github.com/illarion/lockvault/internal/vault"
)

// Status shows the current state of the vault. Does not require a password.
func Status() {
	path := vault.DefaultPath(logger)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Printf("No %s found in current directory\n", vault.FileName)
			fmt.Println("Run 'lockvault init' to create one")
			return
		}
		HandleError(err)
	}

	c := openVault()
	defer c.Close()

	meta := c.Metadata()
	general := c.GeneralSettings()

	fmt.Printf("Vault: %s\n", c.Path())
	if meta.VaultID != "" {
		fmt.Printf("  id:         %s\n", meta.VaultID)
	}
	if meta.Encrypted {
		kdf, cipher := meta.KDF, meta.Cipher
		if kdf == "" {
			kdf = "argon2id"
		}
		if cipher == "" {
			cipher = "aes-256-gcm"
		}
		fmt.Printf("  encryption: %s, %s\n", kdf, cipher)
	} else {
		fmt.Println("  encryption: none")
	}
	fmt.Printf("  state:      %s\n", c.State())

	if c.IsUnlocked() {
		entries, err := c.Entries()
		if err == nil {
			fmt.Printf("  entries:    %d\n", len(entries))
		}
	}

	if general.DBTimeout > 0 {
		fmt.Printf("  auto-lock:  %s\n", c.AutoLockAfter())
	} else {
		fmt.Println("  auto-lock:  never")
	}

	fmt.Println("\nFields:")
	for _, p := range general.PresetFields {
		fmt.Printf("  %d  %-12s %s\n", p.SlotID, p.Label, p.Kind)
	}

	if snapshots, err := vault.History(c.Path()); err == nil && len(snapshots) > 0 {
		latest := snapshots[len(snapshots)-1]
		fmt.Printf("\nHistory: %d snapshot(s), latest #%d at %s\n",
			len(snapshots), latest.Seq, latest.Taken.Local().Format("2006-01-02 15:04:05"))
	}

	if meta.Encrypted {
		if keyring.HasPassword(meta.VaultID) {
			fmt.Println("Password: stored in keyring")
		} else {
			fmt.Println("Password: not stored")
		}
	}

	fmt.Print(git.FormatGitStatus(git.CheckGitIntegration(c.Path(), c.HistoryPath(), meta.Encrypted)))
}
