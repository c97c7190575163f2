package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/awnumar/memguard"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/keyring"
	"github.com/illarion/lockvault/internal/secrets"
	"github.com/illarion/lockvault/internal/storage"
	"github.com/illarion/lockvault/internal/vault"
)

// EnvLog selects the log level of the CLI (debug, info, warn, error)
const EnvLog = "LOCKVAULT_LOG"

var logger = zap.NewNop()

// exit wipes every memguard buffer, the session key included, before the
// process ends. Deferred Close calls do not run on exit.
var exit = memguard.SafeExit

// NewLogger builds a console logger on stderr at the level named by
// LOCKVAULT_LOG, warn by default
func NewLogger() *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if name := os.Getenv(EnvLog); name != "" {
		if parsed, err := zap.ParseAtomicLevel(name); err == nil {
			level = parsed
		} else {
			fmt.Fprintf(os.Stderr, "warning: invalid %s %q, using warn\n", EnvLog, name)
		}
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// SetLogger sets the logger used by all commands
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// openVault opens vault_config.toml in the working directory
func openVault() *vault.Config {
	c, err := vault.Open(vault.WithLogger(logger))
	if err != nil {
		HandleError(err)
	}
	return c
}

// passwordSource tells where a password came from
type passwordSource int

const (
	sourceEnv passwordSource = iota
	sourceKeyring
	sourcePrompt
)

// GetPassword retrieves password from environment, keyring or prompts user.
// The caller is responsible for calling crypto.ClearBytes on the returned password
func GetPassword(prompt, vaultID string) ([]byte, passwordSource, error) {
	// Try environment variable first
	if password := vault.PasswordFromEnv(); password != nil {
		return password, sourceEnv, nil
	}

	if password, err := keyring.GetPassword(vaultID); err == nil {
		return password, sourceKeyring, nil
	}

	if !vault.IsTerminal() {
		return nil, sourcePrompt, fmt.Errorf("no terminal to read the password from, set %s", vault.EnvPassword)
	}
	password, err := vault.ReadPassword(prompt)
	if err != nil {
		return nil, sourcePrompt, err
	}
	return password, sourcePrompt, nil
}

// GetNewPassword retrieves a new password from environment or prompts
// twice for confirmation
func GetNewPassword(prompt string) ([]byte, error) {
	if password := vault.PasswordFromEnv(); password != nil {
		return password, nil
	}
	return vault.ReadPasswordConfirm(prompt)
}

// unlockVault unlocks c or exits. Returns the password that worked; it is
// nil for an unencrypted vault.
func unlockVault(c *vault.Config) []byte {
	password, err := tryUnlock(c)
	if err != nil {
		HandleError(err)
	}
	return password
}

// tryUnlock unlocks c, falling back to a prompt when the keyring holds a
// stale password
func tryUnlock(c *vault.Config) ([]byte, error) {
	if c.IsUnlocked() {
		return nil, nil
	}
	if !c.Encrypted() {
		return nil, c.Unlock(nil)
	}

	password, source, err := GetPassword("Enter password: ", c.VaultID())
	if err != nil {
		return nil, err
	}

	err = c.Unlock(password)
	if errors.Is(err, vault.ErrWrongPassword) && source == sourceKeyring {
		crypto.ClearBytes(password)
		fmt.Fprintln(os.Stderr, "warning: password stored in keyring is outdated")
		password, err = vault.ReadPassword("Enter password: ")
		if err != nil {
			return nil, err
		}
		source = sourcePrompt
		err = c.Unlock(password)
	}
	if err != nil {
		crypto.ClearBytes(password)
		return nil, err
	}

	if source == sourcePrompt && c.VaultID() != "" && !keyring.HasPassword(c.VaultID()) {
		fmt.Fprintln(os.Stderr, "Tip: run 'lockvault keyring save' to skip this prompt")
	}
	return password, nil
}

// saveVault saves c and exits on failure
func saveVault(c *vault.Config) {
	if err := c.Save(); err != nil {
		HandleError(err)
	}
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, vault.ErrConfigParse):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "The file was left untouched. Use 'lockvault history' and 'lockvault restore <seq>' to recover an earlier version\n")
	case errors.Is(err, vault.ErrConfigWrite):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, vault.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, vault.ErrDerivation):
		fmt.Fprintf(os.Stderr, "Error: cannot derive key, the stored salt is invalid\n")
	case errors.Is(err, vault.ErrMalformedStore):
		fmt.Fprintf(os.Stderr, "Error: vault contents are damaged: %s\n", err)
	case errors.Is(err, vault.ErrNotUnlocked):
		fmt.Fprintf(os.Stderr, "Error: vault is locked\n")
	case errors.Is(err, secrets.ErrEntryNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'lockvault ls' to list entries\n")
	case errors.Is(err, storage.ErrSnapshotNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'lockvault history' to list snapshots\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	exit(1)
}

// formatSize formats bytes into human-readable format
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// shortID returns the first block of an entry id
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
