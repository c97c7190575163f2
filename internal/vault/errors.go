package vault

import (
	"errors"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/secrets"
)

var (
	ErrConfigParse      = errors.New("invalid vault config")
	ErrConfigWrite      = errors.New("failed to write vault config")
	ErrConfigRead       = errors.New("failed to read vault config")
	ErrWrongPassword    = errors.New("wrong password")
	ErrPasswordRequired = errors.New("password required")
	ErrNotUnlocked      = errors.New("vault is locked")
	ErrAlreadyUnlocked  = errors.New("vault is already unlocked")

	// ErrDerivation reports a salt that cannot be used for key derivation.
	ErrDerivation = crypto.ErrDerivation
	// ErrMalformedStore reports a decrypted payload that is not a valid
	// secrets store.
	ErrMalformedStore = secrets.ErrMalformed
)
