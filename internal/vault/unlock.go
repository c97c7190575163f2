package vault

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/secrets"
)

// Unlock derives the session key from password and decrypts the store.
// Unencrypted vaults ignore password. On failure the vault stays locked
// and the live store is not touched.
func (c *Config) Unlock(password []byte) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.State() == Unlocked {
		return ErrAlreadyUnlocked
	}
	c.state.Store(int32(Unlocking))

	meta := c.Metadata()
	db, key, err := openStore(meta, password)
	if err != nil {
		c.state.Store(int32(Locked))
		c.log.Warn("unlock failed", zap.String("path", c.path), zap.Error(err))
		return err
	}

	c.dbMu.Lock()
	c.db = db
	c.state.Store(int32(Unlocked))
	c.dbMu.Unlock()
	c.key = key

	c.log.Info("vault unlocked", zap.String("path", c.path), zap.Int("entries", db.Len()))
	return nil
}

// openStore turns the stored blob into a store. The returned key is nil for
// unencrypted vaults.
func openStore(meta Metadata, password []byte) (*secrets.Db, *crypto.SessionKey, error) {
	if !meta.Encrypted {
		db, err := secrets.Load(meta.Cypher)
		return db, nil, err
	}

	kdf := meta.kdf()
	key, err := kdf.DeriveKey(password)
	if err != nil {
		return nil, nil, err
	}
	defer crypto.ClearBytes(key)

	plaintext, err := crypto.DecryptString(meta.Cypher, key, meta.cipher())
	if err != nil {
		if errors.Is(err, crypto.ErrDecryption) {
			return nil, nil, ErrWrongPassword
		}
		return nil, nil, fmt.Errorf("failed to decrypt vault: %w", err)
	}

	db, err := secrets.Load(plaintext)
	if err != nil {
		return nil, nil, err
	}

	sk, err := crypto.NewSessionKey(append([]byte(nil), key...))
	if err != nil {
		return nil, nil, err
	}
	return db, sk, nil
}

// Lock destroys the session key and purges the decrypted store. Unsaved
// changes are lost.
func (c *Config) Lock() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	wasUnlocked := c.State() == Unlocked

	c.dbMu.Lock()
	c.state.Store(int32(Locked))
	c.db = secrets.New()
	c.dbMu.Unlock()

	c.key.Destroy()
	c.key = nil

	if wasUnlocked {
		c.log.Info("vault locked", zap.String("path", c.path))
	}
}

// ChangePassword re-encrypts the vault under next with a fresh salt and
// saves it. For an encrypted vault current must be the password in use.
// An unencrypted vault becomes encrypted and current is ignored.
// If saving fails the vault keeps its previous password. On success the
// snapshot history is cleared.
func (c *Config) ChangePassword(current, next []byte) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	if c.State() != Unlocked {
		return ErrNotUnlocked
	}
	if len(next) == 0 {
		return ErrPasswordRequired
	}

	meta := c.Metadata()
	if meta.Encrypted {
		kdf := meta.kdf()
		key, err := kdf.DeriveKey(current)
		if err != nil {
			return err
		}
		ok := c.key.Equal(key)
		crypto.ClearBytes(key)
		if !ok {
			return ErrWrongPassword
		}
	}

	kdf, err := crypto.NewKDF()
	if err != nil {
		return err
	}
	newKey, err := kdf.DeriveKey(next)
	if err != nil {
		return err
	}
	sk, err := crypto.NewSessionKey(newKey)
	if err != nil {
		return err
	}

	meta.Encrypted = true
	meta.Salt = kdf.Salt
	meta.KDF = string(kdf.Algorithm)

	committed, err := c.write(meta, sk, "passwd")
	if err != nil {
		sk.Destroy()
		return err
	}

	c.setMetadata(committed)
	c.key.Destroy()
	c.key = sk
	c.resetHistory("passwd")

	c.log.Info("vault password changed", zap.String("path", c.path))
	return nil
}
