package vault

import (
	"errors"
	"io/fs"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/storage"
)

// Save writes the settings and the store to the config file, re-encrypting
// the store with the session key when the vault is encrypted. A locked
// unencrypted vault rewrites its settings and keeps the stored entries.
func (c *Config) Save() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	meta := c.Metadata()
	if meta.Encrypted && c.State() != Unlocked {
		return ErrNotUnlocked
	}

	committed, err := c.write(meta, c.key, "save")
	if err != nil {
		return err
	}
	c.setMetadata(committed)
	return nil
}

// EnsureVaultID assigns a vault id to files written without one and
// returns it. Settings are rewritten even while locked; the stored blob is
// kept as is.
func (c *Config) EnsureVaultID() (string, error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	meta := c.Metadata()
	if meta.VaultID != "" {
		return meta.VaultID, nil
	}
	meta.VaultID = uuid.NewString()

	committed, err := c.write(meta, c.key, "vault-id")
	if err != nil {
		return "", err
	}
	c.setMetadata(committed)
	return committed.VaultID, nil
}

// write serializes the vault with meta and key and replaces the file. The
// store is only serialized while unlocked; otherwise meta.Cypher is written
// unchanged. It returns the metadata that is now on disk. Callers hold
// stateMu and saveMu.
func (c *Config) write(meta Metadata, key *crypto.SessionKey, reason string) (Metadata, error) {
	if c.State() == Unlocked {
		c.dbMu.RLock()
		payload, err := c.db.Serialize()
		c.dbMu.RUnlock()
		if err != nil {
			return Metadata{}, err
		}

		if meta.Encrypted {
			if !key.Valid() {
				return Metadata{}, ErrNotUnlocked
			}
			payload, err = crypto.EncryptString(payload, key.Bytes(), meta.cipher())
			if err != nil {
				return Metadata{}, err
			}
		}
		meta.Cypher = payload
	}

	c.generalMu.RLock()
	general := c.general.Clone()
	c.generalMu.RUnlock()

	data, err := encodeConfig(general, meta)
	if err != nil {
		return Metadata{}, err
	}

	if current, err := readFile(c.path); err == nil {
		c.snapshot(current, "before-"+reason)
	} else if !errors.Is(err, fs.ErrNotExist) {
		c.log.Warn("cannot read vault for snapshot", zap.Error(err))
	}

	if err := replaceFile(c.path, data); err != nil {
		c.log.Error("failed to save vault", zap.String("path", c.path), zap.Error(err))
		return Metadata{}, err
	}
	c.snapshot(data, reason)

	c.log.Info("vault saved", zap.String("path", c.path), zap.String("reason", reason))
	return meta, nil
}

// snapshot records a version of the file in the history. The file is
// recorded before and after each write, so both external edits and every
// saved version can be restored. Failures are logged and never block a save.
func (c *Config) snapshot(content []byte, reason string) {
	if c.historyKeep == 0 {
		return
	}

	err := withHistory(c.HistoryPath(), func(h *storage.History) error {
		if _, err := h.Record(content, reason); err != nil {
			return err
		}
		_, err := h.Prune(c.historyKeep)
		return err
	})
	if err != nil {
		c.log.Warn("failed to record snapshot", zap.String("history", c.HistoryPath()), zap.Error(err))
	}
}
