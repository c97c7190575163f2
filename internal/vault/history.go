package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/illarion/lockvault/internal/storage"
)

// HistoryPath returns the snapshot history path for a config file
func HistoryPath(path string) string {
	return path + ".history"
}

func withHistory(historyPath string, fn func(h *storage.History) error) (err error) {
	h, err := storage.Open(historyPath)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, h.Close())
	}()

	if err := h.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return fn(h)
}

// History lists the recorded versions of the config file at path, oldest
// first. It does not parse the config, so it works on a corrupt file.
func History(path string) ([]storage.Snapshot, error) {
	var snapshots []storage.Snapshot
	err := withHistory(HistoryPath(path), func(h *storage.History) error {
		var err error
		snapshots, err = h.List()
		return err
	})
	return snapshots, err
}

// SnapshotContent returns a recorded version. Seq 0 selects the latest.
func SnapshotContent(path string, seq uint64) (storage.Snapshot, []byte, error) {
	var (
		snap    storage.Snapshot
		content []byte
	)
	err := withHistory(HistoryPath(path), func(h *storage.History) error {
		snapshots, err := h.List()
		if err != nil {
			return err
		}
		found := false
		for _, s := range snapshots {
			if s.Seq == seq || (seq == 0 && s.Seq > snap.Seq) {
				snap, found = s, true
			}
		}
		if !found {
			if seq == 0 {
				return storage.ErrSnapshotNotFound
			}
			return fmt.Errorf("%w: %d", storage.ErrSnapshotNotFound, seq)
		}

		content, err = h.Content(snap.Seq)
		return err
	})
	return snap, content, err
}

// DiffSnapshot returns a unified diff from a recorded version to the
// current file. Seq 0 selects the latest.
func DiffSnapshot(path string, seq uint64) (string, error) {
	snap, old, err := SnapshotContent(path, seq)
	if err != nil {
		return "", err
	}

	current, err := readFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	return storage.UnifiedDiff(fmt.Sprintf("snapshot %d", snap.Seq), FileName, old, current), nil
}

// Restore replaces the config file with a recorded version. The version
// must parse as a valid config. The file being replaced is recorded first,
// so a restore can itself be undone.
func Restore(path string, seq uint64) (storage.Snapshot, error) {
	snap, content, err := SnapshotContent(path, seq)
	if err != nil {
		return storage.Snapshot{}, err
	}
	if _, err := parseConfig(content); err != nil {
		return storage.Snapshot{}, fmt.Errorf("snapshot %d is not a usable config: %w", snap.Seq, err)
	}

	current, err := readFile(path)
	switch {
	case err == nil:
		err = withHistory(HistoryPath(path), func(h *storage.History) error {
			_, err := h.Record(current, "restore")
			return err
		})
		if err != nil {
			return storage.Snapshot{}, fmt.Errorf("failed to record current config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		// Unreadable files cannot be kept, refuse to replace them
		return storage.Snapshot{}, err
	}

	if err := writeAtomic(path, content); err != nil {
		return storage.Snapshot{}, err
	}

	// Record again so the latest snapshot matches the file on disk
	err = withHistory(HistoryPath(path), func(h *storage.History) error {
		_, err := h.Record(content, fmt.Sprintf("restored-%d", snap.Seq))
		return err
	})
	return snap, err
}

// resetHistory drops every recorded version and starts over with the file
// as it is now. Earlier versions hold the store in plaintext or under a
// replaced password, so none of them may outlive a password change.
func (c *Config) resetHistory(reason string) {
	historyPath := c.HistoryPath()
	if err := os.Remove(historyPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.log.Error("cannot remove snapshot history", zap.String("history", historyPath), zap.Error(err))
		return
	}

	data, err := readFile(c.path)
	if err != nil {
		c.log.Warn("cannot read vault for snapshot", zap.Error(err))
		return
	}
	c.snapshot(data, reason)
}
