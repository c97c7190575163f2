package storage

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/multierr"
)

// Bucket names
var (
	MetaBucket  = []byte("meta")  // Format version, timestamps
	IndexBucket = []byte("index") // Snapshot descriptions, listable without loading content
	BlobsBucket = []byte("blobs") // Snapshot content (the config file as it was)
)

// Meta keys
var (
	MetaVersion  = []byte("version")
	MetaCreated  = []byte("created")
	MetaModified = []byte("modified")
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot describes one recorded version of the config file
type Snapshot struct {
	Seq      uint64    `json:"seq"`
	Taken    time.Time `json:"taken"`
	Size     int64     `json:"size"`
	Checksum string    `json:"checksum"`
	Reason   string    `json:"reason"`
}

// History is a bbolt journal of earlier config file contents
type History struct {
	db *bolt.DB
}

// Open opens or creates a history database
func Open(path string) (*History, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the database
func (h *History) Close() error {
	return h.db.Close()
}

// Initialize creates the bucket structure. It is safe to call on an
// initialized database.
func (h *History) Initialize() error {
	return h.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{MetaBucket, IndexBucket, BlobsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		meta := tx.Bucket(MetaBucket)
		if meta.Get(MetaVersion) != nil {
			return nil
		}
		if err := meta.Put(MetaVersion, []byte("1")); err != nil {
			return err
		}
		created, _ := time.Now().MarshalBinary()
		if err := meta.Put(MetaCreated, created); err != nil {
			return err
		}
		return meta.Put(MetaModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (h *History) IsInitialized() (bool, error) {
	var initialized bool
	err := h.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(MetaBucket)
		if meta != nil && meta.Get(MetaVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// GetModified retrieves the time of the last recorded snapshot
func (h *History) GetModified() (time.Time, error) {
	var modified time.Time
	err := h.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(MetaBucket)
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}
		data := meta.Get(MetaModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Checksum returns the hex SHA-256 of content
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Record stores content as a new snapshot. Content identical to the latest
// snapshot is not stored again; the latest snapshot is returned instead.
func (h *History) Record(content []byte, reason string) (Snapshot, error) {
	var snap Snapshot
	err := h.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		blobs := tx.Bucket(BlobsBucket)
		if index == nil || blobs == nil {
			return fmt.Errorf("history not initialized")
		}

		checksum := Checksum(content)
		if _, v := index.Cursor().Last(); v != nil {
			var last Snapshot
			if err := json.Unmarshal(v, &last); err != nil {
				return fmt.Errorf("corrupt snapshot index: %w", err)
			}
			if last.Checksum == checksum {
				snap = last
				return nil
			}
		}

		seq, err := index.NextSequence()
		if err != nil {
			return err
		}
		snap = Snapshot{
			Seq:      seq,
			Taken:    time.Now().UTC(),
			Size:     int64(len(content)),
			Checksum: checksum,
			Reason:   reason,
		}
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if err := index.Put(seqKey(seq), data); err != nil {
			return err
		}
		if err := blobs.Put(seqKey(seq), content); err != nil {
			return err
		}

		modified, _ := snap.Taken.MarshalBinary()
		return tx.Bucket(MetaBucket).Put(MetaModified, modified)
	})
	return snap, err
}

// List returns all snapshots, oldest first
func (h *History) List() ([]Snapshot, error) {
	var snapshots []Snapshot
	err := h.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return nil
		}
		return index.ForEach(func(k, v []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			snapshots = append(snapshots, snap)
			return nil
		})
	})
	return snapshots, err
}

// Latest returns the newest snapshot, or ErrSnapshotNotFound
func (h *History) Latest() (Snapshot, error) {
	var snap Snapshot
	err := h.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return ErrSnapshotNotFound
		}
		_, v := index.Cursor().Last()
		if v == nil {
			return ErrSnapshotNotFound
		}
		return json.Unmarshal(v, &snap)
	})
	return snap, err
}

// Content retrieves the stored content of a snapshot
func (h *History) Content(seq uint64) ([]byte, error) {
	var data []byte
	err := h.db.View(func(tx *bolt.Tx) error {
		blobs := tx.Bucket(BlobsBucket)
		if blobs == nil {
			return ErrSnapshotNotFound
		}
		data = blobs.Get(seqKey(seq))
		if data == nil {
			return fmt.Errorf("%w: %d", ErrSnapshotNotFound, seq)
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte(nil), data...)
		return nil
	})
	return data, err
}

// Prune removes all but the newest keep snapshots and returns how many
// were removed.
func (h *History) Prune(keep int) (int, error) {
	removed := 0
	err := h.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		blobs := tx.Bucket(BlobsBucket)
		if index == nil || blobs == nil {
			return nil
		}

		count := 0
		c := index.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			count++
		}
		excess := count - keep
		if excess <= 0 {
			return nil
		}

		var doomed [][]byte
		for k, _ := c.First(); k != nil && len(doomed) < excess; k, _ = c.Next() {
			doomed = append(doomed, append([]byte(nil), k...))
		}
		for _, k := range doomed {
			if err := index.Delete(k); err != nil {
				return err
			}
			if err := blobs.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Compact creates a compacted copy of the database, removing unused space.
// Pruning frees pages but does not shrink the file.
func (h *History) Compact() (err error) {
	srcPath := h.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = h.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				if err := dstBucket.SetSequence(srcBucket.Sequence()); err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		err = multierr.Append(err, dst.Close())
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := h.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	h.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
