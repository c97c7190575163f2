package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/secrets"
)

// DefaultHistoryKeep is the number of earlier file versions kept in the
// snapshot history
const DefaultHistoryKeep = 20

// State is the unlock state of a vault
type State int32

const (
	Locked State = iota
	Unlocking
	Unlocked
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocking:
		return "unlocking"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config is an open vault_config.toml: general settings, vault metadata
// and, once unlocked, the decrypted secrets store.
type Config struct {
	path        string
	log         *zap.Logger
	historyKeep int

	// stateMu serializes state transitions and guards key.
	// state itself is readable without it.
	stateMu sync.Mutex
	state   atomic.Int32
	key     *crypto.SessionKey

	saveMu sync.Mutex

	metaMu sync.RWMutex
	meta   Metadata

	// dbMu also covers transitions into and out of Unlocked, so a store
	// accessor never observes a purged store as unlocked.
	dbMu sync.RWMutex
	db   *secrets.Db

	generalMu sync.RWMutex
	general   General
}

// Option configures a Config
type Option func(*Config)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHistory sets how many earlier versions of the file are kept.
// Zero disables the snapshot history.
func WithHistory(keep int) Option {
	return func(c *Config) {
		c.historyKeep = max(keep, 0)
	}
}

func newConfig(path string, opts []Option) *Config {
	c := &Config{
		path:        path,
		log:         zap.NewNop(),
		historyKeep: DefaultHistoryKeep,
		db:          secrets.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultPath returns vault_config.toml in the working directory. When the
// working directory cannot be determined the filesystem root is used.
func DefaultPath(log *zap.Logger) string {
	dir, err := os.Getwd()
	if err != nil {
		if log != nil {
			log.Warn("cannot determine working directory, using filesystem root", zap.Error(err))
		}
		dir = string(filepath.Separator)
	}
	return filepath.Join(dir, FileName)
}

// Open opens vault_config.toml in the working directory
func Open(opts ...Option) (*Config, error) {
	c := newConfig("", opts)
	return OpenPath(DefaultPath(c.log), opts...)
}

// OpenPath opens the config file at path, creating a default unencrypted
// vault if the file does not exist. An existing file that cannot be parsed
// is reported as ErrConfigParse and left untouched. Unencrypted vaults are
// returned unlocked.
func OpenPath(path string, opts ...Option) (*Config, error) {
	c := newConfig(path, opts)
	log := c.log.With(zap.String("path", path))

	data, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = c.createDefault()
		if errors.Is(err, fs.ErrExist) {
			// Created concurrently by someone else, use theirs
			data, err = readFile(path)
		}
	}
	if err != nil {
		return nil, err
	}

	f, err := parseConfig(data)
	if err != nil {
		log.Warn("vault config is invalid", zap.Error(err))
		return nil, err
	}
	c.general = f.General
	c.meta = f.Db

	if !c.meta.Encrypted {
		if err := c.Unlock(nil); err != nil {
			return nil, err
		}
	}

	log.Debug("vault opened", zap.Bool("encrypted", c.meta.Encrypted))
	return c, nil
}

func (c *Config) createDefault() ([]byte, error) {
	data, err := defaultConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	if err := createFile(c.path, data); err != nil {
		return nil, err
	}
	c.log.Info("created new vault config", zap.String("path", c.path))
	c.snapshot(data, "create")
	return data, nil
}

// Close locks the vault
func (c *Config) Close() error {
	c.Lock()
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.path
}

// HistoryPath returns the path of the snapshot history database
func (c *Config) HistoryPath() string {
	return HistoryPath(c.path)
}

// State returns the current unlock state
func (c *Config) State() State {
	return State(c.state.Load())
}

// IsUnlocked reports whether the store is decrypted and accessible
func (c *Config) IsUnlocked() bool {
	return c.State() == Unlocked
}

// Metadata returns a copy of the vault metadata
func (c *Config) Metadata() Metadata {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	return c.meta
}

func (c *Config) setMetadata(meta Metadata) {
	c.metaMu.Lock()
	c.meta = meta
	c.metaMu.Unlock()
}

// Encrypted reports whether the store is stored encrypted
func (c *Config) Encrypted() bool {
	return c.Metadata().Encrypted
}

// VaultID returns the vault id, empty for files written without one
func (c *Config) VaultID() string {
	return c.Metadata().VaultID
}

// AutoLockAfter returns the configured inactivity timeout. Zero means never.
func (c *Config) AutoLockAfter() time.Duration {
	c.generalMu.RLock()
	defer c.generalMu.RUnlock()
	return c.general.AutoLockAfter()
}
