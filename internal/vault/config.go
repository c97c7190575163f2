package vault

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/secrets"
)

const (
	FileName         = "vault_config.toml"
	DefaultDBTimeout = 900.0 // Auto-lock after 15 minutes of inactivity
	FilePermSecure   = 0600
)

// General holds the settings that are always stored in plaintext.
type General struct {
	DBTimeout    float64              `toml:"db_timeout"`
	PresetFields secrets.PresetFields `toml:"preset_fields"`
}

// DefaultGeneral returns the settings of a fresh vault
func DefaultGeneral() General {
	return General{
		DBTimeout:    DefaultDBTimeout,
		PresetFields: secrets.DefaultPresetFields(),
	}
}

// Validate checks the timeout and the preset list
func (g General) Validate() error {
	if math.IsNaN(g.DBTimeout) || math.IsInf(g.DBTimeout, 0) || g.DBTimeout < 0 {
		return fmt.Errorf("db_timeout must be a non-negative number of seconds, got %v", g.DBTimeout)
	}
	return g.PresetFields.Validate()
}

// AutoLockAfter converts db_timeout to a duration. Zero disables auto-lock.
func (g General) AutoLockAfter() time.Duration {
	return time.Duration(g.DBTimeout * float64(time.Second))
}

// Clone returns a deep copy
func (g General) Clone() General {
	g.PresetFields = g.PresetFields.Clone()
	return g
}

// Metadata describes how the stored secrets blob is protected.
type Metadata struct {
	Encrypted bool   `toml:"encrypted"`
	Salt      string `toml:"salt"`
	Cypher    string `toml:"cypher"` // serialized store, base64 ciphertext when encrypted
	KDF       string `toml:"kdf,omitempty"`
	Cipher    string `toml:"cipher,omitempty"`
	VaultID   string `toml:"vault_id,omitempty"`
}

// Validate checks the metadata invariants
func (m Metadata) Validate() error {
	if m.Encrypted && m.Salt == "" {
		return fmt.Errorf("encrypted vault has no salt")
	}
	if _, err := crypto.ParseAlgorithm(m.KDF); err != nil {
		return err
	}
	if _, err := crypto.ParseCipher(m.Cipher); err != nil {
		return err
	}
	if m.VaultID != "" {
		if _, err := uuid.Parse(m.VaultID); err != nil {
			return fmt.Errorf("invalid vault_id: %w", err)
		}
	}
	return nil
}

func (m Metadata) kdf() crypto.KDF {
	return crypto.KDF{Algorithm: crypto.Algorithm(m.KDF), Salt: m.Salt}
}

func (m Metadata) cipher() crypto.Cipher {
	c, _ := crypto.ParseCipher(m.Cipher)
	return c
}

// configFile is the on-disk layout of vault_config.toml
type configFile struct {
	General General  `toml:"general"`
	Db      Metadata `toml:"db"`
}

var requiredKeys = [][]string{
	{"general", "db_timeout"},
	{"general", "preset_fields"},
	{"db", "encrypted"},
	{"db", "salt"},
	{"db", "cypher"},
}

// parseConfig decodes and validates a config file. It never substitutes
// defaults for missing keys.
func parseConfig(data []byte) (*configFile, error) {
	var f configFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}

	var missing []string
	for _, key := range requiredKeys {
		if !md.IsDefined(key...) {
			missing = append(missing, strings.Join(key, "."))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrConfigParse, strings.Join(missing, ", "))
	}

	if err := f.General.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	if err := f.Db.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	if f.General.PresetFields == nil {
		f.General.PresetFields = secrets.PresetFields{}
	}
	return &f, nil
}

func encodeConfig(general General, meta Metadata) ([]byte, error) {
	if general.PresetFields == nil {
		general.PresetFields = secrets.PresetFields{}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(configFile{General: general, Db: meta}); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// defaultConfig returns the contents of a fresh, unencrypted vault
func defaultConfig() ([]byte, error) {
	payload, err := secrets.New().Serialize()
	if err != nil {
		return nil, err
	}
	return encodeConfig(DefaultGeneral(), Metadata{
		Encrypted: false,
		Cypher:    payload,
		VaultID:   uuid.NewString(),
	})
}
