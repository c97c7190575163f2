package vault

import (
	"fmt"

	"github.com/illarion/lockvault/internal/secrets"
)

// GeneralSettings returns a copy of the general settings. Available in
// every state.
func (c *Config) GeneralSettings() General {
	c.generalMu.RLock()
	defer c.generalMu.RUnlock()
	return c.general.Clone()
}

// FieldPresets returns a copy of the preset field list
func (c *Config) FieldPresets() secrets.PresetFields {
	c.generalMu.RLock()
	defer c.generalMu.RUnlock()
	return c.general.PresetFields.Clone()
}

// UpdateGeneral applies fn to a copy of the settings and keeps the result
// if fn succeeds and the result is valid. An unlocked store is re-aligned
// with the new presets. Nothing is written until Save.
func (c *Config) UpdateGeneral(fn func(g *General) error) error {
	c.dbMu.Lock()
	defer c.dbMu.Unlock()
	c.generalMu.Lock()
	defer c.generalMu.Unlock()

	g := c.general.Clone()
	if err := fn(&g); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	c.general = g

	if c.State() == Unlocked {
		c.db.Align(g.PresetFields)
	}
	return nil
}

// ReadDb runs fn with shared access to the store. fn must not retain db.
func (c *Config) ReadDb(fn func(db *secrets.Db) error) error {
	c.dbMu.RLock()
	defer c.dbMu.RUnlock()

	if c.State() != Unlocked {
		return ErrNotUnlocked
	}
	return fn(c.db)
}

// UpdateDb runs fn with exclusive access to the store. fn must not retain
// db. Changes are persisted by Save.
func (c *Config) UpdateDb(fn func(db *secrets.Db) error) error {
	c.dbMu.Lock()
	defer c.dbMu.Unlock()

	if c.State() != Unlocked {
		return ErrNotUnlocked
	}
	return fn(c.db)
}

// Entries returns copies of all entries in display order
func (c *Config) Entries() ([]secrets.Entry, error) {
	var entries []secrets.Entry
	err := c.ReadDb(func(db *secrets.Db) error {
		entries = db.Entries()
		return nil
	})
	return entries, err
}

// Entry returns a copy of one entry
func (c *Config) Entry(id string) (secrets.Entry, error) {
	var entry secrets.Entry
	err := c.ReadDb(func(db *secrets.Db) error {
		e, ok := db.Entry(id)
		if !ok {
			return fmt.Errorf("%w: %s", secrets.ErrEntryNotFound, id)
		}
		entry = e
		return nil
	})
	return entry, err
}

// FindEntries returns entries whose title or non-secret values contain query
func (c *Config) FindEntries(query string) ([]secrets.Entry, error) {
	var entries []secrets.Entry
	err := c.ReadDb(func(db *secrets.Db) error {
		entries = db.Find(query)
		return nil
	})
	return entries, err
}

// AddEntry appends a new entry with one empty value per preset field
func (c *Config) AddEntry(title string) (secrets.Entry, error) {
	var entry secrets.Entry
	err := c.UpdateDb(func(db *secrets.Db) error {
		var err error
		entry, err = db.Add(secrets.NewEntry(title, c.FieldPresets()))
		return err
	})
	return entry, err
}

// UpdateEntry applies fn to a copy of an entry and stores the result
func (c *Config) UpdateEntry(id string, fn func(e *secrets.Entry) error) (secrets.Entry, error) {
	var entry secrets.Entry
	err := c.UpdateDb(func(db *secrets.Db) error {
		var err error
		entry, err = db.Update(id, fn)
		return err
	})
	return entry, err
}

// RemoveEntry deletes an entry
func (c *Config) RemoveEntry(id string) error {
	return c.UpdateDb(func(db *secrets.Db) error {
		return db.Remove(id)
	})
}

// MoveEntry moves an entry to position index
func (c *Config) MoveEntry(id string, index int) error {
	return c.UpdateDb(func(db *secrets.Db) error {
		return db.Move(id, index)
	})
}
