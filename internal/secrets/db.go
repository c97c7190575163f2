package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

var (
	ErrMalformed      = errors.New("malformed secrets store")
	ErrEntryNotFound  = errors.New("entry not found")
	ErrDuplicateEntry = errors.New("duplicate entry id")
	ErrUnknownSlot    = errors.New("unknown field slot")
	ErrInvalidText    = errors.New("text is not valid UTF-8")
)

// Db is the ordered collection of entries of an open vault. It does no
// locking of its own.
type Db struct {
	Contents []Entry `toml:"contents"`
}

// New returns an empty store
func New() *Db {
	return &Db{Contents: []Entry{}}
}

// Load parses a serialized store. An empty payload is an empty store.
func Load(serialized string) (*Db, error) {
	if strings.TrimSpace(serialized) == "" {
		return New(), nil
	}

	var db Db
	md, err := toml.Decode(serialized, &db)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !md.IsDefined("contents") {
		return nil, fmt.Errorf("%w: missing contents", ErrMalformed)
	}
	if err := db.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if db.Contents == nil {
		db.Contents = []Entry{}
	}
	return &db, nil
}

// Serialize encodes the store so that Load reproduces the same entries.
// Output that Load would reject is an error, so a store that could not be
// read back is never handed out for saving.
func (d *Db) Serialize() (string, error) {
	out := d
	if out.Contents == nil {
		out = New()
	}
	if err := out.Validate(); err != nil {
		return "", fmt.Errorf("cannot serialize secrets store: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return "", fmt.Errorf("failed to encode secrets store: %w", err)
	}
	if _, err := Load(buf.String()); err != nil {
		return "", fmt.Errorf("secrets store does not read back: %w", err)
	}
	return buf.String(), nil
}

// Validate checks entry ids and slot ids
func (d *Db) Validate() error {
	seen := make(map[string]bool, len(d.Contents))
	for i := range d.Contents {
		e := &d.Contents[i]
		if err := e.validate(); err != nil {
			return err
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// Len returns the number of entries
func (d *Db) Len() int {
	return len(d.Contents)
}

// Entries returns a deep copy of all entries in order
func (d *Db) Entries() []Entry {
	out := make([]Entry, len(d.Contents))
	for i, e := range d.Contents {
		out[i] = e.Clone()
	}
	return out
}

func (d *Db) index(id string) int {
	for i := range d.Contents {
		if d.Contents[i].ID == id {
			return i
		}
	}
	return -1
}

// Entry returns a copy of the entry with the given id
func (d *Db) Entry(id string) (Entry, bool) {
	i := d.index(id)
	if i < 0 {
		return Entry{}, false
	}
	return d.Contents[i].Clone(), true
}

// Add appends an entry. A missing id or timestamp is filled in.
func (d *Db) Add(e Entry) (Entry, error) {
	e = e.Clone()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if d.index(e.ID) >= 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.ID)
	}
	if err := e.validate(); err != nil {
		return Entry{}, err
	}
	now := timeNow()
	if e.Created.IsZero() {
		e.Created = now
	}
	if e.Modified.IsZero() {
		e.Modified = now
	}
	d.Contents = append(d.Contents, e)
	return e.Clone(), nil
}

// Update applies fn to a copy of the entry and stores the result if fn
// succeeds. The id cannot be changed.
func (d *Db) Update(id string, fn func(e *Entry) error) (Entry, error) {
	i := d.index(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	e := d.Contents[i].Clone()
	if err := fn(&e); err != nil {
		return Entry{}, err
	}
	e.ID = id
	if err := e.validate(); err != nil {
		return Entry{}, err
	}
	e.Modified = timeNow()
	d.Contents[i] = e
	return e.Clone(), nil
}

// Remove deletes an entry
func (d *Db) Remove(id string) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	d.Contents = append(d.Contents[:i], d.Contents[i+1:]...)
	return nil
}

// Move places an entry at position index, clamped to the valid range.
func (d *Db) Move(id string, index int) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	index = max(0, min(index, len(d.Contents)-1))

	e := d.Contents[i]
	d.Contents = append(d.Contents[:i], d.Contents[i+1:]...)
	d.Contents = append(d.Contents[:index], append([]Entry{e}, d.Contents[index:]...)...)
	return nil
}

// Find returns copies of the entries matching query. An empty query
// matches everything.
func (d *Db) Find(query string) []Entry {
	if query == "" {
		return d.Entries()
	}
	var out []Entry
	for i := range d.Contents {
		if d.Contents[i].Matches(query) {
			out = append(out, d.Contents[i].Clone())
		}
	}
	return out
}

// Align re-aligns every entry with presets
func (d *Db) Align(presets PresetFields) {
	for i := range d.Contents {
		d.Contents[i].Align(presets)
	}
}

// Clone returns a deep copy
func (d *Db) Clone() *Db {
	return &Db{Contents: d.Entries()}
}
