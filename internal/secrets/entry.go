package secrets

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// timeNow is replaced in tests
var timeNow = func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Value is the content of one slot of an entry.
type Value struct {
	SlotID int       `toml:"slot_id"`
	Label  string    `toml:"label"`
	Kind   FieldKind `toml:"kind"`
	Value  string    `toml:"value"`
}

// Entry is one vault record
type Entry struct {
	ID       string    `toml:"id"`
	Title    string    `toml:"title"`
	Created  time.Time `toml:"created"`
	Modified time.Time `toml:"modified"`
	Fields   []Value   `toml:"fields"`
}

// NewEntry creates an entry with one empty value per preset slot.
func NewEntry(title string, presets PresetFields) Entry {
	now := timeNow()
	e := Entry{
		ID:       uuid.NewString(),
		Title:    title,
		Created:  now,
		Modified: now,
		Fields:   make([]Value, 0, len(presets)),
	}
	for _, p := range presets {
		e.Fields = append(e.Fields, Value{SlotID: p.SlotID, Label: p.Label, Kind: p.Kind})
	}
	return e
}

// Get returns the value stored in a slot
func (e *Entry) Get(slotID int) (Value, bool) {
	for _, v := range e.Fields {
		if v.SlotID == slotID {
			return v, true
		}
	}
	return Value{}, false
}

// Set stores value in an existing slot.
func (e *Entry) Set(slotID int, value string) error {
	for i := range e.Fields {
		if e.Fields[i].SlotID == slotID {
			e.Fields[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownSlot, slotID)
}

// SetField adds a slot or replaces an existing one
func (e *Entry) SetField(v Value) {
	for i := range e.Fields {
		if e.Fields[i].SlotID == v.SlotID {
			e.Fields[i] = v
			return
		}
	}
	e.Fields = append(e.Fields, v)
}

// Align brings the entry in line with presets by slot id. Preset slots come
// first, in preset order, taking label and kind from the preset. Slots that
// are no longer presets keep their values and follow in their old order.
func (e *Entry) Align(presets PresetFields) {
	aligned := make([]Value, 0, len(presets)+len(e.Fields))
	for _, p := range presets {
		v, _ := e.Get(p.SlotID)
		v.SlotID, v.Label, v.Kind = p.SlotID, p.Label, p.Kind
		aligned = append(aligned, v)
	}
	for _, v := range e.Fields {
		if _, ok := presets.Find(v.SlotID); !ok {
			aligned = append(aligned, v)
		}
	}
	e.Fields = aligned
}

// Matches reports whether query occurs in the title or in a non-secret
// value, ignoring case.
func (e *Entry) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(e.Title), q) {
		return true
	}
	for _, v := range e.Fields {
		if v.Kind.IsSecret() {
			continue
		}
		if strings.Contains(strings.ToLower(v.Value), q) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (e Entry) Clone() Entry {
	out := e
	if e.Fields != nil {
		out.Fields = make([]Value, len(e.Fields))
		copy(out.Fields, e.Fields)
	}
	return out
}

func (e *Entry) validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry %q has no id", e.Title)
	}
	if !utf8.ValidString(e.ID) || !utf8.ValidString(e.Title) {
		return fmt.Errorf("entry %s title: %w", e.ID, ErrInvalidText)
	}
	seen := make(map[int]bool, len(e.Fields))
	for _, v := range e.Fields {
		if v.SlotID < 0 {
			return fmt.Errorf("entry %s: negative slot id %d", e.ID, v.SlotID)
		}
		if _, ok := fieldKindNames[v.Kind]; !ok {
			return fmt.Errorf("entry %s: unknown kind %d", e.ID, int(v.Kind))
		}
		if seen[v.SlotID] {
			return fmt.Errorf("entry %s: duplicate slot id %d", e.ID, v.SlotID)
		}
		if !utf8.ValidString(v.Label) || !utf8.ValidString(v.Value) {
			return fmt.Errorf("entry %s slot %d: %w", e.ID, v.SlotID, ErrInvalidText)
		}
		seen[v.SlotID] = true
	}
	return nil
}
