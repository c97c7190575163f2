package secrets

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// FieldKind describes how a field value is entered and displayed.
type FieldKind int

const (
	TextLine FieldKind = iota
	SecretLine
	Url
	MultiLine
)

var fieldKindNames = map[FieldKind]string{
	TextLine:   "TextLine",
	SecretLine: "SecretLine",
	Url:        "Url",
	MultiLine:  "MultiLine",
}

func (k FieldKind) String() string {
	if name, ok := fieldKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// IsSecret reports whether values of this kind should be masked on display.
func (k FieldKind) IsSecret() bool {
	return k == SecretLine
}

// ParseFieldKind parses a kind name as written in the vault file.
func ParseFieldKind(name string) (FieldKind, error) {
	for k, n := range fieldKindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q", name)
}

func (k FieldKind) MarshalText() ([]byte, error) {
	name, ok := fieldKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown field kind %d", int(k))
	}
	return []byte(name), nil
}

func (k *FieldKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Field is one configurable column of every entry.
type Field struct {
	SlotID      int       `toml:"slot_id"`
	Label       string    `toml:"label"`
	Placeholder string    `toml:"placeholder"`
	Kind        FieldKind `toml:"kind"`
}

// MarshalTOML writes the field as a (slot_id, label, placeholder, kind)
// tuple: [0, "Custom", "", "SecretLine"]
func (f Field) MarshalTOML() ([]byte, error) {
	kind, err := f.Kind.MarshalText()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tuple := map[string]any{"f": []any{f.SlotID, f.Label, f.Placeholder, string(kind)}}
	if err := toml.NewEncoder(&buf).Encode(tuple); err != nil {
		return nil, fmt.Errorf("failed to encode field %q: %w", f.Label, err)
	}
	_, value, ok := bytes.Cut(buf.Bytes(), []byte("="))
	if !ok {
		return nil, fmt.Errorf("failed to encode field %q", f.Label)
	}
	return bytes.TrimSpace(value), nil
}

// UnmarshalTOML reads the tuple form, and the table form with slot_id,
// label, placeholder and kind keys.
func (f *Field) UnmarshalTOML(data any) error {
	var slot, label, placeholder, kind any
	switch v := data.(type) {
	case []any:
		if len(v) != 4 {
			return fmt.Errorf("preset field needs 4 elements, got %d", len(v))
		}
		slot, label, placeholder, kind = v[0], v[1], v[2], v[3]
	case map[string]any:
		slot, label, placeholder, kind = v["slot_id"], v["label"], v["placeholder"], v["kind"]
		if placeholder == nil {
			placeholder = ""
		}
	default:
		return fmt.Errorf("preset field must be an array or a table, got %T", data)
	}

	id, ok := slot.(int64)
	if !ok {
		return fmt.Errorf("preset slot id must be an integer, got %T", slot)
	}
	var out Field
	out.SlotID = int(id)
	if out.Label, ok = label.(string); !ok {
		return fmt.Errorf("preset %d: label must be a string, got %T", id, label)
	}
	if out.Placeholder, ok = placeholder.(string); !ok {
		return fmt.Errorf("preset %d: placeholder must be a string, got %T", id, placeholder)
	}
	kindName, ok := kind.(string)
	if !ok {
		return fmt.Errorf("preset %d: kind must be a string, got %T", id, kind)
	}
	if err := out.Kind.UnmarshalText([]byte(kindName)); err != nil {
		return fmt.Errorf("preset %d: %w", id, err)
	}

	*f = out
	return nil
}

// PresetFields is the ordered default schema of new entries. Order is
// display order.
type PresetFields []Field

// DefaultPresetFields returns the schema a fresh vault starts with.
func DefaultPresetFields() PresetFields {
	return PresetFields{
		{SlotID: 0, Label: "Custom", Placeholder: "", Kind: SecretLine},
		{SlotID: 1, Label: "Username", Placeholder: "Username", Kind: SecretLine},
		{SlotID: 2, Label: "Password", Placeholder: "Password", Kind: SecretLine},
		{SlotID: 3, Label: "Website", Placeholder: "URL", Kind: Url},
		{SlotID: 4, Label: "Notes", Placeholder: "Notes", Kind: TextLine},
	}
}

// Validate checks that slot ids are unique and non-negative and that every
// field has a label.
func (p PresetFields) Validate() error {
	seen := make(map[int]bool, len(p))
	for _, f := range p {
		if f.SlotID < 0 {
			return fmt.Errorf("preset %q: negative slot id %d", f.Label, f.SlotID)
		}
		if f.Label == "" {
			return fmt.Errorf("preset slot %d: empty label", f.SlotID)
		}
		if !utf8.ValidString(f.Label) || !utf8.ValidString(f.Placeholder) {
			return fmt.Errorf("preset slot %d: %w", f.SlotID, ErrInvalidText)
		}
		if _, ok := fieldKindNames[f.Kind]; !ok {
			return fmt.Errorf("preset %q: unknown kind %d", f.Label, int(f.Kind))
		}
		if seen[f.SlotID] {
			return fmt.Errorf("duplicate preset slot id %d", f.SlotID)
		}
		seen[f.SlotID] = true
	}
	return nil
}

// Find returns the preset with the given slot id
func (p PresetFields) Find(slotID int) (Field, bool) {
	for _, f := range p {
		if f.SlotID == slotID {
			return f, true
		}
	}
	return Field{}, false
}

// FindLabel returns the preset whose label matches, ignoring case.
func (p PresetFields) FindLabel(label string) (Field, bool) {
	for _, f := range p {
		if strings.EqualFold(f.Label, label) {
			return f, true
		}
	}
	return Field{}, false
}

// NextSlotID returns a slot id not used by any preset.
func (p PresetFields) NextSlotID() int {
	next := 0
	for _, f := range p {
		if f.SlotID >= next {
			next = f.SlotID + 1
		}
	}
	return next
}

// Clone returns an independent copy
func (p PresetFields) Clone() PresetFields {
	if p == nil {
		return nil
	}
	out := make(PresetFields, len(p))
	copy(out, p)
	return out
}
