package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/secrets"
	"github.com/illarion/lockvault/internal/vault"
)

var errAmbiguous = errors.New("ambiguous entry reference")

// resolveEntry finds an entry by full id, id prefix or exact title
func resolveEntry(entries []secrets.Entry, ref string) (secrets.Entry, error) {
	var matches []secrets.Entry
	for _, e := range entries {
		if e.ID == ref {
			return e, nil
		}
		if strings.HasPrefix(e.ID, ref) || e.Title == ref {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return secrets.Entry{}, fmt.Errorf("%w: %s", secrets.ErrEntryNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return secrets.Entry{}, fmt.Errorf("%w: %s matches %d entries", errAmbiguous, ref, len(matches))
	}
}

// assignment is one slot=value argument
type assignment struct {
	field secrets.Value
	value string
	ask   bool // value "?" asks on the terminal
}

// parseAssignment parses slot=value where slot is a preset label, a
// slot id, or a new label with an optional :Kind suffix
func parseAssignment(presets secrets.PresetFields, arg string) (assignment, error) {
	slot, value, ok := strings.Cut(arg, "=")
	if !ok || slot == "" {
		return assignment{}, fmt.Errorf("expected slot=value, got %q", arg)
	}
	a := assignment{value: value, ask: value == "?"}

	if id, err := strconv.Atoi(slot); err == nil {
		p, found := presets.Find(id)
		if !found {
			return assignment{}, fmt.Errorf("%w: %d", secrets.ErrUnknownSlot, id)
		}
		a.field = secrets.Value{SlotID: p.SlotID, Label: p.Label, Kind: p.Kind}
		return a, nil
	}

	label, kindName, hasKind := strings.Cut(slot, ":")
	if p, found := presets.FindLabel(label); found && !hasKind {
		a.field = secrets.Value{SlotID: p.SlotID, Label: p.Label, Kind: p.Kind}
		return a, nil
	}

	kind := secrets.TextLine
	if hasKind {
		k, err := secrets.ParseFieldKind(kindName)
		if err != nil {
			return assignment{}, err
		}
		kind = k
	}
	// Custom field outside the presets, given a slot id on apply
	a.field = secrets.Value{SlotID: -1, Label: label, Kind: kind}
	return a, nil
}

// apply stores the assignment in e
func (a assignment) apply(e *secrets.Entry, presets secrets.PresetFields) error {
	if a.ask {
		return fmt.Errorf("no value read for %s", a.field.Label)
	}

	field := a.field
	if field.SlotID < 0 {
		field.SlotID = nextFreeSlot(e, presets)
		for _, v := range e.Fields {
			if strings.EqualFold(v.Label, field.Label) {
				field.SlotID = v.SlotID
				break
			}
		}
	}
	field.Value = a.value
	e.SetField(field)
	return nil
}

func nextFreeSlot(e *secrets.Entry, presets secrets.PresetFields) int {
	next := presets.NextSlotID()
	for _, v := range e.Fields {
		if v.SlotID >= next {
			next = v.SlotID + 1
		}
	}
	return next
}

// lookupEntry resolves ref among the entries of c
func lookupEntry(c *vault.Config, ref string) secrets.Entry {
	entries, err := c.Entries()
	if err != nil {
		HandleError(err)
	}
	e, err := resolveEntry(entries, ref)
	if err != nil {
		HandleError(err)
	}
	return e
}

// Ls lists entries, optionally filtered by query
func Ls(query string) {
	c := openVault()
	defer c.Close()
	crypto.ClearBytes(unlockVault(c))

	entries, err := c.FindEntries(query)
	if err != nil {
		HandleError(err)
	}

	if len(entries) == 0 {
		if query != "" {
			fmt.Printf("No entries match %q\n", query)
		} else {
			fmt.Println("No entries in vault")
		}
		return
	}

	for _, e := range entries {
		fmt.Printf("  %s  %s\n", shortID(e.ID), e.Title)
	}
}

// Show prints one entry. Secret values are masked unless reveal is set.
func Show(ref string, reveal bool) {
	c := openVault()
	defer c.Close()
	crypto.ClearBytes(unlockVault(c))

	e := lookupEntry(c, ref)
	fmt.Printf("%s\n", e.Title)
	fmt.Printf("  id:       %s\n", e.ID)
	fmt.Printf("  created:  %s\n", e.Created.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  modified: %s\n", e.Modified.Local().Format("2006-01-02 15:04:05"))
	for _, v := range e.Fields {
		if v.Value == "" {
			continue
		}
		value := v.Value
		if v.Kind.IsSecret() && !reveal {
			value = "********"
		}
		if v.Kind == secrets.MultiLine {
			value = "\n    " + strings.ReplaceAll(value, "\n", "\n    ")
		}
		fmt.Printf("  %s: %s\n", v.Label, value)
	}
}

// Add creates an entry and saves the vault
func Add(title string, args []string) {
	c := openVault()
	defer c.Close()
	crypto.ClearBytes(unlockVault(c))

	presets := c.FieldPresets()
	assignments := parseAssignments(presets, args)

	e, err := c.AddEntry(title)
	if err != nil {
		HandleError(err)
	}
	if len(assignments) > 0 {
		e, err = c.UpdateEntry(e.ID, func(e *secrets.Entry) error {
			return applyAll(e, presets, assignments)
		})
		if err != nil {
			HandleError(err)
		}
	}

	saveVault(c)
	fmt.Printf("added: %s (%s)\n", e.Title, shortID(e.ID))
}

// Edit changes the title or values of an entry and saves the vault
func Edit(ref, title string, args []string) {
	c := openVault()
	defer c.Close()
	crypto.ClearBytes(unlockVault(c))

	presets := c.FieldPresets()
	assignments := parseAssignments(presets, args)
	target := lookupEntry(c, ref)

	e, err := c.UpdateEntry(target.ID, func(e *secrets.Entry) error {
		if title != "" {
			e.Title = title
		}
		return applyAll(e, presets, assignments)
	})
	if err != nil {
		HandleError(err)
	}

	saveVault(c)
	fmt.Printf("updated: %s\n", e.Title)
}

// Remove deletes an entry and saves the vault
func Remove(ref string) {
	c := openVault()
	defer c.Close()
	crypto.ClearBytes(unlockVault(c))

	e := lookupEntry(c, ref)
	if err := c.RemoveEntry(e.ID); err != nil {
		HandleError(err)
	}

	saveVault(c)
	fmt.Printf("removed: %s\n", e.Title)
}

// Move changes the position of an entry and saves the vault
func Move(ref string, index int) {
	c := openVault()
	defer c.Close()
	crypto.ClearBytes(unlockVault(c))

	e := lookupEntry(c, ref)
	if err := c.MoveEntry(e.ID, index); err != nil {
		HandleError(err)
	}

	saveVault(c)
	fmt.Printf("moved: %s\n", e.Title)
}

// parseAssignments parses all slot=value arguments and reads the values
// asked for, before any entry is locked for update
func parseAssignments(presets secrets.PresetFields, args []string) []assignment {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		a, err := parseAssignment(presets, arg)
		if err != nil {
			HandleError(err)
		}
		if a.ask {
			input, err := vault.ReadPassword(fmt.Sprintf("%s: ", a.field.Label))
			if err != nil {
				HandleError(err)
			}
			a.value, a.ask = string(input), false
			crypto.ClearBytes(input)
		}
		out = append(out, a)
	}
	return out
}

func applyAll(e *secrets.Entry, presets secrets.PresetFields, assignments []assignment) error {
	for _, a := range assignments {
		if err := a.apply(e, presets); err != nil {
			return err
		}
	}
	return nil
}
