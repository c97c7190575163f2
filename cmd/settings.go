package cmd

import (
	"fmt"
	"strings"

	"github.com/illarion/lockvault/internal/crypto"
	"github.com/illarion/lockvault/internal/secrets"
	"github.com/illarion/lockvault/internal/vault"
)

// SettingsChange lists the settings to modify. Nil or empty members are
// left as they are.
type SettingsChange struct {
	Timeout     *float64
	AddField    string // Label[:Kind]
	RemoveField string // Label
}

// Settings applies changes to the general settings and saves the vault
func Settings(change SettingsChange) {
	c := openVault()
	defer c.Close()

	if change.Timeout == nil && change.AddField == "" && change.RemoveField == "" {
		printSettings(c.GeneralSettings())
		return
	}

	// Saving an encrypted vault requires the session key
	crypto.ClearBytes(unlockVault(c))

	err := c.UpdateGeneral(func(g *vault.General) error {
		return applySettings(g, change)
	})
	if err != nil {
		HandleError(err)
	}

	saveVault(c)
	printSettings(c.GeneralSettings())
}

func applySettings(g *vault.General, change SettingsChange) error {
	if change.Timeout != nil {
		g.DBTimeout = *change.Timeout
	}

	if change.AddField != "" {
		label, kindName, hasKind := strings.Cut(change.AddField, ":")
		if _, exists := g.PresetFields.FindLabel(label); exists {
			return fmt.Errorf("field %q already exists", label)
		}
		kind := secrets.TextLine
		if hasKind {
			k, err := secrets.ParseFieldKind(kindName)
			if err != nil {
				return err
			}
			kind = k
		}
		g.PresetFields = append(g.PresetFields, secrets.Field{
			SlotID:      g.PresetFields.NextSlotID(),
			Label:       label,
			Placeholder: label,
			Kind:        kind,
		})
	}

	if change.RemoveField != "" {
		p, found := g.PresetFields.FindLabel(change.RemoveField)
		if !found {
			return fmt.Errorf("no field %q", change.RemoveField)
		}
		kept := g.PresetFields[:0]
		for _, f := range g.PresetFields {
			if f.SlotID != p.SlotID {
				kept = append(kept, f)
			}
		}
		g.PresetFields = kept
	}

	return nil
}

func printSettings(g vault.General) {
	fmt.Printf("db_timeout: %g seconds\n", g.DBTimeout)
	fmt.Println("fields:")
	for _, p := range g.PresetFields {
		fmt.Printf("  %d  %-12s %s\n", p.SlotID, p.Label, p.Kind)
	}
}
