package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/lockvault/internal/secrets"
	"github.com/illarion/lockvault/internal/vault"
)

func TestApplySettings(t *testing.T) {
	timeout := 60.0

	t.Run("timeout", func(t *testing.T) {
		g := vault.DefaultGeneral()
		require.NoError(t, applySettings(&g, SettingsChange{Timeout: &timeout}))
		assert.Equal(t, 60.0, g.DBTimeout)
	})

	t.Run("add field", func(t *testing.T) {
		g := vault.DefaultGeneral()
		require.NoError(t, applySettings(&g, SettingsChange{AddField: "Token:SecretLine"}))

		f, ok := g.PresetFields.FindLabel("Token")
		require.True(t, ok)
		assert.Equal(t, 5, f.SlotID)
		assert.Equal(t, secrets.SecretLine, f.Kind)
	})

	t.Run("add field defaults to text", func(t *testing.T) {
		g := vault.DefaultGeneral()
		require.NoError(t, applySettings(&g, SettingsChange{AddField: "Email"}))

		f, ok := g.PresetFields.FindLabel("Email")
		require.True(t, ok)
		assert.Equal(t, secrets.TextLine, f.Kind)
	})

	t.Run("remove field", func(t *testing.T) {
		g := vault.DefaultGeneral()
		require.NoError(t, applySettings(&g, SettingsChange{RemoveField: "notes"}))

		_, ok := g.PresetFields.FindLabel("Notes")
		assert.False(t, ok)
		assert.Len(t, g.PresetFields, len(secrets.DefaultPresetFields())-1)
	})

	errs := []struct {
		name   string
		change SettingsChange
	}{
		{"duplicate field", SettingsChange{AddField: "password"}},
		{"unknown kind", SettingsChange{AddField: "Token:Bogus"}},
		{"remove unknown", SettingsChange{RemoveField: "Nope"}},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			g := vault.DefaultGeneral()
			assert.Error(t, applySettings(&g, tt.change))
		})
	}
}

func TestApplySettings_ThroughVault(t *testing.T) {
	c := openTestVault(t)
	negative := -1.0

	err := c.UpdateGeneral(func(g *vault.General) error {
		return applySettings(g, SettingsChange{Timeout: &negative})
	})
	assert.Error(t, err, "negative timeout is rejected")
	assert.Equal(t, vault.DefaultDBTimeout, c.GeneralSettings().DBTimeout)

	err = c.UpdateGeneral(func(g *vault.General) error {
		return applySettings(g, SettingsChange{AddField: "Token:SecretLine"})
	})
	require.NoError(t, err)

	e, err := c.AddEntry("API")
	require.NoError(t, err)
	v, ok := e.Get(5)
	require.True(t, ok)
	assert.Equal(t, "Token", v.Label)
}
