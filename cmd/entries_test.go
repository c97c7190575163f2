package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/lockvault/internal/secrets"
)

func TestResolveEntry(t *testing.T) {
	entries := []secrets.Entry{
		{ID: "aaaa1111-0000", Title: "GitHub"},
		{ID: "aaab2222-0000", Title: "Mail"},
		{ID: "cccc3333-0000", Title: "Mail"},
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{"full id", "cccc3333-0000", "cccc3333-0000", nil},
		{"id prefix", "aaaa", "aaaa1111-0000", nil},
		{"title", "GitHub", "aaaa1111-0000", nil},
		{"ambiguous prefix", "aaa", "", errAmbiguous},
		{"ambiguous title", "Mail", "", errAmbiguous},
		{"unknown", "zzz", "", secrets.ErrEntryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := resolveEntry(entries, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, e.ID)
		})
	}
}

func TestParseAssignment(t *testing.T) {
	presets := secrets.DefaultPresetFields()

	tests := []struct {
		name      string
		arg       string
		wantSlot  int
		wantLabel string
		wantKind  secrets.FieldKind
		wantValue string
		wantAsk   bool
		wantErr   bool
	}{
		{name: "preset label", arg: "Username=me", wantSlot: 1, wantLabel: "Username", wantKind: secrets.SecretLine, wantValue: "me"},
		{name: "label ignores case", arg: "website=https://example.org", wantSlot: 3, wantLabel: "Website", wantKind: secrets.Url, wantValue: "https://example.org"},
		{name: "slot id", arg: "4=a=b", wantSlot: 4, wantLabel: "Notes", wantKind: secrets.TextLine, wantValue: "a=b"},
		{name: "custom field", arg: "PIN:SecretLine=1234", wantSlot: -1, wantLabel: "PIN", wantKind: secrets.SecretLine, wantValue: "1234"},
		{name: "custom without kind", arg: "Recovery=words", wantSlot: -1, wantLabel: "Recovery", wantKind: secrets.TextLine, wantValue: "words"},
		{name: "ask", arg: "Password=?", wantSlot: 2, wantLabel: "Password", wantKind: secrets.SecretLine, wantValue: "?", wantAsk: true},
		{name: "empty value", arg: "Notes=", wantSlot: 4, wantLabel: "Notes", wantKind: secrets.TextLine},
		{name: "no equals", arg: "Username", wantErr: true},
		{name: "empty slot", arg: "=x", wantErr: true},
		{name: "unknown slot id", arg: "9=x", wantErr: true},
		{name: "unknown kind", arg: "PIN:Bogus=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAssignment(presets, tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlot, a.field.SlotID)
			assert.Equal(t, tt.wantLabel, a.field.Label)
			assert.Equal(t, tt.wantKind, a.field.Kind)
			assert.Equal(t, tt.wantValue, a.value)
			assert.Equal(t, tt.wantAsk, a.ask)
		})
	}
}

func TestAssignmentApply(t *testing.T) {
	presets := secrets.DefaultPresetFields()
	e := secrets.NewEntry("Router", presets)

	apply := func(arg string) {
		t.Helper()
		a, err := parseAssignment(presets, arg)
		require.NoError(t, err)
		require.NoError(t, a.apply(&e, presets))
	}

	apply("Username=admin")
	apply("PIN:SecretLine=1234")
	apply("Code=42")
	apply("pin:SecretLine=9999")

	v, ok := e.Get(1)
	require.True(t, ok)
	assert.Equal(t, "admin", v.Value)

	pin, ok := e.Get(5)
	require.True(t, ok)
	assert.Equal(t, "PIN", pin.Label)
	assert.Equal(t, "9999", pin.Value, "same label reuses the slot")

	code, ok := e.Get(6)
	require.True(t, ok)
	assert.Equal(t, "42", code.Value)
	assert.Len(t, e.Fields, len(presets)+2)

	ask, err := parseAssignment(presets, "Password=?")
	require.NoError(t, err)
	assert.Error(t, ask.apply(&e, presets))
}

func TestApplyAll_StopsOnError(t *testing.T) {
	presets := secrets.DefaultPresetFields()
	e := secrets.NewEntry("x", presets)

	ok, err := parseAssignment(presets, "Notes=kept")
	require.NoError(t, err)
	ask, err := parseAssignment(presets, "Password=?")
	require.NoError(t, err)

	assert.Error(t, applyAll(&e, presets, []assignment{ok, ask}))
}
