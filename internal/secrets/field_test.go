package secrets

import (
	"bytes"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldKind_Text(t *testing.T) {
	for _, k := range []FieldKind{TextLine, SecretLine, Url, MultiLine} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var back FieldKind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
		assert.Equal(t, string(text), k.String())
	}

	var k FieldKind
	assert.Error(t, k.UnmarshalText([]byte("Password")))

	_, err := FieldKind(99).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "FieldKind(99)", FieldKind(99).String())
}

func TestDefaultPresetFields(t *testing.T) {
	presets := DefaultPresetFields()
	require.NoError(t, presets.Validate())

	var labels []string
	for _, p := range presets {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"Custom", "Username", "Password", "Website", "Notes"}, labels)

	web, ok := presets.Find(3)
	require.True(t, ok)
	assert.Equal(t, Url, web.Kind)
	assert.Equal(t, "URL", web.Placeholder)

	pw, ok := presets.FindLabel("password")
	require.True(t, ok)
	assert.Equal(t, 2, pw.SlotID)

	assert.Equal(t, 5, presets.NextSlotID())
}

func TestPresetFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		presets PresetFields
	}{
		{"duplicate slot", PresetFields{{SlotID: 1, Label: "a"}, {SlotID: 1, Label: "b"}}},
		{"negative slot", PresetFields{{SlotID: -1, Label: "a"}}},
		{"empty label", PresetFields{{SlotID: 0}}},
		{"unknown kind", PresetFields{{SlotID: 0, Label: "a", Kind: FieldKind(12)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.presets.Validate())
		})
	}

	assert.NoError(t, PresetFields{}.Validate())
}

func TestPresetFields_Clone(t *testing.T) {
	presets := DefaultPresetFields()
	clone := presets.Clone()
	clone[0].Label = "changed"
	assert.Equal(t, "Custom", presets[0].Label)
	assert.Nil(t, PresetFields(nil).Clone())
}

type presetFile struct {
	Presets PresetFields `toml:"preset_fields"`
}

func TestPresetFields_TupleFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, toml.NewEncoder(&buf).Encode(presetFile{Presets: DefaultPresetFields()}))
	assert.Contains(t, buf.String(), `[0, "Custom", "", "SecretLine"]`)
	assert.Contains(t, buf.String(), `[3, "Website", "URL", "Url"]`)
	assert.NotContains(t, buf.String(), "slot_id")

	var back presetFile
	_, err := toml.Decode(buf.String(), &back)
	require.NoError(t, err)
	assert.Equal(t, DefaultPresetFields(), back.Presets)
}

func TestPresetFields_Decode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want PresetFields
	}{
		{
			name: "tuples",
			text: `preset_fields = [[0, "Custom", "", "SecretLine"], [3, "Website", "URL", "Url"]]`,
			want: PresetFields{
				{SlotID: 0, Label: "Custom", Placeholder: "", Kind: SecretLine},
				{SlotID: 3, Label: "Website", Placeholder: "URL", Kind: Url},
			},
		},
		{
			name: "tables",
			text: "[[preset_fields]]\nslot_id = 4\nlabel = \"Notes\"\nplaceholder = \"Notes\"\nkind = \"TextLine\"\n",
			want: PresetFields{{SlotID: 4, Label: "Notes", Placeholder: "Notes", Kind: TextLine}},
		},
		{
			name: "quoted label",
			text: `preset_fields = [[7, "Say \"hi\"", "é", "MultiLine"]]`,
			want: PresetFields{{SlotID: 7, Label: `Say "hi"`, Placeholder: "é", Kind: MultiLine}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f presetFile
			_, err := toml.Decode(tt.text, &f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Presets)
		})
	}
}

func TestPresetFields_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"short tuple", `preset_fields = [[0, "Custom", ""]]`},
		{"slot not integer", `preset_fields = [["0", "Custom", "", "SecretLine"]]`},
		{"label not string", `preset_fields = [[0, 1, "", "SecretLine"]]`},
		{"unknown kind", `preset_fields = [[0, "Custom", "", "Secret"]]`},
		{"scalar", `preset_fields = [5]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f presetFile
			_, err := toml.Decode(tt.text, &f)
			assert.Error(t, err)
		})
	}
}

func TestPresetFields_ValidateRejectsInvalidUTF8(t *testing.T) {
	assert.ErrorIs(t, PresetFields{{SlotID: 0, Label: "a\xff"}}.Validate(), ErrInvalidText)
	assert.ErrorIs(t, PresetFields{{SlotID: 0, Label: "a", Placeholder: "\xfe"}}.Validate(), ErrInvalidText)
}
