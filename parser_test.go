package linkml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYAMLDecodesClassesAndSlots(t *testing.T) {
	src := []byte(`
id: https://example.org/test-schema
name: test-schema
classes:
  Person:
    attributes:
      name:
        range: string
        required: true
`)

	doc, err := Parse(src, FormatYAML)
	require.NoError(t, err)
	require.Contains(t, doc.Classes, "Person")
	assert.Equal(t, "Person", doc.Classes["Person"].className)

	nameSlot := doc.Classes["Person"].Attributes["name"]
	require.NotNil(t, nameSlot)
	assert.Equal(t, "name", nameSlot.slotName)
	assert.True(t, nameSlot.Required)
}

func TestParseJSONDecodesClassesAndSlots(t *testing.T) {
	src := []byte(`{
		"id": "https://example.org/test-schema",
		"classes": {
			"Person": {
				"attributes": {
					"name": {"range": "string"}
				}
			}
		}
	}`)

	doc, err := Parse(src, FormatJSON)
	require.NoError(t, err)
	require.Contains(t, doc.Classes, "Person")
	assert.Equal(t, "name", doc.Classes["Person"].Attributes["name"].slotName)
}

func TestParseUnknownFormatErrors(t *testing.T) {
	_, err := Parse([]byte("id: x"), Format("toml"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseInvalidYAMLReturnsParseError(t *testing.T) {
	_, err := Parse([]byte("classes: [this is not a mapping"), FormatYAML)
	require.Error(t, err)

	_, ok := err.(*ParseError)
	assert.True(t, ok, "expected a *ParseError, got %T", err)
}

func TestIndexNamesStampsFromSchemaOnTopLevelSlots(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/top-level",
		Slots: map[string]*SlotDef{
			"name": {Range: "string"},
		},
	}
	indexNames(doc)

	assert.Equal(t, "name", doc.Slots["name"].slotName)
	assert.Equal(t, "https://example.org/top-level", doc.Slots["name"].fromSchema)
}
