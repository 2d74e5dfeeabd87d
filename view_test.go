package linkml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSchemaViewRejectsRangeWidening(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/widen",
		Classes: map[string]*ClassDef{
			"Dog": {},
			"Cat": {},
			"Animal": {
				Attributes: map[string]*SlotDef{
					"pet": {Range: "Dog"},
				},
			},
			"Owner": {
				IsA: "Animal",
				SlotUsage: map[string]*SlotDef{
					"pet": {Range: "Cat"},
				},
			},
		},
		Slots: map[string]*SlotDef{},
	}
	doc.Classes["Owner"].Slots = []string{"pet"}
	doc.Classes["Animal"].Slots = []string{"pet"}

	_, err := BuildSchemaView(doc)
	require.Error(t, err)
	schemaErr, ok := err.(*SchemaError)
	require.True(t, ok)
	assert.Equal(t, SchemaErrorRangeNarrowing, schemaErr.Code)
}

func TestBuildSchemaViewAllowsRangeNarrowing(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/narrow",
		Classes: map[string]*ClassDef{
			"Animal": {},
			"Dog":    {IsA: "Animal"},
			"Owner": {
				Attributes: map[string]*SlotDef{
					"pet": {Range: "Animal"},
				},
			},
			"DogOwner": {
				IsA: "Owner",
				SlotUsage: map[string]*SlotDef{
					"pet": {Range: "Dog"},
				},
			},
		},
	}
	doc.Classes["Owner"].Slots = []string{"pet"}
	doc.Classes["DogOwner"].Slots = []string{"pet"}

	view, err := BuildSchemaView(doc)
	require.NoError(t, err)

	ec, err := view.Class("DogOwner")
	require.NoError(t, err)
	assert.Equal(t, "Dog", ec.Slots["pet"].Range)
}

func TestBuildSchemaViewRejectsAbstractTarget(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/abstract",
		Classes: map[string]*ClassDef{
			"Shape": {Abstract: true},
			"Drawing": {
				Attributes: map[string]*SlotDef{
					"outline": {Range: "Shape"},
				},
			},
		},
	}

	_, err := BuildSchemaView(doc)
	require.Error(t, err)
	schemaErr, ok := err.(*SchemaError)
	require.True(t, ok)
	assert.Equal(t, SchemaErrorAbstractTarget, schemaErr.Code)
}

func TestResolveRangeClassification(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/resolve",
		Classes: map[string]*ClassDef{
			"Person": {},
		},
		Enums: map[string]*EnumDef{
			"Status": {PermissibleValues: map[string]*PermissibleValue{"active": {}}},
		},
		Types: map[string]*TypeDef{
			"PositiveInt": {TypeOf: "integer"},
		},
	}

	view, err := BuildSchemaView(doc)
	require.NoError(t, err)

	kind, err := view.ResolveRange("Person")
	require.NoError(t, err)
	assert.Equal(t, RangeClass, kind)

	kind, err = view.ResolveRange("Status")
	require.NoError(t, err)
	assert.Equal(t, RangeEnum, kind)

	kind, err = view.ResolveRange("PositiveInt")
	require.NoError(t, err)
	assert.Equal(t, RangeType, kind)

	kind, err = view.ResolveRange("string")
	require.NoError(t, err)
	assert.Equal(t, RangeType, kind)

	_, err = view.ResolveRange("Nonexistent")
	require.Error(t, err)
}

func TestAllDescendants(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/descendants",
		Classes: map[string]*ClassDef{
			"Animal": {},
			"Dog":    {IsA: "Animal"},
			"Puppy":  {IsA: "Dog"},
			"Cat":    {IsA: "Animal"},
		},
	}

	view, err := BuildSchemaView(doc)
	require.NoError(t, err)

	descendants := view.AllDescendants("Animal")
	assert.ElementsMatch(t, []string{"Dog", "Puppy", "Cat"}, descendants)
}
