package linkml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personSchemaDoc() *SchemaDocument {
	return &SchemaDocument{
		ID: "https://example.org/person",
		Classes: map[string]*ClassDef{
			"Person": {
				Attributes: map[string]*SlotDef{
					"name": {Required: true, Range: "string"},
					"age":  {Range: "integer"},
					"role": {IfAbsent: "member", Required: true, Range: "string"},
				},
			},
		},
	}
}

func mustBank(t *testing.T, doc *SchemaDocument, className string) *ValidatorBank {
	t.Helper()
	view, err := BuildSchemaView(doc)
	require.NoError(t, err)
	bank, err := CompileValidators(view, className)
	require.NoError(t, err)
	return bank
}

func TestValidateRequiredSlotMissingProducesIssue(t *testing.T) {
	bank := mustBank(t, personSchemaDoc(), "Person")

	report, err := bank.Validate(context.Background(), map[string]any{"age": 10})
	require.NoError(t, err)
	assert.False(t, report.Valid)

	found := false
	for _, iss := range report.Issues {
		if iss.Slot == "name" {
			found = true
		}
	}
	assert.True(t, found, "expected a missing 'name' to be reported")
}

func TestIfAbsentDefaultSatisfiesRequired(t *testing.T) {
	bank := mustBank(t, personSchemaDoc(), "Person")

	report, err := bank.Validate(context.Background(), map[string]any{"name": "Alice"})
	require.NoError(t, err)

	for _, iss := range report.Issues {
		assert.NotEqual(t, "role", iss.Slot, "role should be filled in by its ifabsent default, not flagged missing")
	}
}

func TestValidateValidInstanceProducesNoIssues(t *testing.T) {
	bank := mustBank(t, personSchemaDoc(), "Person")

	report, err := bank.Validate(context.Background(), map[string]any{"name": "Alice", "age": 30})
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)
}

func TestValidateBatchPreservesInputOrder(t *testing.T) {
	bank := mustBank(t, personSchemaDoc(), "Person")

	instances := []map[string]any{
		{"age": 1},           // missing name
		{"name": "Bob"},      // valid
		{"age": 2},           // missing name
	}

	report, err := bank.ValidateBatch(context.Background(), instances)
	require.NoError(t, err)
	assert.False(t, report.Valid)

	var paths []string
	for _, iss := range report.Issues {
		paths = append(paths, iss.Path)
	}
	require.Len(t, paths, 2)
	assert.Equal(t, "Person[0].name", paths[0])
	assert.Equal(t, "Person[2].name", paths[1])
}

func TestValidateBatchConcurrentResultMatchesSequential(t *testing.T) {
	bank := mustBank(t, personSchemaDoc(), "Person")

	instances := make([]map[string]any, 0, 20)
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			instances = append(instances, map[string]any{"age": i})
		} else {
			instances = append(instances, map[string]any{"name": "n", "age": i})
		}
	}

	concurrent, err := bank.ValidateBatch(context.Background(), instances, WithMaxWorkers(8))
	require.NoError(t, err)
	sequential, err := bank.ValidateBatch(context.Background(), instances, WithMaxWorkers(1))
	require.NoError(t, err)

	require.Equal(t, len(sequential.Issues), len(concurrent.Issues))
	for i := range sequential.Issues {
		assert.Equal(t, sequential.Issues[i].Path, concurrent.Issues[i].Path)
		assert.Equal(t, sequential.Issues[i].Code, concurrent.Issues[i].Code)
	}
}

func TestInstanceIndexAddAndMerge(t *testing.T) {
	idx := NewInstanceIndex()
	idx.AddInstances("Country", []map[string]any{{"code": "US"}, {"code": "GB"}})

	other := NewInstanceIndex()
	other.AddInstances("Country", []map[string]any{{"code": "FR"}})
	idx.mergeFrom(other)

	values := idx.valuesFor("Country", "code")
	assert.ElementsMatch(t, []string{"US", "GB", "FR"}, values)
}

func TestInstanceIndexValuesForUnknownClassIsNil(t *testing.T) {
	idx := NewInstanceIndex()
	assert.Nil(t, idx.valuesFor("Nonexistent", "code"))
}

func TestCompileValidatorsRejectsAbstractTargetClass(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/abstract-target",
		Classes: map[string]*ClassDef{
			"Shape": {
				Abstract: true,
				Attributes: map[string]*SlotDef{
					"sides": {Range: "integer"},
				},
			},
		},
	}
	view, err := BuildSchemaView(doc)
	require.NoError(t, err)

	_, err = CompileValidators(view, "Shape")
	require.Error(t, err)

	schemaErr, ok := err.(*SchemaError)
	require.True(t, ok, "expected a *SchemaError, got %T", err)
	assert.Equal(t, SchemaErrorAbstractTarget, schemaErr.Code)
}

func TestTypeValidatorAcceptsIntegralFloatForIntegerRange(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/integral-float",
		Classes: map[string]*ClassDef{
			"Range": {
				Attributes: map[string]*SlotDef{
					"low":  {Range: "integer"},
					"high": {Range: "integer"},
				},
			},
		},
	}
	bank := mustBank(t, doc, "Range")

	report, err := bank.Validate(context.Background(), map[string]any{"low": 1.0, "high": 5.0})
	require.NoError(t, err)
	assert.True(t, report.Valid, "decoded JSON numbers (float64) must satisfy an integer range when they carry no fraction")
}

func TestTypeValidatorRejectsNonIntegralFloatForIntegerRange(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/non-integral-float",
		Classes: map[string]*ClassDef{
			"Range": {
				Attributes: map[string]*SlotDef{
					"low": {Range: "integer"},
				},
			},
		},
	}
	bank := mustBank(t, doc, "Range")

	report, err := bank.Validate(context.Background(), map[string]any{"low": 1.5})
	require.NoError(t, err)
	assert.False(t, report.Valid, "a fractional float must still be rejected against an integer range")
}

func TestCombinatorAllOfRunsPatternOnBranches(t *testing.T) {
	doc := &SchemaDocument{
		ID: "https://example.org/combinator-pattern",
		Classes: map[string]*ClassDef{
			"Item": {
				Attributes: map[string]*SlotDef{
					"code": {
						AllOf: []*SlotDef{
							{Range: "string", Pattern: `^[A-Z]{3}$`},
						},
					},
				},
			},
		},
	}
	bank := mustBank(t, doc, "Item")

	bad, err := bank.Validate(context.Background(), map[string]any{"code": "abc"})
	require.NoError(t, err)
	assert.False(t, bad.Valid, "all_of branch pattern should reject a lowercase code")

	good, err := bank.Validate(context.Background(), map[string]any{"code": "ABC"})
	require.NoError(t, err)
	assert.True(t, good.Valid)
}
