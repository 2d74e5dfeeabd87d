// Package conformance exercises the end-to-end behaviors a complete LinkML
// engine is expected to get right: rule probing, instance-backed enums,
// import cycle detection, slot_usage's restriction to existing slots,
// all_of's parallel/sequential equivalence, and the pattern engine's ReDoS
// guard. Each test stands in for one concrete scenario a conformant
// implementation must pass.
package conformance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkml-go/linkml"
)

// TestObservationRulePrecondition mirrors a FHIR-style Observation class
// whose rule says: when component kind is "quantity", value_quantity is
// required; the precondition is probed silently and only a matching
// instance's postcondition failure is reported.
func TestObservationRulePrecondition(t *testing.T) {
	doc := &linkml.SchemaDocument{
		ID: "https://example.org/observation",
		Classes: map[string]*linkml.ClassDef{
			"Observation": {
				Attributes: map[string]*linkml.SlotDef{
					"kind":            {Range: "string"},
					"value_quantity":  {Range: "float"},
					"value_string":    {Range: "string"},
				},
				Rules: []*linkml.RuleDef{
					{
						Description: "quantity observations require value_quantity",
						Preconditions: &linkml.RuleConditions{
							SlotConditions: map[string]*linkml.SlotDef{
								"kind": {Pattern: "^quantity$"},
							},
						},
						Postconditions: &linkml.RuleConditions{
							SlotConditions: map[string]*linkml.SlotDef{
								"value_quantity": {Required: true},
							},
						},
					},
				},
			},
		},
	}

	view, err := linkml.BuildSchemaView(doc)
	require.NoError(t, err)

	bank, err := linkml.CompileValidators(view, "Observation")
	require.NoError(t, err)

	t.Run("precondition not matched is silently skipped", func(t *testing.T) {
		report, err := bank.Validate(context.Background(), map[string]any{
			"kind":         "string",
			"value_string": "hello",
		})
		require.NoError(t, err)
		assert.True(t, report.Valid)
	})

	t.Run("precondition matched but postcondition fails is reported", func(t *testing.T) {
		report, err := bank.Validate(context.Background(), map[string]any{
			"kind": "quantity",
		})
		require.NoError(t, err)
		assert.False(t, report.Valid)

		var found bool
		for _, issue := range report.Issues {
			if issue.Code == "rule_postcondition_failed" {
				found = true
			}
		}
		assert.True(t, found, "expected a rule_postcondition_failed issue")
	})
}

// TestInstanceBackedEnumCaseSensitivity covers an ISO3166-style enum backed
// by Country instances, where the match is exact: "US"/"GB" pass, "XX"
// fails as absent, and "us" (lowercase) fails despite a case-insensitive
// collision with "US".
func TestInstanceBackedEnumCaseSensitivity(t *testing.T) {
	doc := &linkml.SchemaDocument{
		ID: "https://example.org/geo",
		Classes: map[string]*linkml.ClassDef{
			"Country": {
				Attributes: map[string]*linkml.SlotDef{
					"code": {Range: "string", Identifier: true},
				},
			},
			"Shipment": {
				Attributes: map[string]*linkml.SlotDef{
					"destination": {Range: "CountryCode"},
				},
			},
		},
		Enums: map[string]*linkml.EnumDef{
			"CountryCode": {
				InstanceBacked: &linkml.InstanceBacked{Class: "Country", MatchSlot: "code"},
			},
		},
	}

	view, err := linkml.BuildSchemaView(doc)
	require.NoError(t, err)

	bank, err := linkml.CompileValidators(view, "Shipment")
	require.NoError(t, err)

	countries := []map[string]any{{"code": "US"}, {"code": "GB"}}
	idx := linkml.NewInstanceIndex()
	idx.AddInstances("Country", countries)

	cases := []struct {
		name  string
		code  string
		valid bool
	}{
		{"known uppercase code", "US", true},
		{"another known uppercase code", "GB", true},
		{"unknown code", "XX", false},
		{"known code wrong case", "us", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := bank.ValidateBatch(context.Background(), []map[string]any{{"destination": tc.code}}, linkml.WithInstanceIndex(idx))
			require.NoError(t, err)
			assert.Equal(t, tc.valid, report.Valid)
		})
	}
}

// TestEqualsExpressionSeesSiblingSlots covers a slot whose equals_expression
// references another slot on the same instance, confirming the expression
// environment is the whole decoded document rather than just the slot's own
// value.
func TestEqualsExpressionSeesSiblingSlots(t *testing.T) {
	doc := &linkml.SchemaDocument{
		ID: "https://example.org/expr",
		Classes: map[string]*linkml.ClassDef{
			"Range": {
				Attributes: map[string]*linkml.SlotDef{
					"low":  {Range: "integer"},
					"high": {Range: "integer", EqualsExpression: "high > low"},
				},
			},
		},
	}

	view, err := linkml.BuildSchemaView(doc)
	require.NoError(t, err)

	bank, err := linkml.CompileValidators(view, "Range")
	require.NoError(t, err)

	t.Run("high above low passes", func(t *testing.T) {
		report, err := bank.Validate(context.Background(), map[string]any{"low": 1.0, "high": 5.0})
		require.NoError(t, err)
		assert.True(t, report.Valid)
	})

	t.Run("high below low fails", func(t *testing.T) {
		report, err := bank.Validate(context.Background(), map[string]any{"low": 5.0, "high": 1.0})
		require.NoError(t, err)
		assert.False(t, report.Valid)

		var found bool
		for _, issue := range report.Issues {
			if issue.Code == "expression_false" {
				found = true
			}
		}
		assert.True(t, found, "expected an expression_false issue")
	})
}

// TestImportCycleNamesBothPaths covers two schemas that import each other:
// resolving either one must fail with an ImportError naming both paths in
// the cycle.
func TestImportCycleNamesBothPaths(t *testing.T) {
	fs := newMemoryFS(map[string]string{
		"a.yaml": "id: https://example.org/a\nname: a\nimports: [b]\n",
		"b.yaml": "id: https://example.org/b\nname: b\nimports: [a]\n",
	})
	loader := linkml.NewLoader(fs)

	_, err := loader.ResolveImports(context.Background(), "a.yaml")
	require.Error(t, err)

	impErr, ok := err.(*linkml.ImportError)
	require.True(t, ok, "expected *linkml.ImportError, got %T", err)
	assert.Equal(t, linkml.ImportErrorCycle, impErr.Code)
	assert.Contains(t, impErr.Chain, "a.yaml")
	assert.Contains(t, impErr.Chain, "b.yaml")
}

// TestSlotUsageCannotIntroduceNewSlot covers a class whose slot_usage
// refers to a slot the class can't otherwise reach; this must fail
// materialization with a SchemaError rather than silently adding the slot.
func TestSlotUsageCannotIntroduceNewSlot(t *testing.T) {
	doc := &linkml.SchemaDocument{
		ID: "https://example.org/bad",
		Classes: map[string]*linkml.ClassDef{
			"Thing": {
				Slots: []string{"name"},
				SlotUsage: map[string]*linkml.SlotDef{
					"never_declared": {Required: true},
				},
			},
		},
		Slots: map[string]*linkml.SlotDef{
			"name": {Range: "string"},
		},
	}

	_, err := linkml.BuildSchemaView(doc)
	require.Error(t, err)

	schemaErr, ok := err.(*linkml.SchemaError)
	require.True(t, ok, "expected *linkml.SchemaError, got %T", err)
	assert.Equal(t, linkml.SchemaErrorSlotUsageNewSlot, schemaErr.Code)
}

// TestAllOfParallelSequentialEquivalence covers a slot whose all_of has
// enough branches to cross the parallel-evaluation threshold, checking
// that the reported validity is identical to a hand-evaluated sequential
// expectation regardless of which branch the concurrent path happens to
// fail on first.
func TestAllOfParallelSequentialEquivalence(t *testing.T) {
	newBranches := func(n int, badAt int) []*linkml.SlotDef {
		branches := make([]*linkml.SlotDef, 0, n)
		for i := 0; i < n; i++ {
			if i == badAt {
				branches = append(branches, &linkml.SlotDef{Range: "integer"})
				continue
			}
			branches = append(branches, &linkml.SlotDef{Range: "string"})
		}
		return branches
	}

	buildBank := func(t *testing.T, n, badAt int) *linkml.ValidatorBank {
		doc := &linkml.SchemaDocument{
			ID: "https://example.org/combinator",
			Classes: map[string]*linkml.ClassDef{
				"Widget": {
					Attributes: map[string]*linkml.SlotDef{
						"label": {Range: "string", AllOf: newBranches(n, badAt)},
					},
				},
			},
		}
		view, err := linkml.BuildSchemaView(doc)
		require.NoError(t, err)
		bank, err := linkml.CompileValidators(view, "Widget")
		require.NoError(t, err)
		return bank
	}

	t.Run("sequential path (below the parallel threshold)", func(t *testing.T) {
		bank := buildBank(t, 3, 1)
		report, err := bank.Validate(context.Background(), map[string]any{"label": "hello"})
		require.NoError(t, err)
		assert.False(t, report.Valid)
	})

	t.Run("parallel path (at/above the parallel threshold)", func(t *testing.T) {
		bank := buildBank(t, 6, 4)
		report, err := bank.Validate(context.Background(), map[string]any{"label": "hello"})
		require.NoError(t, err)
		assert.False(t, report.Valid, "the failing branch must still be caught once branches run concurrently")
	})

	t.Run("parallel path, all branches pass", func(t *testing.T) {
		branches := newBranches(6, -1)
		doc := &linkml.SchemaDocument{
			ID: "https://example.org/combinator-ok",
			Classes: map[string]*linkml.ClassDef{
				"Widget": {
					Attributes: map[string]*linkml.SlotDef{
						"label": {Range: "string", AllOf: branches},
					},
				},
			},
		}
		view, err := linkml.BuildSchemaView(doc)
		require.NoError(t, err)
		bank, err := linkml.CompileValidators(view, "Widget")
		require.NoError(t, err)

		report, err := bank.Validate(context.Background(), map[string]any{"label": "hello"})
		require.NoError(t, err)
		assert.True(t, report.Valid)
	})
}

// TestReDoSPatternRejected covers the pattern engine's structural guard
// against catastrophic-backtracking shapes like (a+)+, which must be
// rejected at compile time rather than ever being matched.
func TestReDoSPatternRejected(t *testing.T) {
	doc := &linkml.SchemaDocument{
		ID: "https://example.org/redos",
		Classes: map[string]*linkml.ClassDef{
			"Thing": {
				Attributes: map[string]*linkml.SlotDef{
					"value": {Range: "string", Pattern: `(a+)+$`},
				},
			},
		},
	}

	view, err := linkml.BuildSchemaView(doc)
	require.NoError(t, err)

	bank, err := linkml.CompileValidators(view, "Thing")
	require.NoError(t, err)

	_, err = bank.Validate(context.Background(), map[string]any{"value": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa!"})
	require.Error(t, err)

	patErr, ok := err.(*linkml.PatternError)
	require.True(t, ok, "expected *linkml.PatternError, got %T", err)
	assert.Equal(t, linkml.PatternErrorCompile, patErr.Code)
}

// memoryFS is a minimal in-memory linkml.FilesystemAdapter for tests that
// exercise the import resolver without touching disk.
type memoryFS struct {
	files map[string]string
}

func newMemoryFS(files map[string]string) *memoryFS {
	return &memoryFS{files: files}
}

func (m *memoryFS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, assert.AnError
	}
	return []byte(content), nil
}
