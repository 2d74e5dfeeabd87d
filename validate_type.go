package linkml

// TypeValidator checks that an instance value's runtime kind matches the
// scalar base type its slot's range resolves to (after following any
// typeof chain), the LinkML analogue of the teacher's type.go keyword.
type TypeValidator struct{}

func (TypeValidator) Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	if value == nil {
		return nil // absence is Required's concern, not Type's
	}

	kind, err := ec.view.ResolveRange(slot.Range)
	if err != nil || kind != RangeType {
		return nil // class/enum ranges are checked by their own validators
	}

	base := baseTypeOf(ec.view, slot.Range)
	actual := kindOf(value)

	if !typeCompatible(base, actual, value) {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "type_mismatch",
			Message:  "value is of type {actual}, expected {expected}",
			Slot:     slot.Name,
			Params:   map[string]any{"actual": actual, "expected": base},
			docOrder: ec.nextOrder(),
		})
	}
	return nil
}

// baseTypeOf follows a type's typeof chain down to its ultimate base
// (str/int/float/bool/decimal), defaulting to "str" for the handful of
// builtin scalar names that have no explicit types.<name> entry.
func baseTypeOf(view *SchemaView, rangeName string) string {
	seen := make(map[string]bool)
	name := rangeName
	for {
		t, err := view.Type(name)
		if err != nil || t == nil {
			return fallbackBase(name)
		}
		if t.BaseType != "" {
			return t.BaseType
		}
		if t.TypeOf == "" || seen[t.TypeOf] {
			return fallbackBase(name)
		}
		seen[t.TypeOf] = true
		name = t.TypeOf
	}
}

func fallbackBase(name string) string {
	switch name {
	case "integer":
		return "int"
	case "float", "double":
		return "float"
	case "decimal":
		return "decimal"
	case "boolean":
		return "bool"
	default:
		return "str"
	}
}

// typeCompatible reports whether an instance kind (as classified by
// kindOf) satisfies a resolved base type name. A float64 with no
// fractional part is accepted for an "int" base, since every JSON/YAML
// decoder in the stack hands back float64 for bare numeric literals and a
// schema author writing `range: integer` never intends 3 to be rejected
// just because it arrived as 3.0.
func typeCompatible(base, actual string, value any) bool {
	switch base {
	case "str":
		return actual == "string"
	case "int":
		if actual == "integer" {
			return true
		}
		return actual == "float" && isIntegralFloat(value)
	case "float", "decimal":
		return actual == "integer" || actual == "float"
	case "bool":
		return actual == "boolean"
	default:
		return true
	}
}

// isIntegralFloat reports whether value is a float32/float64 with zero
// fractional part.
func isIntegralFloat(value any) bool {
	switch v := value.(type) {
	case float64:
		return v == float64(int64(v))
	case float32:
		return v == float32(int32(v))
	default:
		return false
	}
}
