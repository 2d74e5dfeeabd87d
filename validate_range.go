package linkml

import "math/big"

// RangeValidator checks a numeric slot's value against its
// minimum_value/maximum_value facets using exact big.Rat comparison, so a
// decimal boundary like 2.50 is never subject to float64 rounding error.
type RangeValidator struct{}

func (RangeValidator) Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	if value == nil || (slot.MinimumValue == nil && slot.MaximumValue == nil) {
		return nil
	}

	r, ok := numericRat(value)
	if !ok {
		return nil // TypeValidator already reports the type mismatch
	}

	violated := false
	if slot.MinimumValue != nil && r.Cmp(slot.MinimumValue.Rat) < 0 {
		violated = true
	}
	if slot.MaximumValue != nil && r.Cmp(slot.MaximumValue.Rat) > 0 {
		violated = true
	}

	if violated {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "range_violation",
			Message:  "value {value} is outside the range [{minimum}, {maximum}]",
			Slot:     slot.Name,
			Params: map[string]any{
				"value":   FormatRat(&Rat{r}),
				"minimum": formatBound(slot.MinimumValue),
				"maximum": formatBound(slot.MaximumValue),
			},
			docOrder: ec.nextOrder(),
		})
	}
	return nil
}

func numericRat(value any) (*big.Rat, bool) {
	switch v := value.(type) {
	case int:
		return new(big.Rat).SetInt64(int64(v)), true
	case int64:
		return new(big.Rat).SetInt64(v), true
	case float64:
		return new(big.Rat).SetFloat64(v), true
	default:
		return nil, false
	}
}

func formatBound(r *Rat) string {
	if r == nil {
		return "unbounded"
	}
	return FormatRat(r)
}
