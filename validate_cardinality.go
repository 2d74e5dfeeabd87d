package linkml

// CardinalityValidator checks that a multivalued slot's list length is
// non-empty when required, and that a single-valued slot was not given a
// list. LinkML leaves explicit min/max item counts to a slot's own
// minimum_value/maximum_value facets when those are meaningful on a list
// length; this validator enforces the structural multivalued/not
// distinction itself.
type CardinalityValidator struct{}

func (CardinalityValidator) Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	if value == nil {
		return nil
	}

	list, isList := value.([]any)

	if slot.Multivalued && !isList {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "cardinality_violation",
			Message:  "slot {slot} is multivalued and requires a list, got a scalar",
			Slot:     slot.Name,
			Params:   map[string]any{"slot": slot.Name},
			docOrder: ec.nextOrder(),
		})
		return nil
	}

	if !slot.Multivalued && isList {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "cardinality_violation",
			Message:  "slot {slot} is single-valued but got a list of {count} values",
			Slot:     slot.Name,
			Params:   map[string]any{"slot": slot.Name, "count": len(list)},
			docOrder: ec.nextOrder(),
		})
		return nil
	}

	if slot.Multivalued && slot.Required && len(list) == 0 {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "cardinality_violation",
			Message:  "slot {slot} is required and multivalued but has no values",
			Slot:     slot.Name,
			Params:   map[string]any{"slot": slot.Name, "count": 0, "min": 1, "max": "unbounded"},
			docOrder: ec.nextOrder(),
		})
	}
	return nil
}
