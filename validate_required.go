package linkml

// RequiredValidator enforces that a required slot's value is present,
// after ifabsent defaults have already been injected by the engine (see
// engine.go's applyIfAbsentDefaults — DESIGN.md records this ordering as
// the resolution of the "ifabsent vs required" open question).
type RequiredValidator struct{}

func (RequiredValidator) Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	if !slot.Required {
		return nil
	}
	if value == nil {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "missing_required_slot",
			Message:  "required slot {slot} is missing",
			Slot:     slot.Name,
			Params:   map[string]any{"slot": slot.Name},
			docOrder: ec.nextOrder(),
		})
	}
	return nil
}
