package linkml

// EnumValidator checks a slot's value against its range enum's permissible
// value set, supporting both a statically listed permissible_values table
// and an instance-backed enum whose value set is the set of identifier
// values seen across a batch of instances of another class (spec.md
// §4.4.1's conformance scenario: an ISO3166-style enum backed by Country
// instances, where "us" fails case-sensitively but "US" passes).
type EnumValidator struct{}

func (EnumValidator) Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	if value == nil {
		return nil
	}

	kind, err := ec.view.ResolveRange(slot.Range)
	if err != nil || kind != RangeEnum {
		return nil
	}

	enumDef, err := ec.view.Enum(slot.Range)
	if err != nil {
		return err
	}

	s, ok := value.(string)
	if !ok {
		return nil
	}

	var member bool
	if enumDef.InstanceBacked != nil {
		member = ec.instanceBackedMember(enumDef.InstanceBacked, s)
	} else {
		_, member = enumDef.PermissibleValues[s]
	}

	if !member {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "value_not_in_enum",
			Message:  "value {value} is not a permissible value of {enum}",
			Slot:     slot.Name,
			Params:   map[string]any{"value": s, "enum": slot.Range},
			docOrder: ec.nextOrder(),
		})
	}
	return nil
}

// instanceBackedMember reports whether candidate matches the match_slot
// value of any indexed instance of the enum's backing class. When
// match_slot is empty, the backing class's identifier slot is used, or else
// the first of defaultIdentifierSlotFallback the class has. Matching is
// exact and case-sensitive, per the spec's "us" (lowercase) vs "US" case.
func (ec *evalContext) instanceBackedMember(ib *InstanceBacked, candidate string) bool {
	if ec.instances == nil {
		return false
	}
	slot := ib.MatchSlot
	if class, err := ec.view.Class(ib.Class); slot == "" && err == nil {
		for _, name := range class.SlotOrder {
			if class.Slots[name].Identifier {
				slot = name
				break
			}
		}
		for _, name := range defaultIdentifierSlotFallback {
			if _, ok := class.Slots[name]; ok && slot == "" {
				slot = name
			}
		}
	}
	values := ec.instances.valuesFor(ib.Class, slot)
	for _, v := range values {
		if v == candidate {
			return true
		}
	}
	return false
}
