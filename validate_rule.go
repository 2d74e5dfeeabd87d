package linkml

import "regexp"

// evalRules runs a class's rules against one decoded instance: for each
// rule, its preconditions are probed (never reported) against the
// instance, and only when every precondition's slot_conditions match does
// its postconditions get evaluated for real, with any failure reported.
// This probe-then-assert shape is the FHIR "Observation.value[x] requires
// exactly one of valueQuantity/valueString" conformance scenario's engine
// (spec.md §8, scenario 1).
func evalRules(ec *evalContext, class *EffectiveClass, instance map[string]any, report *ValidationReport) error {
	for _, rule := range class.Rules {
		if rule.Preconditions != nil && !slotConditionsMatch(rule.Preconditions, instance) {
			continue
		}
		if rule.Postconditions == nil {
			continue
		}
		if !slotConditionsMatch(rule.Postconditions, instance) {
			report.AddIssue(&Issue{
				Severity: SeverityError,
				Path:     ec.path,
				Code:     "rule_postcondition_failed",
				Message:  "postcondition of rule {rule} failed after its preconditions matched",
				Class:    class.Name,
				Params:   map[string]any{"rule": rule.Description},
				docOrder: ec.nextOrder(),
			})
		}
	}
	return nil
}

// slotConditionsMatch probes a RuleConditions block (without mutating or
// reporting) against instance, checking each named slot_condition's
// presence (required) and pattern constraints; other facets of a condition
// are not checked.
func slotConditionsMatch(cond *RuleConditions, instance map[string]any) bool {
	matched := 0
	for slotName, sc := range cond.SlotConditions {
		v, present := instance[slotName]
		switch {
		case sc.Required && !present:
			return false
		case sc.Pattern != "" && present:
			s, ok := v.(string)
			if !ok {
				return false
			}
			if ok2, _ := quickMatch(sc.Pattern, s); !ok2 {
				return false
			}
			matched++
		case present:
			matched++
		}
	}
	return true
}

// quickMatch is a best-effort, non-cached pattern probe used only inside
// rule preconditions, which are evaluated far more often than they fire
// and don't warrant going through the shared compiled-pattern cache.
func quickMatch(pattern, s string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}
