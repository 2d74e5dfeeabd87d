package linkml

import (
	"fmt"
	"sync/atomic"
)

// checkUniqueKeys enforces a class's unique_keys constraints across a batch
// of instances: no two instances may share the same tuple of values across
// a named key's unique_key_slots. Unlike the per-slot Validator families
// this check is necessarily batch-scoped — it can't implement the
// Validator interface, since it needs every instance at once rather than
// one slot of one instance — so engine.go's ValidateBatch calls it
// directly as its own uniqueness barrier/merge step instead of listing it
// among ValidatorBank.validators.
func checkUniqueKeys(class *EffectiveClass, instances []map[string]any, report *ValidationReport, order *int64) {
	for keyName, uk := range class.UniqueKeys {
		seen := make(map[string]int) // tuple signature -> first instance index
		for idx, inst := range instances {
			sig, ok := keySignature(uk.UniqueKeySlots, inst)
			if !ok {
				continue // a nil component never collides with anything
			}
			if first, exists := seen[sig]; exists {
				report.AddIssue(&Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("[%d]", idx),
					Code:     "unique_key_violation",
					Message:  "duplicate value {value} for unique key {key}",
					Class:    class.Name,
					Params:   map[string]any{"value": sig, "key": keyName, "first": first},
					docOrder: int(atomic.AddInt64(order, 1)),
				})
			} else {
				seen[sig] = idx
			}
		}
	}
}

// keySignature builds a stable string signature for a unique key's slot
// tuple, returning ok=false if any component is absent (LinkML treats a
// missing key component as non-comparable, not as an implicit null match).
func keySignature(slots []string, inst map[string]any) (string, bool) {
	sig := ""
	for _, s := range slots {
		v, ok := inst[s]
		if !ok || v == nil {
			return "", false
		}
		sig += fmt.Sprintf("%s=%v|", s, v)
	}
	return sig, true
}
