package linkml

import "fmt"

// linearize computes the is_a-then-mixins ancestor order for a class, using
// a depth-first walk (reversed post-order) so that a class always precedes its parents, a parent
// always precedes its own ancestors, and local mixin order is preserved
// left to right — the same "most specific first, stable otherwise" contract
// the teacher's allOf/anyOf evaluators rely on for deterministic sub-schema
// ordering, applied here to class ancestry instead of JSON Schema branches.
func linearize(classes map[string]*ClassDef, className string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		for _, s := range stack {
			if s == name {
				return &SchemaError{
					Code:    SchemaErrorLinearization,
					Class:   name,
					Message: fmt.Sprintf("is_a/mixin cycle: %v", append(stack, name)),
				}
			}
		}

		c, ok := classes[name]
		if !ok {
			return &SchemaError{Code: SchemaErrorUndefinedRef, Class: name, Message: "class not defined"}
		}

		next := append(append([]string{}, stack...), name)

		var parents []string
		if c.IsA != "" {
			parents = append(parents, c.IsA)
		}
		parents = append(parents, c.Mixins...)

		// Visit parents last-declared first: the reversal below then leaves
		// is_a ahead of the mixins, and the mixins in declaration order.
		for i := len(parents) - 1; i >= 0; i-- {
			if err := visit(parents[i], next); err != nil {
				return err
			}
		}

		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		return nil
	}

	if err := visit(className, nil); err != nil {
		return nil, err
	}

	// visit appends ancestors before descendants (post-order); reverse so
	// the class itself leads its own linearization, most-specific first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
