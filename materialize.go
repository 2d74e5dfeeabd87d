package linkml

import (
	"sort"

	"github.com/samber/lo"
)

// Provenance records which class in a linearization contributed the final
// value of a facet on an EffectiveSlot, so callers (and graphdb's projector)
// can explain why a slot ended up required, or why its range narrowed.
type Provenance struct {
	Facet string
	Class string
}

// EffectiveSlot is the fully materialized, conflict-resolved view of one
// slot as it applies to one class: the result of folding together every
// slots.<name> definition, class-level attribute, and slot_usage override
// across the class's linearization.
type EffectiveSlot struct {
	Name     string
	Range    string
	Required bool
	Multivalued bool
	Identifier  bool
	Key         bool
	MinimumValue *Rat
	MaximumValue *Rat
	Pattern           string
	StructuredPattern *StructuredPattern
	IfAbsent          string
	EqualsExpression  string

	AnyOf        []*SlotDef
	AllOf        []*SlotDef
	ExactlyOneOf []*SlotDef
	NoneOf       []*SlotDef

	Provenance []Provenance
}

// EffectiveClass is the materialized form of a ClassDef: its full
// linearization and its effective per-slot table, keyed by slot name.
type EffectiveClass struct {
	Name           string
	Linearization  []string // most-specific first, including className itself
	Slots          map[string]*EffectiveSlot
	SlotOrder      []string // document order of first appearance, for stable Issue.Path ordering
	Abstract       bool
	UniqueKeys     map[string]*UniqueKeyDef
	Rules          []*RuleDef
}

// materializeClass folds together every contributing slot definition across
// className's linearization into one effective table, applying LinkML's
// "most specific wins, lists union" conflict policy: a fact stated closer to
// className (lower index in the linearization) overrides the same fact
// stated by an ancestor, mirroring the teacher's schemamerge.go facet-merge
// logic (narrower-wins for scalar facets, set-union for list facets) but
// keyed by ancestry depth instead of left-to-right schema order.
func materializeClass(doc *SchemaDocument, className string) (*EffectiveClass, error) {
	chain, err := linearize(doc.Classes, className)
	if err != nil {
		return nil, err
	}

	ec := &EffectiveClass{
		Name:          className,
		Linearization: chain,
		Slots:         make(map[string]*EffectiveSlot),
	}

	root := doc.Classes[className]
	ec.Abstract = root.Abstract

	// Walk the linearization from least to most specific so later
	// (more-specific) folds naturally override earlier ones.
	for i := len(chain) - 1; i >= 0; i-- {
		cname := chain[i]
		c := doc.Classes[cname]
		if c == nil {
			continue
		}

		slotNames := lo.Uniq(append(append([]string{}, c.Slots...), keysOf(c.Attributes)...))
		for _, sname := range slotNames {
			def := resolveSlotDef(doc, c, sname)
			if def == nil {
				continue
			}
			foldSlot(ec, sname, def, cname)
		}
	}

	// slot_usage is applied last and only against the class itself (not its
	// ancestors' own slot_usage blocks), and may only refine a slot already
	// present in the effective table — introducing a brand new slot name
	// here is a schema error (spec.md's slot_usage invariant).
	for sname, usage := range root.SlotUsage {
		if _, exists := ec.Slots[sname]; !exists {
			return nil, &SchemaError{
				Code:    SchemaErrorSlotUsageNewSlot,
				Class:   className,
				Slot:    sname,
				Message: "slot_usage cannot introduce a slot not already reachable by the class",
			}
		}
		foldSlot(ec, sname, usage, className)
	}

	if err := checkIdentifierUniqueness(ec); err != nil {
		return nil, err
	}

	ec.UniqueKeys = root.UniqueKeys
	ec.Rules = root.Rules
	return ec, nil
}

// resolveSlotDef finds the definition backing slot name sname as seen from
// class c: an attribute defined directly on c takes precedence over a
// top-level slots.<name> entry of the same name, matching LinkML's
// "attributes are local slots" semantics.
func resolveSlotDef(doc *SchemaDocument, c *ClassDef, sname string) *SlotDef {
	if attr, ok := c.Attributes[sname]; ok {
		return attr
	}
	if s, ok := doc.Slots[sname]; ok {
		return s
	}
	return nil
}

// foldSlot merges def into ec's effective table for sname. A Provenance
// entry naming fromClass is appended whenever def sets range, required,
// minimum_value, maximum_value, pattern or equals_expression; the other
// facets are merged without a provenance entry.
func foldSlot(ec *EffectiveClass, sname string, def *SlotDef, fromClass string) {
	existing, ok := ec.Slots[sname]
	if !ok {
		existing = &EffectiveSlot{Name: sname}
		ec.Slots[sname] = existing
		ec.SlotOrder = append(ec.SlotOrder, sname)
	}

	if def.Range != "" {
		existing.Range = def.Range
		existing.Provenance = append(existing.Provenance, Provenance{Facet: "range", Class: fromClass})
	}
	if def.Required {
		existing.Required = true
		existing.Provenance = append(existing.Provenance, Provenance{Facet: "required", Class: fromClass})
	}
	if def.Multivalued {
		existing.Multivalued = true
	}
	if def.Identifier {
		existing.Identifier = true
	}
	if def.Key {
		existing.Key = true
	}
	if def.MinimumValue != nil {
		existing.MinimumValue = def.MinimumValue
		existing.Provenance = append(existing.Provenance, Provenance{Facet: "minimum_value", Class: fromClass})
	}
	if def.MaximumValue != nil {
		existing.MaximumValue = def.MaximumValue
		existing.Provenance = append(existing.Provenance, Provenance{Facet: "maximum_value", Class: fromClass})
	}
	if def.Pattern != "" {
		existing.Pattern = def.Pattern
		existing.Provenance = append(existing.Provenance, Provenance{Facet: "pattern", Class: fromClass})
	}
	if def.StructuredPattern != nil {
		existing.StructuredPattern = def.StructuredPattern
	}
	if def.IfAbsent != "" {
		existing.IfAbsent = def.IfAbsent
	}
	if def.EqualsExpression != "" {
		existing.EqualsExpression = def.EqualsExpression
		existing.Provenance = append(existing.Provenance, Provenance{Facet: "equals_expression", Class: fromClass})
	}
	if len(def.AnyOf) > 0 {
		existing.AnyOf = def.AnyOf
	}
	if len(def.AllOf) > 0 {
		existing.AllOf = def.AllOf
	}
	if len(def.ExactlyOneOf) > 0 {
		existing.ExactlyOneOf = def.ExactlyOneOf
	}
	if len(def.NoneOf) > 0 {
		existing.NoneOf = def.NoneOf
	}
}

// checkIdentifierUniqueness enforces the invariant that a class's effective
// slot table names at most one identifier slot, since LinkML instances are
// addressed by a single primary identifier.
func checkIdentifierUniqueness(ec *EffectiveClass) error {
	var found string
	for name, s := range ec.Slots {
		if !s.Identifier {
			continue
		}
		if found != "" {
			return &SchemaError{
				Code:    SchemaErrorDuplicateIdentifier,
				Class:   ec.Name,
				Slot:    name,
				Message: "class declares more than one identifier slot: " + found + ", " + name,
			}
		}
		found = name
	}
	return nil
}

// keysOf returns m's keys in sorted order, since attributes have no
// declared ordering of their own (unlike classes.<name>.slots, which is an
// explicit list) and a materialized class's SlotOrder must be
// deterministic across rebuilds — map iteration order is not (spec.md
// §8's materialization-fixpoint property).
func keysOf(m map[string]*SlotDef) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
