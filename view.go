package linkml

import "sort"

// SchemaView is the fully resolved, read-only view over an import-merged
// SchemaDocument: every class's effective slot table pre-materialized so
// the validation engine and the graph-DB projector never re-walk the
// linearization at validation time. A SchemaView is immutable once built
// and is safe to share read-only across the worker pool in engine.go.
type SchemaView struct {
	doc     *SchemaDocument
	classes map[string]*EffectiveClass
}

// BuildSchemaView materializes every class defined in doc into an
// EffectiveClass, failing fast on the first schema-level inconsistency
// (linearization cycle, duplicate identifier, slot_usage violation) rather
// than deferring it to validation time.
func BuildSchemaView(doc *SchemaDocument) (*SchemaView, error) {
	if doc == nil {
		return nil, ErrSchemaIsNil
	}

	view := &SchemaView{
		doc:     doc,
		classes: make(map[string]*EffectiveClass, len(doc.Classes)),
	}

	for name, c := range doc.Classes {
		if c.Mixin {
			// mixins are not independently instantiable; they are folded
			// into whatever class lists them, not materialized themselves.
			continue
		}
		ec, err := materializeClass(doc, name)
		if err != nil {
			return nil, err
		}
		view.classes[name] = ec
	}

	if err := view.checkRangeNarrowing(); err != nil {
		return nil, err
	}
	if err := view.checkAbstractTargets(); err != nil {
		return nil, err
	}

	return view, nil
}

// Class returns the effective class table for name, or an undefined
// reference error if the schema has no class by that name.
func (v *SchemaView) Class(name string) (*EffectiveClass, error) {
	c, ok := v.classes[name]
	if !ok {
		return nil, &SchemaError{Code: SchemaErrorUndefinedRef, Class: name, Message: "undefined class"}
	}
	return c, nil
}

// EffectiveSlots returns the effective per-slot table for className, sorted
// in first-declared document order for deterministic iteration.
func (v *SchemaView) EffectiveSlots(className string) ([]*EffectiveSlot, error) {
	c, err := v.Class(className)
	if err != nil {
		return nil, err
	}
	out := make([]*EffectiveSlot, 0, len(c.SlotOrder))
	for _, name := range c.SlotOrder {
		out = append(out, c.Slots[name])
	}
	return out, nil
}

// AllDescendants returns every class (excluding className itself) whose
// linearization includes className, i.e. every direct or indirect subclass.
func (v *SchemaView) AllDescendants(className string) []string {
	var out []string
	for name, ec := range v.classes {
		if name == className {
			continue
		}
		for _, ancestor := range ec.Linearization {
			if ancestor == className && ancestor != name {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// IsAChain returns className's own linearization (itself first, then its
// is_a ancestors and mixins in linearization order).
func (v *SchemaView) IsAChain(className string) ([]string, error) {
	c, err := v.Class(className)
	if err != nil {
		return nil, err
	}
	return c.Linearization, nil
}

// ResolveRange resolves a slot's range to either a class, an enum, or a
// type name, returning which of the three it is so callers (validators,
// the projector) can dispatch without re-deriving it.
type RangeKind int

const (
	RangeUnknown RangeKind = iota
	RangeClass
	RangeEnum
	RangeType
)

// ResolveRange classifies rangeName against the schema's namespaces.
func (v *SchemaView) ResolveRange(rangeName string) (RangeKind, error) {
	if rangeName == "" {
		return RangeType, nil // untyped slots default to the implicit string type
	}
	if _, ok := v.classes[rangeName]; ok {
		return RangeClass, nil
	}
	if _, ok := v.doc.Enums[rangeName]; ok {
		return RangeEnum, nil
	}
	if _, ok := v.doc.Types[rangeName]; ok {
		return RangeType, nil
	}
	if isBuiltinScalar(rangeName) {
		return RangeType, nil
	}
	return RangeUnknown, &SchemaError{Code: SchemaErrorUndefinedRef, Message: "undefined range: " + rangeName}
}

// Enum returns the enum definition by name.
func (v *SchemaView) Enum(name string) (*EnumDef, error) {
	e, ok := v.doc.Enums[name]
	if !ok {
		return nil, &SchemaError{Code: SchemaErrorUndefinedRef, Message: "undefined enum: " + name}
	}
	return e, nil
}

// Type returns the type definition by name.
func (v *SchemaView) Type(name string) (*TypeDef, error) {
	t, ok := v.doc.Types[name]
	if !ok {
		return nil, &SchemaError{Code: SchemaErrorUndefinedRef, Message: "undefined type: " + name}
	}
	return t, nil
}

// Prefixes returns the schema's CURIE prefix map.
func (v *SchemaView) Prefixes() map[string]string {
	return v.doc.Prefixes
}

// ClassNames returns every instantiable (non-mixin) class name in the view.
func (v *SchemaView) ClassNames() []string {
	out := make([]string, 0, len(v.classes))
	for name := range v.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// EnumNames returns every enum name declared in the schema, sorted for
// deterministic iteration (e.g. by the graph-DB projector).
func (v *SchemaView) EnumNames() []string {
	out := make([]string, 0, len(v.doc.Enums))
	for name := range v.doc.Enums {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func isBuiltinScalar(name string) bool {
	switch name {
	case "string", "integer", "float", "double", "decimal", "boolean", "date", "datetime", "uri", "uriorcurie":
		return true
	default:
		return false
	}
}
