// Package graphdb projects a resolved LinkML schema into a TypeQL-like
// graph-database schema definition: classes become either entities or
// relations depending on their slot shape, scalar-ranged slots become
// owned attributes, and class-ranged slots become role-playing
// relationships. It never talks to a real database — its output is a
// deterministic DSL text a human or a separate loader consumes.
package graphdb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linkml-go/linkml"
)

// Diagnostic records a construct the projector could not faithfully
// translate; the projector degrades that construct to a comment in the
// output rather than aborting the whole projection.
type Diagnostic struct {
	Class   string
	Message string
}

// Result is the output of Project: the rendered DSL text plus any
// constructs that were degraded to comments along the way.
type Result struct {
	DSL         string
	Diagnostics []Diagnostic
}

// Project renders every instantiable class in view into a schema
// definition, in deterministic alphabetical class/slot order so the same
// schema always projects to byte-identical output.
func Project(view *linkml.SchemaView) (*Result, error) {
	if view == nil {
		return nil, linkml.ErrViewIsNil
	}

	names := view.ClassNames()
	analysis, err := analyze(view, names)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	var diags []Diagnostic

	b.WriteString("define\n\n")

	for _, name := range names {
		shape := analysis[name]
		switch shape.kind {
		case kindRelation:
			renderRelation(&b, view, name, shape, &diags)
		default:
			renderEntity(&b, view, name, shape, &diags)
		}
	}

	for _, name := range view.EnumNames() {
		renderEnum(&b, view, name, &diags)
	}

	for _, name := range names {
		renderRules(&b, view, name, &diags)
	}

	return &Result{DSL: b.String(), Diagnostics: diags}, nil
}

type classKind int

const (
	kindEntity classKind = iota
	kindRelation
)

type classShape struct {
	kind       classKind
	attributes []string // scalar/enum-ranged slot names
	roles      []string // class-ranged slot names
}

// analyze classifies every class as an entity or a relation: a class with
// two or more class-ranged slots that participate in a mutual
// back-reference (see hasMutualBackReference) is projected as a relation; everything else
// is an entity, mirroring the cmd/schemagen dependency-graph analysis this
// package's shape is grounded on, generalized from Go struct fields to
// LinkML slots.
func analyze(view *linkml.SchemaView, names []string) (map[string]classShape, error) {
	out := make(map[string]classShape, len(names))

	for _, name := range names {
		slots, err := view.EffectiveSlots(name)
		if err != nil {
			return nil, err
		}

		shape := classShape{kind: kindEntity}
		for _, slot := range slots {
			kind, err := view.ResolveRange(slot.Range)
			if err != nil {
				continue
			}
			if kind == linkml.RangeClass {
				shape.roles = append(shape.roles, slot.Name)
			} else {
				shape.attributes = append(shape.attributes, slot.Name)
			}
		}

		if len(shape.roles) >= 2 && hasMutualBackReference(view, name, shape.roles) {
			shape.kind = kindRelation
		}

		sort.Strings(shape.attributes)
		sort.Strings(shape.roles)
		out[name] = shape
	}

	return out, nil
}

// hasMutualBackReference reports whether at least two of className's
// class-ranged roles target classes that themselves have a slot whose range
// is exactly className (ancestors and descendants of either class are not
// considered) — the heuristic
// signal that a class is modeling an association rather than a standalone
// entity.
func hasMutualBackReference(view *linkml.SchemaView, className string, roles []string) bool {
	count := 0
	for _, roleSlot := range roles {
		slots, err := view.EffectiveSlots(className)
		if err != nil {
			continue
		}
		var target string
		for _, s := range slots {
			if s.Name == roleSlot {
				target = s.Range
				break
			}
		}
		if target == "" {
			continue
		}

		targetSlots, err := view.EffectiveSlots(target)
		if err != nil {
			continue
		}
		for _, ts := range targetSlots {
			if ts.Range == className {
				count++
				break
			}
		}
	}
	return count >= 2
}

func renderEntity(b *strings.Builder, view *linkml.SchemaView, name string, shape classShape, diags *[]Diagnostic) {
	fmt.Fprintf(b, "%s sub entity", typeqlName(name))
	for _, attr := range shape.attributes {
		fmt.Fprintf(b, ",\n    owns %s", typeqlName(attr))
	}
	for _, role := range shape.roles {
		fmt.Fprintf(b, ",\n    plays %s:%s", typeqlName(role+"-relation"), typeqlName(role))
	}
	b.WriteString(";\n\n")

	for _, attr := range shape.attributes {
		renderAttributeDecl(b, view, name, attr, diags)
	}
}

func renderRelation(b *strings.Builder, view *linkml.SchemaView, name string, shape classShape, diags *[]Diagnostic) {
	fmt.Fprintf(b, "%s sub relation", typeqlName(name))
	for _, role := range shape.roles {
		fmt.Fprintf(b, ",\n    relates %s", typeqlName(role))
	}
	for _, attr := range shape.attributes {
		fmt.Fprintf(b, ",\n    owns %s", typeqlName(attr))
	}
	b.WriteString(";\n\n")

	for _, attr := range shape.attributes {
		renderAttributeDecl(b, view, name, attr, diags)
	}
}

// renderAttributeDecl emits a standalone attribute type declaration for one
// class's slot; an attribute name shared by several classes is declared once
// per class, not deduplicated. A slot whose range the
// projector can't map to a TypeQL value type degrades to a comment instead
// of aborting the whole projection (ProjectErrorUnsupported's non-fatal
// case).
func renderAttributeDecl(b *strings.Builder, view *linkml.SchemaView, className, slotName string, diags *[]Diagnostic) {
	slots, err := view.EffectiveSlots(className)
	if err != nil {
		return
	}
	var slot *linkml.EffectiveSlot
	for _, s := range slots {
		if s.Name == slotName {
			slot = s
			break
		}
	}
	if slot == nil {
		return
	}

	valueType, ok := typeqlValueType(slot.Range)
	if !ok {
		*diags = append(*diags, Diagnostic{Class: className, Message: "unsupported attribute range " + slot.Range + " for slot " + slotName})
		fmt.Fprintf(b, "# unsupported: %s.%s has unmappable range %q\n\n", className, slotName, slot.Range)
		return
	}

	fmt.Fprintf(b, "%s sub attribute, value %s;\n\n", typeqlName(slotName), valueType)
}

// renderEnum emits a permissible-value block for a static enum: an
// attribute subtyped from string, restricted to one value per permissible
// value. An instance-backed enum (spec.md §4.4.1) has no static value set
// to enumerate, so it degrades to a comment and a Diagnostic instead.
func renderEnum(b *strings.Builder, view *linkml.SchemaView, name string, diags *[]Diagnostic) {
	enum, err := view.Enum(name)
	if err != nil {
		return
	}

	if enum.InstanceBacked != nil || len(enum.PermissibleValues) == 0 {
		*diags = append(*diags, Diagnostic{Class: name, Message: "enum " + name + " has no static permissible values to project"})
		fmt.Fprintf(b, "# unsupported: enum %s is instance-backed and has no static value set\n\n", name)
		return
	}

	values := make([]string, 0, len(enum.PermissibleValues))
	for v := range enum.PermissibleValues {
		values = append(values, v)
	}
	sort.Strings(values)

	fmt.Fprintf(b, "%s sub attribute, value string", typeqlName(name))
	for _, v := range values {
		fmt.Fprintf(b, ",\n    regex \"^%s$\"", v)
	}
	b.WriteString(";\n\n")
}

// renderRules projects a class's rules (preconditions/postconditions) into
// TypeQL `rule` stanzas. A rule whose conditions are limited to simple
// slot presence/range facets translates into a when/then constraint over
// the owned attributes; anything richer (pattern or expression
// conditions) degrades to a comment carrying the rule's own description,
// per the projector's degrade-not-abort contract.
func renderRules(b *strings.Builder, view *linkml.SchemaView, className string, diags *[]Diagnostic) {
	class, err := view.Class(className)
	if err != nil {
		return
	}

	for i, rule := range class.Rules {
		ruleName := fmt.Sprintf("%s-rule-%d", typeqlName(className), i+1)

		pre, preOK := simpleConditionSlots(rule.Preconditions)
		post, postOK := simpleConditionSlots(rule.Postconditions)

		if !preOK || !postOK || len(pre) == 0 || len(post) == 0 {
			*diags = append(*diags, Diagnostic{Class: className, Message: "rule " + ruleName + " could not be translated to a constraint"})
			desc := rule.Description
			if desc == "" {
				desc = "(no description)"
			}
			fmt.Fprintf(b, "# unsupported: rule %s: %s\n\n", ruleName, desc)
			continue
		}

		fmt.Fprintf(b, "rule %s:\nwhen {\n", ruleName)
		fmt.Fprintf(b, "    $x isa %s", typeqlName(className))
		for _, s := range pre {
			fmt.Fprintf(b, ",\n    has %s $_", typeqlName(s))
		}
		b.WriteString(";\n} then {\n")
		for _, s := range post {
			fmt.Fprintf(b, "    $x has %s $_;\n", typeqlName(s))
		}
		b.WriteString("};\n\n")
	}
}

// simpleConditionSlots returns the slot names a RuleConditions block
// constrains, provided every condition is a bare presence/range fact the
// projector knows how to translate; ok is false if cond references a
// facet (pattern, structured_pattern, equals_expression) richer than
// that, which the projector cannot faithfully express as a TypeQL
// constraint.
func simpleConditionSlots(cond *linkml.RuleConditions) (slots []string, ok bool) {
	if cond == nil {
		return nil, true
	}
	names := make([]string, 0, len(cond.SlotConditions))
	for name, def := range cond.SlotConditions {
		if def != nil && (def.Pattern != "" || def.StructuredPattern != nil || def.EqualsExpression != "") {
			return nil, false
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, true
}

func typeqlValueType(rangeName string) (string, bool) {
	switch rangeName {
	case "string", "uri", "uriorcurie", "date", "datetime", "":
		return "string", true
	case "integer":
		return "long", true
	case "float", "double", "decimal":
		return "double", true
	case "boolean":
		return "boolean", true
	default:
		return "", false
	}
}

// typeqlName lowercases and hyphenates a LinkML identifier, which is
// typically CamelCase or snake_case, into TypeQL's conventional
// kebab-case type naming.
func typeqlName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r == '_' || r == ' ' {
			b.WriteByte('-')
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
		}
		b.WriteRune(toLower(r))
	}
	return b.String()
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
