package linkml

import (
	"golang.org/x/sync/errgroup"

	"github.com/linkml-go/linkml/pkg/pattern"
)

// CombinatorValidator evaluates a slot's any_of/all_of/exactly_one_of/
// none_of branches against the same value, matching the teacher's
// allOf.go/anyOf.go/oneOf.go/not.go short-circuit-and-collect-indices
// pattern. When a slot's all_of has at least DefaultAllOfParallelThreshold
// branches, they're evaluated concurrently via an errgroup instead of in
// sequence — spec.md's parallel/sequential equivalence property requires
// both paths to produce the identical (stably sorted) issue set.
type CombinatorValidator struct {
	Compiler *pattern.Compiler
}

func (v CombinatorValidator) Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	if value == nil {
		return nil
	}

	if len(slot.AnyOf) > 0 {
		if err := v.evalAnyOf(ec, slot, value, report); err != nil {
			return err
		}
	}
	if len(slot.AllOf) > 0 {
		if err := v.evalAllOf(ec, slot, value, report); err != nil {
			return err
		}
	}
	if len(slot.ExactlyOneOf) > 0 {
		v.evalExactlyOneOf(ec, slot, value, report)
	}
	if len(slot.NoneOf) > 0 {
		v.evalNoneOf(ec, slot, value, report)
	}
	return nil
}

func (v CombinatorValidator) evalAnyOf(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	for _, branch := range slot.AnyOf {
		sub := NewValidationReport()
		if err := evalSlotFragment(ec, v.Compiler, branch, value, sub); err != nil {
			return err
		}
		if sub.Valid {
			return nil
		}
	}
	report.AddIssue(combinatorIssue(ec, slot, "any_of"))
	return nil
}

func (v CombinatorValidator) evalAllOf(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	branches := slot.AllOf

	if len(branches) < DefaultAllOfParallelThreshold {
		for _, branch := range branches {
			sub := NewValidationReport()
			if err := evalSlotFragment(ec, v.Compiler, branch, value, sub); err != nil {
				return err
			}
			if !sub.Valid {
				report.AddIssue(combinatorIssue(ec, slot, "all_of"))
				return nil
			}
		}
		return nil
	}

	subs := make([]*ValidationReport, len(branches))
	g, gctx := errgroup.WithContext(ec.ctx)
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			sub := NewValidationReport()
			subEC := &evalContext{ctx: gctx, view: ec.view, path: ec.path, instances: ec.instances, docOrder: ec.docOrder}
			if err := evalSlotFragment(subEC, v.Compiler, branch, value, sub); err != nil {
				return err
			}
			subs[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, sub := range subs {
		if !sub.Valid {
			report.AddIssue(combinatorIssue(ec, slot, "all_of"))
			return nil
		}
	}
	return nil
}

func (v CombinatorValidator) evalExactlyOneOf(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) {
	count := 0
	for _, branch := range slot.ExactlyOneOf {
		sub := NewValidationReport()
		_ = evalSlotFragment(ec, v.Compiler, branch, value, sub)
		if sub.Valid {
			count++
		}
	}
	if count != 1 {
		report.AddIssue(combinatorIssue(ec, slot, "exactly_one_of"))
	}
}

func (v CombinatorValidator) evalNoneOf(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) {
	for _, branch := range slot.NoneOf {
		sub := NewValidationReport()
		_ = evalSlotFragment(ec, v.Compiler, branch, value, sub)
		if sub.Valid {
			report.AddIssue(combinatorIssue(ec, slot, "none_of"))
			return
		}
	}
}

// evalSlotFragment runs the type/range/pattern checks a SlotDef branch
// implies against value, without cardinality/required (those apply to the
// enclosing slot, not to each branch). compiler may be nil when branch
// carries no pattern/structured_pattern facet.
func evalSlotFragment(ec *evalContext, compiler *pattern.Compiler, branch *SlotDef, value any, report *ValidationReport) error {
	fragSlot := &EffectiveSlot{
		Name: "branch", Range: branch.Range, Pattern: branch.Pattern,
		StructuredPattern: branch.StructuredPattern,
		MinimumValue:      branch.MinimumValue,
		MaximumValue:      branch.MaximumValue,
	}
	if err := (TypeValidator{}).Validate(ec, fragSlot, value, report); err != nil {
		return err
	}
	if err := (RangeValidator{}).Validate(ec, fragSlot, value, report); err != nil {
		return err
	}
	if err := (PatternValidator{Compiler: compiler}).Validate(ec, fragSlot, value, report); err != nil {
		return err
	}
	return nil
}

func combinatorIssue(ec *evalContext, slot *EffectiveSlot, combinator string) *Issue {
	return &Issue{
		Severity: SeverityError,
		Path:     ec.path,
		Code:     "boolean_combinator_violation",
		Message:  "value fails the {combinator} constraint on slot {slot}",
		Slot:     slot.Name,
		Params:   map[string]any{"combinator": combinator, "slot": slot.Name},
		docOrder: ec.nextOrder(),
	}
}
