package linkml

import (
	"github.com/linkml-go/linkml/pkg/expr"
)

// ExpressionValidator evaluates a slot's equals_expression — a sandboxed
// boolean expression (pkg/expr) seeing the whole enclosing instance, not
// just the slot's own value — reporting a failure when it evaluates to
// anything other than true. Expressions are the escape hatch for
// constraints the other validator families can't express declaratively.
// Spec.md §7 surfaces an expression's parse/eval failure as a
// ValidationIssue with code "expression" rather than aborting the engine,
// mirroring how every other Validator reports rather than errors.
type ExpressionValidator struct {
	Evaluator *expr.Evaluator
}

func (v ExpressionValidator) Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	if slot.EqualsExpression == "" {
		return nil
	}

	ok, err := v.checkExpression(slot.EqualsExpression, ec.instance)
	if err != nil {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "expression",
			Message:  err.Error(),
			Slot:     slot.Name,
			docOrder: ec.nextOrder(),
		})
		return nil
	}
	if !ok {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "expression_false",
			Message:  "equals_expression evaluated to false for slot {slot}",
			Slot:     slot.Name,
			Params:   map[string]any{"slot": slot.Name, "expression": slot.EqualsExpression},
			docOrder: ec.nextOrder(),
		})
	}
	return nil
}

// checkExpression evaluates expression against instance's slot values
// exposed as expression variables. A parse or evaluation failure (bad
// syntax, an unknown function, exceeding a sandbox budget) is returned as
// an *ExpressionError — an operational failure distinct from the
// expression legitimately evaluating to false, which the caller reports as
// an ordinary Issue instead.
func (v ExpressionValidator) checkExpression(expression string, instance map[string]any) (bool, error) {
	vars := make(map[string]any, len(instance))
	for k, val := range instance {
		vars[k] = val
	}

	result, err := v.Evaluator.Eval(expression, vars)
	if err != nil {
		return false, &ExpressionError{Code: ExpressionErrorEval, Expr: expression, Message: err.Error()}
	}

	ok, isBool := result.(bool)
	if !isBool {
		return false, &ExpressionError{Code: ExpressionErrorEval, Expr: expression, Message: "expression must evaluate to a boolean"}
	}
	return ok, nil
}
