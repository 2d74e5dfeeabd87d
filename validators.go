package linkml

import (
	"context"
	"sync/atomic"

	"github.com/linkml-go/linkml/pkg/expr"
	"github.com/linkml-go/linkml/pkg/pattern"
)

// evalContext carries the per-call state a Validator needs: the schema view
// it was compiled against, the path prefix for the value being checked, and
// the cancellation/deadline signal threaded from engine.go's worker pool.
type evalContext struct {
	ctx   context.Context
	view  *SchemaView
	path  string

	// instances indexes a validated batch's instances by class/slot, used
	// by EnumValidator to resolve instance-backed enums. nil outside of
	// ValidateBatch, where no cross-instance view exists.
	instances *InstanceIndex

	// instance is the full decoded document the slot currently being
	// checked belongs to, exposed to ExpressionValidator so an
	// equals_expression can reference sibling slots, not just its own
	// slot's value.
	instance map[string]any

	// docOrder is a monotonically increasing counter stamped onto each
	// Issue as it's raised, restoring a deterministic order after a
	// concurrent merge (see ValidationReport.StableSort). It's shared (and
	// incremented atomically) across the goroutines an all_of branch fans
	// out to, since those still need a single global ordering.
	docOrder *int64
}

func (e *evalContext) nextOrder() int {
	return int(atomic.AddInt64(e.docOrder, 1))
}

// Validator is implemented by the per-slot validator families in the bank
// (type, required, cardinality, pattern, range, enum, boolean combinator,
// expression); unique keys and rules run as separate passes (checkUniqueKeys,
// evalRules). Each validates one slot's value against one
// EffectiveSlot and appends any findings to report; it never returns an
// error for a failed *check* — only for a condition it cannot report as an
// issue (context cancellation, a resource-limit trip, a pattern that is
// rejected or fails to compile or match).
type Validator interface {
	Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error
}

// ValidatorBank is the compiled, closed set of validators to run for a
// single class, built once by CompileValidators and then reused across
// every instance validated against that class — mirroring the teacher's
// Compiler.CompileBatch's "compile once, evaluate many" split.
type ValidatorBank struct {
	className  string
	view       *SchemaView
	class      *EffectiveClass
	validators []Validator

	patterns *pattern.Compiler
	exprs    *expr.Evaluator
}
