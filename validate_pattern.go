package linkml

import (
	"regexp"

	"github.com/linkml-go/linkml/pkg/pattern"
)

// PatternValidator checks a string-valued slot against its plain pattern
// or structured_pattern, compiling (and caching) through the shared
// pattern.Compiler the ValidatorBank was built with.
type PatternValidator struct {
	Compiler *pattern.Compiler
}

func (v PatternValidator) Validate(ec *evalContext, slot *EffectiveSlot, value any, report *ValidationReport) error {
	if value == nil || (slot.Pattern == "" && slot.StructuredPattern == nil) {
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return nil // TypeValidator already reports the type mismatch
	}

	var (
		re  *regexp.Regexp
		err error
	)

	if slot.StructuredPattern != nil {
		re, err = v.Compiler.CompileStructured(slot.StructuredPattern.Syntax, ec.view.Prefixes())
	} else {
		re, err = v.Compiler.Compile(slot.Pattern)
	}

	if err != nil {
		return &PatternError{Code: PatternErrorCompile, Pattern: slot.Pattern, Message: err.Error()}
	}

	matched, err := pattern.Match(ec.ctx, re, s, pattern.DefaultMatchBudget)
	if err != nil {
		return &PatternError{Code: PatternErrorCompile, Pattern: slot.Pattern, Message: err.Error()}
	}

	if !matched {
		report.AddIssue(&Issue{
			Severity: SeverityError,
			Path:     ec.path,
			Code:     "pattern_mismatch",
			Message:  "value {value} does not match pattern {pattern}",
			Slot:     slot.Name,
			Params:   map[string]any{"value": s, "pattern": slot.Pattern},
			docOrder: ec.nextOrder(),
		})
	}
	return nil
}
