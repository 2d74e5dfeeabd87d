package linkml

import (
	"github.com/linkml-go/linkml/pkg/expr"
	"github.com/linkml-go/linkml/pkg/pattern"
)

// CompilerConfig controls resource limits and shared infrastructure used
// while compiling a ValidatorBank, with functional-option construction
// mirroring the teacher's compiler.go options (CompileBatch's option
// plumbing generalized from per-call to per-Config here).
type CompilerConfig struct {
	PatternCacheSize    int
	ExpressionLimits    expr.Limits
	ExpressionCacheSize int
	Registry            *expr.Registry
}

// Option configures a CompilerConfig.
type Option func(*CompilerConfig)

// WithPatternCacheSize overrides the compiled-pattern LRU cache capacity.
func WithPatternCacheSize(n int) Option {
	return func(c *CompilerConfig) { c.PatternCacheSize = n }
}

// WithExpressionLimits overrides the expression sandbox's depth/node/string
// budgets.
func WithExpressionLimits(limits expr.Limits) Option {
	return func(c *CompilerConfig) { c.ExpressionLimits = limits }
}

// WithFunctionRegistry supplies a custom, possibly already-locked function
// registry instead of the default builtins-only one.
func WithFunctionRegistry(r *expr.Registry) Option {
	return func(c *CompilerConfig) { c.Registry = r }
}

func defaultCompilerConfig() *CompilerConfig {
	return &CompilerConfig{
		PatternCacheSize:    DefaultPatternCacheSize,
		ExpressionLimits:    expr.DefaultLimits,
		ExpressionCacheSize: DefaultExpressionCacheSize,
	}
}

// CompileValidators builds the closed ValidatorBank for one class: its
// effective slot table's facets translated into a fixed sequence of
// Validator instances, plus the shared pattern compiler and expression
// evaluator every instance validated against this class will reuse.
func CompileValidators(view *SchemaView, className string, opts ...Option) (*ValidatorBank, error) {
	if view == nil {
		return nil, ErrViewIsNil
	}

	class, err := view.Class(className)
	if err != nil {
		return nil, err
	}
	if class.Abstract {
		return nil, &SchemaError{
			Code:    SchemaErrorAbstractTarget,
			Class:   class.Name,
			Message: "class " + class.Name + " is abstract and cannot be validated against directly",
		}
	}

	cfg := defaultCompilerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	patterns, err := pattern.New(cfg.PatternCacheSize)
	if err != nil {
		return nil, err
	}

	registry := cfg.Registry
	if registry == nil {
		registry = expr.NewRegistry()
	}
	exprEval, err := expr.NewEvaluator(registry, cfg.ExpressionLimits, cfg.ExpressionCacheSize)
	if err != nil {
		return nil, err
	}

	bank := &ValidatorBank{
		className: className,
		view:      view,
		class:     class,
		patterns:  patterns,
		exprs:     exprEval,
		validators: []Validator{
			TypeValidator{},
			RequiredValidator{},
			CardinalityValidator{},
			PatternValidator{Compiler: patterns},
			RangeValidator{},
			EnumValidator{},
			CombinatorValidator{Compiler: patterns},
			ExpressionValidator{Evaluator: exprEval},
		},
	}

	return bank, nil
}
