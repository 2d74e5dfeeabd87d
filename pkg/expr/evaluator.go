package expr

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"lukechampine.com/blake3"
)

var (
	ErrDepthExceeded      = errors.New("expression exceeds maximum nesting depth")
	ErrNodeBudgetExceeded = errors.New("expression exceeds maximum node count")
	ErrStringTooLong      = errors.New("expression source exceeds maximum string length")
	ErrTypeMismatch       = errors.New("operand type mismatch")
)

// Limits bounds the resources a single expression may consume, enforced at
// parse time (depth, node count, source length) rather than during
// evaluation, so a pathological expression is rejected before it ever runs.
type Limits struct {
	MaxDepth      int
	MaxNodes      int
	MaxStringLen  int
}

// DefaultLimits matches the ambient resource ceilings the rest of the
// engine uses (see the root package's const.go Default* values), duplicated
// here so pkg/expr has no dependency back on the root package.
var DefaultLimits = Limits{
	MaxDepth:     32,
	MaxNodes:     10_000,
	MaxStringLen: 1 << 20,
}

// Evaluator parses, caches, and evaluates expressions against a variable
// environment. Parsed ASTs are cached by a cryptographic digest of their
// source text — never by a format-string concatenation of inputs, which
// would let two distinct expressions collide into the same cache slot.
type Evaluator struct {
	registry *Registry
	limits   Limits
	cache    *lru.Cache[[32]byte, Node]
}

// NewEvaluator builds an Evaluator with the given function registry,
// sandbox limits, and parsed-AST cache capacity.
func NewEvaluator(registry *Registry, limits Limits, cacheSize int) (*Evaluator, error) {
	if cacheSize <= 0 {
		cacheSize = 1000
	}
	cache, err := lru.New[[32]byte, Node](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Evaluator{registry: registry, limits: limits, cache: cache}, nil
}

// Eval parses (or fetches from cache) src and evaluates it against vars.
func (e *Evaluator) Eval(src string, vars map[string]any) (any, error) {
	node, err := e.compile(src)
	if err != nil {
		return nil, err
	}
	return e.eval(node, vars)
}

// compile returns the parsed, budget-checked AST for src, using the
// digest-keyed cache to avoid re-parsing and re-checking an expression
// that's already been validated once.
func (e *Evaluator) compile(src string) (Node, error) {
	if len(src) > e.limits.MaxStringLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(src))
	}

	key := blake3.Sum256([]byte(src))
	if node, ok := e.cache.Get(key); ok {
		return node, nil
	}

	node, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if d := Depth(node); d > e.limits.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrDepthExceeded, d)
	}
	if n := CountNodes(node); n > e.limits.MaxNodes {
		return nil, fmt.Errorf("%w: %d nodes", ErrNodeBudgetExceeded, n)
	}

	e.cache.Add(key, node)
	return node, nil
}

func (e *Evaluator) eval(n Node, vars map[string]any) (any, error) {
	switch v := n.(type) {
	case NumberLit:
		return v.Value, nil
	case StringLit:
		return v.Value, nil
	case BoolLit:
		return v.Value, nil
	case Ident:
		val, ok := vars[v.Name]
		if !ok {
			return nil, nil // an absent slot evaluates to nil, not an error
		}
		return val, nil
	case UnaryOp:
		x, err := e.eval(v.X, vars)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case "not":
			b, ok := x.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: 'not' requires a boolean", ErrTypeMismatch)
			}
			return !b, nil
		case "-":
			f, ok := x.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: unary '-' requires a number", ErrTypeMismatch)
			}
			return -f, nil
		}
		return nil, fmt.Errorf("unknown unary operator %q", v.Op)
	case BinaryOp:
		return e.evalBinary(v, vars)
	case Call:
		args := make([]any, len(v.Args))
		for i, a := range v.Args {
			val, err := e.eval(a, vars)
			if err != nil {
				return nil, err
			}
			args[i] = val
		}
		return e.registry.Call(v.Func, args)
	default:
		return nil, fmt.Errorf("unhandled node type %T", n)
	}
}

func (e *Evaluator) evalBinary(v BinaryOp, vars map[string]any) (any, error) {
	if v.Op == "and" || v.Op == "or" {
		l, err := e.eval(v.L, vars)
		if err != nil {
			return nil, err
		}
		lb, ok := l.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: '%s' requires boolean operands", ErrTypeMismatch, v.Op)
		}
		if v.Op == "and" && !lb {
			return false, nil
		}
		if v.Op == "or" && lb {
			return true, nil
		}
		r, err := e.eval(v.R, vars)
		if err != nil {
			return nil, err
		}
		rb, ok := r.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: '%s' requires boolean operands", ErrTypeMismatch, v.Op)
		}
		return rb, nil
	}

	l, err := e.eval(v.L, vars)
	if err != nil {
		return nil, err
	}
	r, err := e.eval(v.R, vars)
	if err != nil {
		return nil, err
	}

	switch v.Op {
	case "==":
		return l == r, nil
	case "!=":
		return l != r, nil
	}

	lf, lok := l.(float64)
	rf, rok := r.(float64)
	if v.Op == "+" {
		if ls, ok := l.(string); ok {
			if rs, ok := r.(string); ok {
				return ls + rs, nil
			}
		}
	}
	if !lok || !rok {
		return nil, fmt.Errorf("%w: '%s' requires numeric operands", ErrTypeMismatch, v.Op)
	}

	switch v.Op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, errors.New("division by zero")
		}
		return lf / rf, nil
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	}
	return nil, fmt.Errorf("unknown binary operator %q", v.Op)
}
