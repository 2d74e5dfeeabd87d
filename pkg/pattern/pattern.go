// Package pattern compiles and evaluates LinkML's two pattern flavors: plain
// regular expressions and structured named-capture patterns built from a
// syntax string plus a CURIE prefix map. It caches compiled expressions,
// heuristically rejects catastrophic-backtracking shapes before they ever
// run, and bounds every match call to a time budget so one pathological
// value can't stall an entire validation run.
package pattern

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrReDoS is returned when a pattern's structural shape matches one of
	// the known catastrophic-backtracking heuristics.
	ErrReDoS = errors.New("pattern rejected: exhibits catastrophic backtracking shape")

	// ErrUnknownPrefix is returned when a structured pattern's syntax
	// references a "{prefix}" token absent from the supplied prefix map.
	ErrUnknownPrefix = errors.New("unknown prefix token")

	// ErrDuplicateCapture is returned when a structured pattern declares the
	// same named capture group twice.
	ErrDuplicateCapture = errors.New("duplicate named capture group")

	// ErrBudgetExceeded is returned when a match call does not complete
	// within its allotted time budget.
	ErrBudgetExceeded = errors.New("pattern match exceeded its time budget")
)

// DefaultMatchBudget bounds a single Match call absent an explicit one.
const DefaultMatchBudget = 50 * time.Millisecond

// Compiler compiles and caches regular expressions, keyed by their final
// (post-interpolation) source text so two slots sharing a pattern string
// compile it exactly once.
type Compiler struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// New builds a Compiler with a bounded LRU cache of the given capacity.
func New(capacity int) (*Compiler, error) {
	if capacity <= 0 {
		capacity = 1000
	}
	cache, err := lru.New[string, *regexp.Regexp](capacity)
	if err != nil {
		return nil, err
	}
	return &Compiler{cache: cache}, nil
}

// Compile compiles a plain regular expression, rejecting shapes that
// heuristically look like they'd exhibit catastrophic backtracking before
// ever handing them to regexp.Compile.
func (c *Compiler) Compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := c.cache.Get(pattern); ok {
		return re, nil
	}

	if looksLikeReDoS(pattern) {
		return nil, ErrReDoS
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.cache.Add(pattern, re)
	return re, nil
}

// CompileStructured interpolates every "{prefix}" token in syntax against
// prefixes, then compiles the result the same as Compile.
func (c *Compiler) CompileStructured(syntax string, prefixes map[string]string) (*regexp.Regexp, error) {
	interpolated, err := Interpolate(syntax, prefixes)
	if err != nil {
		return nil, err
	}
	if err := checkDuplicateCaptures(interpolated); err != nil {
		return nil, err
	}
	return c.Compile(interpolated)
}

// Interpolate substitutes every "{name}" token in syntax with its expansion
// from prefixes.
func Interpolate(syntax string, prefixes map[string]string) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(syntax) {
		open := strings.IndexByte(syntax[i:], '{')
		if open < 0 {
			b.WriteString(syntax[i:])
			break
		}
		open += i
		b.WriteString(syntax[i:open])

		close := strings.IndexByte(syntax[open:], '}')
		if close < 0 {
			return "", errors.New("unterminated {prefix} token")
		}
		close += open

		name := syntax[open+1 : close]
		expansion, ok := prefixes[name]
		if !ok {
			return "", ErrUnknownPrefix
		}
		b.WriteString(expansion)
		i = close + 1
	}
	return b.String(), nil
}

// checkDuplicateCaptures rejects a pattern that declares the same named
// group twice, which Go's regexp package otherwise silently shadows.
func checkDuplicateCaptures(pattern string) error {
	re := regexp.MustCompile(`\(\?P<([a-zA-Z_][a-zA-Z0-9_]*)>`)
	seen := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(pattern, -1) {
		if seen[m[1]] {
			return ErrDuplicateCapture
		}
		seen[m[1]] = true
	}
	return nil
}

// looksLikeReDoS applies a structural heuristic for the nested quantifier
// shapes best known to cause catastrophic backtracking: a parenthesized
// group without nested parentheses that contains + or * and is itself
// followed by + or *, e.g. (a+)+ or (a*)*. It may reject safe patterns that
// merely resemble this shape; overlapping alternations such as (a|a)* and
// groups containing nested parentheses are not flagged.
func looksLikeReDoS(pattern string) bool {
	nestedQuantifier := regexp.MustCompile(`\([^()]*[+*][^()]*\)[+*]`)
	return nestedQuantifier.MatchString(pattern)
}

// Match runs re against s, bounded by budget (DefaultMatchBudget if zero).
// Go's regexp engine offers no native cancellation, so the match runs on a
// separate goroutine and the budget is enforced by racing it against a
// timer; a timed-out goroutine is abandoned rather than killed, since Go
// provides no way to preempt a running regexp match.
func Match(ctx context.Context, re *regexp.Regexp, s string, budget time.Duration) (bool, error) {
	if budget <= 0 {
		budget = DefaultMatchBudget
	}

	done := make(chan bool, 1)
	go func() {
		done <- re.MatchString(s)
	}()

	select {
	case result := <-done:
		return result, nil
	case <-time.After(budget):
		return false, ErrBudgetExceeded
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
