package linkml

// Default resource limits. The pattern cache size and the expression limits
// are overridable via functional options on the compiler (WithPatternCacheSize,
// WithExpressionLimits); the others are fixed. These mirror the caps called out in the resource model:
// bounded caches, bounded expression sandbox, and the parallel/sequential
// threshold for all_of combinators.
const (
	// DefaultAllOfParallelThreshold is the child count (T) at which an
	// all_of combinator switches from sequential to parallel evaluation.
	DefaultAllOfParallelThreshold = 5

	// DefaultExpressionMaxDepth bounds the expression AST depth.
	DefaultExpressionMaxDepth = 32

	// DefaultExpressionMaxNodes bounds the number of AST nodes evaluated per call.
	DefaultExpressionMaxNodes = 10_000

	// DefaultExpressionMaxStringLen bounds the length of an expression's source
	// text, checked before parsing; strings produced during evaluation are not
	// bounded.
	DefaultExpressionMaxStringLen = 1 << 20 // 1 MiB

	// DefaultExpressionCacheSize bounds the parsed-expression (AST) LRU cache;
	// evaluation results are not cached.
	DefaultExpressionCacheSize = 1_000

	// DefaultStringInternerCapacity bounds the number of interned strings.
	DefaultStringInternerCapacity = 100_000

	// DefaultStringInternerMaxChars bounds the length of any interned string.
	DefaultStringInternerMaxChars = 10_000

	// DefaultPatternCacheSize bounds the compiled-pattern LRU cache.
	DefaultPatternCacheSize = 1_000

	// DefaultProfilerCategoryCap bounds distinct memory-profiler categories.
	DefaultProfilerCategoryCap = 1_000

	// DefaultTimeoutGraceMillis is the default for EngineConfig.TimeoutGrace.
	// ValidateBatch does not read TimeoutGrace: workers stop cooperatively at
	// the deadline, and nothing aborts the worker pool after a grace period.
	DefaultTimeoutGraceMillis = 1_000
)

// Identifier slot fallback order used when an instance-backed enum's class
// does not declare an explicit identifier slot.
var defaultIdentifierSlotFallback = []string{"id", "identifier", "label"}
