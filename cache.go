package linkml

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"lukechampine.com/blake3"
)

// cacheOccupancy tracks live entry counts across every BoundedCache this
// process creates, labeled by the cache's name, so a host embedding this
// module can scrape its resource-layer occupancy the same way the
// teacher's consuming services scrape compiler/validation metrics.
var cacheOccupancy = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "linkml",
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Current number of entries held in a bounded LRU cache.",
	},
	[]string{"cache"},
)

func init() {
	prometheus.MustRegister(cacheOccupancy)
}

// BoundedCache is a size-bounded LRU cache keyed by a
// blake3 digest of its logical key material rather than a concatenated
// format string — a format-string key (e.g. fmt.Sprintf("%s:%s", a, b))
// can collide across distinct (a, b) pairs when either contains the
// delimiter; hashing the tuple's bytes directly closes that hole.
type BoundedCache[V any] struct {
	name string
	lru  *lru.Cache[[32]byte, V]
}

// NewBoundedCache builds a BoundedCache of the given capacity, registering
// its occupancy under name in the shared cacheOccupancy gauge.
func NewBoundedCache[V any](name string, capacity int) (*BoundedCache[V], error) {
	if capacity <= 0 {
		capacity = DefaultPatternCacheSize
	}
	inner, err := lru.New[[32]byte, V](capacity)
	if err != nil {
		return nil, err
	}
	return &BoundedCache[V]{name: name, lru: inner}, nil
}

// DigestKey hashes arbitrary key parts into the cache's lookup key.
func DigestKey(parts ...string) [32]byte {
	h := blake3.New(32, nil)
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0}) // separator byte prevents "ab"+"c" colliding with "a"+"bc"
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Get looks up key, reporting the current occupancy to the gauge on every
// call so scraping stays accurate without a separate background goroutine.
func (c *BoundedCache[V]) Get(key [32]byte) (V, bool) {
	v, ok := c.lru.Get(key)
	cacheOccupancy.WithLabelValues(c.name).Set(float64(c.lru.Len()))
	return v, ok
}

// Add inserts value under key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *BoundedCache[V]) Add(key [32]byte, value V) {
	c.lru.Add(key, value)
	cacheOccupancy.WithLabelValues(c.name).Set(float64(c.lru.Len()))
}

// Len returns the current entry count.
func (c *BoundedCache[V]) Len() int {
	return c.lru.Len()
}

// StringInterner deduplicates repeated slot-value strings (class/slot/range
// names recur constantly across a large instance batch) behind a bounded
// cache, capping both entry count and per-string length so an adversarial
// instance can't grow the interner unboundedly.
type StringInterner struct {
	cache *BoundedCache[string]
	maxChars int
}

// NewStringInterner builds a StringInterner with the given capacity and
// per-string length cap.
func NewStringInterner(capacity, maxChars int) (*StringInterner, error) {
	cache, err := NewBoundedCache[string]("string_interner", capacity)
	if err != nil {
		return nil, err
	}
	return &StringInterner{cache: cache, maxChars: maxChars}, nil
}

// Intern returns s, or a previously interned equal string, to encourage
// identical slot values across a batch to share one backing allocation.
func (s *StringInterner) Intern(str string) string {
	if len(str) > s.maxChars {
		return str
	}
	key := DigestKey(str)
	if existing, ok := s.cache.Get(key); ok {
		return existing
	}
	s.cache.Add(key, str)
	return str
}
