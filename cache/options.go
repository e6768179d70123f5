package cache

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures pool behavior. The zero value is safe; defaults are
// applied in NewPool():
//   - nil Metrics => NoopMetrics
//   - nil Clock   => time.Now()
type Options struct {
	// Metrics receives Hit/Miss/Evict/Size signals.
	Metrics Metrics

	// OnEvict is called for every entry removed by TTL, the LRU sweep or
	// a flush (not for explicit deletes). It runs under the pool lock;
	// keep callbacks lightweight.
	OnEvict func(key string, v Value, reason EvictReason)

	// Clock allows overriding the time source (tests). Nil => time.Now().
	Clock Clock
}
