// Package cache implements the volatile in-memory pool behind the
// linecached daemon: a key/value store with typed values, per-entry TTL,
// and two independent orderings over the live keys.
//
// # Design
//
//   - Storage: a map[string]*node for lookups plus two intrusive doubly
//     linked lists threaded through the same nodes: a recency list
//     (MRU↔LRU, maintained on every successful read or mutation) and an
//     insertion-order list (fixed at first insert, used for status
//     reporting). Single-key operations are O(1) expected; Flush,
//     ClearStale and ClearLRU walk the lists.
//
//   - Concurrency: a single mutex serializes every operation. The pool
//     is deliberately unsharded: the protocol exposes one global
//     recency ordering and one global insertion ordering, and each
//     command must be linearizable on its own.
//
//   - TTL: entries carry a whole-second TTL counted from their insertion
//     timestamp; 0 disables expiry. Expiration is lazy on read and
//     enforced in bulk by ClearStale.
//
//   - Eviction: ClearLRU drops the least-recently-used half of the pool
//     and Flush drops everything. The pool never polls memory itself;
//     the janitor decides which of the two to call.
//
//   - Values: a tagged union of string, int64 and bool. Integer coercion
//     is total and saturating, so Increment/Decrement always produce a
//     number.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals;
//     NoopMetrics is the default and a Prometheus adapter lives in
//     metrics/prom. Options.OnEvict observes individual evictions.
//
//   - Clock: Options.Clock overrides the time source for deterministic
//     TTL tests.
//
// Basic usage
//
//	p := cache.NewPool(cache.Options{})
//	p.Set("greeting", cache.String("hello"), 0)
//	if v, ok := p.Get("greeting"); ok {
//	    _ = v.Render() // "hello"
//	}
package cache
