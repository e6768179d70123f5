package cache

import (
	"fmt"
	"sync"
	"time"

	"linecached/internal/util"
)

// Pool is the cache engine: a map of key→entry plus two intrusive
// orderings over the same nodes, one by recency of access and one by
// first insertion. All methods are safe for concurrent use; every
// operation runs to completion under a single exclusive lock, so each
// command is linearizable on its own.
type Pool struct {
	// ---- guarded by mu ----
	mu sync.Mutex
	m  map[string]*node

	lruHead *node // MRU
	lruTail *node // LRU
	insHead *node // oldest insertion
	insTail *node // newest insertion
	n       int

	opt Options

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// NewPool constructs an empty pool with the provided Options.
// Defaults: nil Metrics -> NoopMetrics.
func NewPool(opt Options) *Pool {
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	return &Pool{
		m:   make(map[string]*node),
		opt: opt,
	}
}

// Add inserts key→v only if no live entry exists for key. A resident but
// expired entry does not block the insert; it is evicted first.
// Returns false (and changes nothing) when a live entry exists.
func (p *Pool) Add(key string, v Value, ttl int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if n, ok := p.m[key]; ok {
		if !n.ent.Expired(now) {
			return false
		}
		p.evictNode(n, EvictTTL)
	}
	p.insertNode(key, v, ttl, now)
	p.opt.Metrics.Size(p.n)
	return true
}

// Set inserts or unconditionally overwrites key→v. On overwrite the entry
// is rebuilt (fresh insertion timestamp, new TTL) and promoted to MRU, but
// its slot in the insertion order is kept.
func (p *Pool) Set(key string, v Value, ttl int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if n, ok := p.m[key]; ok {
		n.ent = Entry{Val: v, InsertedAt: now, LastAccessed: now, TTL: ttl}
		p.moveToMRU(n)
	} else {
		p.insertNode(key, v, ttl, now)
	}
	p.opt.Metrics.Size(p.n)
}

// Replace overwrites key→v only if a live entry exists. Returns false on a
// missing or expired key (the expired entry is evicted on the way out).
func (p *Pool) Replace(key string, v Value, ttl int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	n, ok := p.m[key]
	if !ok {
		return false
	}
	if n.ent.Expired(now) {
		p.evictNode(n, EvictTTL)
		p.opt.Metrics.Size(p.n)
		return false
	}
	n.ent = Entry{Val: v, InsertedAt: now, LastAccessed: now, TTL: ttl}
	p.moveToMRU(n)
	return true
}

// Get returns the live value for key. An expired entry is removed
// synchronously and reported as a miss, keeping reads consistent with
// ClearStale. On a hit the entry is touched and promoted to MRU.
func (p *Pool) Get(key string) (Value, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.liveNode(key)
	if !ok {
		p.misses.Add(1)
		p.opt.Metrics.Miss()
		return Value{}, false
	}
	n.ent.Touch(p.now())
	p.moveToMRU(n)
	p.hits.Add(1)
	p.opt.Metrics.Hit()
	return n.ent.Val, true
}

// Has reports whether a live entry exists for key, with the same touch
// and expire-on-read policy as Get.
func (p *Pool) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Delete removes key if present (expired or not). Returns true when an
// entry was removed.
func (p *Pool) Delete(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.m[key]
	if !ok {
		return false
	}
	p.unlinkNode(n)
	delete(p.m, key)
	// An explicit delete is not an eviction; metrics only see the size.
	p.opt.Metrics.Size(p.n)
	return true
}

// Increment adds one to the entry's value, coercing it to an integer
// first (total, saturating coercion, see CoerceInt). The entry becomes
// integer-typed. A ttl > 0 restarts the TTL window from now. Returns the
// new value, or false when no live entry exists.
func (p *Pool) Increment(key string, ttl int64) (int64, bool) {
	return p.addDelta(key, 1, ttl)
}

// Decrement is Increment's mirror: subtracts one.
func (p *Pool) Decrement(key string, ttl int64) (int64, bool) {
	return p.addDelta(key, -1, ttl)
}

func (p *Pool) addDelta(key string, delta, ttl int64) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.liveNode(key)
	if !ok {
		p.misses.Add(1)
		p.opt.Metrics.Miss()
		return 0, false
	}

	now := p.now()
	next := SatAdd(CoerceInt(n.ent.Val), delta)
	n.ent.Val = Int(next)
	n.ent.Touch(now)
	if ttl > 0 {
		// Restart the TTL window at the mutation.
		n.ent.TTL = ttl
		n.ent.InsertedAt = now
	}
	p.moveToMRU(n)
	p.hits.Add(1)
	p.opt.Metrics.Hit()
	return next, true
}

// Flush empties the pool and both indices. Returns the number of entries
// removed.
func (p *Pool) Flush() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := p.n
	for n := p.insHead; n != nil; n = n.insNext {
		p.evicts.Add(1)
		p.opt.Metrics.Evict(EvictFlush)
		if cb := p.opt.OnEvict; cb != nil {
			cb(n.key, n.ent.Val, EvictFlush)
		}
	}
	p.m = make(map[string]*node)
	p.lruHead, p.lruTail = nil, nil
	p.insHead, p.insTail = nil, nil
	p.n = 0
	p.opt.Metrics.Size(0)
	return removed
}

// ClearStale removes every entry whose TTL window has elapsed at now.
// Returns the number removed. Idempotent for a fixed now.
func (p *Pool) ClearStale(now int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for n := p.insHead; n != nil; {
		next := n.insNext
		if n.ent.Expired(now) {
			p.evictNode(n, EvictTTL)
			removed++
		}
		n = next
	}
	if removed > 0 {
		p.opt.Metrics.Size(p.n)
	}
	return removed
}

// ClearLRU removes the least-recently-used half of the pool:
// floor(n/2) entries starting from the LRU end. Returns the number
// removed. The most-recently-used key always survives when n >= 2.
func (p *Pool) ClearLRU() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := p.n / 2
	removed := 0
	for removed < target && p.lruTail != nil {
		p.evictNode(p.lruTail, EvictLRU)
		removed++
	}
	if removed > 0 {
		p.opt.Metrics.Size(p.n)
	}
	return removed
}

// Len returns the number of resident entries, live or not yet swept.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

// Status renders the pool summary line:
//
//	items=<n>; oldest=<key|->; newest=<key|->; lru=<key|->
//
// oldest/newest come from the insertion-order ends, lru from the recency
// tail. A dash stands in for every key when the pool is empty.
func (p *Pool) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	oldest, newest, lru := "-", "-", "-"
	if p.insHead != nil {
		oldest = p.insHead.key
		newest = p.insTail.key
		lru = p.lruTail.key
	}
	return fmt.Sprintf("items=%d; oldest=%s; newest=%s; lru=%s", p.n, oldest, newest, lru)
}

// Stats returns the lifetime hit/miss/eviction counters.
func (p *Pool) Stats() (hits, misses int64, evictions uint64) {
	return p.hits.Load(), p.misses.Load(), p.evicts.Load()
}

// -------------------- internals (mu held) --------------------

func (p *Pool) now() int64 {
	if p.opt.Clock != nil {
		return p.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// liveNode looks up key and lazily evicts it when expired.
func (p *Pool) liveNode(key string) (*node, bool) {
	n, ok := p.m[key]
	if !ok {
		return nil, false
	}
	if n.ent.Expired(p.now()) {
		p.evictNode(n, EvictTTL)
		p.opt.Metrics.Size(p.n)
		return nil, false
	}
	return n, true
}

// insertNode creates a fresh node at the MRU end of the recency list and
// the newest end of the insertion list.
func (p *Pool) insertNode(key string, v Value, ttl, now int64) {
	n := &node{
		key: key,
		ent: Entry{Val: v, InsertedAt: now, LastAccessed: now, TTL: ttl},
	}
	p.m[key] = n

	// Recency: push front (MRU).
	n.lruNext = p.lruHead
	if p.lruHead != nil {
		p.lruHead.lruPrev = n
	}
	p.lruHead = n
	if p.lruTail == nil {
		p.lruTail = n
	}

	// Insertion order: push back (newest).
	n.insPrev = p.insTail
	if p.insTail != nil {
		p.insTail.insNext = n
	}
	p.insTail = n
	if p.insHead == nil {
		p.insHead = n
	}

	p.n++
}

// moveToMRU promotes n to the recency head in O(1).
func (p *Pool) moveToMRU(n *node) {
	if n == p.lruHead {
		return
	}
	// detach
	if n.lruPrev != nil {
		n.lruPrev.lruNext = n.lruNext
	}
	if n.lruNext != nil {
		n.lruNext.lruPrev = n.lruPrev
	}
	if p.lruTail == n {
		p.lruTail = n.lruPrev
	}
	// reattach at head
	n.lruPrev = nil
	n.lruNext = p.lruHead
	if p.lruHead != nil {
		p.lruHead.lruPrev = n
	}
	p.lruHead = n
	if p.lruTail == nil {
		p.lruTail = n
	}
}

// unlinkNode splices n out of both lists in O(1).
func (p *Pool) unlinkNode(n *node) {
	if n.lruPrev != nil {
		n.lruPrev.lruNext = n.lruNext
	}
	if n.lruNext != nil {
		n.lruNext.lruPrev = n.lruPrev
	}
	if p.lruHead == n {
		p.lruHead = n.lruNext
	}
	if p.lruTail == n {
		p.lruTail = n.lruPrev
	}
	n.lruPrev, n.lruNext = nil, nil

	if n.insPrev != nil {
		n.insPrev.insNext = n.insNext
	}
	if n.insNext != nil {
		n.insNext.insPrev = n.insPrev
	}
	if p.insHead == n {
		p.insHead = n.insNext
	}
	if p.insTail == n {
		p.insTail = n.insPrev
	}
	n.insPrev, n.insNext = nil, nil

	p.n--
}

// evictNode removes n from map and lists, counts the eviction, and fires
// the OnEvict callback.
func (p *Pool) evictNode(n *node, reason EvictReason) {
	p.unlinkNode(n)
	delete(p.m, n.key)
	p.evicts.Add(1)
	p.opt.Metrics.Evict(reason)
	if cb := p.opt.OnEvict; cb != nil {
		cb(n.key, n.ent.Val, reason)
	}
}
