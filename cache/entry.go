package cache

import "time"

// Entry is a single cached value plus its bookkeeping metadata.
// Timestamps are UnixNano from the pool's clock; TTL is whole seconds,
// with 0 meaning "never expires".
type Entry struct {
	Val          Value
	InsertedAt   int64
	LastAccessed int64
	TTL          int64
}

// Touch records an access at now. Callers must hold the pool lock.
func (e *Entry) Touch(now int64) { e.LastAccessed = now }

// Expired reports whether the entry's TTL window has elapsed at now.
func (e *Entry) Expired(now int64) bool {
	return e.TTL > 0 && now-e.InsertedAt >= e.TTL*int64(time.Second)
}
