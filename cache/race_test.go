package cache

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"
)

// A mixed workload of concurrent operations on random keys, with the
// janitor-style sweeps interleaved. Should pass under `-race` without
// detector reports.
func TestRace_MixedWorkload(t *testing.T) {
	p := NewPool(Options{})

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 10_000
	deadline := time.Now().Add(2 * time.Second)

	var wg sync.WaitGroup
	wg.Add(workers + 1)

	// One goroutine plays the janitor.
	go func() {
		defer wg.Done()
		for time.Now().Before(deadline) {
			p.ClearStale(time.Now().UnixNano())
			p.ClearLRU()
			time.Sleep(10 * time.Millisecond)
		}
	}()

	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4: // ~5% — Delete
					p.Delete(k)
				case 5, 6, 7, 8, 9: // ~5% — short TTL Set
					p.Set(k, String("x"), 1)
				case 10, 11, 12, 13, 14: // ~5% — Increment
					p.Increment(k, 0)
				case 15, 16, 17, 18, 19: // ~5% — Add
					p.Add(k, Int(int64(id)), 0)
				case 20, 21, 22, 23, 24: // ~5% — Set
					p.Set(k, String("x"), 0)
				default: // ~75% — Get
					p.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()
}
