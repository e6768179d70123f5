package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
)

// benchmarkMix exercises a read/write mix against a warm pool.
// RunParallel spawns GOMAXPROCS goroutines; string-key concat allocates,
// which is fine for an end-to-end number.
func benchmarkMix(b *testing.B, readsPct int) {
	p := NewPool(Options{})

	for i := 0; i < 50_000; i++ {
		p.Set("k:"+strconv.Itoa(i), String("v"), 0)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				p.Get(k)
			} else {
				p.Set(k, String("v"), 0)
			}
			i++
		}
	})
}

func BenchmarkPool_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkPool_50r50w(b *testing.B) { benchmarkMix(b, 50) }

func BenchmarkPool_Increment(b *testing.B) {
	p := NewPool(Options{})
	p.Set("c", Int(0), 0)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			p.Increment("c", 0)
		}
	})
}
