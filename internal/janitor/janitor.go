// Package janitor runs the periodic housekeeping tick: TTL sweeps plus the
// two-tier memory-pressure policy against the pool.
package janitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"linecached/cache"
	"linecached/internal/sysmem"
)

// Period is the housekeeping interval. time.Ticker schedules each tick
// from the previous fire time, so the cadence does not drift with the
// duration of the work.
const Period = 5 * time.Second

// softFraction of the hard limit triggers the LRU sweep.
const softFraction = 0.75

// Janitor owns the maintenance loop. It is told the memory limit and
// reads usage itself; the pool never polls memory.
type Janitor struct {
	pool  *cache.Pool
	mem   sysmem.Reader
	log   *logrus.Logger
	hard  uint64
	soft  uint64
	clock cache.Clock
}

// New builds a janitor enforcing limitMiB as the hard cap. The soft cap
// is fixed at 75% of hard.
func New(pool *cache.Pool, mem sysmem.Reader, log *logrus.Logger, limitMiB int) *Janitor {
	hard := uint64(limitMiB) << 20
	return &Janitor{
		pool: pool,
		mem:  mem,
		log:  log,
		hard: hard,
		soft: uint64(float64(hard) * softFraction),
	}
}

// Run ticks every Period until ctx is canceled. Always returns nil so an
// errgroup treats cancellation as a clean stop.
func (j *Janitor) Run(ctx context.Context) error {
	t := time.NewTicker(Period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			j.tick()
		}
	}
}

// tick applies one round of the policy: flush at the hard limit, drop the
// LRU half at the soft limit, and always sweep stale entries.
func (j *Janitor) tick() {
	used, err := j.mem.Resident()
	if err != nil {
		j.log.WithError(err).Warn("memory readout failed, skipping pressure check")
		used = 0
	}

	switch {
	case j.hard > 0 && used >= j.hard:
		n := j.pool.Flush()
		j.log.WithFields(logrus.Fields{"used": used, "limit": j.hard, "removed": n}).
			Info("hard memory limit reached, pool flushed")
	case j.hard > 0 && used >= j.soft:
		n := j.pool.ClearLRU()
		j.log.WithFields(logrus.Fields{"used": used, "soft": j.soft, "removed": n}).
			Info("soft memory limit reached, LRU half evicted")
	}

	stale := j.pool.ClearStale(j.now())
	if stale > 0 {
		j.log.WithField("removed", stale).Info("stale entries swept")
	}
	j.log.WithFields(logrus.Fields{"used": used, "items": j.pool.Len()}).
		Debug("tick")
}

func (j *Janitor) now() int64 {
	if j.clock != nil {
		return j.clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}
