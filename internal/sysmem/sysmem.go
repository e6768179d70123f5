// Package sysmem reports the process's resident memory for the janitor's
// two-tier eviction policy.
package sysmem

import (
	"runtime"

	"github.com/prometheus/procfs"
)

// Reader reports process memory usage in bytes.
type Reader interface {
	Resident() (uint64, error)
}

// New returns a /proc-backed reader where procfs is available and falls
// back to a runtime.MemStats estimate elsewhere. The policy thresholds
// are identical either way.
func New() Reader {
	if p, err := procfs.Self(); err == nil {
		return &procReader{proc: p}
	}
	return memStatsReader{}
}

type procReader struct {
	proc procfs.Proc
}

// Resident returns the RSS from /proc/self/stat.
func (r *procReader) Resident() (uint64, error) {
	st, err := r.proc.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(st.ResidentMemory()), nil
}

type memStatsReader struct{}

// Resident approximates RSS with the bytes obtained from the OS.
func (memStatsReader) Resident() (uint64, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Sys, nil
}
