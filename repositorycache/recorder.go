package repositorycache

import "time"

// Recorder receives repository events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	CacheHit(repository string)
	CacheMiss(repository string)
	StoreOp(repository, op string, took time.Duration, err error)
	Divergence(repository, op string)
	Warmed(repository string, rows int, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string)                             {}
func (nopRecorder) CacheMiss(string)                            {}
func (nopRecorder) StoreOp(string, string, time.Duration, error) {}
func (nopRecorder) Divergence(string, string)                   {}
func (nopRecorder) Warmed(string, int, time.Duration)           {}

// Stats is a point in time view of a repository's counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Divergences int64
	Size        int
	Warmed      bool
}
