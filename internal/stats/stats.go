// Package stats provides the counters shared by the allocator, cache,
// and virtual memory subsystems.
//
// Unlike the teacher's stats package — where Counter_t only accumulates
// when a compile-time Stats flag is set, since it instruments a real
// kernel that normally can't afford the bookkeeping — this simulator's
// whole purpose is to report these numbers, so counting is always on.
package stats

// Counter is a monotonically increasing statistic.
type Counter int64

// Inc increments the counter by one.
func (c *Counter) Inc() { *c++ }

// Add increments the counter by n.
func (c *Counter) Add(n int64) { *c += Counter(n) }

// Value returns the counter's current value.
func (c Counter) Value() int64 { return int64(c) }

// HitRate returns hits/(hits+misses) as a percentage, or 0 if both are zero.
func HitRate(hits, misses Counter) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100.0
}
