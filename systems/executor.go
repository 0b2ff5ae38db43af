// Package systems implements the per-frame stages of the flocking pipeline:
// cell assignment, key sort, range derivation, the three velocity passes, and
// integration. Every stage is written against an index range so the caller
// decides how the range is split across execution lanes.
package systems

// Executor runs a data-parallel loop over [0, n).
//
// For splits the range into Chunks(n) chunks; chunk c covers
// [c*size, min((c+1)*size, n)) for an implementation-defined size that
// depends only on n. For returns only after every chunk has completed,
// which makes each call a full barrier between pipeline stages.
type Executor interface {
	For(n int, fn func(chunk, start, end int))
	Chunks(n int) int
}

// Serial runs every chunk on the calling goroutine. A zero BatchSize means a
// single chunk covering the whole range.
type Serial struct {
	BatchSize int
}

// Chunks implements Executor.
func (s Serial) Chunks(n int) int {
	if n <= 0 {
		return 0
	}
	if s.BatchSize <= 0 {
		return 1
	}
	return (n + s.BatchSize - 1) / s.BatchSize
}

// For implements Executor.
func (s Serial) For(n int, fn func(chunk, start, end int)) {
	if n <= 0 {
		return
	}
	if s.BatchSize <= 0 {
		fn(0, 0, n)
		return
	}
	for c := 0; c*s.BatchSize < n; c++ {
		start := c * s.BatchSize
		fn(c, start, min(start+s.BatchSize, n))
	}
}
