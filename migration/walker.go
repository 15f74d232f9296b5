package migration

import (
	"time"

	"radiojournal/domain"
)

// DefaultPartitionCeiling bounds how many daily partitions a single walk may
// visit. The lower bound of a walk is decoded from data that may be malformed
// or missing, so the ceiling is the only guarantee the walk terminates.
const DefaultPartitionCeiling = 500

// Walker produces the finite, backward-ordered sequence of daily play
// partitions for a station, from now (day-truncated, UTC) down to the day of
// the station's first play. The sequence is a pure function of its two
// boundary times: re-running a walk reproduces it exactly.
type Walker struct {
	current time.Time
	bound   time.Time
	ceiling int
	visited int
	limited bool
}

// NewWalker builds a walker from the current time and the lower bound. A
// ceiling <= 0 selects DefaultPartitionCeiling.
func NewWalker(now, bound time.Time, ceiling int) *Walker {
	if ceiling <= 0 {
		ceiling = DefaultPartitionCeiling
	}
	return &Walker{
		current: domain.TruncateToDay(now),
		bound:   domain.TruncateToDay(bound),
		ceiling: ceiling,
	}
}

// Next returns the next partition identifier, or false when the walk is done.
// Partitions come back in strict reverse-chronological order.
func (w *Walker) Next() (string, bool) {
	if w.current.Before(w.bound) {
		return "", false
	}
	if w.visited >= w.ceiling {
		w.limited = true
		return "", false
	}
	partition := domain.PlayPartition(w.current)
	w.current = w.current.AddDate(0, 0, -1)
	w.visited++
	return partition, true
}

// Visited reports how many partitions the walk has yielded so far.
func (w *Walker) Visited() int {
	return w.visited
}

// CeilingReached reports whether the walk stopped at the iteration ceiling
// before reaching its lower bound. Callers treat this as a warning that the
// bound was probably miscomputed and results may be incomplete.
func (w *Walker) CeilingReached() bool {
	return w.limited
}
