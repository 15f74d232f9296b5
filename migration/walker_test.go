package migration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func drainWalker(w *Walker) []string {
	var partitions []string
	for {
		partition, ok := w.Next()
		if !ok {
			return partitions
		}
		partitions = append(partitions, partition)
	}
}

func TestWalkerYieldsReverseChronologicalDays(t *testing.T) {
	now := time.Date(2023, 1, 5, 14, 23, 11, 0, time.UTC)
	bound := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)

	w := NewWalker(now, bound, DefaultPartitionCeiling)

	assert.Equal(t, []string{
		"2023-01-05",
		"2023-01-04",
		"2023-01-03",
		"2023-01-02",
		"2023-01-01",
	}, drainWalker(w))
	assert.Equal(t, 5, w.Visited())
	assert.False(t, w.CeilingReached())
}

func TestWalkerSingleDay(t *testing.T) {
	now := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)

	w := NewWalker(now, now, 0)

	assert.Equal(t, []string{"2023-01-05"}, drainWalker(w))
}

func TestWalkerBoundAfterNow(t *testing.T) {
	now := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	bound := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	w := NewWalker(now, bound, 0)

	assert.Empty(t, drainWalker(w))
	assert.Equal(t, 0, w.Visited())
	assert.False(t, w.CeilingReached())
}

func TestWalkerStopsAtCeiling(t *testing.T) {
	now := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	// A bound far enough back that the ceiling hits first.
	bound := now.AddDate(-10, 0, 0)

	w := NewWalker(now, bound, 500)

	partitions := drainWalker(w)
	assert.Len(t, partitions, 500)
	assert.Equal(t, 500, w.Visited())
	assert.True(t, w.CeilingReached())
}

func TestWalkerIsRestartable(t *testing.T) {
	now := time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC)
	bound := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	first := drainWalker(NewWalker(now, bound, 0))
	second := drainWalker(NewWalker(now, bound, 0))

	assert.Equal(t, first, second)
}

func TestWalkerAlwaysTerminates(t *testing.T) {
	// Even with a nonsense bound the ceiling caps the sequence.
	now := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	bound := time.Time{}

	w := NewWalker(now, bound, 0)

	assert.Len(t, drainWalker(w), DefaultPartitionCeiling)
	assert.True(t, w.CeilingReached())
}
