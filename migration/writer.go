package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"radiojournal/pkg/apperrors"
)

// Store-imposed batch limits.
const (
	// MaxBatchPutItems is the largest non-transactional batch put.
	MaxBatchPutItems = 25
	// MaxTransactItems is the largest transactional commit.
	MaxTransactItems = 100
)

// ChunkFailure records one rejected commit group.
type ChunkFailure struct {
	// Index of the chunk within its plan, puts first.
	Index int
	// Size is how many writes the chunk carried.
	Size int
	// Conflict is true when the group was rejected by a condition check
	// rather than a transport failure.
	Conflict bool
	Err      error
}

// CommitResult summarizes one plan commit.
type CommitResult struct {
	PutsCommitted    int
	UpdatesCommitted int
	Failures         []ChunkFailure
}

// Conflicts counts the failures caused by concurrent writes.
func (r CommitResult) Conflicts() int {
	n := 0
	for _, f := range r.Failures {
		if f.Conflict {
			n++
		}
	}
	return n
}

// Writer commits plans in fixed-size groups: puts in non-transactional
// batches of at most 25, updates in atomic transactions of at most 100,
// submitted one after another in input order. A failed group is reported,
// never retried; retrying with stale precomputed values would re-check the
// same stale condition.
type Writer struct {
	store  Store
	logger *zap.Logger
}

// NewWriter creates a Writer.
func NewWriter(store Store, logger *zap.Logger) *Writer {
	return &Writer{store: store, logger: logger}
}

// Commit submits the plan's writes. Whether to keep going after a failed
// group is the caller's policy, passed as stopOnFailure; the writer itself
// only reports outcomes. Transport failures always stop the commit and are
// returned alongside the partial result.
func (w *Writer) Commit(ctx context.Context, plan Plan, stopOnFailure bool) (CommitResult, error) {
	var result CommitResult
	chunkIndex := 0

	for _, batch := range chunkItems(plan.Puts, MaxBatchPutItems) {
		err := w.store.BatchPut(ctx, batch)
		if err != nil {
			result.Failures = append(result.Failures, ChunkFailure{
				Index:    chunkIndex,
				Size:     len(batch),
				Conflict: apperrors.IsConcurrencyConflict(err),
				Err:      err,
			})
			if !apperrors.IsConcurrencyConflict(err) {
				return result, fmt.Errorf("batch put chunk %d: %w", chunkIndex, err)
			}
			if stopOnFailure {
				return result, nil
			}
		} else {
			result.PutsCommitted += len(batch)
			w.logger.Info("committed batch put chunk", zap.Int("size", len(batch)))
		}
		chunkIndex++
	}

	for _, group := range chunkItems(plan.Updates, MaxTransactItems) {
		err := w.store.TransactUpdate(ctx, group)
		if err != nil {
			result.Failures = append(result.Failures, ChunkFailure{
				Index:    chunkIndex,
				Size:     len(group),
				Conflict: apperrors.IsConcurrencyConflict(err),
				Err:      err,
			})
			if !apperrors.IsConcurrencyConflict(err) {
				return result, fmt.Errorf("transact write chunk %d: %w", chunkIndex, err)
			}
			w.logger.Warn("chunk rejected by condition check",
				zap.Int("chunk", chunkIndex),
				zap.Int("size", len(group)),
			)
			if stopOnFailure {
				return result, nil
			}
		} else {
			result.UpdatesCommitted += len(group)
			w.logger.Info("committed transactional chunk", zap.Int("size", len(group)))
		}
		chunkIndex++
	}

	return result, nil
}

// chunkItems splits items into fixed-size groups, preserving order.
func chunkItems[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
