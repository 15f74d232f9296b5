package migration

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/pkg/apperrors"
)

// recordingStore captures the chunk sizes the writer submits.
type recordingStore struct {
	putBatches    [][]Item
	updateGroups  [][]Update
	failGroups    map[int]error // update group index -> error
	batchPutErr   error
	transactCalls int
}

func (s *recordingStore) GetItem(ctx context.Context, key domain.Key, out any) error {
	return apperrors.NewNotFoundError("item")
}

func (s *recordingStore) Query(ctx context.Context, q Query) Pager {
	return nil
}

func (s *recordingStore) BatchPut(ctx context.Context, items []Item) error {
	if s.batchPutErr != nil {
		return s.batchPutErr
	}
	s.putBatches = append(s.putBatches, items)
	return nil
}

func (s *recordingStore) TransactUpdate(ctx context.Context, updates []Update) error {
	index := s.transactCalls
	s.transactCalls++
	if err, ok := s.failGroups[index]; ok {
		return err
	}
	s.updateGroups = append(s.updateGroups, updates)
	return nil
}

func makeUpdates(n int) []Update {
	updates := make([]Update, n)
	for i := range updates {
		updates[i] = Update{
			Key: domain.Key{PK: "STATIONS", SK: fmt.Sprintf("STATION#%026d", i)},
			Set: []Assign{{Name: "play_count", Value: i}},
		}
	}
	return updates
}

func makePuts(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{}
	}
	return items
}

func TestChunkItemsSizes(t *testing.T) {
	tests := []struct {
		name      string
		input     int
		size      int
		wantSizes []int
	}{
		{"empty", 0, 25, nil},
		{"one", 1, 25, []int{1}},
		{"exactly one batch", 25, 25, []int{25}},
		{"one over", 26, 25, []int{25, 1}},
		{"exactly one transaction", 100, 100, []int{100}},
		{"one over transaction", 101, 100, []int{100, 1}},
		{"many", 250, 100, []int{100, 100, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunkItems(makeUpdates(tt.input), tt.size)

			var sizes []int
			total := 0
			for _, c := range chunks {
				sizes = append(sizes, len(c))
				total += len(c)
				assert.LessOrEqual(t, len(c), tt.size)
			}
			assert.Equal(t, tt.wantSizes, sizes)
			assert.Equal(t, tt.input, total)
		})
	}
}

func TestChunkItemsPreservesOrder(t *testing.T) {
	updates := makeUpdates(250)

	chunks := chunkItems(updates, 100)

	var flattened []Update
	for _, c := range chunks {
		flattened = append(flattened, c...)
	}
	assert.Equal(t, updates, flattened)
}

func TestWriterRespectsBatchLimits(t *testing.T) {
	store := &recordingStore{}
	w := NewWriter(store, zap.NewNop())

	plan := Plan{Puts: makePuts(60), Updates: makeUpdates(250)}

	result, err := w.Commit(context.Background(), plan, false)
	require.NoError(t, err)

	assert.Equal(t, 60, result.PutsCommitted)
	assert.Equal(t, 250, result.UpdatesCommitted)
	assert.Empty(t, result.Failures)

	for _, batch := range store.putBatches {
		assert.LessOrEqual(t, len(batch), MaxBatchPutItems)
	}
	assert.Len(t, store.putBatches, 3)

	for _, group := range store.updateGroups {
		assert.LessOrEqual(t, len(group), MaxTransactItems)
	}
	assert.Len(t, store.updateGroups, 3)
}

func TestWriterContinuesPastConflictChunk(t *testing.T) {
	store := &recordingStore{
		failGroups: map[int]error{
			1: apperrors.NewConcurrencyConflictError("updated_ts mismatch"),
		},
	}
	w := NewWriter(store, zap.NewNop())

	result, err := w.Commit(context.Background(), Plan{Updates: makeUpdates(250)}, false)
	require.NoError(t, err)

	// Chunks of 100, 100, 50: the middle one is dropped, the others land.
	assert.Equal(t, 150, result.UpdatesCommitted)
	require.Len(t, result.Failures, 1)
	assert.True(t, result.Failures[0].Conflict)
	assert.Equal(t, 100, result.Failures[0].Size)
	assert.Equal(t, 1, result.Conflicts())
}

func TestWriterStopOnFailure(t *testing.T) {
	store := &recordingStore{
		failGroups: map[int]error{
			0: apperrors.NewConcurrencyConflictError("updated_ts mismatch"),
		},
	}
	w := NewWriter(store, zap.NewNop())

	result, err := w.Commit(context.Background(), Plan{Updates: makeUpdates(250)}, true)
	require.NoError(t, err)

	assert.Equal(t, 0, result.UpdatesCommitted)
	assert.Len(t, result.Failures, 1)
	// Nothing after the failed group was submitted.
	assert.Equal(t, 1, store.transactCalls)
}

func TestWriterTransportFailureIsFatal(t *testing.T) {
	store := &recordingStore{
		failGroups: map[int]error{
			0: apperrors.NewStoreUnavailableError("connection refused"),
		},
	}
	w := NewWriter(store, zap.NewNop())

	result, err := w.Commit(context.Background(), Plan{Updates: makeUpdates(150)}, false)

	require.Error(t, err)
	assert.Equal(t, 0, result.UpdatesCommitted)
	require.Len(t, result.Failures, 1)
	assert.False(t, result.Failures[0].Conflict)
	// The second group is never attempted once transport is gone.
	assert.Equal(t, 1, store.transactCalls)
}

func TestWriterEmptyPlan(t *testing.T) {
	store := &recordingStore{}
	w := NewWriter(store, zap.NewNop())

	result, err := w.Commit(context.Background(), Plan{}, false)
	require.NoError(t, err)

	assert.Equal(t, CommitResult{}, result)
	assert.Zero(t, store.transactCalls)
	assert.Empty(t, store.putBatches)
}
