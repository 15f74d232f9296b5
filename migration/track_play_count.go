package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"radiojournal/domain"
)

// InitTrackPlayCount walks every play partition of a station, counts plays
// per track, and sets each track's play_count to the computed total. The set
// is unconditional and absolute, never an increment: the walk establishes a
// known-correct baseline from the raw play rows, overriding whatever value
// existed, which also makes a re-run converge to the same result.
type InitTrackPlayCount struct {
	store  Store
	logger *zap.Logger

	counts map[string]int
}

// NewInitTrackPlayCount creates the migration.
func NewInitTrackPlayCount(store Store, logger *zap.Logger) *InitTrackPlayCount {
	return &InitTrackPlayCount{store: store, logger: logger, counts: make(map[string]int)}
}

func (m *InitTrackPlayCount) Name() string { return "init-track-play-count" }

func (m *InitTrackPlayCount) WalksPartitions() bool { return true }

func (m *InitTrackPlayCount) PlanScope(ctx context.Context, scope *Scope) (Plan, error) {
	return Plan{}, nil
}

// PlanPartition tallies plays per track for one partition. Counting is
// order-independent, so whatever order the range query returns rows in is
// fine. Nothing is committed until Finalize.
func (m *InitTrackPlayCount) PlanPartition(ctx context.Context, scope *Scope, partition string) (Plan, error) {
	pager := m.store.Query(ctx, Query{
		PK:         domain.PlaysPK(scope.StationID, partition),
		SKPrefix:   domain.PlaySKPrefix(),
		Projection: []string{"track_id"},
	})

	rows := 0
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return Plan{}, fmt.Errorf("query plays: %w", err)
		}
		if page == nil {
			break
		}
		for _, play := range page {
			trackID, ok := stringAttr(play, "track_id")
			if !ok {
				return Plan{}, fmt.Errorf("play row missing track_id attribute")
			}
			m.counts[trackID]++
			rows++
		}
	}
	return Plan{RowsRead: rows}, nil
}

// Finalize emits one absolute play_count update per track seen in the walk.
func (m *InitTrackPlayCount) Finalize(ctx context.Context, scope *Scope) (Plan, error) {
	var plan Plan
	for trackID, count := range m.counts {
		id, err := domain.ParseID(trackID)
		if err != nil {
			return Plan{}, fmt.Errorf("track %s: %w", trackID, err)
		}
		plan.Updates = append(plan.Updates, Update{
			Key: domain.TrackKey(scope.StationID, id),
			Set: []Assign{{Name: "play_count", Value: count}},
		})
	}
	m.logger.Info("got tracks to update", zap.Int("count", len(plan.Updates)))
	return plan, nil
}
