package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"radiojournal/domain"
)

// ClearTracksGSI removes stray secondary-index attributes from track rows
// after the artist/title lookup moved to standalone rows. Each update is
// guarded on the updated_ts observed at read time so a track concurrently
// touched by the live write path rejects the whole chunk instead of being
// clobbered.
type ClearTracksGSI struct {
	singlePass
	store  Store
	logger *zap.Logger
}

// NewClearTracksGSI creates the migration.
func NewClearTracksGSI(store Store, logger *zap.Logger) *ClearTracksGSI {
	return &ClearTracksGSI{store: store, logger: logger}
}

func (m *ClearTracksGSI) Name() string { return "clear-tracks-gsi" }

// PlanScope finds track rows still carrying either index attribute and plans
// a conditional removal per row. Rows already clean fall outside the filter,
// so a second run plans nothing.
func (m *ClearTracksGSI) PlanScope(ctx context.Context, scope *Scope) (Plan, error) {
	tracks, err := collect(ctx, m.store.Query(ctx, Query{
		PK:         domain.TracksPK(scope.StationID),
		SKPrefix:   domain.TrackSKPrefix(),
		Filter:     Or(Exists("gsi1pk"), Exists("gsi1sk")),
		Projection: []string{"pk", "sk", "updated_ts"},
	}))
	if err != nil {
		return Plan{}, fmt.Errorf("query tracks: %w", err)
	}

	plan := Plan{RowsRead: len(tracks)}
	for _, track := range tracks {
		pk, _ := stringAttr(track, "pk")
		sk, ok := stringAttr(track, "sk")
		if !ok {
			return Plan{}, fmt.Errorf("track row missing sk attribute")
		}
		updatedTS, ok := stringAttr(track, "updated_ts")
		if !ok {
			return Plan{}, fmt.Errorf("track row %s missing updated_ts attribute", sk)
		}
		m.logger.Info("track has gsi1 attributes", zap.String("sk", sk))

		plan.Updates = append(plan.Updates, Update{
			Key:       domain.Key{PK: pk, SK: sk},
			Remove:    []string{"gsi1pk", "gsi1sk"},
			Condition: Eq("updated_ts", updatedTS),
		})
	}
	m.logger.Info("got tracks to update", zap.Int("count", len(plan.Updates)))
	return plan, nil
}
