package migration

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"radiojournal/domain"
)

// singlePass is embedded by migrations that process one filtered row set
// instead of walking play partitions.
type singlePass struct{}

func (singlePass) WalksPartitions() bool { return false }

func (singlePass) PlanPartition(ctx context.Context, scope *Scope, partition string) (Plan, error) {
	return Plan{}, nil
}

func (singlePass) Finalize(ctx context.Context, scope *Scope) (Plan, error) {
	return Plan{}, nil
}

// InsertTrackMetadata populates the standalone artist/title lookup rows from
// the station's track rows. The lookup table is a pure projection of track
// identity fields, so re-running simply rewrites identical rows.
type InsertTrackMetadata struct {
	singlePass
	store  Store
	logger *zap.Logger
}

// NewInsertTrackMetadata creates the migration.
func NewInsertTrackMetadata(store Store, logger *zap.Logger) *InsertTrackMetadata {
	return &InsertTrackMetadata{store: store, logger: logger}
}

func (m *InsertTrackMetadata) Name() string { return "insert-track-metadata" }

// PlanScope reads every track row, projected to identity fields only, and
// derives one lookup row put per track.
func (m *InsertTrackMetadata) PlanScope(ctx context.Context, scope *Scope) (Plan, error) {
	tracks, err := collect(ctx, m.store.Query(ctx, Query{
		PK:         domain.TracksPK(scope.StationID),
		SKPrefix:   domain.TrackSKPrefix(),
		Projection: []string{"id", "artist", "title"},
	}))
	if err != nil {
		return Plan{}, fmt.Errorf("query tracks: %w", err)
	}
	m.logger.Info("got tracks", zap.Int("count", len(tracks)))

	plan := Plan{RowsRead: len(tracks)}
	for _, track := range tracks {
		id, ok := stringAttr(track, "id")
		if !ok {
			return Plan{}, fmt.Errorf("track row missing id attribute")
		}
		artist, _ := stringAttr(track, "artist")
		title, _ := stringAttr(track, "title")

		trackID, err := domain.ParseID(id)
		if err != nil {
			return Plan{}, fmt.Errorf("track %s: %w", id, err)
		}

		key := domain.TrackMetadataKey(scope.StationID, artist, title)
		plan.Puts = append(plan.Puts, Item{
			"pk":       &types.AttributeValueMemberS{Value: key.PK},
			"sk":       &types.AttributeValueMemberS{Value: key.SK},
			"track_id": &types.AttributeValueMemberS{Value: trackID.String()},
		})
	}
	return plan, nil
}
