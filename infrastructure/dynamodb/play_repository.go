package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/migration"
)

// PlayRow is the secondary-index view of a play: the index projects only the
// identity attributes, so listings by track surface these fields.
type PlayRow struct {
	ID      domain.ID `dynamodbav:"id" json:"id"`
	TrackID domain.ID `dynamodbav:"track_id" json:"track_id"`
}

// PlayRepository reads play rows by daily partition and by track.
type PlayRepository struct {
	store  *Store
	logger *zap.Logger
}

func NewPlayRepository(store *Store, logger *zap.Logger) *PlayRepository {
	return &PlayRepository{store: store, logger: logger}
}

// ListByPartition returns one day of a station's plays in play-id order.
func (r *PlayRepository) ListByPartition(ctx context.Context, stationID domain.ID, partition string) ([]domain.PlayItem, error) {
	pager := r.store.Query(ctx, migration.Query{
		PK:       domain.PlaysPK(stationID, partition),
		SKPrefix: domain.PlaySKPrefix(),
	})

	var plays []domain.PlayItem
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return plays, nil
		}
		for _, item := range page {
			var play domain.PlayItem
			if err := attributevalue.UnmarshalMap(item, &play); err != nil {
				return nil, err
			}
			plays = append(plays, play)
		}
	}
}

// ListByTrack returns the most recent plays of a track through the secondary
// index, newest first. Rows the index relocation has not reached yet are keyed
// under the superseded scheme and do not appear here until migrated.
func (r *PlayRepository) ListByTrack(ctx context.Context, trackID domain.ID, limit int32) ([]PlayRow, error) {
	pager := r.store.QueryGSI1(ctx, domain.PlayGSI1PK(trackID), domain.PlaySKPrefix(), false, limit)

	var rows []PlayRow
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return rows, nil
		}
		for _, item := range page {
			var row PlayRow
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		if limit > 0 && int32(len(rows)) >= limit {
			return rows[:limit], nil
		}
	}
}
