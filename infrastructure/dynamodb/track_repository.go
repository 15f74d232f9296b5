package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/migration"
	"radiojournal/pkg/apperrors"
)

// TrackRepository reads track rows and resolves artist/title lookups.
type TrackRepository struct {
	store  *Store
	logger *zap.Logger
}

func NewTrackRepository(store *Store, logger *zap.Logger) *TrackRepository {
	return &TrackRepository{store: store, logger: logger}
}

// Get loads one track.
func (r *TrackRepository) Get(ctx context.Context, stationID, trackID domain.ID) (*domain.TrackItem, error) {
	var track domain.TrackItem
	if err := r.store.GetItem(ctx, domain.TrackKey(stationID, trackID), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// List returns a station's tracks in id order.
func (r *TrackRepository) List(ctx context.Context, stationID domain.ID) ([]domain.TrackItem, error) {
	pager := r.store.Query(ctx, migration.Query{
		PK:       domain.TracksPK(stationID),
		SKPrefix: domain.TrackSKPrefix(),
	})

	var tracks []domain.TrackItem
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return tracks, nil
		}
		for _, item := range page {
			var track domain.TrackItem
			if err := attributevalue.UnmarshalMap(item, &track); err != nil {
				return nil, err
			}
			tracks = append(tracks, track)
		}
	}
}

// FindByMetadata resolves (artist, title) to a track through the standalone
// lookup row. The read is strongly consistent because the live write path
// relies on it to decide between reusing and minting a track identity; a
// stale miss would mint a duplicate. A nil result with nil error means no
// such track exists yet.
func (r *TrackRepository) FindByMetadata(ctx context.Context, stationID domain.ID, artist, title string) (*domain.TrackItem, error) {
	var meta domain.TrackMetadataItem
	err := r.store.GetItemConsistent(ctx, domain.TrackMetadataKey(stationID, artist, title), &meta)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return r.Get(ctx, stationID, meta.TrackID)
}
