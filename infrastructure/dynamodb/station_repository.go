package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/migration"
)

// StationRepository reads and creates station rows.
type StationRepository struct {
	store  *Store
	logger *zap.Logger
}

func NewStationRepository(store *Store, logger *zap.Logger) *StationRepository {
	return &StationRepository{store: store, logger: logger}
}

// Create writes a new station row.
func (r *StationRepository) Create(ctx context.Context, create domain.StationCreate) (*domain.StationItem, error) {
	station := domain.NewStationItem(create, time.Now().UTC())
	if err := r.store.PutItem(ctx, station); err != nil {
		return nil, err
	}
	r.logger.Info("created station",
		zap.String("station_id", station.ID.String()),
		zap.String("name", station.Name),
	)
	return &station, nil
}

// Get loads one station.
func (r *StationRepository) Get(ctx context.Context, stationID domain.ID) (*domain.StationItem, error) {
	var station domain.StationItem
	if err := r.store.GetItem(ctx, domain.StationKey(stationID), &station); err != nil {
		return nil, err
	}
	return &station, nil
}

// List returns every station.
func (r *StationRepository) List(ctx context.Context) ([]domain.StationItem, error) {
	pager := r.store.Query(ctx, migration.Query{
		PK:       domain.StationsPK,
		SKPrefix: domain.StationSKPrefix(),
	})

	var stations []domain.StationItem
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return stations, nil
		}
		for _, item := range page {
			var station domain.StationItem
			if err := attributevalue.UnmarshalMap(item, &station); err != nil {
				return nil, err
			}
			stations = append(stations, station)
		}
	}
}
