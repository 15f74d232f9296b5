// Command seed recreates the development table and fills it with a handful of
// stations and plays. Meant for LocalStack; it drops the table first.
package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/infrastructure/config"
	dynamoinfra "radiojournal/infrastructure/dynamodb"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DynamoDBTable == "" {
		log.Fatal("DB_TABLE_NAME is required")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	client, err := dynamoinfra.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create dynamodb client", zap.Error(err))
	}
	store := dynamoinfra.NewStore(client, cfg, logger)

	logger.Info("Initializing DynamoDB table")
	if err := dynamoinfra.RecreateTable(ctx, client, cfg.DynamoDBTable, logger); err != nil {
		logger.Fatal("Failed to recreate table", zap.Error(err))
	}

	stations := []domain.StationCreate{
		{Name: "coolism", Fetcher: &domain.FetcherConfig{ID: domain.FetcherCoolism}},
		{Name: "efm", Fetcher: &domain.FetcherConfig{ID: domain.FetcherAtime, Station: "efm"}},
		{Name: "greenwave", Fetcher: &domain.FetcherConfig{ID: domain.FetcherAtime, Station: "greenwave"}},
		{Name: "chill", Fetcher: &domain.FetcherConfig{ID: domain.FetcherAtime, Station: "chill"}},
		{Name: "z100", Location: "usa", Fetcher: &domain.FetcherConfig{ID: domain.FetcherIheart, Slug: "whtz-fm"}},
		{Name: "kiis", Location: "usa", Fetcher: &domain.FetcherConfig{ID: domain.FetcherIheart, Slug: "kiis-fm"}},
	}

	stationRepo := dynamoinfra.NewStationRepository(store, logger)
	playLogger := dynamoinfra.NewPlayLogger(store, logger)

	for _, create := range stations {
		if err := seedStation(ctx, stationRepo, playLogger, create, logger); err != nil {
			logger.Fatal("Failed to seed station", zap.String("name", create.Name), zap.Error(err))
		}
	}

	logger.Info("Seeding done", zap.Int("stations", len(stations)))
}

func seedStation(
	ctx context.Context,
	stations *dynamoinfra.StationRepository,
	playLogger *dynamoinfra.PlayLogger,
	create domain.StationCreate,
	logger *zap.Logger,
) error {
	logger.Info("Creating station", zap.String("station_name", create.Name))
	station, err := stations.Create(ctx, create)
	if err != nil {
		return err
	}

	logger.Info("Populating mock tracks and plays", zap.String("station_name", station.Name))
	jingle := dynamoinfra.PlayInsert{
		Title:  "jingle",
		Artist: fmt.Sprintf("%s station id", station.Name),
		IsSong: false,
	}
	plays := []dynamoinfra.PlayInsert{
		{Title: "test song", Artist: "some artist", IsSong: true},
		jingle,
		{Title: "another song", Artist: "other artist", IsSong: true},
		jingle,
	}

	for _, play := range plays {
		if _, err := playLogger.AddPlay(ctx, station.ID, play); err != nil {
			return err
		}
	}
	return nil
}
