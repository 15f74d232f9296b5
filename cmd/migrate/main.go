package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"radiojournal/domain"
	"radiojournal/infrastructure/config"
	dynamoinfra "radiojournal/infrastructure/dynamodb"
	"radiojournal/migration"
)

func usage() {
	fmt.Printf("usage: %s <migration> <table_name> <station_id>\n", os.Args[0])
	fmt.Printf("migrations: %s\n", strings.Join(migration.Names(), ", "))
}

func main() {
	if len(os.Args) != 4 {
		usage()
		os.Exit(1)
	}
	migrationName := os.Args[1]
	tableName := os.Args[2]
	rawStationID := os.Args[3]

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.DynamoDBTable = tableName

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	stationID, err := domain.ParseID(rawStationID)
	if err != nil {
		logger.Fatal("Invalid station id", zap.String("station_id", rawStationID), zap.Error(err))
	}

	client, err := dynamoinfra.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create dynamodb client", zap.Error(err))
	}
	store := dynamoinfra.NewStore(client, cfg, logger)

	m, err := migration.New(migrationName, store, logger)
	if err != nil {
		logger.Error("Unknown migration", zap.Error(err))
		usage()
		os.Exit(1)
	}

	driver := migration.NewDriver(store, logger, migration.DriverOptions{
		FailFast: cfg.MigrationFailFast,
	})

	report, err := driver.Run(ctx, m, stationID)
	printReport(report)
	if err != nil {
		// Chunk-level conflicts alone never get here; they are reported in the
		// summary and exit zero. An error means the run aborted.
		logger.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func printReport(report *migration.Report) {
	fmt.Printf("phase:              %s\n", report.Phase)
	fmt.Printf("partitions visited: %d\n", report.PartitionsVisited)
	fmt.Printf("rows read:          %d\n", report.RowsRead)
	fmt.Printf("puts committed:     %d\n", report.PutsCommitted)
	fmt.Printf("updates committed:  %d\n", report.UpdatesCommitted)
	fmt.Printf("chunk failures:     %d\n", report.ChunkFailures)
	fmt.Printf("conflicts:          %d\n", report.Conflicts)
	if report.CeilingReached {
		fmt.Println("warning: partition walk stopped at the safety ceiling; results may be incomplete")
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}
