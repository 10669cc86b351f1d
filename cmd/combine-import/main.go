// Command combine-import loads a combine CSV or XLSX file into PostgreSQL so
// the dashboard can serve it with the postgres data source.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"combinepulse/internal/config"
	"combinepulse/internal/dataset"
	"combinepulse/internal/infrastructure"
	"combinepulse/internal/repository/postgres"
)

const defaultBatchSize = 500

func main() {
	configPath := flag.String("config", "", "configuration file (defaults to the usual locations)")
	dataPath := flag.String("data", "", "combine CSV or XLSX file (defaults to the configured data path)")
	sheet := flag.String("sheet", "", "worksheet to read from an XLSX file")
	databaseURL := flag.String("database-url", "", "PostgreSQL URL (defaults to the configured database url)")
	batch := flag.Int("batch", defaultBatchSize, "rows per insert batch")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	if *dataPath == "" {
		*dataPath = cfg.Data.Path
	}
	if *sheet == "" {
		*sheet = cfg.Data.Sheet
	}
	if *databaseURL == "" {
		*databaseURL = cfg.Database.URL
	}

	if err := run(context.Background(), *dataPath, *sheet, *databaseURL, cfg.Database.LogLevel, *batch, logger); err != nil {
		infrastructure.WithError(logger, err).Error("Import failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, dataPath, sheet, databaseURL, logLevel string, batch int, logger *slog.Logger) error {
	if databaseURL == "" {
		return fmt.Errorf("a database url is required")
	}
	if batch <= 0 {
		batch = defaultBatchSize
	}

	start := time.Now()
	records, report, err := dataset.NewLoader(logger).ReadFile(ctx, dataPath, sheet)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Combine file read",
		slog.String("path", dataPath),
		slog.Int("rows_read", report.RowsRead),
		slog.Int("records", len(records)),
		slog.Int("skipped", report.Skipped))

	db, err := postgres.NewConnection(databaseURL, logLevel)
	if err != nil {
		return err
	}
	defer postgres.Close(db)

	repo := postgres.NewCombineRepository(db, logger)
	written, err := repo.UpsertMany(ctx, records, batch)
	if err != nil {
		return err
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Import complete",
		slog.Int("written", written),
		slog.Int64("rows_in_table", total),
		slog.Duration("duration", time.Since(start)))
	return nil
}
