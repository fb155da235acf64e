// Command precompute rebuilds the Bayesian smoothed-retention cache from
// a cleaned survey workbook and persists it. Run after each data refresh:
//
//	SURVEY_FILE=wave.xlsx DATABASE_URL=postgres://... precompute
//
// DATABASE_URL is optional; without it the rebuild runs and reports but
// nothing is persisted, which downstream readers experience as an
// always-miss cache.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"switchlens/adapters/excel"
	"switchlens/adapters/postgres"
	"switchlens/app"
	"switchlens/internal"
	"switchlens/internal/bayescache"
	"switchlens/internal/config"
	"switchlens/ports"
)

func main() {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	surveyFile := os.Getenv("SURVEY_FILE")
	if surveyFile == "" {
		log.Fatal("SURVEY_FILE is required")
	}

	cfg := config.Load()
	logger := internal.NewDefaultLogger()
	ctx := context.Background()

	var store ports.CacheStore
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := sqlx.Connect("postgres", databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("Failed to ensure cache schema: %v", err)
		}
		store = postgres.NewCacheRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set; cache will not be persisted")
	}

	ds, err := excel.NewReader(surveyFile).Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load survey dataset: %v", err)
	}
	logger.Info("loaded %d respondents from %s", ds.Len(), surveyFile)

	cache := bayescache.New()
	refresh := app.NewRefreshService(cfg, cache, store, logger)
	if err := refresh.Rebuild(ctx, ds); err != nil {
		log.Fatalf("Cache rebuild failed: %v", err)
	}
	logger.Info("precompute complete: %d cache entries", cache.Len())
}
