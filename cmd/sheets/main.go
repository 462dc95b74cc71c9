package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/cdirx/decision-tool/internal/cache"
	"github.com/cdirx/decision-tool/internal/config"
	"github.com/cdirx/decision-tool/internal/ingest"
	"github.com/cdirx/decision-tool/internal/repository/postgres"
	"github.com/cdirx/decision-tool/internal/sheets"
	"github.com/cdirx/decision-tool/pkg/logger"
)

// The sheets sidecar keeps the profit table in step with the published
// workbook: one periodic sync loop plus a small operator API.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	profitCache, _, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to cache")
	}

	source, err := newSource(cfg.Sheets)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to configure workbook source")
	}

	profitRepo := postgres.NewProfitRepository(db)
	syncer := sheets.NewSyncer(source, profitRepo, profitCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := time.Duration(cfg.Sheets.SyncIntervalSeconds) * time.Second
	go syncer.RunPeriodic(ctx, interval)

	r := mux.NewRouter()
	handler := sheets.NewHandler(syncer, profitRepo)
	handler.RegisterRoutes(r)
	r.HandleFunc("/health", sheets.HealthCheck).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Sheets.Port)
	logger.Log.Info().Str("addr", addr).Dur("interval", interval).Msg("Sheets sync service starting")
	logger.Log.Fatal().Err(http.ListenAndServe(addr, r)).Msg("Sheets sync service stopped")
}

// newSource picks the workbook source: the authenticated Drive API when
// service-account credentials are configured, the public CSV export
// otherwise.
func newSource(cfg config.SheetsConfig) (sheets.Source, error) {
	if cfg.ProfitSheetURL == "" {
		return nil, fmt.Errorf("SHEETS_PROFIT_URL is required")
	}

	if cfg.DriveCredentialsJSON == "" {
		return &sheets.PublicSource{SheetURL: cfg.ProfitSheetURL}, nil
	}

	docID, err := ingest.SheetID(cfg.ProfitSheetURL)
	if err != nil {
		return nil, err
	}

	drive, err := sheets.NewDriveService(context.Background(), cfg.DriveCredentialsJSON)
	if err != nil {
		return nil, err
	}
	return &sheets.DriveSource{Drive: drive, DocID: docID}, nil
}
