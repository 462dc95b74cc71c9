package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cdirx/decision-tool/internal/api"
	"github.com/cdirx/decision-tool/internal/cache"
	"github.com/cdirx/decision-tool/internal/config"
	"github.com/cdirx/decision-tool/internal/repository/postgres"
	"github.com/cdirx/decision-tool/internal/service"
	"github.com/cdirx/decision-tool/internal/storage"
	"github.com/cdirx/decision-tool/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	profitCache, summaryCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to cache")
	}

	archive := newArchive(cfg)

	profitRepo := postgres.NewProfitRepository(db)
	logRepo := postgres.NewLogRepository(db)

	services := &api.Services{
		Decision: service.NewDecisionService(profitRepo, logRepo, profitCache, summaryCache),
		Upload:   service.NewUploadService(archive),
		Logs:     service.NewLogService(logRepo, summaryCache),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func newArchive(cfg *config.Config) storage.ObjectStorage {
	if !cfg.Archive.Enabled {
		return storage.Noop{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := storage.NewMinioClient(ctx, cfg.Archive)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Upload archiving disabled: object storage unreachable")
		return storage.Noop{}
	}
	return client
}
