package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/blueskyzii/Latihan-PPKN/internal/catalog"
	"github.com/blueskyzii/Latihan-PPKN/internal/config"
	"github.com/blueskyzii/Latihan-PPKN/internal/database"
	"github.com/blueskyzii/Latihan-PPKN/internal/handler"
	"github.com/blueskyzii/Latihan-PPKN/internal/logger"
	"github.com/blueskyzii/Latihan-PPKN/internal/router"
	"github.com/blueskyzii/Latihan-PPKN/internal/service"
	"github.com/blueskyzii/Latihan-PPKN/internal/storage"
	"github.com/blueskyzii/Latihan-PPKN/internal/validator"
	"github.com/blueskyzii/Latihan-PPKN/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("content_dir", cfg.ContentDir).
		Msg("Starting Latihan PPKN Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	// Redis holds the exam snapshots. When it is unreachable the server
	// still runs with an in-memory store; attempts then survive reloads
	// only as long as the process lives.
	var store storage.Store
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory snapshot store")
		rdb = nil
		store = storage.NewMemoryStore()
	} else {
		defer rdb.Close()
		store = storage.NewRedisStore(rdb)
	}

	// ─── Connect to PostgreSQL (optional) ──────────────────────────────
	// The database only archives finished results. Without DATABASE_URL
	// the archive worker stays off and finish results are not persisted.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	archiving := false
	if cfg.DatabaseURL != "" && rdb != nil {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("PostgreSQL unavailable, result archiving disabled")
		} else {
			defer pool.Close()
			archiveWorker := worker.NewArchiveWorker(pool, rdb, log)
			go archiveWorker.Start(workerCtx)
			archiving = true
		}
	}
	if !archiving {
		// The session service skips queueing when rdb is nil; with Redis up
		// but no database the queue would grow unbounded, so disable it too.
		if cfg.DatabaseURL == "" {
			log.Info().Msg("DATABASE_URL not set, result archiving disabled")
		}
	}

	// ─── Initialize Content Loader ─────────────────────────────────────
	loader := catalog.NewLoader(cfg.ContentDir, log)
	if _, err := loader.Catalog(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.ContentDir).Msg("Quiz catalog not readable at startup")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	archiveRdb := rdb
	if !archiving {
		archiveRdb = nil
	}
	sessionService := service.NewExamSessionService(cfg, store, loader, archiveRdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Dashboard: handler.NewDashboardHandler(loader, sessionService),
		Exam:      handler.NewExamHandler(sessionService),
		WS:        handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the archive worker and let it drain the queue.
	workerCancel()
	if archiving {
		time.Sleep(2 * time.Second)
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
