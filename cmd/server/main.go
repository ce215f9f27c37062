package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantprep/examgate/internal/backend"
	"github.com/quantprep/examgate/internal/cache"
	"github.com/quantprep/examgate/internal/config"
	"github.com/quantprep/examgate/internal/handler"
	"github.com/quantprep/examgate/internal/logger"
	"github.com/quantprep/examgate/internal/router"
	"github.com/quantprep/examgate/internal/service"
	"github.com/quantprep/examgate/internal/session"
	"github.com/quantprep/examgate/internal/validator"
	"github.com/quantprep/examgate/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("backend", cfg.BackendBaseURL).
		Msg("Starting ExamGate")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect Redis Cache (optional) ────────────────────────────────
	var cacheStore *cache.Cache
	if cfg.RedisURL != "" {
		var err error
		cacheStore, err = cache.Connect(ctx, cfg.RedisURL, cfg.CacheTTL, log)
		if err != nil {
			// The cache is an optimization, not a dependency.
			log.Warn().Err(err).Msg("Redis unavailable, running without cache")
			cacheStore = nil
		} else {
			defer cacheStore.Close()
		}
	}

	// ─── Initialize Core ───────────────────────────────────────────────
	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, cacheStore, log)
	manager := session.NewManager()
	sessionService := service.NewSessionService(client, manager, time.Second, log)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessionService),
		Test:    handler.NewTestHandler(client),
		WS:      handler.NewWSHandler(sessionService, cfg.AllowedOrigins, time.Second, log),
	}

	// ─── Start Background Workers ──────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	reaper := worker.NewReaperWorker(manager, cfg.SessionReapInterval, cfg.SessionReapGrace, log)
	go reaper.Start(workerCtx)

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

	// 2. Stop the reaper and tear down any live session timers.
	workerCancel()
	manager.Range(func(s *session.Session) {
		s.StopTimer()
	})

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
