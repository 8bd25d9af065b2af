package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/database"
	"github.com/stationgames/trivia-backend/internal/handler"
	"github.com/stationgames/trivia-backend/internal/logger"
	"github.com/stationgames/trivia-backend/internal/repository"
	"github.com/stationgames/trivia-backend/internal/router"
	"github.com/stationgames/trivia-backend/internal/service"
	"github.com/stationgames/trivia-backend/internal/validator"
	"github.com/stationgames/trivia-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Trivia Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	poolRepo := repository.NewPoolRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	drawRepo := repository.NewDrawRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	telemetryRepo := repository.NewTelemetryRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry, cfg.AdminPasswordHash)
	userService := service.NewUserService(userRepo)
	poolService := service.NewPoolService(poolRepo)
	questionService := service.NewQuestionService(questionRepo, poolRepo, cfg.Game.DefaultPoolID)
	sessionService := service.NewSessionService(sessionRepo, questionRepo, drawRepo, answerRepo, rdb, cfg.Game)
	telemetryService := service.NewTelemetryService(rdb)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Pool:      handler.NewPoolHandler(poolService),
		Question:  handler.NewQuestionHandler(questionService),
		Session:   handler.NewSessionHandler(sessionService),
		Telemetry: handler.NewTelemetryHandler(telemetryService),
		WS:        handler.NewWSHandler(rdb, sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	answerWorker := worker.NewAnswerLogWorker(answerRepo, rdb, log)
	telemetryWorker := worker.NewTelemetryWorker(telemetryRepo, rdb, log)

	go answerWorker.Start(workerCtx)
	go telemetryWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
