// Package main is the entrypoint for the CareerLens API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/careerlens/careerlens/internal/ai"
	"github.com/careerlens/careerlens/internal/ai/gateway"
	"github.com/careerlens/careerlens/internal/ai/gemini"
	"github.com/careerlens/careerlens/internal/ai/ollama"
	"github.com/careerlens/careerlens/internal/api"
	"github.com/careerlens/careerlens/internal/api/handler"
	mw "github.com/careerlens/careerlens/internal/api/middleware"
	"github.com/careerlens/careerlens/internal/cache"
	"github.com/careerlens/careerlens/internal/config"
	"github.com/careerlens/careerlens/internal/health"
	"github.com/careerlens/careerlens/internal/store"
	"github.com/careerlens/careerlens/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"local_inference", cfg.AI.UseLocalOllama,
		"cloud_fallback", cfg.AI.CloudFallback,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Build the analysis pipeline
	local, cloud, ollamaClient := newProviderChain(cfg.AI)
	analysis := ai.NewService(local, cloud, ai.Options{
		CloudFallback:  cfg.AI.CloudFallback,
		LocalTimeout:   cfg.AI.Ollama.Timeout,
		CloudTimeout:   cfg.AI.CloudTimeout,
		MaxResumeChars: cfg.AI.Ollama.MaxResumeChars,
	})
	logProviderChain(local, cloud)

	// 6. Create store
	pgStore := store.NewPostgresStore(pool)

	// 7. Health probes
	checkers := []health.Checker{
		health.NewPingChecker("postgres", "check DATABASE_URL and that the database is running", pgStore),
		health.NewPingChecker("redis", "check REDIS_URL and that the Redis server is running", redisCache),
	}
	if ollamaClient != nil {
		checkers = append(checkers, health.NewInferenceChecker(ollamaClient))
	}
	healthSvc := health.NewService(redisCache, checkers...)

	// 8. Build router with dependencies
	auth := mw.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMin)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:        handler.NewHealthHandler(healthSvc),
		AnalyzeHandler:       handler.NewAnalyzeHandler(analysis),
		ExtractTextHandler:   handler.NewExtractTextHandler(),
		SaveHistoryHandler:   handler.NewSaveHistoryHandler(pgStore),
		ListHistoryHandler:   handler.NewListHistoryHandler(pgStore),
		GetHistoryHandler:    handler.NewGetHistoryHandler(pgStore),
		DeleteHistoryHandler: handler.NewDeleteHistoryHandler(pgStore),
		CreateShareHandler:   handler.NewCreateShareHandler(pgStore),
		RevokeShareHandler:   handler.NewRevokeShareHandler(pgStore),
		GetSharedHandler:     handler.NewGetSharedHandler(pgStore, redisCache),
		GetProfileHandler:    handler.NewGetProfileHandler(pgStore),
		UpdateProfileHandler: handler.NewUpdateProfileHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // analysis calls can run long
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newProviderChain assembles the local and cloud providers from config.
// The local slot is the Ollama client when enabled. The cloud slot prefers
// the OpenAI-compatible gateway and falls back to the Gemini REST API when
// only a Gemini key is set. Either slot may be nil; the analysis service
// reports a configuration error per request instead of refusing to boot.
func newProviderChain(cfg config.AIConfig) (local, cloud models.Provider, ollamaClient *ollama.Provider) {
	if cfg.UseLocalOllama {
		ollamaClient = ollama.NewProvider(cfg.Ollama)
		local = ollamaClient
	}

	switch {
	case cfg.Gateway.APIKey != "":
		cloud = gateway.NewProvider(cfg.Gateway)
	case cfg.Gemini.APIKey != "":
		cloud = gemini.NewProvider(cfg.Gemini)
	}
	return local, cloud, ollamaClient
}

func logProviderChain(local, cloud models.Provider) {
	localName, cloudName := "none", "none"
	if local != nil {
		localName = local.Name()
	}
	if cloud != nil {
		cloudName = cloud.Name()
	}
	if local == nil && cloud == nil {
		slog.Warn("no inference provider configured; analysis requests will fail")
	}
	slog.Info("inference chain initialized", "local", localName, "cloud", cloudName)
}
