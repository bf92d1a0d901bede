package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	"contrib-graph-service/internal/cache"
	"contrib-graph-service/internal/contributions/adapters/github"
	"contrib-graph-service/internal/contributions/adapters/gitlab"
	contribHttp "contrib-graph-service/internal/contributions/adapters/http/fiber"
	"contrib-graph-service/internal/contributions/core/domain"
	"contrib-graph-service/internal/contributions/core/usecase"
	"contrib-graph-service/internal/logging"
	"contrib-graph-service/internal/ratelimit"

	_ "contrib-graph-service/docs"
)

// @title Contribution Graph Service API
// @version 1.0
// @description Aggregates per-day contribution counts from GitHub and GitLab into one unified daily series.
// @BasePath /
func main() {
	logger := logging.New(envString("LOG_LEVEL", "info"))

	// Config
	port := envString("PORT", "8080")
	httpTimeout := envDuration("HTTP_TIMEOUT", 10*time.Second)
	maxEntries := envInt("CACHE_MAX_ENTRIES", 1024)
	githubTTL := envDuration("GITHUB_CACHE_TTL", 15*time.Minute)
	gitlabTTL := envDuration("GITLAB_CACHE_TTL", 15*time.Minute)
	fetchTimeout := envDuration("FETCH_TIMEOUT", 15*time.Second)
	limitInterval := envDuration("RATE_LIMIT_INTERVAL", time.Second)
	limitBurst := envInt("RATE_LIMIT_BURST", 5)

	// Upstream clients
	client := &http.Client{Timeout: httpTimeout}
	githubAdapter := github.New(os.Getenv("GITHUB_API_URL"), client)
	gitlabAdapter := gitlab.New(os.Getenv("GITLAB_API_URL"), client)

	// Series cache
	seriesCache := cache.New[domain.SourceSeries](
		cache.WithMaxEntries[domain.SourceSeries](maxEntries),
		cache.WithDefaultTTL[domain.SourceSeries](15*time.Minute),
	)

	// Usecases
	fetchUnifiedUC := usecase.NewFetchUnifiedUseCase(seriesCache, usecase.Config{
		CacheTTLs: map[domain.Source]time.Duration{
			domain.SourceGitHub: githubTTL,
			domain.SourceGitLab: gitlabTTL,
		},
		FetchTimeout: fetchTimeout,
	}, logger, githubAdapter, gitlabAdapter)

	// Per-fingerprint rate limiting
	limiter := ratelimit.New(limitInterval, limitBurst)
	go func() {
		for range time.Tick(10 * time.Minute) {
			limiter.PruneIdle(time.Hour)
		}
	}()

	// HTTP (Fiber) app + handlers
	app := fiber.New()

	contributionsHandler := contribHttp.NewContributionsHandler(fetchUnifiedUC, limiter, logger)
	app.Get("/v1/contributions", contributionsHandler.GetContributions)

	statsHandler := contribHttp.NewCacheStatsHandler(seriesCache)
	app.Get("/v1/cache/stats", statsHandler.GetCacheStats)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	go func() {
		if err := app.Listen(":" + port); err != nil {
			logger.Error("fiber stopped", "err", err)
		}
	}()

	logger.Info("server started", "port", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("fiber shutdown error", "err", err)
	}

	logger.Info("server exiting")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
