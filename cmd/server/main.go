// Command server runs the video Q&A API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vidsage/vidsage/internal/api"
	"github.com/vidsage/vidsage/internal/cache"
	"github.com/vidsage/vidsage/internal/chat"
	"github.com/vidsage/vidsage/internal/config"
	"github.com/vidsage/vidsage/internal/database"
	"github.com/vidsage/vidsage/internal/embedding"
	"github.com/vidsage/vidsage/internal/health"
	"github.com/vidsage/vidsage/internal/indexer"
	"github.com/vidsage/vidsage/internal/queue"
	"github.com/vidsage/vidsage/internal/resilience"
	"github.com/vidsage/vidsage/internal/retrieval"
	"github.com/vidsage/vidsage/internal/service"
	"github.com/vidsage/vidsage/internal/transcript"
	"github.com/vidsage/vidsage/pkg/observability"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewStandardLogger("server").(*observability.StandardLogger).
		WithLevel(observability.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cache backend is chosen once here; a Redis outage later degrades
	// to misses, it does not flip the backend.
	cacheBackend, backendKind := cache.New(cfg.Cache, logger)
	defer func() { _ = cacheBackend.Close() }()
	videoCache := cache.NewVideoCache(cacheBackend, cfg.Cache.TTL, logger)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", map[string]interface{}{
			"error": err.Error(),
		})
	}

	tasks := queue.New(cfg.Queue, logger)

	retrier := resilience.NewRetrier(cfg.Retry, logger)
	chatStore := chat.NewStore(chat.NewRepository(db), cacheBackend, cfg.Cache.TTL, retrier, tasks, logger)
	registerTask := func(name string, handler func(ctx context.Context, payload map[string]interface{}) error) error {
		return tasks.Register(name, handler)
	}
	if err := chatStore.RegisterTasks(registerTask); err != nil {
		logger.Fatal("Failed to register chat tasks", map[string]interface{}{
			"error": err.Error(),
		})
	}

	limiter := resilience.NewRateLimiter(cfg.RateLimit, logger)
	gemini, err := embedding.NewGeminiClient(ctx, cfg.Gemini, limiter, logger)
	if err != nil {
		logger.Fatal("Failed to create Gemini client", map[string]interface{}{
			"error": err.Error(),
		})
	}

	fetcher := transcript.NewHTTPFetcher(cfg.Transcript, logger)
	chunker := indexer.NewChunker(cfg.Indexer.ChunkSize, cfg.Indexer.ChunkOverlap)
	breaker := resilience.NewBreaker("upstream", cfg.Breaker, logger)
	builder := indexer.NewBuilder(fetcher, chunker, gemini, breaker, logger)

	indexes, err := indexer.NewStore(builder, videoCache, cfg.Indexer.MaxLiveIndexes, logger)
	if err != nil {
		logger.Fatal("Failed to create index store", map[string]interface{}{
			"error": err.Error(),
		})
	}

	videos := service.NewVideoService(indexes, retrieval.NewRetriever(logger), gemini, videoCache, breaker, logger)

	// The in-memory backend needs periodic expiry sweeps; Redis expires
	// keys on its own.
	if mem, ok := cacheBackend.(*cache.MemoryCache); ok {
		if err := tasks.Register("cache_sweep", func(ctx context.Context, payload map[string]interface{}) error {
			removed := mem.Sweep()
			logger.Debug("Cache sweep complete", map[string]interface{}{
				"removed": removed,
			})
			return nil
		}); err != nil {
			logger.Fatal("Failed to register cache sweep task", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	tasks.Start()
	if _, ok := cacheBackend.(*cache.MemoryCache); ok {
		tasks.StartPeriodic("cache_sweep", time.Hour, nil)
	}

	checker := health.NewChecker(cacheBackend, backendKind, tasks)
	server := api.NewServer(cfg.API, videos, chatStore, checker, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received", nil)
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown incomplete", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := tasks.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Task runner shutdown incomplete", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Server stopped", nil)
}
